// Package store is the SQLite persistence façade consumed by
// internal/manager: it implements the key-value-shaped save/load contract
// (save_manager, save_game, save_profile, prefs, auth, load_all) over
// mattn/go-sqlite3 with pressly/goose/v3 migrations embedded in the
// binary.
package store

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"

	"github.com/galeproject/gale/internal/profile"
)

//go:embed migrations/*.sql
var migrations embed.FS

const dbPragmas = "?_foreign_keys=ON&_journal_mode=WAL&_synchronous=NORMAL"

// Store wraps a single SQLite database holding every manager, game,
// profile, pref, and auth row.
type Store struct {
	db   *sql.DB
	path string
}

// Open connects to the database at path, running pending migrations
// before returning.
func Open(ctx context.Context, path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("store: create state directory: %w", err)
	}

	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s%s", path, dbPragmas))
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}

	s := &Store{db: db, path: path}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) gooseProvider() (*goose.Provider, error) {
	fsys, err := fs.Sub(migrations, "migrations")
	if err != nil {
		return nil, fmt.Errorf("store: prepare migrations fs: %w", err)
	}
	return goose.NewProvider(goose.DialectSQLite3, s.db, fsys)
}

func (s *Store) migrate(ctx context.Context) error {
	p, err := s.gooseProvider()
	if err != nil {
		return fmt.Errorf("store: set up goose provider: %w", err)
	}
	if _, err := p.Up(ctx); err != nil {
		return fmt.Errorf("store: migrate database: %w", err)
	}
	return nil
}

// HasPending reports whether any migration hasn't yet been applied,
// exposed for the doctor command.
func (s *Store) HasPending(ctx context.Context) (bool, error) {
	p, err := s.gooseProvider()
	if err != nil {
		return false, err
	}
	pending, err := p.HasPending(ctx)
	if err != nil {
		return false, fmt.Errorf("store: migration status: %w", err)
	}
	return pending, nil
}

// Versions returns the database's current and target migration versions,
// exposed for the doctor command.
func (s *Store) Versions(ctx context.Context) (current, target int64, err error) {
	p, err := s.gooseProvider()
	if err != nil {
		return 0, 0, err
	}
	current, target, err = p.GetVersions(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("store: migration versions: %w", err)
	}
	return current, target, nil
}

// EnsureExists verifies that the database file at path exists and is a
// regular file, surfacing a user-friendly error if `gale init` hasn't run.
func EnsureExists(path string) error {
	if path == "" {
		return fmt.Errorf("store: database path is not configured")
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("database not found at %s\n\nRun `gale init` to initialize the state directory", path)
		}
		return fmt.Errorf("store: cannot access database %s: %w", path, err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("store: database path %s exists but is not a regular file", path)
	}
	return nil
}

// ManagerData is the single-row "which game is active" record.
type ManagerData struct {
	ActiveGameSlug string
}

// GameData is one row of the games table.
type GameData struct {
	ID              int64
	Slug            string
	Path            string
	Favorite        bool
	ActiveProfileID int64
}

// ProfileData is one row of the profiles table, with its mod list and
// lists columns carried as JSON.
type ProfileData struct {
	ID                int64
	GameID            int64
	Name              string
	Path              string
	IgnoredUpdates    []string
	CustomArgs        []string
	CustomArgsEnabled bool
	Mods              []profile.ProfileMod
}

// SaveManager upserts the singleton manager row.
func (s *Store) SaveManager(ctx context.Context, activeGameSlug string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO manager (id, active_game_slug) VALUES (1, ?)
		ON CONFLICT (id) DO UPDATE SET active_game_slug = excluded.active_game_slug
	`, activeGameSlug)
	if err != nil {
		return fmt.Errorf("store: save manager: %w", err)
	}
	return nil
}

// SaveGame upserts a game row keyed by slug (its real business key — a
// game is a singleton per slug regardless of what in-memory id a caller
// may have assigned it before the first save) and returns the row's
// database-assigned id.
func (s *Store) SaveGame(ctx context.Context, g GameData) (int64, error) {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO games (slug, path, favorite, active_profile_id)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (slug) DO UPDATE SET
			path = excluded.path,
			favorite = excluded.favorite,
			active_profile_id = excluded.active_profile_id
	`, g.Slug, g.Path, boolToInt(g.Favorite), g.ActiveProfileID)
	if err != nil {
		return 0, fmt.Errorf("store: save game %s: %w", g.Slug, err)
	}

	var id int64
	if err := s.db.QueryRowContext(ctx, `SELECT id FROM games WHERE slug = ?`, g.Slug).Scan(&id); err != nil {
		return 0, fmt.Errorf("store: save game %s: read id: %w", g.Slug, err)
	}
	return id, nil
}

// AllGames returns every game row.
func (s *Store) AllGames(ctx context.Context) ([]GameData, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, slug, path, favorite, active_profile_id FROM games ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("store: list games: %w", err)
	}
	defer rows.Close()

	var out []GameData
	for rows.Next() {
		var g GameData
		var favorite int
		if err := rows.Scan(&g.ID, &g.Slug, &g.Path, &favorite, &g.ActiveProfileID); err != nil {
			return nil, fmt.Errorf("store: scan game row: %w", err)
		}
		g.Favorite = favorite != 0
		out = append(out, g)
	}
	return out, rows.Err()
}

// SaveProfile upserts a profile row by id, encoding its mod list and
// string-slice fields as JSON.
func (s *Store) SaveProfile(ctx context.Context, p ProfileData) error {
	ignoredJSON, err := json.Marshal(orEmpty(p.IgnoredUpdates))
	if err != nil {
		return fmt.Errorf("store: encode ignored updates: %w", err)
	}
	customArgsJSON, err := json.Marshal(orEmpty(p.CustomArgs))
	if err != nil {
		return fmt.Errorf("store: encode custom args: %w", err)
	}
	modsJSON, err := json.Marshal(orEmptyMods(p.Mods))
	if err != nil {
		return fmt.Errorf("store: encode mods: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO profiles (game_id, id, name, path, ignored_updates, custom_args, custom_args_enabled, mods)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (game_id, id) DO UPDATE SET
			name = excluded.name,
			path = excluded.path,
			ignored_updates = excluded.ignored_updates,
			custom_args = excluded.custom_args,
			custom_args_enabled = excluded.custom_args_enabled,
			mods = excluded.mods
	`, p.GameID, p.ID, p.Name, p.Path, string(ignoredJSON), string(customArgsJSON), boolToInt(p.CustomArgsEnabled), string(modsJSON))
	if err != nil {
		return fmt.Errorf("store: save profile %d (game %d): %w", p.ID, p.GameID, err)
	}
	return nil
}

// AllProfiles returns every profile row belonging to gameID.
func (s *Store) AllProfiles(ctx context.Context, gameID int64) ([]ProfileData, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, game_id, name, path, ignored_updates, custom_args, custom_args_enabled, mods
		FROM profiles WHERE game_id = ? ORDER BY id
	`, gameID)
	if err != nil {
		return nil, fmt.Errorf("store: list profiles for game %d: %w", gameID, err)
	}
	defer rows.Close()

	return scanProfileRows(rows)
}

// DeleteProfile removes a profile row. Profile ids are only unique within
// a game, so the game id is part of the key.
func (s *Store) DeleteProfile(ctx context.Context, gameID, id int64) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM profiles WHERE game_id = ? AND id = ?`, gameID, id); err != nil {
		return fmt.Errorf("store: delete profile %d (game %d): %w", id, gameID, err)
	}
	return nil
}

// NextProfileID returns one past the highest profile id currently stored
// for gameID, for hosts that want a persisted ID sequence (the in-memory
// ManagedGame.nextProfileID computes the same thing independent of this).
func (s *Store) NextProfileID(ctx context.Context, gameID int64) (int64, error) {
	var max sql.NullInt64
	err := s.db.QueryRowContext(ctx, `SELECT MAX(id) FROM profiles WHERE game_id = ?`, gameID).Scan(&max)
	if err != nil {
		return 0, fmt.Errorf("store: next profile id for game %d: %w", gameID, err)
	}
	return max.Int64 + 1, nil
}

// SavePrefs upserts a set of preference key/value pairs in one transaction.
func (s *Store) SavePrefs(ctx context.Context, prefs map[string]string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: save prefs: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO prefs (key, value) VALUES (?, ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value
	`)
	if err != nil {
		return fmt.Errorf("store: save prefs: %w", err)
	}
	defer stmt.Close()

	for k, v := range prefs {
		if _, err := stmt.ExecContext(ctx, k, v); err != nil {
			return fmt.Errorf("store: save pref %q: %w", k, err)
		}
	}
	return tx.Commit()
}

// LoadPrefs returns every stored preference as a key/value map.
func (s *Store) LoadPrefs(ctx context.Context) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key, value FROM prefs`)
	if err != nil {
		return nil, fmt.Errorf("store: load prefs: %w", err)
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, fmt.Errorf("store: scan pref row: %w", err)
		}
		out[k] = v
	}
	return out, rows.Err()
}

// SaveAuth upserts a bearer token for a given host.
func (s *Store) SaveAuth(ctx context.Context, host, token string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO auth (host, token) VALUES (?, ?)
		ON CONFLICT (host) DO UPDATE SET token = excluded.token
	`, host, token)
	if err != nil {
		return fmt.Errorf("store: save auth for %s: %w", host, err)
	}
	return nil
}

// LoadAuth returns the stored token for host, if any.
func (s *Store) LoadAuth(ctx context.Context, host string) (string, bool, error) {
	var token string
	err := s.db.QueryRowContext(ctx, `SELECT token FROM auth WHERE host = ?`, host).Scan(&token)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("store: load auth for %s: %w", host, err)
	}
	return token, true, nil
}

// LoadAll reads the manager row, every game, and every profile in one pass,
// the bulk load internal/manager performs at startup.
func (s *Store) LoadAll(ctx context.Context) (ManagerData, []GameData, []ProfileData, error) {
	var m ManagerData
	err := s.db.QueryRowContext(ctx, `SELECT active_game_slug FROM manager WHERE id = 1`).Scan(&m.ActiveGameSlug)
	if err != nil && err != sql.ErrNoRows {
		return ManagerData{}, nil, nil, fmt.Errorf("store: load manager: %w", err)
	}

	games, err := s.AllGames(ctx)
	if err != nil {
		return ManagerData{}, nil, nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, game_id, name, path, ignored_updates, custom_args, custom_args_enabled, mods
		FROM profiles ORDER BY game_id, id
	`)
	if err != nil {
		return ManagerData{}, nil, nil, fmt.Errorf("store: load all profiles: %w", err)
	}
	defer rows.Close()

	profiles, err := scanProfileRows(rows)
	if err != nil {
		return ManagerData{}, nil, nil, err
	}

	return m, games, profiles, nil
}

func scanProfileRows(rows *sql.Rows) ([]ProfileData, error) {
	var out []ProfileData
	for rows.Next() {
		var p ProfileData
		var ignoredJSON, customArgsJSON, modsJSON string
		var customArgsEnabled int
		if err := rows.Scan(&p.ID, &p.GameID, &p.Name, &p.Path, &ignoredJSON, &customArgsJSON, &customArgsEnabled, &modsJSON); err != nil {
			return nil, fmt.Errorf("store: scan profile row: %w", err)
		}
		p.CustomArgsEnabled = customArgsEnabled != 0

		if err := json.Unmarshal([]byte(ignoredJSON), &p.IgnoredUpdates); err != nil {
			return nil, fmt.Errorf("store: decode ignored updates for profile %d: %w", p.ID, err)
		}
		if err := json.Unmarshal([]byte(customArgsJSON), &p.CustomArgs); err != nil {
			return nil, fmt.Errorf("store: decode custom args for profile %d: %w", p.ID, err)
		}
		if err := json.Unmarshal([]byte(modsJSON), &p.Mods); err != nil {
			return nil, fmt.Errorf("store: decode mods for profile %d: %w", p.ID, err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func orEmptyMods(m []profile.ProfileMod) []profile.ProfileMod {
	if m == nil {
		return []profile.ProfileMod{}
	}
	return m
}
