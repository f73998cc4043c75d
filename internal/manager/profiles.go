package manager

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/galeproject/gale/internal/profile"
)

// ProfileInfo is a read-only snapshot of a profile for listing commands.
type ProfileInfo struct {
	ID     int64
	Name   string
	Path   string
	Active bool
	Mods   int
}

// GetProfileInfo lists every profile for a managed game, the `get_profile_info`
// command surface entry.
func (m *Manager) GetProfileInfo(gameSlug string) ([]ProfileInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	mg, ok := m.mm.Games[gameSlug]
	if !ok {
		return nil, fmt.Errorf("manager: unknown managed game %q", gameSlug)
	}

	out := make([]ProfileInfo, 0, len(mg.Profiles))
	for _, p := range mg.Profiles {
		out = append(out, ProfileInfo{
			ID:     p.ID,
			Name:   p.Name,
			Path:   p.Path,
			Active: p.ID == mg.ActiveProfileID,
			Mods:   len(p.Mods),
		})
	}
	return out, nil
}

// CreateProfile creates a new profile for gameSlug and makes it active.
func (m *Manager) CreateProfile(ctx context.Context, gameSlug, name string) (*profile.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	mg, ok := m.mm.Games[gameSlug]
	if !ok {
		return nil, fmt.Errorf("manager: unknown managed game %q", gameSlug)
	}

	p, err := mg.CreateProfile(name, "")
	if err != nil {
		return nil, err
	}

	if err := m.persistProfile(ctx, mg.ID, p); err != nil {
		return nil, err
	}
	if err := m.persistGame(ctx, mg); err != nil {
		return nil, err
	}
	return p, nil
}

// DeleteProfile removes a profile's directory and excises it from the
// managed game, refusing to delete the last remaining profile for a game.
func (m *Manager) DeleteProfile(ctx context.Context, gameSlug string, profileID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	mg, ok := m.mm.Games[gameSlug]
	if !ok {
		return fmt.Errorf("manager: unknown managed game %q", gameSlug)
	}
	if len(mg.Profiles) <= 1 {
		return fmt.Errorf("manager: cannot delete the last profile for %q", gameSlug)
	}

	if err := mg.DeleteProfile(profileID); err != nil {
		return err
	}
	if err := m.store.DeleteProfile(ctx, mg.ID, profileID); err != nil {
		return err
	}
	return m.persistGame(ctx, mg)
}

// RenameProfile validates and applies a new name for a profile, persisting
// the rename.
func (m *Manager) RenameProfile(ctx context.Context, gameSlug string, profileID int64, newName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	mg, p, err := m.gameAndProfile(gameSlug, profileID)
	if err != nil {
		return err
	}

	if err := p.Rename(newName, mg.Profiles); err != nil {
		return err
	}
	return m.persistProfile(ctx, mg.ID, p)
}

// DuplicateProfile clones an existing profile's directory and mod list
// under a new name.
func (m *Manager) DuplicateProfile(ctx context.Context, gameSlug, name string, sourceID int64) (*profile.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	mg, ok := m.mm.Games[gameSlug]
	if !ok {
		return nil, fmt.Errorf("manager: unknown managed game %q", gameSlug)
	}

	p, err := mg.DuplicateProfile(name, sourceID)
	if err != nil {
		return nil, err
	}

	if err := m.persistProfile(ctx, mg.ID, p); err != nil {
		return nil, err
	}
	if err := m.persistGame(ctx, mg); err != nil {
		return nil, err
	}
	return p, nil
}

// SetActiveProfile switches a managed game's active profile, requiring the
// id to reference a real profile.
func (m *Manager) SetActiveProfile(ctx context.Context, gameSlug string, profileID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	mg, ok := m.mm.Games[gameSlug]
	if !ok {
		return fmt.Errorf("manager: unknown managed game %q", gameSlug)
	}
	if findProfile(mg, profileID) == nil {
		return fmt.Errorf("manager: no profile %d for game %q", profileID, gameSlug)
	}

	mg.ActiveProfileID = profileID
	return m.persistGame(ctx, mg)
}

// OpenProfileDir returns the filesystem path of a profile's directory,
// creating it first if a prior operation left it missing, for a host to
// hand to its platform's "open folder" call.
func (m *Manager) OpenProfileDir(gameSlug string, profileID int64) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, p, err := m.gameAndProfile(gameSlug, profileID)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(p.Path, 0o755); err != nil {
		return "", fmt.Errorf("manager: ensure profile dir %s: %w", p.Path, err)
	}
	return p.Path, nil
}

// profileConfigPath joins a profile's path with a relative subdirectory,
// a small helper shared by manager/config.go.
func profileConfigPath(p *profile.Profile, rel string) string {
	return filepath.Join(p.Path, rel)
}
