package profile

import (
	"fmt"

	"github.com/galeproject/gale/internal/game"
)

// ModManager is the root aggregate: every managed game plus which one is
// currently active.
type ModManager struct {
	Games      map[string]*ManagedGame `json:"games"` // keyed by game slug
	ActiveGame string                  `json:"activeGame"`
}

// NewModManager returns an empty manager defaulting to game.DefaultSlug.
func NewModManager() *ModManager {
	return &ModManager{Games: make(map[string]*ManagedGame), ActiveGame: game.DefaultSlug}
}

// EnsureGame returns the ManagedGame for g, creating it (with a default
// profile) if this is the first time the game has been managed.
func (m *ModManager) EnsureGame(g game.Game, installPath, profilesDir string) (*ManagedGame, error) {
	if mg, ok := m.Games[g.Slug]; ok {
		return mg, nil
	}

	mg := &ManagedGame{
		ID:          int64(len(m.Games) + 1),
		Game:        g,
		GameSlug:    g.Slug,
		Path:        installPath,
		ProfilesDir: profilesDir,
	}
	if _, err := mg.CreateProfile("Default", ""); err != nil {
		return nil, fmt.Errorf("profile: create default profile for %s: %w", g.Slug, err)
	}

	m.Games[g.Slug] = mg
	return mg, nil
}

// SetActiveGame switches the active game, requiring it to already be
// managed.
func (m *ModManager) SetActiveGame(slug string) error {
	if _, ok := m.Games[slug]; !ok {
		return fmt.Errorf("profile: game %q is not managed", slug)
	}
	m.ActiveGame = slug
	return nil
}

// Active returns the currently active ManagedGame.
func (m *ModManager) Active() (*ManagedGame, error) {
	mg, ok := m.Games[m.ActiveGame]
	if !ok {
		return nil, fmt.Errorf("profile: active game %q is not managed", m.ActiveGame)
	}
	return mg, nil
}

// FavoriteGame toggles a managed game's favorite flag.
func (m *ModManager) FavoriteGame(slug string, favorite bool) error {
	mg, ok := m.Games[slug]
	if !ok {
		return fmt.Errorf("profile: game %q is not managed", slug)
	}
	mg.Favorite = favorite
	return nil
}
