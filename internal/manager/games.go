package manager

import (
	"fmt"
	"sort"

	"github.com/galeproject/gale/internal/profile"
)

// GameInfo is a read-only snapshot of a managed game for listing commands,
// the `get_game_info` command surface entry.
type GameInfo struct {
	ID       int64
	Slug     string
	Name     string
	Path     string
	Loader   string
	Active   bool
	Favorite bool
	Profiles int
}

// GamesInfo lists every managed game, favorites first, then by slug.
func (m *Manager) GamesInfo() []GameInfo {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]GameInfo, 0, len(m.mm.Games))
	for slug, mg := range m.mm.Games {
		out = append(out, GameInfo{
			ID:       mg.ID,
			Slug:     slug,
			Name:     mg.Game.Name,
			Path:     mg.Path,
			Loader:   string(mg.Game.ModLoader.Kind),
			Active:   slug == m.mm.ActiveGame,
			Favorite: mg.Favorite,
			Profiles: len(mg.Profiles),
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Favorite != out[j].Favorite {
			return out[i].Favorite
		}
		return out[i].Slug < out[j].Slug
	})
	return out
}

// ManagedGame returns the ManagedGame for a slug, erroring if the game has
// never been managed.
func (m *Manager) ManagedGame(slug string) (*profile.ManagedGame, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	mg, ok := m.mm.Games[slug]
	if !ok {
		return nil, fmt.Errorf("manager: unknown managed game %q", slug)
	}
	return mg, nil
}
