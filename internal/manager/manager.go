// Package manager is the ModManager command surface: it wires together
// the registry, cache, queue, installer, profile, store, thunderstore,
// exportpkg, and update packages into the operations a CLI or any other
// embedding host actually calls.
package manager

import (
	"context"
	"fmt"
	"sync"

	"github.com/galeproject/gale/internal/cache"
	"github.com/galeproject/gale/internal/game"
	"github.com/galeproject/gale/internal/installer"
	"github.com/galeproject/gale/internal/paths"
	"github.com/galeproject/gale/internal/profile"
	"github.com/galeproject/gale/internal/queue"
	"github.com/galeproject/gale/internal/registry"
	"github.com/galeproject/gale/internal/store"
	"github.com/galeproject/gale/internal/thunderstore"
)

// gameRuntime holds the per-game objects that depend on that game's data
// directory: its registry index, its package cache, and its install queue.
type gameRuntime struct {
	idx   *registry.Index
	cache *cache.Cache
	queue *queue.Queue

	// cancelCh, when non-nil, is closed by CancelInstall to signal the
	// worker to abort the in-flight batch at its next checkpoint.
	cancelCh chan struct{}
}

// Manager is the process-wide singleton the spec's §5 "Process-wide
// state" describes: one ModManager, one registry per game, one store
// connection, held under a single exclusive lock.
type Manager struct {
	mu sync.Mutex

	store          *store.Store
	mm             *profile.ModManager
	catalog        *game.Catalog
	client         *thunderstore.Client
	registryClient *registry.Client
	runtimes       map[string]*gameRuntime // keyed by game slug

	refreshCtx    context.Context
	stopRefreshes context.CancelFunc
}

// Open wires up a Manager: opens the store (running migrations), loads the
// bundled game catalog, hydrates the ModManager from persisted state, and
// prepares a Thunderstore client against host.
func Open(ctx context.Context, host string) (*Manager, error) {
	st, err := store.Open(ctx, paths.StateDBPath())
	if err != nil {
		return nil, err
	}

	catalog, err := game.Load()
	if err != nil {
		st.Close()
		return nil, err
	}

	refreshCtx, stop := context.WithCancel(context.Background())

	m := &Manager{
		store:          st,
		mm:             profile.NewModManager(),
		catalog:        catalog,
		client:         thunderstore.New(host),
		registryClient: registry.NewClient(host),
		runtimes:       make(map[string]*gameRuntime),
		refreshCtx:     refreshCtx,
		stopRefreshes:  stop,
	}

	if err := m.hydrate(ctx); err != nil {
		stop()
		st.Close()
		return nil, err
	}
	if err := m.loadAuth(ctx); err != nil {
		stop()
		st.Close()
		return nil, err
	}

	for slug := range m.mm.Games {
		m.startRegistryRefreshLoop(m.refreshCtx, slug)
	}

	return m, nil
}

// Close stops background registry refresh loops and releases the
// underlying store connection.
func (m *Manager) Close() error {
	m.stopRefreshes()
	return m.store.Close()
}

// hydrate loads manager/games/profiles from the store into the in-memory
// ModManager.
func (m *Manager) hydrate(ctx context.Context) error {
	managerData, games, profiles, err := m.store.LoadAll(ctx)
	if err != nil {
		return err
	}

	profilesByGame := make(map[int64][]profile.Profile)
	for _, pd := range profiles {
		profilesByGame[pd.GameID] = append(profilesByGame[pd.GameID], profile.Profile{
			ID:                pd.ID,
			Name:              pd.Name,
			Path:              pd.Path,
			Mods:              pd.Mods,
			IgnoredUpdates:    pd.IgnoredUpdates,
			CustomArgs:        pd.CustomArgs,
			CustomArgsEnabled: pd.CustomArgsEnabled,
		})
	}

	for _, gd := range games {
		g, ok := m.catalog.Get(gd.Slug)
		if !ok {
			continue // catalog no longer lists a previously-managed game; skip rather than fail load
		}

		mg := &profile.ManagedGame{
			ID:              gd.ID,
			Game:            g,
			GameSlug:        gd.Slug,
			Path:            gd.Path,
			Profiles:        profilesByGame[gd.ID],
			ActiveProfileID: gd.ActiveProfileID,
			Favorite:        gd.Favorite,
			ProfilesDir:     paths.ProfilesDir(gd.Slug),
		}
		m.mm.Games[gd.Slug] = mg
	}

	if managerData.ActiveGameSlug != "" {
		m.mm.ActiveGame = managerData.ActiveGameSlug
	}

	return nil
}

// Catalog exposes the static game/mod-loader catalog to callers that need
// to list supported games.
func (m *Manager) Catalog() *game.Catalog { return m.catalog }

// EnsureGame registers (or returns the existing) ManagedGame for slug,
// persisting it and making it active if it's newly created.
func (m *Manager) EnsureGame(ctx context.Context, slug, installPath string) (*profile.ManagedGame, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	g, ok := m.catalog.Get(slug)
	if !ok {
		return nil, fmt.Errorf("manager: unknown game %q", slug)
	}

	_, existed := m.mm.Games[slug]
	mg, err := m.mm.EnsureGame(g, installPath, paths.ProfilesDir(slug))
	if err != nil {
		return nil, err
	}

	if _, err := m.runtimeFor(slug); err != nil {
		return nil, err
	}

	if err := m.persistGame(ctx, mg); err != nil {
		return nil, err
	}
	if !existed {
		for i := range mg.Profiles {
			if err := m.persistProfile(ctx, mg.ID, &mg.Profiles[i]); err != nil {
				return nil, err
			}
		}
		m.mm.ActiveGame = slug
	}
	if err := m.store.SaveManager(ctx, m.mm.ActiveGame); err != nil {
		return nil, err
	}

	m.startRegistryRefreshLoop(m.refreshCtx, slug)
	return mg, nil
}

// SetActiveGame switches the active game and persists the change.
func (m *Manager) SetActiveGame(ctx context.Context, slug string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.mm.SetActiveGame(slug); err != nil {
		return err
	}
	return m.store.SaveManager(ctx, m.mm.ActiveGame)
}

// ActiveGame returns the currently active ManagedGame.
func (m *Manager) ActiveGame() (*profile.ManagedGame, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.mm.Active()
}

// FavoriteGame toggles a game's favorite flag and persists it.
func (m *Manager) FavoriteGame(ctx context.Context, slug string, favorite bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.mm.FavoriteGame(slug, favorite); err != nil {
		return err
	}
	mg := m.mm.Games[slug]
	return m.persistGame(ctx, mg)
}

func (m *Manager) persistGame(ctx context.Context, mg *profile.ManagedGame) error {
	id, err := m.store.SaveGame(ctx, store.GameData{
		ID:              mg.ID,
		Slug:            mg.GameSlug,
		Path:            mg.Path,
		Favorite:        mg.Favorite,
		ActiveProfileID: mg.ActiveProfileID,
	})
	if err != nil {
		return err
	}
	mg.ID = id
	return nil
}

// runtimeFor lazily builds the registry/cache/queue trio for a game slug.
func (m *Manager) runtimeFor(slug string) (*gameRuntime, error) {
	if rt, ok := m.runtimes[slug]; ok {
		return rt, nil
	}

	c, err := cache.New(paths.CacheDir(slug))
	if err != nil {
		return nil, fmt.Errorf("manager: open cache for %s: %w", slug, err)
	}

	idx := registry.NewIndex()
	if cached, err := registry.LoadCache(registry.CachePath(paths.DataDir(slug))); err == nil && cached != nil {
		idx = cached
	}

	rt := &gameRuntime{idx: idx, cache: c}
	rt.queue = queue.New(c, m.client, idx, m.installerForSlug(slug))
	m.runtimes[slug] = rt
	return rt, nil
}

// installerForSlug returns an installerFor closure bound to a specific
// game's ModLoader, the shape internal/queue.New requires.
func (m *Manager) installerForSlug(slug string) func(queue.ProfileTarget) (installer.Installer, error) {
	return func(queue.ProfileTarget) (installer.Installer, error) {
		g, ok := m.catalog.Get(slug)
		if !ok {
			return nil, fmt.Errorf("manager: unknown game %q", slug)
		}
		return installer.For(g.ModLoader)
	}
}

// Persist saves a single profile through the store, the callback
// queue.ProfileTarget.Save ultimately invokes.
func (m *Manager) persistProfile(ctx context.Context, gameID int64, p *profile.Profile) error {
	return m.store.SaveProfile(ctx, store.ProfileData{
		ID:                p.ID,
		GameID:            gameID,
		Name:              p.Name,
		Path:              p.Path,
		IgnoredUpdates:    p.IgnoredUpdates,
		CustomArgs:        p.CustomArgs,
		CustomArgsEnabled: p.CustomArgsEnabled,
		Mods:              p.Mods,
	})
}
