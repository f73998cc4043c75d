package manager

import (
	"context"
	"fmt"
	"time"

	"github.com/galeproject/gale/internal/paths"
	"github.com/galeproject/gale/internal/queue"
	"github.com/galeproject/gale/internal/registry"
)

// refreshInterval is how often the background loop re-fetches a game's
// registry index.
const refreshInterval = 15 * time.Minute

// RefreshRegistry fetches a game's full package index from Thunderstore and
// writes it back to the on-disk cache, replacing the in-memory index in
// place so the game's running install queue (which holds its own pointer
// to the same *registry.Index) observes the update without needing to be
// rebuilt. The on-disk cache is only rewritten after a complete fetch,
// never partially.
func (m *Manager) RefreshRegistry(ctx context.Context, gameSlug string, onProgress registry.ProgressFunc) error {
	m.mu.Lock()
	rt, err := m.runtimeFor(gameSlug)
	fetcher := m.registryClient
	m.mu.Unlock()
	if err != nil {
		return err
	}

	fresh, err := fetcher.Fetch(ctx, gameSlug, onProgress)
	if err != nil {
		return fmt.Errorf("manager: refresh registry for %s: %w", gameSlug, err)
	}

	cachePath := registry.CachePath(paths.DataDir(gameSlug))
	if err := registry.SaveCache(cachePath, fresh); err != nil {
		return fmt.Errorf("manager: save registry cache for %s: %w", gameSlug, err)
	}

	m.mu.Lock()
	*rt.idx = *fresh
	m.mu.Unlock()
	return nil
}

// startRegistryRefreshLoop launches the background goroutine that
// periodically re-fetches a game's registry once it becomes managed. It
// exits when ctx is cancelled (process shutdown).
func (m *Manager) startRegistryRefreshLoop(ctx context.Context, gameSlug string) {
	go func() {
		ticker := time.NewTicker(refreshInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				_ = m.RefreshRegistry(ctx, gameSlug, nil)
			}
		}
	}()
}

// ResolveInstall resolves an "Owner-Name" or "Owner-Name-Version" string
// against a game's registry index into an install instruction, picking the
// latest version when the string carries none.
func (m *Manager) ResolveInstall(gameSlug, spec string) (queue.ModInstall, error) {
	m.mu.Lock()
	rt, err := m.runtimeFor(gameSlug)
	m.mu.Unlock()
	if err != nil {
		return queue.ModInstall{}, err
	}

	bm, err := rt.idx.FindByIdentStr(spec)
	if err != nil {
		p, perr := rt.idx.FindPackage(spec)
		if perr != nil {
			return queue.ModInstall{}, fmt.Errorf("manager: no package matches %q", spec)
		}
		latest, ok := p.Latest()
		if !ok {
			return queue.ModInstall{}, fmt.Errorf("manager: package %q has no versions", spec)
		}
		bm = registry.BorrowedMod{Package: p, Version: latest}
	}

	return queue.ModInstall{
		Ident:       bm.Ident(),
		PackageUUID: bm.Package.UUID,
		FileSize:    bm.Version.FileSize,
		Enabled:     true,
		Index:       -1,
		InstallTime: time.Now(),
	}, nil
}
