package manager

import (
	"context"
	"fmt"
	"time"

	"github.com/galeproject/gale/internal/ident"
	"github.com/galeproject/gale/internal/paths"
	"github.com/galeproject/gale/internal/profile"
	"github.com/galeproject/gale/internal/queue"
	"github.com/galeproject/gale/internal/registry"
)

// profileTarget adapts a *profile.Profile plus a Manager save callback to
// the queue.ProfileTarget interface. The queue
// package can't import internal/profile directly (profile doesn't need to
// know about the install queue), so this is the seam between the two.
type profileTarget struct {
	m        *Manager
	ctx      context.Context
	gameID   int64
	gameSlug string
	p        *profile.Profile
}

func (t *profileTarget) Path() string { return t.p.Path }

func (t *profileTarget) AppendMod(inst queue.ModInstall, fullName string) string {
	pm := profile.ProfileMod{
		UUID:        inst.PackageUUID,
		Variant:     profile.VariantThunderstore,
		Ident:       inst.Ident,
		Enabled:     inst.Enabled,
		InstallTime: inst.InstallTime,
	}
	uuid := t.p.AppendProfileMod(pm)

	if last := len(t.p.Mods) - 1; inst.Index >= 0 && inst.Index < last {
		_ = t.p.Reorder(uuid, inst.Index-last)
	}
	return uuid
}

func (t *profileTarget) RemoveByUUID(uuid string) { t.p.RemoveByUUID(uuid) }

func (t *profileTarget) ForceRemove(uuid string) error {
	inst, err := t.m.installerForGame(t.gameSlug)
	if err != nil {
		return err
	}
	return t.p.ForceRemoveMod(uuid, inst)
}

func (t *profileTarget) Save() error { return t.m.persistProfile(t.ctx, t.gameID, t.p) }

// findProfile locates a profile by id within a ManagedGame, returning a
// pointer into its Profiles slice so mutations stick.
func findProfile(mg *profile.ManagedGame, profileID int64) *profile.Profile {
	for i := range mg.Profiles {
		if mg.Profiles[i].ID == profileID {
			return &mg.Profiles[i]
		}
	}
	return nil
}

func (m *Manager) gameAndProfile(gameSlug string, profileID int64) (*profile.ManagedGame, *profile.Profile, error) {
	mg, ok := m.mm.Games[gameSlug]
	if !ok {
		return nil, nil, fmt.Errorf("manager: unknown managed game %q", gameSlug)
	}
	p := findProfile(mg, profileID)
	if p == nil {
		return nil, nil, fmt.Errorf("manager: no profile %d for game %q", profileID, gameSlug)
	}
	return mg, p, nil
}

// Events returns the progress event stream for a game's install queue.
func (m *Manager) Events(gameSlug string) (<-chan queue.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rt, err := m.runtimeFor(gameSlug)
	if err != nil {
		return nil, err
	}
	return rt.queue.Events(), nil
}

// InstallMods pushes a batch of installs against a profile. When withDeps is
// true, installs are first expanded with the registry's transitive
// dependency closure via profile.MissingDeps + queue.PushWithDeps. The
// manager's lock is released before the queue does any network or disk
// I/O; no command holds it while blocked.
func (m *Manager) InstallMods(ctx context.Context, gameSlug string, profileID int64, installs []queue.ModInstall, withDeps bool, opts queue.PushOptions) error {
	m.mu.Lock()
	mg, p, err := m.gameAndProfile(gameSlug, profileID)
	if err != nil {
		m.mu.Unlock()
		return err
	}
	rt, err := m.runtimeFor(gameSlug)
	if err != nil {
		m.mu.Unlock()
		return err
	}

	// A mod already in the profile is an invariant violation, not a
	// silent re-install, unless the caller explicitly asked to overwrite.
	for _, in := range installs {
		if in.Overwrite {
			continue
		}
		if i := p.IndexOf(in.PackageUUID); i >= 0 {
			m.mu.Unlock()
			return fmt.Errorf("manager: %s is already installed in profile %q", in.Ident.FullName(), p.Name)
		}
	}

	batch := installs
	if withDeps {
		roots := make([]ident.VersionIdent, len(installs))
		for i, in := range installs {
			roots[i] = in.Ident
		}

		var deps []queue.ModInstall
		for _, bm := range p.MissingDeps(roots, rt.idx) {
			deps = append(deps, queue.ModInstall{
				Ident:       bm.Ident(),
				PackageUUID: bm.Package.UUID,
				FileSize:    bm.Version.FileSize,
				Enabled:     true,
				Index:       -1,
				InstallTime: time.Now(),
			})
		}
		batch = queue.PushWithDeps(installs, deps)
	}

	cancelCh := make(chan struct{})
	rt.cancelCh = cancelCh
	opts.Cancel = cancelCh

	target := &profileTarget{m: m, ctx: ctx, gameID: mg.ID, gameSlug: gameSlug, p: p}
	q := rt.queue
	m.mu.Unlock()

	if err := q.Push(ctx, target, batch, opts); err != nil {
		return err
	}

	// Write the registry back to its on-disk cache once the queue has
	// drained.
	m.mu.Lock()
	idx := rt.idx
	m.mu.Unlock()
	_ = registry.SaveCache(registry.CachePath(paths.DataDir(gameSlug)), idx)

	return nil
}

// CancelInstall signals the in-flight install batch for a game's queue to
// abort at its next checkpoint. Cancelling when nothing is running,
// including a batch that already completed, is a no-op.
func (m *Manager) CancelInstall(gameSlug string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rt, ok := m.runtimes[gameSlug]
	if !ok || rt.cancelCh == nil {
		return nil
	}
	select {
	case <-rt.cancelCh:
		// already closed/cancelled
	default:
		close(rt.cancelCh)
	}
	return nil
}

// GetDownloadSize sums the archive size of every install not already
// present in the game's cache, so a host can show a download estimate
// before committing to InstallMods.
func (m *Manager) GetDownloadSize(gameSlug string, installs []queue.ModInstall) (int64, error) {
	m.mu.Lock()
	rt, err := m.runtimeFor(gameSlug)
	m.mu.Unlock()
	if err != nil {
		return 0, err
	}

	var total int64
	for _, in := range installs {
		if rt.cache.Has(in.Ident) {
			continue
		}
		total += in.FileSize
	}
	return total, nil
}

// ClearDownloadCache wipes a game's entire content-addressed package cache.
func (m *Manager) ClearDownloadCache(gameSlug string) error {
	m.mu.Lock()
	rt, err := m.runtimeFor(gameSlug)
	m.mu.Unlock()
	if err != nil {
		return err
	}
	return rt.cache.Clear()
}
