package manager

import (
	"context"
	"fmt"

	"github.com/galeproject/gale/internal/queue"
	"github.com/galeproject/gale/internal/update"
)

// CheckUpdates reports every update available for a profile's Thunderstore
// mods, including ignored ones (marked Ignored).
func (m *Manager) CheckUpdates(gameSlug string, profileID int64) ([]update.Available, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, p, err := m.gameAndProfile(gameSlug, profileID)
	if err != nil {
		return nil, err
	}
	rt, err := m.runtimeFor(gameSlug)
	if err != nil {
		return nil, err
	}
	return update.Check(p, rt.idx), nil
}

// ChangeModVersion replaces an installed mod with a specific different
// version in place: the old files are uninstalled, the new version is
// queued for install at the same position with the same enabled state.
func (m *Manager) ChangeModVersion(ctx context.Context, gameSlug string, profileID int64, uuid string, newVersion string) error {
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
	inst, err := m.installerForGame(gameSlug)
	if err != nil {
		m.mu.Unlock()
		return err
	}

	i := p.IndexOf(uuid)
	if i < 0 {
		m.mu.Unlock()
		return fmt.Errorf("manager: no mod with uuid %q", uuid)
	}
	old := p.Mods[i]

	bm, err := rt.idx.FindMod(old.Ident.Owner(), old.Ident.Name(), newVersion)
	if err != nil {
		m.mu.Unlock()
		return fmt.Errorf("manager: change mod version: %w", err)
	}

	if err := p.ForceRemoveMod(uuid, inst); err != nil {
		m.mu.Unlock()
		return err
	}

	target := &profileTarget{m: m, ctx: ctx, gameID: mg.ID, gameSlug: gameSlug, p: p}
	q := rt.queue
	m.mu.Unlock()

	return q.Push(ctx, target, []queue.ModInstall{{
		Ident:       bm.Ident(),
		PackageUUID: old.UUID,
		FileSize:    bm.Version.FileSize,
		Enabled:     old.Enabled,
		Overwrite:   true,
		Index:       i,
	}}, queue.PushOptions{SendProgress: true})
}

// UpdateMods queues every pending (non-ignored) update for a profile,
// replacing each mod in place the same way ChangeModVersion does.
func (m *Manager) UpdateMods(ctx context.Context, gameSlug string, profileID int64) error {
	avail, err := m.CheckUpdates(gameSlug, profileID)
	if err != nil {
		return err
	}
	for _, a := range update.Pending(avail) {
		if err := m.ChangeModVersion(ctx, gameSlug, profileID, a.UUID, a.Latest.Version()); err != nil {
			return fmt.Errorf("manager: update %s: %w", a.FullName, err)
		}
	}
	return nil
}

// IgnoreUpdate adds or removes uuid from a profile's ignored-updates set
// and persists the change.
func (m *Manager) IgnoreUpdate(ctx context.Context, gameSlug string, profileID int64, uuid string, ignore bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	mg, p, err := m.gameAndProfile(gameSlug, profileID)
	if err != nil {
		return err
	}

	if ignore {
		update.Ignore(p, uuid)
	} else {
		update.Unignore(p, uuid)
	}
	return m.persistProfile(ctx, mg.ID, p)
}
