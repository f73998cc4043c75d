package manager

import (
	"context"
	"fmt"

	"github.com/galeproject/gale/internal/installer"
	"github.com/galeproject/gale/internal/profile"
)

// QueryProfile returns a snapshot of a profile's mod list, the
// `query_profile` command surface entry.
func (m *Manager) QueryProfile(gameSlug string, profileID int64) ([]profile.ProfileMod, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, p, err := m.gameAndProfile(gameSlug, profileID)
	if err != nil {
		return nil, err
	}
	return append([]profile.ProfileMod(nil), p.Mods...), nil
}

// IsModInstalled reports whether a profile already has a mod with the given
// uuid.
func (m *Manager) IsModInstalled(gameSlug string, profileID int64, uuid string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, p, err := m.gameAndProfile(gameSlug, profileID)
	if err != nil {
		return false, err
	}
	return p.IndexOf(uuid) >= 0, nil
}

// installerForGame resolves the loader-specific Installer for a managed game,
// the adapter every mod-mutation command needs to call into
// internal/profile's Uninstaller interface.
func (m *Manager) installerForGame(gameSlug string) (installer.Installer, error) {
	g, ok := m.catalog.Get(gameSlug)
	if !ok {
		return nil, fmt.Errorf("manager: unknown game %q", gameSlug)
	}
	return installer.For(g.ModLoader)
}

// RemoveMod deletes a mod from a profile, returning *profile.ConfirmError if
// enabled dependants exist and force is false.
func (m *Manager) RemoveMod(ctx context.Context, gameSlug string, profileID int64, uuid string, force bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	mg, p, err := m.gameAndProfile(gameSlug, profileID)
	if err != nil {
		return err
	}
	rt, err := m.runtimeFor(gameSlug)
	if err != nil {
		return err
	}
	inst, err := m.installerForGame(gameSlug)
	if err != nil {
		return err
	}

	if force {
		if err := p.ForceRemoveMod(uuid, inst); err != nil {
			return err
		}
	} else if err := p.RemoveMod(uuid, rt.idx, inst, false); err != nil {
		return err
	}
	return m.persistProfile(ctx, mg.ID, p)
}

// ToggleMod flips a mod's enabled state, returning *profile.ConfirmError if
// the toggle would leave a disabled dependency or break an enabled
// dependant and force is false.
func (m *Manager) ToggleMod(ctx context.Context, gameSlug string, profileID int64, uuid string, force bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	mg, p, err := m.gameAndProfile(gameSlug, profileID)
	if err != nil {
		return err
	}
	rt, err := m.runtimeFor(gameSlug)
	if err != nil {
		return err
	}
	inst, err := m.installerForGame(gameSlug)
	if err != nil {
		return err
	}

	if force {
		if err := p.ForceToggleMod(uuid, inst); err != nil {
			return err
		}
	} else if err := p.ToggleMod(uuid, rt.idx, inst, false); err != nil {
		return err
	}
	return m.persistProfile(ctx, mg.ID, p)
}

// ForceRemoveMods and ForceToggleMods apply the unconditional mutation to
// every uuid given, used after a host has already shown the user a
// *profile.ConfirmError and received confirmation.
func (m *Manager) ForceRemoveMods(ctx context.Context, gameSlug string, profileID int64, uuids []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	mg, p, err := m.gameAndProfile(gameSlug, profileID)
	if err != nil {
		return err
	}
	inst, err := m.installerForGame(gameSlug)
	if err != nil {
		return err
	}

	for _, uuid := range uuids {
		if err := p.ForceRemoveMod(uuid, inst); err != nil {
			return err
		}
	}
	return m.persistProfile(ctx, mg.ID, p)
}

func (m *Manager) ForceToggleMods(ctx context.Context, gameSlug string, profileID int64, uuids []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	mg, p, err := m.gameAndProfile(gameSlug, profileID)
	if err != nil {
		return err
	}
	inst, err := m.installerForGame(gameSlug)
	if err != nil {
		return err
	}

	for _, uuid := range uuids {
		if err := p.ForceToggleMod(uuid, inst); err != nil {
			return err
		}
	}
	return m.persistProfile(ctx, mg.ID, p)
}

// SetAllModsState force-sets every mod in a profile to the same enabled
// state in one pass.
func (m *Manager) SetAllModsState(ctx context.Context, gameSlug string, profileID int64, enabled bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	mg, p, err := m.gameAndProfile(gameSlug, profileID)
	if err != nil {
		return err
	}
	inst, err := m.installerForGame(gameSlug)
	if err != nil {
		return err
	}

	for _, mod := range append([]profile.ProfileMod(nil), p.Mods...) {
		if mod.Enabled != enabled {
			if err := p.ForceToggleMod(mod.UUID, inst); err != nil {
				return err
			}
		}
	}
	return m.persistProfile(ctx, mg.ID, p)
}

// RemoveDisabledMods force-removes every currently-disabled mod from a
// profile.
func (m *Manager) RemoveDisabledMods(ctx context.Context, gameSlug string, profileID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	mg, p, err := m.gameAndProfile(gameSlug, profileID)
	if err != nil {
		return err
	}
	inst, err := m.installerForGame(gameSlug)
	if err != nil {
		return err
	}

	for _, mod := range append([]profile.ProfileMod(nil), p.Mods...) {
		if !mod.Enabled {
			if err := p.ForceRemoveMod(mod.UUID, inst); err != nil {
				return err
			}
		}
	}
	return m.persistProfile(ctx, mg.ID, p)
}

// GetDependants returns every mod in a profile that directly or
// transitively depends on uuid.
func (m *Manager) GetDependants(gameSlug string, profileID int64, uuid string) ([]profile.Dependant, error) {
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
	return p.Dependants(uuid, rt.idx), nil
}
