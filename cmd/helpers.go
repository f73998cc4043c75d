package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/viper"

	"github.com/galeproject/gale/internal/manager"
	"github.com/galeproject/gale/internal/profile"
)

// openManager wires up the process-wide Manager against the configured
// Thunderstore host. Every command opens and closes its own instance.
func openManager(ctx context.Context) (*manager.Manager, error) {
	m, err := manager.Open(ctx, viper.GetString("thunderstore_host"))
	if err != nil {
		return nil, fmt.Errorf("error opening manager state: %w", err)
	}
	return m, nil
}

// resolveGame picks the managed game a command operates on: the --game
// flag when given, otherwise the active game.
func resolveGame(m *manager.Manager, flag string) (*profile.ManagedGame, error) {
	if flag == "" {
		mg, err := m.ActiveGame()
		if err != nil {
			return nil, fmt.Errorf("no active game selected; run `gale games set-active ...` or pass --game")
		}
		return mg, nil
	}

	for _, info := range m.GamesInfo() {
		if info.Slug == flag {
			mg, err := m.ManagedGame(flag)
			if err != nil {
				return nil, err
			}
			return mg, nil
		}
	}
	return nil, fmt.Errorf("game %q is not managed; run `gale games add %s <install-path>` first", flag, flag)
}

// resolveModUUID accepts either a ProfileMod uuid or an Owner-Name full
// name and returns the uuid of the matching installed mod.
func resolveModUUID(m *manager.Manager, gameSlug string, profileID int64, arg string) (string, error) {
	mods, err := m.QueryProfile(gameSlug, profileID)
	if err != nil {
		return "", err
	}
	for _, mod := range mods {
		if mod.UUID == arg || mod.FullName() == arg {
			return mod.UUID, nil
		}
	}
	return "", fmt.Errorf("no installed mod matches %q", arg)
}

// resolveProfile picks the profile a command operates on: the --profile
// flag (numeric id or name) when given, otherwise the game's active
// profile.
func resolveProfile(mg *profile.ManagedGame, flag string) (int64, error) {
	if flag == "" {
		return mg.ActiveProfileID, nil
	}

	if id, err := strconv.ParseInt(flag, 10, 64); err == nil {
		for _, p := range mg.Profiles {
			if p.ID == id {
				return id, nil
			}
		}
	}

	for _, p := range mg.Profiles {
		if p.Name == flag {
			return p.ID, nil
		}
	}
	return 0, fmt.Errorf("no profile %q for game %q", flag, mg.GameSlug)
}
