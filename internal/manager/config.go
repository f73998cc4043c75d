package manager

import (
	"fmt"
	"os"

	"github.com/galeproject/gale/internal/config"
)

// GetConfigFiles scans a profile's config directory and returns every
// classified config file, refreshing mod links so a host can show which
// file belongs to which installed mod.
func (m *Manager) GetConfigFiles(gameSlug string, profileID int64) ([]config.CachedFile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	g, ok := m.catalog.Get(gameSlug)
	if !ok {
		return nil, fmt.Errorf("manager: unknown game %q", gameSlug)
	}
	_, p, err := m.gameAndProfile(gameSlug, profileID)
	if err != nil {
		return nil, err
	}

	cc := config.NewCache()
	relDir := g.ModLoader.ConfigPath()
	if relDir == "" {
		return nil, nil
	}
	if err := cc.Refresh(p.Path, relDir, g.ModLoader); err != nil {
		return nil, fmt.Errorf("manager: refresh config cache: %w", err)
	}

	links := make([]struct{ UUID, Name string }, 0, len(p.Mods))
	for _, mod := range p.Mods {
		links = append(links, struct{ UUID, Name string }{mod.UUID, mod.FullName()})
	}
	cc.RefreshLinks(links)

	return cc.Sorted(), nil
}

// SetConfigEntry mutates a single BepInEx entry or GDWeave key and rewrites
// the file in full.
func (m *Manager) SetConfigEntry(gameSlug string, profileID int64, relativePath, section, entry, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, p, err := m.gameAndProfile(gameSlug, profileID)
	if err != nil {
		return err
	}

	path := profileConfigPath(p, relativePath)
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("manager: read config file %s: %w", path, err)
	}

	switch {
	case isGDWeaveFile(relativePath):
		f, err := config.ParseGDWeave(data)
		if err != nil {
			return fmt.Errorf("manager: parse %s: %w", path, err)
		}
		f.Set(entry, value)
		out, err := f.Serialize()
		if err != nil {
			return fmt.Errorf("manager: serialize %s: %w", path, err)
		}
		return os.WriteFile(path, out, 0o644)

	default:
		f, err := config.ParseBepInEx(data)
		if err != nil {
			return fmt.Errorf("manager: parse %s: %w", path, err)
		}
		if err := f.Set(section, entry, value); err != nil {
			return err
		}
		return os.WriteFile(path, f.Serialize(), 0o644)
	}
}

// ResetConfigEntry restores a BepInEx entry to its declared default value;
// GDWeave entries have no declared default and always return an
// Unsupported-class error.
func (m *Manager) ResetConfigEntry(gameSlug string, profileID int64, relativePath, section, entry string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, p, err := m.gameAndProfile(gameSlug, profileID)
	if err != nil {
		return err
	}

	path := profileConfigPath(p, relativePath)
	if isGDWeaveFile(relativePath) {
		return fmt.Errorf("manager: reset is unsupported for GDWeave config files")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("manager: read config file %s: %w", path, err)
	}
	f, err := config.ParseBepInEx(data)
	if err != nil {
		return fmt.Errorf("manager: parse %s: %w", path, err)
	}
	if err := f.Reset(section, entry); err != nil {
		return err
	}
	return os.WriteFile(path, f.Serialize(), 0o644)
}

// OpenConfigFile returns the absolute path of a profile-relative config
// file, for a host to hand to its platform's "open file" call.
func (m *Manager) OpenConfigFile(gameSlug string, profileID int64, relativePath string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, p, err := m.gameAndProfile(gameSlug, profileID)
	if err != nil {
		return "", err
	}
	return profileConfigPath(p, relativePath), nil
}

// DeleteConfigFile removes a profile-relative config file outright.
func (m *Manager) DeleteConfigFile(gameSlug string, profileID int64, relativePath string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, p, err := m.gameAndProfile(gameSlug, profileID)
	if err != nil {
		return err
	}
	path := profileConfigPath(p, relativePath)
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("manager: delete config file %s: %w", path, err)
	}
	return nil
}

func isGDWeaveFile(relativePath string) bool {
	return len(relativePath) > 5 && relativePath[len(relativePath)-5:] == ".json"
}
