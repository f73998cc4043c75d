// Package paths resolves Gale's on-disk directories via XDG base
// directories, keeping the data/config/cache/state split in the
// platform-standard locations.
package paths

import (
	"path/filepath"

	"github.com/adrg/xdg"
)

const appName = "gale"

// DataDir returns the root data directory for a game, e.g.
// "<xdg-data>/gale/<slug>".
func DataDir(gameSlug string) string {
	return filepath.Join(xdg.DataHome, appName, gameSlug)
}

// CacheDir returns the package cache directory for a game.
func CacheDir(gameSlug string) string {
	return filepath.Join(DataDir(gameSlug), "cache")
}

// LocalModsDir returns the content-addressed blob store root for locally
// imported mod archives.
func LocalModsDir(gameSlug string) string {
	return filepath.Join(DataDir(gameSlug), "localmods")
}

// LocalModsTmpDir returns the scratch directory blobstore.Store uses while
// ingesting a local mod archive, before it's atomically renamed into place.
func LocalModsTmpDir(gameSlug string) string {
	return filepath.Join(LocalModsDir(gameSlug), "tmp")
}

// ProfilesDir returns the directory profiles for a game live under.
func ProfilesDir(gameSlug string) string {
	return filepath.Join(DataDir(gameSlug), "profiles")
}

// ConfigFile returns the path to Gale's own CLI/viper configuration file.
func ConfigFile() string {
	return filepath.Join(xdg.ConfigHome, appName, "config.toml")
}

// ConfigDir returns Gale's config directory.
func ConfigDir() string {
	return filepath.Join(xdg.ConfigHome, appName)
}

// StateDBPath returns the path to the SQLite persistence file.
func StateDBPath() string {
	return filepath.Join(xdg.StateHome, appName, "gale.db")
}

// StateDir returns Gale's XDG state directory (managers, games, prefs).
func StateDir() string {
	return filepath.Join(xdg.StateHome, appName)
}
