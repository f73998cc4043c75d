package installer

import (
	"archive/zip"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/galeproject/gale/internal/archive"
)

// fixedInstaller handles mod loaders with no Subdir routing:
// the whole archive (minus the ignore list) lands under a single fixed
// root, one directory per package.
type fixedInstaller struct {
	root string

	// flatten mirrors SeparateFlatten: archive subdirectories above the
	// mod's own directory are discarded rather than preserved.
	flatten bool
}

func (f *fixedInstaller) packageDir(profileDir, fullName string) string {
	return filepath.Join(profileDir, f.root, fullName)
}

func (f *fixedInstaller) Extract(zr *zip.Reader, fullName, profileDir string, warn archive.Warner) error {
	dest := f.packageDir(profileDir, fullName)

	if warn == nil {
		warn = func(string, ...any) {}
	}

	return archive.ForEachFile(zr, warn, func(relPath string, zf *zip.File) error {
		if ignoredTopLevelFiles[strings.ToLower(relPath)] {
			return nil
		}

		target := relPath
		if f.flatten {
			target = filepath.Base(relPath)
		}

		destPath, ok := archive.SafePath(dest, target)
		if !ok {
			warn("installer: mapped path %q escapes destination, dropping", target)
			return nil
		}
		return archive.ExtractFile(zf, destPath)
	})
}

func (f *fixedInstaller) Install(cacheDir, profileDir, fullName string, overwrite bool) error {
	return installFromCache(cacheDir, profileDir, func(string) bool { return false }, overwrite)
}

func (f *fixedInstaller) Toggle(profileDir, fullName string, enabled bool) error {
	return toggleDir(f.packageDir(profileDir, fullName), enabled)
}

func (f *fixedInstaller) Uninstall(profileDir, fullName string) error {
	dir := f.packageDir(profileDir, fullName)
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("installer: remove %s: %w", dir, err)
	}
	return os.RemoveAll(dir + ".old")
}

func (f *fixedInstaller) ModDir(profileDir, fullName string) (string, bool) {
	return f.packageDir(profileDir, fullName), true
}
