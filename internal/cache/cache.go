// Package cache implements the content-addressed on-disk package cache:
// extracted package archives live at <root>/<owner-name>/<version>/...,
// keyed by VersionIdent so a shared cache entry can be hard-linked into
// any number of profiles.
package cache

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/galeproject/gale/internal/archive"
	"github.com/galeproject/gale/internal/ident"
	"github.com/galeproject/gale/internal/installer"
)

// Cache is a single game's package cache rooted at a directory, typically
// `<xdg-data>/gale/<game-slug>/cache`.
type Cache struct {
	Root string
}

// New returns a Cache rooted at root, creating the directory if needed.
func New(root string) (*Cache, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("cache: mkdir %s: %w", root, err)
	}
	return &Cache{Root: root}, nil
}

// PathFor returns the on-disk directory for a specific package version.
func (c *Cache) PathFor(v ident.VersionIdent) string {
	return filepath.Join(c.Root, v.Owner()+"-"+v.Name(), v.Version())
}

// Has reports whether a version is already extracted in the cache.
func (c *Cache) Has(v ident.VersionIdent) bool {
	_, err := os.Stat(c.PathFor(v))
	return err == nil
}

// Ingest extracts a downloaded archive into the cache using the given
// mod-loader installer's layout rules. On any failure the partial cache
// directory is removed so a later attempt re-downloads from scratch.
func (c *Cache) Ingest(ctx context.Context, inst installer.Installer, v ident.VersionIdent, archiveData []byte, warn archive.Warner) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	default:
	}

	dest := c.PathFor(v)

	zr, err := archive.OpenBytes(archiveData)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(dest, 0o755); err != nil {
		return "", fmt.Errorf("cache: mkdir %s: %w", dest, err)
	}

	fullName := v.Owner() + "-" + v.Name()
	if err := inst.Extract(zr, fullName, dest, warn); err != nil {
		_ = os.RemoveAll(dest)
		return "", fmt.Errorf("cache: extract %s: %w", v.String(), err)
	}

	return dest, nil
}

// Remove deletes a package version's cache entry entirely.
func (c *Cache) Remove(v ident.VersionIdent) error {
	if err := os.RemoveAll(c.PathFor(v)); err != nil {
		return fmt.Errorf("cache: remove %s: %w", v.String(), err)
	}
	return nil
}

// Size returns the total size in bytes of a cache entry, walking the tree.
func (c *Cache) Size(v ident.VersionIdent) (int64, error) {
	var total int64
	root := c.PathFor(v)

	err := filepath.Walk(root, func(_ string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			total += info.Size()
		}
		return nil
	})
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("cache: size %s: %w", v.String(), err)
	}
	return total, nil
}

// Clear removes the entire cache directory and recreates it empty, used by
// the "clear download cache" operation.
func (c *Cache) Clear() error {
	if err := os.RemoveAll(c.Root); err != nil {
		return fmt.Errorf("cache: clear: %w", err)
	}
	return os.MkdirAll(c.Root, 0o755)
}
