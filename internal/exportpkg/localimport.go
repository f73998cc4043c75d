package exportpkg

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/galeproject/gale/internal/archive"
	"github.com/galeproject/gale/internal/blobstore"
	"github.com/galeproject/gale/internal/installer"
)

// LocalModResult is the outcome of importing a zip archive that doesn't
// correspond to a registry package.
type LocalModResult struct {
	Name      string
	SHA256Hex string
	SizeBytes int64
	Existed   bool
}

// ImportLocalMod ingests an arbitrary mod archive into a content-addressed
// blob store and extracts it into the cache the way a registry download
// would be, letting the rest of the install pipeline treat local and
// Thunderstore mods identically once they reach a profile's mod list.
// The mod's name is the archive's file name without its extension (there's
// no owner/package/version triple for a local mod); inst extracts the
// payload into cacheDir as package "local-<name>-<first 8 hex digits of
// the content hash>".
func ImportLocalMod(ctx context.Context, store blobstore.Store, archivePath string, inst installer.Installer, cacheDir string, warn archive.Warner) (LocalModResult, error) {
	ingest, err := store.IngestFile(ctx, archivePath)
	if err != nil {
		return LocalModResult{}, fmt.Errorf("exportpkg: ingest local mod: %w", err)
	}

	blobPath, err := store.PathFor(ingest.SHA256Hex)
	if err != nil {
		return LocalModResult{}, err
	}

	zr, err := archive.OpenFile(blobPath)
	if err != nil {
		return LocalModResult{}, fmt.Errorf("exportpkg: open ingested blob: %w", err)
	}
	defer zr.Close()

	name := strings.TrimSuffix(filepath.Base(archivePath), filepath.Ext(archivePath))
	fullName := "local-" + name + "-" + ingest.SHA256Hex[:8]

	if err := inst.Extract(&zr.Reader, fullName, cacheDir, warn); err != nil {
		return LocalModResult{}, fmt.Errorf("exportpkg: extract local mod %s: %w", name, err)
	}

	return LocalModResult{
		Name:      name,
		SHA256Hex: ingest.SHA256Hex,
		SizeBytes: ingest.SizeBytes,
		Existed:   ingest.Existed,
	}, nil
}
