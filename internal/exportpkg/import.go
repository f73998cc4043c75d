package exportpkg

import (
	"fmt"

	"github.com/galeproject/gale/internal/archive"
	"github.com/galeproject/gale/internal/registry"
)

// ImportArchive runs the full r2x import flow against raw zip bytes: parse
// the manifest, resolve its mods against idx, and extract everything else
// into destDir.
func ImportArchive(data []byte, idx *registry.Index, destDir string, warn archive.Warner) (ImportResult, error) {
	zr, err := openZipBytes(data)
	if err != nil {
		return ImportResult{}, fmt.Errorf("exportpkg: import archive: %w", err)
	}

	manifest, err := ParseManifest(zr)
	if err != nil {
		return ImportResult{}, fmt.Errorf("exportpkg: import archive: %w", err)
	}

	if err := ExtractConfigFiles(zr, destDir, warn); err != nil {
		return ImportResult{}, fmt.Errorf("exportpkg: import archive: extract config files: %w", err)
	}

	return ResolveManifest(manifest, idx), nil
}
