// Package exportpkg implements the r2x profile export/import format, the
// Thunderstore legacy-profile code-sharing scheme, modpack publishing, and
// content-hashed local mod import.
package exportpkg

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/galeproject/gale/internal/archive"
	"github.com/galeproject/gale/internal/profile"
	"github.com/galeproject/gale/internal/queue"
	"github.com/galeproject/gale/internal/registry"
)

// ManifestFile is the zip entry name of the r2x YAML manifest.
const ManifestFile = "export.r2x"

// R2XVersion is the {major, minor, patch} version object in export.r2x.
type R2XVersion struct {
	Major int `yaml:"major"`
	Minor int `yaml:"minor"`
	Patch int `yaml:"patch"`
}

// R2XMod is one mod entry in export.r2x's mods list.
type R2XMod struct {
	Name    string     `yaml:"name"` // owner-name
	Version R2XVersion `yaml:"version"`
	Enabled bool       `yaml:"enabled"`
}

// R2XManifest is the parsed form of export.r2x.
type R2XManifest struct {
	ProfileName    string   `yaml:"profileName"`
	Community      string   `yaml:"community,omitempty"`
	IgnoredUpdates []string `yaml:"ignoredUpdates"`
	Mods           []R2XMod `yaml:"mods"`
}

// excludedFiles are never copied into or out of an r2x archive, even
// though they live inside the profile directory.
var excludedFiles = map[string]bool{
	"profile.json":        true,
	"manifest.json":       true,
	"mods.yml":            true,
	"doorstop_config.ini": true,
	"snapshots":           true,
	"_state":              true,
}

// configExtensions is the whitelist of config-ish extensions carried across
// export/import, matching the set internal/config routes as Unsupported.
var configExtensions = map[string]bool{
	".cfg": true, ".txt": true, ".json": true, ".yml": true,
	".yaml": true, ".ini": true, ".xml": true,
}

func isExcluded(relPath string) bool {
	first := strings.SplitN(relPath, "/", 2)[0]
	if excludedFiles[first] || excludedFiles[relPath] {
		return true
	}
	return !configExtensions[strings.ToLower(filepath.Ext(relPath))]
}

// buildManifest converts a profile's Thunderstore mods into an R2XManifest,
// skipping LocalMod entries, which aren't exportable in r2x.
func buildManifest(p *profile.Profile, gameSlug string) (R2XManifest, error) {
	m := R2XManifest{
		ProfileName:    p.Name,
		Community:      gameSlug,
		IgnoredUpdates: p.IgnoredUpdates,
	}

	for _, mod := range p.Mods {
		if mod.Variant != profile.VariantThunderstore {
			continue
		}
		major, minor, patch, ok := mod.Ident.SemVer()
		if !ok {
			return R2XManifest{}, fmt.Errorf("exportpkg: mod %s has a non-semver version %q", mod.FullName(), mod.Ident.Version())
		}
		m.Mods = append(m.Mods, R2XMod{
			Name:    mod.FullName(),
			Version: R2XVersion{Major: major, Minor: minor, Patch: patch},
			Enabled: mod.Enabled,
		})
	}

	return m, nil
}

// ExportProfile writes an r2x zip archive for p to destZipPath: the YAML
// manifest plus every config file under the profile root that isn't on the
// exclusion list or outside the config extension whitelist.
func ExportProfile(p *profile.Profile, gameSlug, destZipPath string) error {
	manifest, err := buildManifest(p, gameSlug)
	if err != nil {
		return err
	}

	yamlBytes, err := yaml.Marshal(manifest)
	if err != nil {
		return fmt.Errorf("exportpkg: encode manifest: %w", err)
	}

	out, err := os.Create(destZipPath)
	if err != nil {
		return fmt.Errorf("exportpkg: create %s: %w", destZipPath, err)
	}
	defer out.Close()

	return writeR2XZip(out, p.Path, yamlBytes)
}

// writeR2XZip writes the manifest entry followed by every eligible config
// file under profilePath into a new zip stream, shared by ExportProfile
// (writing to disk) and exportZipBytes (writing to an in-memory buffer for
// code sharing).
func writeR2XZip(w io.Writer, profilePath string, manifestYAML []byte) error {
	zw := zip.NewWriter(w)
	defer zw.Close()

	entry, err := zw.Create(ManifestFile)
	if err != nil {
		return fmt.Errorf("exportpkg: create manifest entry: %w", err)
	}
	if _, err := entry.Write(manifestYAML); err != nil {
		return fmt.Errorf("exportpkg: write manifest entry: %w", err)
	}

	return filepath.Walk(profilePath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(profilePath, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		if isExcluded(rel) {
			return nil
		}

		out, err := zw.Create(rel)
		if err != nil {
			return fmt.Errorf("exportpkg: create entry %s: %w", rel, err)
		}

		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("exportpkg: open %s: %w", path, err)
		}
		defer f.Close()

		_, err = io.Copy(out, f)
		return err
	})
}

// ImportResult is the outcome of parsing and resolving an r2x archive
// against a registry.
type ImportResult struct {
	Manifest   R2XManifest
	Installs   []queue.ModInstall
	Unresolved []string // owner-name-version strings that couldn't be resolved
}

// ParseManifest finds and decodes export.r2x from an already-opened zip
// reader.
func ParseManifest(zr *zip.Reader) (R2XManifest, error) {
	data, err := readZipEntry(zr, ManifestFile)
	if err != nil {
		return R2XManifest{}, fmt.Errorf("exportpkg: %w", err)
	}
	data = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})

	var m R2XManifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return R2XManifest{}, fmt.Errorf("exportpkg: parse %s: %w", ManifestFile, err)
	}
	return m, nil
}

func readZipEntry(zr *zip.Reader, name string) ([]byte, error) {
	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", name, err)
		}
		defer rc.Close()
		return io.ReadAll(rc)
	}
	return nil, fmt.Errorf("%s not found in archive", name)
}

// ResolveManifest looks up every mod the manifest declares in idx,
// collecting resolvable mods as install instructions and leaving
// unresolved ones in a separate list rather than aborting the whole import.
func ResolveManifest(m R2XManifest, idx *registry.Index) ImportResult {
	res := ImportResult{Manifest: m}

	for _, mod := range m.Mods {
		owner, name, ok := splitFullName(mod.Name)
		if !ok {
			res.Unresolved = append(res.Unresolved, mod.Name)
			continue
		}
		version := fmt.Sprintf("%d.%d.%d", mod.Version.Major, mod.Version.Minor, mod.Version.Patch)

		bm, err := idx.FindMod(owner, name, version)
		if err != nil {
			res.Unresolved = append(res.Unresolved, fmt.Sprintf("%s-%s", mod.Name, version))
			continue
		}

		res.Installs = append(res.Installs, queue.ModInstall{
			Ident:       bm.Ident(),
			PackageUUID: bm.Package.UUID,
			FileSize:    bm.Version.FileSize,
			Enabled:     mod.Enabled,
			Overwrite:   true,
			Index:       -1,
		})
	}

	return res
}

func splitFullName(s string) (owner, name string, ok bool) {
	i := strings.LastIndexByte(s, '-')
	if i <= 0 || i == len(s)-1 {
		return "", "", false
	}
	return s[:i], s[i+1:], true
}

// ExtractConfigFiles extracts every non-manifest, non-excluded entry from
// the archive into destDir, rebasing a top-level "config/" prefix to
// "BepInEx/config/" for legacy r2modman interoperability.
func ExtractConfigFiles(zr *zip.Reader, destDir string, warn archive.Warner) error {
	return archive.ForEachFile(zr, warn, func(relPath string, f *zip.File) error {
		if relPath == ManifestFile || isExcluded(relPath) {
			return nil
		}

		target := relPath
		if strings.HasPrefix(target, "config/") {
			target = "BepInEx/" + target
		}

		dest, ok := archive.SafePath(destDir, target)
		if !ok {
			if warn != nil {
				warn("exportpkg: skipping entry %q: escapes destination", relPath)
			}
			return nil
		}
		return archive.ExtractFile(f, dest)
	})
}

// openZipBytes adapts a byte slice into a zip.Reader, the form most
// import callers have on hand after reading an uploaded or on-disk archive.
func openZipBytes(data []byte) (*zip.Reader, error) {
	return zip.NewReader(bytes.NewReader(data), int64(len(data)))
}
