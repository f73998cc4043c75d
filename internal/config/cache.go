package config

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/galeproject/gale/internal/game"
)

// Kind tags how a scanned config file was classified.
type Kind string

const (
	KindBepInEx     Kind = "bepinex"
	KindGDWeave     Kind = "gdweave"
	KindUnsupported Kind = "unsupported"
	KindError       Kind = "error"
)

// knownConfigExtensions is the extension allow-list used to classify a
// file as Unsupported rather than silently dropping it.
var knownConfigExtensions = map[string]bool{
	".cfg": true, ".txt": true, ".json": true,
	".yml": true, ".yaml": true, ".ini": true, ".xml": true,
}

// CachedFile is one scanned config file's cache entry.
type CachedFile struct {
	DisplayName  string
	RelativePath string
	ReadTime     time.Time
	Kind         Kind
	BepInEx      *File
	GDWeave      *GDWeaveFile
	Err          error
}

// Cache holds every loaded config file for one profile.
type Cache struct {
	Files []CachedFile

	// LinkedConfig maps a ProfileMod uuid to the relative path of the
	// config file linked to it.
	LinkedConfig map[string]string
}

// NewCache returns an empty ConfigCache.
func NewCache() *Cache {
	return &Cache{LinkedConfig: make(map[string]string)}
}

func (c *Cache) indexOf(relPath string) int {
	for i, f := range c.Files {
		if f.RelativePath == relPath {
			return i
		}
	}
	return -1
}

// Refresh scans relativeDir under profileRoot recursively, classifying
// each file by extension and mod loader, re-parsing only files whose
// modification time is newer than their cached ReadTime.
func (c *Cache) Refresh(profileRoot, relativeDir string, loader game.ModLoader) error {
	root := filepath.Join(profileRoot, relativeDir)

	seen := make(map[string]bool)

	err := filepath.Walk(root, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if info.IsDir() {
			return nil
		}

		rel, relErr := filepath.Rel(profileRoot, p)
		if relErr != nil {
			return relErr
		}
		rel = filepath.ToSlash(rel)
		seen[rel] = true

		ext := strings.ToLower(filepath.Ext(p))
		if !knownConfigExtensions[ext] {
			delete(seen, rel)
			return nil // not a config file
		}

		if i := c.indexOf(rel); i >= 0 {
			if !info.ModTime().After(c.Files[i].ReadTime) {
				return nil // up to date
			}
		}

		entry := c.classify(p, rel, ext, loader, info.ModTime())

		if i := c.indexOf(rel); i >= 0 {
			c.Files[i] = entry
		} else {
			c.Files = append(c.Files, entry)
		}
		return nil
	})
	if err != nil {
		return err
	}

	// drop cache entries for files that no longer exist
	kept := c.Files[:0]
	for _, f := range c.Files {
		if seen[f.RelativePath] {
			kept = append(kept, f)
		}
	}
	c.Files = kept

	c.resolveDuplicateNames()
	return nil
}

func (c *Cache) classify(path, rel, ext string, loader game.ModLoader, modTime time.Time) CachedFile {
	base := filepath.Base(path)
	name := strings.TrimSuffix(base, filepath.Ext(base))

	entry := CachedFile{DisplayName: name, RelativePath: rel, ReadTime: modTime}

	switch {
	case ext == ".cfg" && isBepInExFamily(loader.Kind):
		data, readErr := os.ReadFile(path)
		if readErr != nil {
			entry.Kind, entry.Err = KindError, readErr
			return entry
		}
		parsed, parseErr := ParseBepInEx(data)
		if parseErr != nil {
			entry.Kind, entry.Err = KindError, parseErr
			return entry
		}
		entry.Kind, entry.BepInEx = KindBepInEx, parsed
		if parsed.PluginName != "" {
			entry.DisplayName = parsed.PluginName
		}

	case ext == ".json" && loader.Kind == game.LoaderGDWeave:
		data, readErr := os.ReadFile(path)
		if readErr != nil {
			entry.Kind, entry.Err = KindError, readErr
			return entry
		}
		parsed, parseErr := ParseGDWeave(data)
		if parseErr != nil {
			entry.Kind, entry.Err = KindError, parseErr
			return entry
		}
		entry.Kind, entry.GDWeave = KindGDWeave, parsed

	default:
		entry.Kind = KindUnsupported
	}

	return entry
}

func isBepInExFamily(kind game.LoaderKind) bool {
	switch kind {
	case game.LoaderBepInEx, game.LoaderBepisLoader, game.LoaderMelonLoader, game.LoaderReturnOfModding:
		return true
	default:
		return false
	}
}

// resolveDuplicateNames disambiguates display names pairwise:
// for any two files sharing a DisplayName, the longest common prefix of
// their file stems is found and the distinguishing suffix appended to
// each.
func (c *Cache) resolveDuplicateNames() {
	byName := make(map[string][]int)
	for i, f := range c.Files {
		byName[f.DisplayName] = append(byName[f.DisplayName], i)
	}

	for name, indices := range byName {
		if len(indices) < 2 {
			continue
		}
		for a := 0; a < len(indices); a++ {
			for b := a + 1; b < len(indices); b++ {
				i, j := indices[a], indices[b]
				stemI := strings.TrimSuffix(filepath.Base(c.Files[i].RelativePath), filepath.Ext(c.Files[i].RelativePath))
				stemJ := strings.TrimSuffix(filepath.Base(c.Files[j].RelativePath), filepath.Ext(c.Files[j].RelativePath))
				prefix := commonPrefix(stemI, stemJ)

				c.Files[i].DisplayName = name + " (" + strings.TrimPrefix(stemI, prefix) + ")"
				c.Files[j].DisplayName = name + " (" + strings.TrimPrefix(stemJ, prefix) + ")"
			}
		}
	}
}

func commonPrefix(a, b string) string {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	i := 0
	for i < n && a[i] == b[i] {
		i++
	}
	return a[:i]
}

// RefreshLinks associates each installed mod (uuid, name pair) with a
// config file whose relative path or BepInEx plugin name matches.
func (c *Cache) RefreshLinks(mods []struct{ UUID, Name string }) {
	for _, m := range mods {
		for _, f := range c.Files {
			stem := strings.TrimSuffix(filepath.Base(f.RelativePath), filepath.Ext(f.RelativePath))
			matches := stem == m.Name || (f.BepInEx != nil && f.BepInEx.PluginName == m.Name)
			if matches {
				c.LinkedConfig[m.UUID] = f.RelativePath
				break
			}
		}
	}
}

// Sorted returns the cache's files sorted by display name, for stable
// listing output.
func (c *Cache) Sorted() []CachedFile {
	out := append([]CachedFile(nil), c.Files...)
	sort.Slice(out, func(i, j int) bool { return out[i].DisplayName < out[j].DisplayName })
	return out
}
