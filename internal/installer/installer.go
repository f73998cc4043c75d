package installer

import (
	"archive/zip"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/galeproject/gale/internal/archive"
	"github.com/galeproject/gale/internal/game"
)

// Installer is the capability interface every mod loader implements:
// extract an archive into a profile, toggle a package's files on or
// off, uninstall it, and report where its mutable mod
// directory lives (used by the config engine and by "open folder"
// commands).
type Installer interface {
	// Extract lays out an archive's contents under cacheDir (the
	// package's content-addressed cache directory, see internal/cache)
	// for the package identified by fullName (Owner-Name, no version).
	Extract(zr *zip.Reader, fullName, cacheDir string, warn archive.Warner) error

	// Install mirrors an already-extracted cache directory into a
	// profile: files under mutable rules (e.g. config/) are copied, all
	// others are hard-linked so that sharing the cache across profiles
	// costs no extra disk space.
	Install(cacheDir, profileDir, fullName string, overwrite bool) error

	// Toggle enables or disables a previously installed package's files
	// in place, without touching the cache copy.
	Toggle(profileDir, fullName string, enabled bool) error

	// Uninstall removes every file previously installed for fullName.
	Uninstall(profileDir, fullName string) error

	// ModDir returns the directory a package's mutable files (e.g. its
	// own subfolder under BepInEx/plugins) live in, if any.
	ModDir(profileDir, fullName string) (string, bool)
}

// For builds a fully wired Installer for the given loader, ready to use
// against profile directories for that loader's game.
func For(loader game.ModLoader) (Installer, error) {
	switch loader.Kind {
	case game.LoaderBepInEx:
		return newSubdir(bepinexRules(loader), &game.Subdir{Target: "BepInEx/plugins", Mode: game.ModeSeparate, Mutable: true}, false), nil
	case game.LoaderBepisLoader:
		return newSubdir(bepisRules(loader), &game.Subdir{Target: "BepInEx/plugins", Mode: game.ModeSeparate, Mutable: true}, true), nil
	case game.LoaderMelonLoader:
		return newSubdir(melonRules(loader), &game.Subdir{Target: "Mods", Mode: game.ModeSeparateFlatten, Mutable: true}, false), nil
	case game.LoaderReturnOfModding:
		return newSubdir(romRules(loader), &game.Subdir{Target: "ReturnOfModding/plugins", Mode: game.ModeSeparate, Mutable: true}, false), nil
	case game.LoaderNorthstar:
		return &fixedInstaller{root: "R2Northstar/mods", flatten: true}, nil
	case game.LoaderGDWeave:
		return &fixedInstaller{root: "GDWeave/mods", flatten: false}, nil
	case game.LoaderShimloader:
		return &fixedInstaller{root: "shimloader/mod", flatten: false}, nil
	case game.LoaderLovely:
		return &fixedInstaller{root: "lovely", flatten: false}, nil
	default:
		return nil, fmt.Errorf("installer: unsupported loader kind %q", loader.Kind)
	}
}

func newSubdir(rules []game.Subdir, def *game.Subdir, stripBepis bool) *SubdirInstaller {
	return &SubdirInstaller{Subdirs: rules, Default: def, IgnoredFiles: ignoredTopLevelFiles, StripBepisPrefix: stripBepis}
}

func bepinexRules(loader game.ModLoader) []game.Subdir {
	rules := []game.Subdir{
		{Name: "plugins", Target: "BepInEx/plugins", Mode: game.ModeSeparate, Mutable: true},
		{Name: "patchers", Target: "BepInEx/patchers", Mode: game.ModeSeparate, Mutable: true},
		{Name: "monomod", Target: "BepInEx/monomod", Mode: game.ModeSeparate, Mutable: true},
		{Name: "core", Target: "BepInEx/core", Mode: game.ModeTrack, Mutable: false},
		{Name: "config", Target: "BepInEx/config", Mode: game.ModeNone, Mutable: true},
	}
	return append(rules, loader.ExtraRules...)
}

func bepisRules(loader game.ModLoader) []game.Subdir {
	rules := []game.Subdir{
		{Name: "plugins", Target: "BepInEx/plugins", Mode: game.ModeSeparate, Mutable: true},
		{Name: "core", Target: "BepInEx/core", Mode: game.ModeTrack, Mutable: false},
	}
	return append(rules, loader.ExtraRules...)
}

func melonRules(loader game.ModLoader) []game.Subdir {
	rules := []game.Subdir{
		{Name: "Mods", Target: "Mods", Mode: game.ModeSeparateFlatten, Mutable: true},
		{Name: "UserLibs", Target: "UserLibs", Mode: game.ModeTrack, Mutable: false},
		{Name: "UserData", Target: "UserData", Mode: game.ModeNone, Mutable: true},
	}
	return append(rules, loader.ExtraRules...)
}

func romRules(loader game.ModLoader) []game.Subdir {
	rules := []game.Subdir{
		{Name: "plugins", Target: "ReturnOfModding/plugins", Mode: game.ModeSeparate, Mutable: true},
	}
	return append(rules, loader.ExtraRules...)
}

// installFromCache walks cacheDir and links (or copies, for mutable paths)
// every file into the same relative location under profileDir.
func installFromCache(cacheDir, profileDir string, isMutable func(relPath string) bool, overwrite bool) error {
	return filepath.Walk(cacheDir, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		if filepath.Base(p) == ".gale-track.json" {
			return nil
		}

		rel, err := filepath.Rel(cacheDir, p)
		if err != nil {
			return err
		}
		dest := filepath.Join(profileDir, rel)

		if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			return fmt.Errorf("installer: mkdir %s: %w", filepath.Dir(dest), err)
		}

		if _, statErr := os.Lstat(dest); statErr == nil {
			if !overwrite {
				return nil
			}
			if err := os.Remove(dest); err != nil {
				return fmt.Errorf("installer: remove existing %s: %w", dest, err)
			}
		}

		if isMutable(filepath.ToSlash(rel)) {
			return copyFile(p, dest)
		}

		if err := os.Link(p, dest); err != nil {
			// cross-device or unsupported filesystem: fall back to copy
			return copyFile(p, dest)
		}
		return nil
	})
}

func copyFile(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("installer: open %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("installer: create %s: %w", dest, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("installer: copy to %s: %w", dest, err)
	}
	return nil
}

// Install mirrors the cache tree into the profile, copying files that fall
// under a Mutable rule and hard-linking everything else. Track-mode
// bookkeeping recorded during Extract is merged into the profile's own
// state file so Toggle/Uninstall can find the files later.
func (s *SubdirInstaller) Install(cacheDir, profileDir, fullName string, overwrite bool) error {
	err := installFromCache(cacheDir, profileDir, func(relPath string) bool {
		rule, ok := s.subdirFor(relPath)
		return ok && rule.Mutable
	}, overwrite)
	if err != nil {
		return err
	}

	for _, rule := range s.Subdirs {
		if rule.Mode != game.ModeTrack {
			continue
		}
		cacheState, err := loadTrackState(cacheDir, rule.Target)
		if err != nil {
			return err
		}
		paths, ok := cacheState.Packages[fullName]
		if !ok {
			continue
		}
		profileState, err := loadTrackState(profileDir, rule.Target)
		if err != nil {
			return err
		}
		profileState.Packages[fullName] = paths
		if err := saveTrackState(profileDir, rule.Target, profileState); err != nil {
			return err
		}
	}

	return nil
}

// separatedDirs lists every per-package directory a fullName may occupy
// across the Separate/SeparateFlatten rules (a mod can install into
// plugins and patchers at once).
func (s *SubdirInstaller) separatedDirs(profileDir, fullName string) []string {
	var dirs []string
	seen := map[string]bool{}
	add := func(rule *game.Subdir) {
		if rule.Mode != game.ModeSeparate && rule.Mode != game.ModeSeparateFlatten {
			return
		}
		d := filepath.Join(profileDir, rule.Target, fullName)
		if !seen[d] {
			seen[d] = true
			dirs = append(dirs, d)
		}
	}
	for i := range s.Subdirs {
		add(&s.Subdirs[i])
	}
	if s.Default != nil {
		add(s.Default)
	}
	return dirs
}

// Toggle disables a package's files by renaming its install directory
// with a ".old" suffix, so the mod loader no longer finds it; re-enabling
// renames it back.
func (s *SubdirInstaller) Toggle(profileDir, fullName string, enabled bool) error {
	for _, dir := range s.separatedDirs(profileDir, fullName) {
		if err := toggleDir(dir, enabled); err != nil {
			return err
		}
	}

	for _, rule := range s.Subdirs {
		if rule.Mode != game.ModeTrack {
			continue
		}
		if err := toggleTrackedFiles(profileDir, rule.Target, fullName, enabled); err != nil {
			return err
		}
	}

	return nil
}

func toggleTrackedFiles(profileDir, target, fullName string, enabled bool) error {
	st, err := loadTrackState(profileDir, target)
	if err != nil {
		return err
	}
	paths, ok := st.Packages[fullName]
	if !ok {
		return nil
	}

	root := filepath.Join(profileDir, target)
	for _, rel := range paths {
		if err := toggleDir(filepath.Join(root, rel), enabled); err != nil {
			return err
		}
	}
	return nil
}

func toggleDir(dir string, enabled bool) error {
	disabledPath := dir + ".old"
	if enabled {
		if _, err := os.Stat(disabledPath); err == nil {
			return os.Rename(disabledPath, dir)
		}
		return nil
	}

	if _, err := os.Stat(dir); err == nil {
		return os.Rename(dir, disabledPath)
	}
	return nil
}

// Uninstall removes a package's separated install directories, if any.
func (s *SubdirInstaller) Uninstall(profileDir, fullName string) error {
	for _, dir := range s.separatedDirs(profileDir, fullName) {
		if err := os.RemoveAll(dir); err != nil {
			return fmt.Errorf("installer: remove %s: %w", dir, err)
		}
		_ = os.RemoveAll(dir + ".old")
	}

	for _, rule := range s.Subdirs {
		if rule.Mode != game.ModeTrack {
			continue
		}
		if err := untrackFiles(profileDir, rule.Target, fullName); err != nil {
			return err
		}
	}

	return nil
}

func untrackFiles(profileDir, target, fullName string) error {
	st, err := loadTrackState(profileDir, target)
	if err != nil {
		return err
	}
	paths, ok := st.Packages[fullName]
	if !ok {
		return nil
	}

	root := filepath.Join(profileDir, target)
	for _, rel := range paths {
		p := filepath.Join(root, rel)
		if err := os.RemoveAll(p); err != nil {
			return fmt.Errorf("installer: remove tracked file %s: %w", p, err)
		}
		_ = os.RemoveAll(p + ".old")
	}

	delete(st.Packages, fullName)
	return saveTrackState(profileDir, target, st)
}

// ModDir returns the Separate/SeparateFlatten directory a package was
// extracted into, when one of the rules uses per-package separation.
func (s *SubdirInstaller) ModDir(profileDir, fullName string) (string, bool) {
	for _, rule := range s.Subdirs {
		if rule.Mode == game.ModeSeparate || rule.Mode == game.ModeSeparateFlatten {
			return filepath.Join(profileDir, rule.Target, fullName), true
		}
	}
	if s.Default != nil && (s.Default.Mode == game.ModeSeparate || s.Default.Mode == game.ModeSeparateFlatten) {
		return filepath.Join(profileDir, s.Default.Target, fullName), true
	}
	return "", false
}

// trackState is the JSON side file SubdirInstaller writes for Track-mode
// rules, recording which relative paths belong to which package so that
// Toggle/Uninstall can find them again without re-walking the archive.
type trackState struct {
	Packages map[string][]string `json:"packages"` // fullName -> relative paths
}

func trackStatePath(profileDir, target string) string {
	return filepath.Join(profileDir, target, ".gale-track.json")
}

func loadTrackState(profileDir, target string) (*trackState, error) {
	data, err := os.ReadFile(trackStatePath(profileDir, target))
	if os.IsNotExist(err) {
		return &trackState{Packages: map[string][]string{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("installer: read track state: %w", err)
	}
	var st trackState
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("installer: parse track state: %w", err)
	}
	if st.Packages == nil {
		st.Packages = map[string][]string{}
	}
	return &st, nil
}

func saveTrackState(profileDir, target string, st *trackState) error {
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("installer: encode track state: %w", err)
	}
	p := trackStatePath(profileDir, target)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("installer: mkdir: %w", err)
	}
	return os.WriteFile(p, data, 0o644)
}
