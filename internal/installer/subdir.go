// Package installer implements the mod-loader-specific layout engine:
// pluggable installers that map archive files into profile directory
// trees according to per-loader rules.
package installer

import (
	"archive/zip"
	"path"
	"path/filepath"
	"strings"

	"github.com/galeproject/gale/internal/archive"
	"github.com/galeproject/gale/internal/game"
)

// ignoredTopLevelFiles are dropped unconditionally when found at the
// archive root.
var ignoredTopLevelFiles = map[string]bool{
	"icon.png":      true,
	"manifest.json": true,
	"readme.md":     true,
	"changelog.md":  true,
}

// SubdirInstaller routes archive files into profile-relative target paths
// using an ordered list of Subdir rules, with an optional default rule used
// when no component along the path matches any rule.
type SubdirInstaller struct {
	Subdirs          []game.Subdir
	Default          *game.Subdir
	IgnoredFiles     map[string]bool
	StripBepisPrefix bool // BepisLoader quirk, see mapFile
}

// matchSubdir finds the first rule whose Name equals component, or whose
// Extension list (comma-separated suffixes) matches it.
func (s *SubdirInstaller) matchSubdir(component string) *game.Subdir {
	for i := range s.Subdirs {
		rule := &s.Subdirs[i]
		if rule.Name == component {
			return rule
		}
		if rule.Extension != "" {
			for _, ext := range strings.Split(rule.Extension, ",") {
				if ext != "" && strings.HasSuffix(component, ext) {
					return rule
				}
			}
		}
	}
	return nil
}

// mapFile routes one archive entry to its profile location: walk the
// archive entry's components, find the first that matches a rule (or fall
// back to the default), and construct the profile-relative target path.
// Returns ("", false) when the file should be dropped.
func (s *SubdirInstaller) mapFile(relPath, packageName string) (string, bool) {
	if s.IgnoredFiles[relPath] {
		return "", false
	}

	parts := strings.Split(relPath, "/")

	if len(parts) == 1 && ignoredTopLevelFiles[strings.ToLower(parts[0])] {
		return "", false
	}

	var prev []string
	var matched *game.Subdir
	var remainderIdx int

	for i, comp := range parts {
		if comp == "." || comp == "" {
			continue
		}
		if comp == ".." {
			if len(prev) > 0 {
				prev = prev[:len(prev)-1]
			}
			continue
		}

		prev = append(prev, comp)
		if rule := s.matchSubdir(comp); rule != nil {
			matched = rule
			remainderIdx = i + 1
			break
		}
	}

	if matched == nil {
		if s.Default == nil {
			return "", false
		}
		matched = s.Default
		remainderIdx = len(parts)
	}

	target := matched.Target

	separate := matched.Mode == game.ModeSeparate || matched.Mode == game.ModeSeparateFlatten
	if separate {
		target = path.Join(target, packageName)
	}

	remainder := parts[remainderIdx:]

	if len(remainder) == 0 {
		// matched at the very end of the path: the file itself is prev's
		// last component.
		fileName := prev[len(prev)-1]
		target = path.Join(target, fileName)
	} else if matched.Mode == game.ModeSeparateFlatten {
		// discard all intermediate directories, keep only the filename
		target = path.Join(target, remainder[len(remainder)-1])
	} else {
		// Track, None, Separate: keep the leading components (minus the
		// matched one itself), then append the remainder.
		lead := prev[:len(prev)-1]
		target = path.Join(append(append([]string{target}, lead...), remainder...)...)
	}

	if s.StripBepisPrefix {
		target = stripRedundantBepisPrefix(target, matched)
	}

	return target, true
}

// stripRedundantBepisPrefix implements the BepisLoader quirk: when
// rule.Target already starts with rule.Name and the following
// path components repeat that name, collapse the duplication (avoids
// double-nesting for the Renderer case).
func stripRedundantBepisPrefix(target string, rule *game.Subdir) string {
	if !strings.HasPrefix(rule.Target, rule.Name+"/") && rule.Target != rule.Name {
		return target
	}

	prefix := rule.Target + "/" + rule.Name + "/"
	if strings.HasPrefix(target, prefix) {
		return rule.Target + "/" + strings.TrimPrefix(target, prefix)
	}
	return target
}

// Extract maps every file in the archive into dest according to the rules,
// dropping files with no match. Archive entries escaping the root are
// skipped with a warning (handled by archive.ExtractAll's callers via
// archive.ForEachFile).
func (s *SubdirInstaller) Extract(zr *zip.Reader, packageName, dest string, warn archive.Warner) error {
	if warn == nil {
		warn = func(string, ...any) {}
	}

	tracked := map[string][]string{} // rule.Target -> relative paths installed

	err := archive.ForEachFile(zr, warn, func(relPath string, f *zip.File) error {
		target, ok := s.mapFile(relPath, packageName)
		if !ok {
			return nil
		}

		destPath, ok := archive.SafePath(dest, target)
		if !ok {
			warn("installer: mapped path %q escapes destination, dropping", target)
			return nil
		}

		if rule, ok := s.subdirFor(target); ok && rule.Mode == game.ModeTrack {
			rel, relErr := filepath.Rel(filepath.Join(dest, rule.Target), destPath)
			if relErr == nil {
				tracked[rule.Target] = append(tracked[rule.Target], filepath.ToSlash(rel))
			}
		}

		return archive.ExtractFile(f, destPath)
	})
	if err != nil {
		return err
	}

	for target, paths := range tracked {
		st, loadErr := loadTrackState(dest, target)
		if loadErr != nil {
			return loadErr
		}
		st.Packages[packageName] = paths
		if saveErr := saveTrackState(dest, target, st); saveErr != nil {
			return saveErr
		}
	}

	return nil
}

// subdirFor returns the rule whose Target is a prefix of relPath (forward
// slash separated), used by Install/Toggle/Uninstall to recover per-file
// routing metadata from an already-laid-out tree.
func (s *SubdirInstaller) subdirFor(relPath string) (*game.Subdir, bool) {
	for i := range s.Subdirs {
		rule := &s.Subdirs[i]
		if relPath == rule.Target || strings.HasPrefix(relPath, rule.Target+"/") {
			return rule, true
		}
	}
	if s.Default != nil && (relPath == s.Default.Target || strings.HasPrefix(relPath, s.Default.Target+"/")) {
		return s.Default, true
	}
	return nil, false
}
