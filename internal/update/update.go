// Package update implements per-profile update detection: for each Thunderstore ProfileMod, compare its installed
// version against the registry's latest and report what changed, honoring
// a profile's ignored-updates set.
package update

import (
	"github.com/galeproject/gale/internal/ident"
	"github.com/galeproject/gale/internal/profile"
	"github.com/galeproject/gale/internal/registry"
)

// Available describes one mod in a profile that has a newer version
// published in the registry.
type Available struct {
	UUID     string
	FullName string
	Current  ident.VersionIdent
	Latest   ident.VersionIdent
	Ignored  bool
}

// Check scans every Thunderstore mod in p and reports those with a newer
// version in idx, skipping local mods (which have no registry entry) and
// marking entries present in p.IgnoredUpdates.
func Check(p *profile.Profile, idx *registry.Index) []Available {
	ignored := make(map[string]bool, len(p.IgnoredUpdates))
	for _, u := range p.IgnoredUpdates {
		ignored[u] = true
	}

	var out []Available
	for _, m := range p.Mods {
		if m.Variant != profile.VariantThunderstore {
			continue
		}

		pkg, err := idx.FindPackage(m.FullName())
		if err != nil {
			continue
		}
		latest, ok := pkg.Latest()
		if !ok {
			continue
		}
		latestIdent := ident.NewVersion(pkg.Owner, pkg.Name, latest.Version)
		if latestIdent.Equal(m.Ident) {
			continue
		}

		out = append(out, Available{
			UUID:     m.UUID,
			FullName: m.FullName(),
			Current:  m.Ident,
			Latest:   latestIdent,
			Ignored:  ignored[m.UUID],
		})
	}
	return out
}

// Pending returns only the entries that aren't ignored, the set
// `update_mods` actually acts on.
func Pending(avail []Available) []Available {
	var out []Available
	for _, a := range avail {
		if !a.Ignored {
			out = append(out, a)
		}
	}
	return out
}

// Ignore adds uuid to the profile's ignored-updates set, if not already
// present.
func Ignore(p *profile.Profile, uuid string) {
	for _, u := range p.IgnoredUpdates {
		if u == uuid {
			return
		}
	}
	p.IgnoredUpdates = append(p.IgnoredUpdates, uuid)
}

// Unignore removes uuid from the profile's ignored-updates set.
func Unignore(p *profile.Profile, uuid string) {
	for i, u := range p.IgnoredUpdates {
		if u == uuid {
			p.IgnoredUpdates = append(p.IgnoredUpdates[:i], p.IgnoredUpdates[i+1:]...)
			return
		}
	}
}
