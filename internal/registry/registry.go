// Package registry holds the in-memory package index fetched from a
// Thunderstore-compatible package listing endpoint: identifier lookups, BFS dependency resolution, and the streaming
// fetch protocol that populates it.
package registry

import (
	"fmt"

	"github.com/galeproject/gale/internal/ident"
)

// PackageVersion is one version of a listed package.
type PackageVersion struct {
	UUID         string   `json:"uuid4"`
	Version      string   `json:"version_number"`
	FullName     string   `json:"full_name"`
	Description  string   `json:"description"`
	Dependencies []string `json:"dependencies"` // dep_string, e.g. "Bob-Foo-1.0.0"
	DownloadURL  string   `json:"download_url"`
	FileSize     int64    `json:"file_size"`
	WebsiteURL   string   `json:"website_url"`
	Icon         string   `json:"icon"`
}

// PackageListing is a package with all of its published versions, ordered
// newest-first as delivered by the registry.
type PackageListing struct {
	UUID           string           `json:"uuid4"`
	Name           string           `json:"name"`
	FullName       string           `json:"full_name"`
	Owner          string           `json:"owner"`
	PackageURL     string           `json:"package_url"`
	DonationLink   string           `json:"donation_link"`
	DateCreated    string           `json:"date_created"`
	DateUpdated    string           `json:"date_updated"`
	RatingScore    int              `json:"rating_score"`
	IsPinned       bool             `json:"is_pinned"`
	IsDeprecated   bool             `json:"is_deprecated"`
	HasNSFWContent bool             `json:"has_nsfw_content"`
	Categories     []string         `json:"categories"`
	Versions       []PackageVersion `json:"versions"`
}

// Latest returns the package's newest version.
func (p PackageListing) Latest() (PackageVersion, bool) {
	if len(p.Versions) == 0 {
		return PackageVersion{}, false
	}
	return p.Versions[0], true
}

// VersionByString finds a specific published version by its version
// number string.
func (p PackageListing) VersionByString(version string) (PackageVersion, bool) {
	for _, v := range p.Versions {
		if v.Version == version {
			return v, true
		}
	}
	return PackageVersion{}, false
}

// BorrowedMod is a (package, version) pair returned by index lookups.
// Both fields are value copies, so a BorrowedMod stays valid after the
// index is swapped out by a refresh.
type BorrowedMod struct {
	Package PackageListing
	Version PackageVersion
}

// Ident returns the VersionIdent identifying this mod.
func (m BorrowedMod) Ident() ident.VersionIdent {
	return ident.NewVersion(m.Package.Owner, m.Package.Name, m.Version.Version)
}

// Index is the in-memory registry for a single game, keyed by package
// UUID with insertion order preserved for iteration-based queries.
type Index struct {
	byUUID map[string]PackageListing
	order  []string
}

// NewIndex returns an empty index.
func NewIndex() *Index {
	return &Index{byUUID: make(map[string]PackageListing)}
}

// Len returns the number of packages in the index.
func (idx *Index) Len() int { return len(idx.order) }

// All iterates packages in insertion order.
func (idx *Index) All() []PackageListing {
	out := make([]PackageListing, 0, len(idx.order))
	for _, id := range idx.order {
		out = append(out, idx.byUUID[id])
	}
	return out
}

// Insert adds or replaces a package, preserving first-seen order. Fetch
// uses it to accumulate a streamed package list; hosts may use it to merge
// a previously-cached index into a fresh one.
func (idx *Index) Insert(p PackageListing) {
	if _, exists := idx.byUUID[p.UUID]; !exists {
		idx.order = append(idx.order, p.UUID)
	}
	idx.byUUID[p.UUID] = p
}

// GetPackage looks up a package by UUID.
func (idx *Index) GetPackage(uuid string) (PackageListing, error) {
	p, ok := idx.byUUID[uuid]
	if !ok {
		return PackageListing{}, fmt.Errorf("registry: no package with uuid %q", uuid)
	}
	return p, nil
}

// FindPackage looks up a package by its full_name (owner-name). A linear
// scan; lookups by name are rare compared to uuid lookups.
func (idx *Index) FindPackage(fullName string) (PackageListing, error) {
	for _, id := range idx.order {
		p := idx.byUUID[id]
		if p.FullName == fullName {
			return p, nil
		}
	}
	return PackageListing{}, fmt.Errorf("registry: no package named %q", fullName)
}

// GetMod looks up a specific package/version pair by UUIDs.
func (idx *Index) GetMod(packageUUID, versionUUID string) (BorrowedMod, error) {
	p, err := idx.GetPackage(packageUUID)
	if err != nil {
		return BorrowedMod{}, err
	}
	for _, v := range p.Versions {
		if v.UUID == versionUUID {
			return BorrowedMod{Package: p, Version: v}, nil
		}
	}
	return BorrowedMod{}, fmt.Errorf("registry: package %q has no version uuid %q", p.FullName, versionUUID)
}

// FindMod looks up owner/name/version as strings.
func (idx *Index) FindMod(owner, name, version string) (BorrowedMod, error) {
	p, err := idx.FindPackage(owner + "-" + name)
	if err != nil {
		return BorrowedMod{}, err
	}
	v, ok := p.VersionByString(version)
	if !ok {
		return BorrowedMod{}, fmt.Errorf("registry: %s has no version %q", p.FullName, version)
	}
	return BorrowedMod{Package: p, Version: v}, nil
}

// FindByIdentStr resolves a dependency string ("Owner-Name-1.0.0") to a mod.
func (idx *Index) FindByIdentStr(depString string) (BorrowedMod, error) {
	v, err := ident.ParseVersion(depString)
	if err != nil {
		return BorrowedMod{}, fmt.Errorf("registry: invalid dependency string %q: %w", depString, err)
	}
	return idx.FindMod(v.Owner(), v.Name(), v.Version())
}

// Dependencies performs a BFS over the transitive dependency closure of
// the given roots, deduplicating by (owner, name) rather than full
// version to avoid infinite expansion when different transitive
// dependents pin different versions of the same package.
// found is returned in discovery order; missing holds dependency strings
// that could not be resolved in the index.
func (idx *Index) Dependencies(roots []ident.VersionIdent) (found []BorrowedMod, missing []string) {
	seen := make(map[string]bool)
	queue := make([]ident.VersionIdent, len(roots))
	copy(queue, roots)

	for len(queue) > 0 {
		v := queue[0]
		queue = queue[1:]

		key := v.Owner() + "-" + v.Name()
		if seen[key] {
			continue
		}
		seen[key] = true

		mod, err := idx.FindMod(v.Owner(), v.Name(), v.Version())
		if err != nil {
			missing = append(missing, v.String())
			continue
		}

		found = append(found, mod)

		for _, dep := range mod.Version.Dependencies {
			depV, err := ident.ParseVersion(dep)
			if err != nil {
				continue
			}
			if !seen[depV.Owner()+"-"+depV.Name()] {
				queue = append(queue, depV)
			}
		}
	}

	return found, missing
}
