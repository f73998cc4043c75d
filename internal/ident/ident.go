// Package ident implements Thunderstore package identifiers.
// A VersionIdent has the canonical form "owner-name-version" and a
// PackageIdent has the canonical form "owner-name". Both are stored as a
// single string plus byte offsets into it, so that owner()/name()/version()
// are zero-copy views and demoting a VersionIdent to a PackageIdent never
// reallocates.
package ident

import (
	"fmt"
	"strconv"
	"strings"
)

// VersionIdent is the canonical "owner-name-version" identifier of a single
// published package version.
type VersionIdent struct {
	repr         string
	nameStart    int // byte offset where the name starts (just past its '-')
	versionStart int // byte offset where the version starts (just past the last '-')
}

// PackageIdent is the canonical "owner-name" identifier of a package,
// independent of any particular version.
type PackageIdent struct {
	repr      string
	nameStart int
}

// ParseVersion parses s into a VersionIdent. s must contain at least two
// '-' separators; the last one begins the version, the one before it begins
// the name. Any other '-' characters are treated as part of the owner.
func ParseVersion(s string) (VersionIdent, error) {
	versionStart := strings.LastIndexByte(s, '-')
	if versionStart < 0 {
		return VersionIdent{}, fmt.Errorf("ident: %q is missing a version separator", s)
	}

	nameStart := strings.LastIndexByte(s[:versionStart], '-')
	if nameStart < 0 {
		return VersionIdent{}, fmt.Errorf("ident: %q is missing a name separator", s)
	}

	if nameStart == 0 {
		return VersionIdent{}, fmt.Errorf("ident: %q has an empty owner", s)
	}
	if versionStart == nameStart+1 {
		return VersionIdent{}, fmt.Errorf("ident: %q has an empty name", s)
	}
	if versionStart == len(s)-1 {
		return VersionIdent{}, fmt.Errorf("ident: %q has an empty version", s)
	}

	return VersionIdent{repr: s, nameStart: nameStart + 1, versionStart: versionStart + 1}, nil
}

// MustParseVersion is ParseVersion but panics on error; intended for
// constants and tests.
func MustParseVersion(s string) VersionIdent {
	v, err := ParseVersion(s)
	if err != nil {
		panic(err)
	}
	return v
}

// NewVersion builds a VersionIdent directly from its three parts without
// going through string parsing.
func NewVersion(owner, name, version string) VersionIdent {
	repr := owner + "-" + name + "-" + version
	return VersionIdent{
		repr:         repr,
		nameStart:    len(owner) + 1,
		versionStart: len(owner) + 1 + len(name) + 1,
	}
}

func (v VersionIdent) String() string { return v.repr }

// Owner returns the owner segment.
func (v VersionIdent) Owner() string { return v.repr[:v.nameStart-1] }

// Name returns the name segment.
func (v VersionIdent) Name() string { return v.repr[v.nameStart : v.versionStart-1] }

// Version returns the raw version string.
func (v VersionIdent) Version() string { return v.repr[v.versionStart:] }

// FullName returns "owner-name".
func (v VersionIdent) FullName() string { return v.repr[:v.versionStart-1] }

// Path returns "owner/name/version", the URL-safe on-disk/wire path form.
func (v VersionIdent) Path() string {
	return v.Owner() + "/" + v.Name() + "/" + v.Version()
}

// Package demotes the VersionIdent to a PackageIdent by truncating the
// backing string; this never reallocates.
func (v VersionIdent) Package() PackageIdent {
	return PackageIdent{repr: v.repr[:v.versionStart-1], nameStart: v.nameStart}
}

// SemVer splits Version() into major.minor.patch, returning false if the
// version string doesn't have exactly three dot-separated integer parts.
func (v VersionIdent) SemVer() (major, minor, patch int, ok bool) {
	return parseSemVer(v.Version())
}

func parseSemVer(s string) (major, minor, patch int, ok bool) {
	parts := strings.Split(s, ".")
	if len(parts) != 3 {
		return 0, 0, 0, false
	}

	nums := make([]int, 3)
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return 0, 0, 0, false
		}
		nums[i] = n
	}

	return nums[0], nums[1], nums[2], true
}

// Equal reports whether two VersionIdents have the same full representation.
func (v VersionIdent) Equal(other VersionIdent) bool { return v.repr == other.repr }

// MarshalText encodes the ident as its canonical string, so JSON-persisted
// structs carry "Owner-Name-1.0.0" rather than an opaque struct.
func (v VersionIdent) MarshalText() ([]byte, error) { return []byte(v.repr), nil }

// UnmarshalText re-parses the canonical string form. An empty input leaves
// the zero value, matching an omitted field.
func (v *VersionIdent) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*v = VersionIdent{}
		return nil
	}
	parsed, err := ParseVersion(string(text))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// ParsePackage parses s (an "owner-name" string) into a PackageIdent. It
// must contain exactly one meaningful separator: the last '-' begins the
// name segment.
func ParsePackage(s string) (PackageIdent, error) {
	nameStart := strings.LastIndexByte(s, '-')
	if nameStart <= 0 || nameStart == len(s)-1 {
		return PackageIdent{}, fmt.Errorf("ident: %q is not a valid owner-name identifier", s)
	}
	return PackageIdent{repr: s, nameStart: nameStart + 1}, nil
}

func (p PackageIdent) String() string { return p.repr }

// Owner returns the owner segment.
func (p PackageIdent) Owner() string { return p.repr[:p.nameStart-1] }

// Name returns the name segment.
func (p PackageIdent) Name() string { return p.repr[p.nameStart:] }

// FullName returns "owner-name", identical to String().
func (p PackageIdent) FullName() string { return p.repr }

// WithVersion promotes a PackageIdent back to a VersionIdent by appending a
// version segment.
func (p PackageIdent) WithVersion(version string) VersionIdent {
	return NewVersion(p.Owner(), p.Name(), version)
}

// Equal reports whether two PackageIdents have the same full representation.
func (p PackageIdent) Equal(other PackageIdent) bool { return p.repr == other.repr }

// MarshalText encodes the ident as its canonical "owner-name" string.
func (p PackageIdent) MarshalText() ([]byte, error) { return []byte(p.repr), nil }

// UnmarshalText re-parses the canonical string form.
func (p *PackageIdent) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*p = PackageIdent{}
		return nil
	}
	parsed, err := ParsePackage(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
