// Package profile implements the profile model: Profile, ProfileMod,
// ManagedGame, and ModManager, plus the mutation operations and
// dependant/dependency checks behind them.
package profile

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/google/uuid"

	"github.com/galeproject/gale/internal/game"
	"github.com/galeproject/gale/internal/ident"
	"github.com/galeproject/gale/internal/registry"
)

// invalidNameChars matches characters forbidden in a profile name.
var invalidNameChars = regexp.MustCompile(`[\\/:*?"<>|]`)

// ValidateName reports an error if name is empty, all-whitespace, or
// contains a forbidden character.
func ValidateName(name string) error {
	trimmed := trimSpace(name)
	if trimmed == "" {
		return fmt.Errorf("profile: name must not be empty or all-whitespace")
	}
	if invalidNameChars.MatchString(name) {
		return fmt.Errorf("profile: name %q contains an invalid character", name)
	}
	return nil
}

func trimSpace(s string) string {
	start, end := 0, len(s)
	for start < end && isSpace(s[start]) {
		start++
	}
	for end > start && isSpace(s[end-1]) {
		end--
	}
	return s[start:end]
}

func isSpace(b byte) bool { return b == ' ' || b == '\t' || b == '\n' || b == '\r' }

// ModVariant tags whether a ProfileMod came from Thunderstore or was
// imported locally.
type ModVariant string

const (
	VariantThunderstore ModVariant = "thunderstore"
	VariantLocal        ModVariant = "local"
)

// ProfileMod is one installed mod within a profile.
type ProfileMod struct {
	UUID    string     `json:"uuid"`
	Variant ModVariant `json:"variant"`

	// Thunderstore variant fields.
	Ident ident.VersionIdent `json:"ident,omitempty"`

	// Local variant fields.
	LocalName string `json:"localName,omitempty"`
	LocalHash string `json:"localHash,omitempty"`

	Enabled     bool      `json:"enabled"`
	Index       int       `json:"index"`
	InstallTime time.Time `json:"installTime"`
}

// FullName returns the Owner-Name identity used for installer calls, for
// either variant.
func (m ProfileMod) FullName() string {
	if m.Variant == VariantLocal {
		return m.LocalName
	}
	return m.Ident.Owner() + "-" + m.Ident.Name()
}

// Dependant pairs a dependent mod's identity with its uuid, returned by
// Confirm results.
type Dependant struct {
	Ident string
	UUID  string
}

// ConfirmError is returned by a mutation when it would affect mods that
// depend on the target; retrying the same call with Force=true (on the
// force_* operations) completes it unconditionally.
type ConfirmError struct {
	Dependants []Dependant
}

func (e *ConfirmError) Error() string {
	return fmt.Sprintf("profile: %d mod(s) depend on this and must be confirmed", len(e.Dependants))
}

// Profile is a single mod configuration for a game.
type Profile struct {
	ID                int64        `json:"id"`
	Name              string       `json:"name"`
	Path              string       `json:"path"`
	Mods              []ProfileMod `json:"mods"`
	IgnoredUpdates    []string     `json:"ignoredUpdates"` // uuids
	CustomArgs        []string     `json:"customArgs"`
	CustomArgsEnabled bool         `json:"customArgsEnabled"`
}

// IndexOf returns the position of a mod by uuid, or -1.
func (p *Profile) IndexOf(uuid string) int {
	for i, m := range p.Mods {
		if m.UUID == uuid {
			return i
		}
	}
	return -1
}

// depsLookup is supplied by callers to resolve a mod's declared
// dependency strings; kept abstract so profile doesn't import registry's
// network concerns, only its pure index type.
type depsLookup func(fullName string) (deps []string, ok bool)

func (p *Profile) lookupFor(idx *registry.Index) depsLookup {
	return func(fullName string) ([]string, bool) {
		pkg, err := idx.FindPackage(fullName)
		if err != nil {
			return nil, false
		}
		v, ok := pkg.VersionByString(p.modByFullName(fullName).Ident.Version())
		if !ok {
			return nil, false
		}
		return v.Dependencies, true
	}
}

func (p *Profile) modByFullName(fullName string) ProfileMod {
	for _, m := range p.Mods {
		if m.FullName() == fullName {
			return m
		}
	}
	return ProfileMod{}
}

// Dependants returns every ProfileMod that directly or transitively
// depends on the mod identified by uuid.
func (p *Profile) Dependants(uuid string, idx *registry.Index) []Dependant {
	i := p.IndexOf(uuid)
	if i < 0 {
		return nil
	}
	target := p.Mods[i].FullName()

	var out []Dependant
	for _, m := range p.Mods {
		if m.UUID == uuid || m.Variant != VariantThunderstore {
			continue
		}
		// the registry's dependency closure of m covers direct and
		// transitive dependencies alike
		found, _ := idx.Dependencies([]ident.VersionIdent{m.Ident})
		for _, dep := range found {
			if dep.Package.FullName == target && target != m.FullName() {
				out = append(out, Dependant{Ident: m.FullName(), UUID: m.UUID})
				break
			}
		}
	}
	return out
}

func dependsOn(deps []string, targetFullName string) bool {
	for _, dep := range deps {
		v, err := ident.ParseVersion(dep)
		if err != nil {
			continue
		}
		if v.FullName() == targetFullName {
			return true
		}
	}
	return false
}

// MissingDeps returns the transitive dependency closure of idents minus
// any mod already present in the profile, as resolved registry mods so
// callers have each dependency's package uuid and archive size on hand.
func (p *Profile) MissingDeps(idents []ident.VersionIdent, idx *registry.Index) []registry.BorrowedMod {
	present := make(map[string]bool, len(p.Mods))
	for _, m := range p.Mods {
		present[m.FullName()] = true
	}

	found, _ := idx.Dependencies(idents)

	var missing []registry.BorrowedMod
	seen := make(map[string]bool)
	for _, mod := range found {
		fn := mod.Package.FullName
		if present[fn] || seen[fn] {
			continue
		}
		seen[fn] = true
		missing = append(missing, mod)
	}
	return missing
}

// Rename validates and applies a new name, moving the profile's directory
// to match.
func (p *Profile) Rename(newName string, siblings []Profile) error {
	if err := ValidateName(newName); err != nil {
		return err
	}
	for _, s := range siblings {
		if s.ID != p.ID && s.Name == newName {
			return fmt.Errorf("profile: a sibling profile is already named %q", newName)
		}
	}

	newPath := filepath.Join(filepath.Dir(p.Path), newName)
	if err := os.Rename(p.Path, newPath); err != nil {
		return fmt.Errorf("profile: rename directory: %w", err)
	}

	p.Name = newName
	p.Path = newPath
	return nil
}

// Uninstaller is the subset of installer.Installer a profile mutation
// needs, kept abstract so this package doesn't import internal/installer
// (which itself doesn't need to know about profiles).
type Uninstaller interface {
	Uninstall(profileDir, fullName string) error
	Toggle(profileDir, fullName string, enabled bool) error
}

// RemoveMod deletes a mod via the installer and drops it from Mods,
// refusing (with *ConfirmError) when other enabled mods depend on it,
// unless force is true.
func (p *Profile) RemoveMod(uuid string, idx *registry.Index, inst Uninstaller, force bool) error {
	i := p.IndexOf(uuid)
	if i < 0 {
		return fmt.Errorf("profile: no mod with uuid %q", uuid)
	}

	if p.Mods[i].Enabled && !force {
		if deps := enabledDependants(p.Dependants(uuid, idx), p); len(deps) > 0 {
			return &ConfirmError{Dependants: deps}
		}
	}

	if err := inst.Uninstall(p.Path, p.Mods[i].FullName()); err != nil {
		return fmt.Errorf("profile: uninstall %s: %w", p.Mods[i].FullName(), err)
	}

	p.Mods = append(p.Mods[:i], p.Mods[i+1:]...)
	return nil
}

func enabledDependants(all []Dependant, p *Profile) []Dependant {
	var out []Dependant
	for _, d := range all {
		if i := p.IndexOf(d.UUID); i >= 0 && p.Mods[i].Enabled {
			out = append(out, d)
		}
	}
	return out
}

// ToggleMod inverts a mod's enabled state and calls the installer's
// toggle, refusing (unless force) when enabling would leave a disabled
// dependency in place, or disabling would break an enabled dependant.
func (p *Profile) ToggleMod(uuid string, idx *registry.Index, inst Uninstaller, force bool) error {
	i := p.IndexOf(uuid)
	if i < 0 {
		return fmt.Errorf("profile: no mod with uuid %q", uuid)
	}

	enabling := !p.Mods[i].Enabled

	if !force {
		if enabling {
			if disabled := p.disabledDependencies(uuid, idx); len(disabled) > 0 {
				return &ConfirmError{Dependants: disabled}
			}
		} else if deps := enabledDependants(p.Dependants(uuid, idx), p); len(deps) > 0 {
			return &ConfirmError{Dependants: deps}
		}
	}

	if err := inst.Toggle(p.Path, p.Mods[i].FullName(), enabling); err != nil {
		return fmt.Errorf("profile: toggle %s: %w", p.Mods[i].FullName(), err)
	}
	p.Mods[i].Enabled = enabling
	return nil
}

func (p *Profile) disabledDependencies(uuid string, idx *registry.Index) []Dependant {
	i := p.IndexOf(uuid)
	if i < 0 {
		return nil
	}
	lookup := p.lookupFor(idx)
	deps, ok := lookup(p.Mods[i].FullName())
	if !ok {
		return nil
	}

	var out []Dependant
	for _, dep := range deps {
		v, err := ident.ParseVersion(dep)
		if err != nil {
			continue
		}
		for _, m := range p.Mods {
			if m.FullName() == v.FullName() && !m.Enabled {
				out = append(out, Dependant{Ident: m.FullName(), UUID: m.UUID})
			}
		}
	}
	return out
}

// ForceRemoveMod and ForceToggleMod are unconditional variants used after
// a caller has already confirmed a *ConfirmError from the checked forms.
func (p *Profile) ForceRemoveMod(uuid string, inst Uninstaller) error {
	i := p.IndexOf(uuid)
	if i < 0 {
		return fmt.Errorf("profile: no mod with uuid %q", uuid)
	}
	if err := inst.Uninstall(p.Path, p.Mods[i].FullName()); err != nil {
		return fmt.Errorf("profile: uninstall %s: %w", p.Mods[i].FullName(), err)
	}
	p.Mods = append(p.Mods[:i], p.Mods[i+1:]...)
	return nil
}

func (p *Profile) ForceToggleMod(uuid string, inst Uninstaller) error {
	i := p.IndexOf(uuid)
	if i < 0 {
		return fmt.Errorf("profile: no mod with uuid %q", uuid)
	}
	enabling := !p.Mods[i].Enabled
	if err := inst.Toggle(p.Path, p.Mods[i].FullName(), enabling); err != nil {
		return fmt.Errorf("profile: toggle %s: %w", p.Mods[i].FullName(), err)
	}
	p.Mods[i].Enabled = enabling
	return nil
}

// AppendProfileMod adds an already-constructed ProfileMod to the end of
// the list. Thunderstore mods arrive with their registry package uuid
// already set; only local mods (which have no registry identity) get a
// freshly generated one here. Used by the install queue (via a
// manager-level adapter) once a download has landed in the cache and been
// installed into this profile's directory.
func (p *Profile) AppendProfileMod(m ProfileMod) string {
	if m.UUID == "" {
		m.UUID = NewUUID()
	}
	m.Index = len(p.Mods)
	p.Mods = append(p.Mods, m)
	return m.UUID
}

// RemoveByUUID drops a mod from the list with no installer call and no
// dependant checks, the rollback primitive the install queue uses to undo
// a cancelled batch's partial appends.
func (p *Profile) RemoveByUUID(uuid string) {
	i := p.IndexOf(uuid)
	if i < 0 {
		return
	}
	p.Mods = append(p.Mods[:i], p.Mods[i+1:]...)
}

// Reorder moves the mod with the given uuid by delta positions, clamped
// to the slice bounds.
func (p *Profile) Reorder(uuid string, delta int) error {
	i := p.IndexOf(uuid)
	if i < 0 {
		return fmt.Errorf("profile: no mod with uuid %q", uuid)
	}

	j := i + delta
	if j < 0 {
		j = 0
	}
	if j >= len(p.Mods) {
		j = len(p.Mods) - 1
	}
	if i == j {
		return nil
	}

	m := p.Mods[i]
	p.Mods = append(p.Mods[:i], p.Mods[i+1:]...)
	p.Mods = append(p.Mods[:j], append([]ProfileMod{m}, p.Mods[j:]...)...)

	for idx := range p.Mods {
		p.Mods[idx].Index = idx
	}
	return nil
}

// ManagedGame tracks every profile created for one installed game.
type ManagedGame struct {
	ID              int64     `json:"id"`
	Game            game.Game `json:"-"`
	GameSlug        string    `json:"gameSlug"`
	Path            string    `json:"path"`
	Profiles        []Profile `json:"profiles"`
	ActiveProfileID int64     `json:"activeProfileId"`
	Favorite        bool      `json:"favorite"`

	// ProfilesDir is where new profile directories are created. Profiles
	// never live inside the game's install directory; the game install is
	// left untouched.
	ProfilesDir string `json:"-"`
}

// ActiveProfile returns the currently active profile, repairing the
// active id to the first profile if it doesn't reference a real one.
func (g *ManagedGame) ActiveProfile() (*Profile, error) {
	for i := range g.Profiles {
		if g.Profiles[i].ID == g.ActiveProfileID {
			return &g.Profiles[i], nil
		}
	}
	if len(g.Profiles) == 0 {
		return nil, fmt.Errorf("profile: managed game %q has no profiles", g.GameSlug)
	}
	g.ActiveProfileID = g.Profiles[0].ID
	return &g.Profiles[0], nil
}

func (g *ManagedGame) nextProfileID() int64 {
	var max int64
	for _, p := range g.Profiles {
		if p.ID > max {
			max = p.ID
		}
	}
	return max + 1
}

// CreateProfile validates the name, creates its directory, assigns an id
// greater than any existing one, appends it, and makes it active.
func (g *ManagedGame) CreateProfile(name string, pathOverride string) (*Profile, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	for _, p := range g.Profiles {
		if p.Name == name {
			return nil, fmt.Errorf("profile: %q already exists", name)
		}
	}

	dir := pathOverride
	if dir == "" {
		root := g.ProfilesDir
		if root == "" {
			root = filepath.Join(g.Path, "profiles")
		}
		dir = filepath.Join(root, name)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("profile: mkdir %s: %w", dir, err)
	}

	p := Profile{ID: g.nextProfileID(), Name: name, Path: dir}
	g.Profiles = append(g.Profiles, p)
	g.ActiveProfileID = p.ID

	return &g.Profiles[len(g.Profiles)-1], nil
}

// DuplicateProfile creates a new profile and recursively copies the
// source profile's directory, cloning Mods and IgnoredUpdates as-is.
func (g *ManagedGame) DuplicateProfile(name string, sourceID int64) (*Profile, error) {
	var src *Profile
	for i := range g.Profiles {
		if g.Profiles[i].ID == sourceID {
			src = &g.Profiles[i]
			break
		}
	}
	if src == nil {
		return nil, fmt.Errorf("profile: no source profile with id %d", sourceID)
	}

	dst, err := g.CreateProfile(name, "")
	if err != nil {
		return nil, err
	}

	if err := copyDir(src.Path, dst.Path); err != nil {
		return nil, fmt.Errorf("profile: duplicate directory: %w", err)
	}

	dst.Mods = append([]ProfileMod(nil), src.Mods...)
	dst.IgnoredUpdates = append([]string(nil), src.IgnoredUpdates...)
	dst.CustomArgs = append([]string(nil), src.CustomArgs...)
	dst.CustomArgsEnabled = src.CustomArgsEnabled

	return dst, nil
}

func copyDir(src, dst string) error {
	return filepath.Walk(src, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, relErr := filepath.Rel(src, p)
		if relErr != nil {
			return relErr
		}
		target := filepath.Join(dst, rel)

		if info.IsDir() {
			return os.MkdirAll(target, 0o755)
		}

		data, readErr := os.ReadFile(p)
		if readErr != nil {
			return readErr
		}
		return os.WriteFile(target, data, info.Mode())
	})
}

// DeleteProfile removes a profile's directory and excises it from the
// list, selecting index 0 as the new active profile if the deleted one
// was active.
func (g *ManagedGame) DeleteProfile(id int64) error {
	i := -1
	for idx, p := range g.Profiles {
		if p.ID == id {
			i = idx
			break
		}
	}
	if i < 0 {
		return fmt.Errorf("profile: no profile with id %d", id)
	}

	if err := os.RemoveAll(g.Profiles[i].Path); err != nil {
		return fmt.Errorf("profile: remove directory: %w", err)
	}

	wasActive := g.ActiveProfileID == id
	g.Profiles = append(g.Profiles[:i], g.Profiles[i+1:]...)

	if wasActive && len(g.Profiles) > 0 {
		g.ActiveProfileID = g.Profiles[0].ID
	}
	return nil
}

// NewUUID generates a fresh ProfileMod identifier.
func NewUUID() string { return uuid.NewString() }
