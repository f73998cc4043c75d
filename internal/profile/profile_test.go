package profile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/galeproject/gale/internal/ident"
	"github.com/galeproject/gale/internal/registry"
)

func TestValidateName(t *testing.T) {
	t.Parallel()

	assert.NoError(t, ValidateName("My Profile"))
	assert.Error(t, ValidateName(""))
	assert.Error(t, ValidateName("   "))
	assert.Error(t, ValidateName("bad/name"))
	assert.Error(t, ValidateName("bad:name"))
}

func TestDependantsWithNoRegistryEntryIsEmpty(t *testing.T) {
	t.Parallel()

	p := &Profile{ID: 1, Name: "Default", Path: t.TempDir()}

	base := ident.MustParseVersion("Owner-Base-1.0.0")
	dependent := ident.MustParseVersion("Owner-Dependent-1.0.0")

	baseUUID := NewUUID()
	depUUID := NewUUID()

	p.Mods = []ProfileMod{
		{UUID: baseUUID, Variant: VariantThunderstore, Ident: base, Enabled: true},
		{UUID: depUUID, Variant: VariantThunderstore, Ident: dependent, Enabled: true},
	}

	// An empty index means every dependency lookup fails closed (ok=false),
	// so no dependants are reported rather than a spurious confirm.
	deps := p.Dependants(baseUUID, registry.NewIndex())
	assert.Empty(t, deps)
}

func TestReorderClampsToBounds(t *testing.T) {
	t.Parallel()

	p := &Profile{ID: 1, Name: "Default", Path: t.TempDir()}
	a, b, c := NewUUID(), NewUUID(), NewUUID()
	p.Mods = []ProfileMod{{UUID: a}, {UUID: b}, {UUID: c}}

	require.NoError(t, p.Reorder(a, 100))
	assert.Equal(t, c, p.Mods[1].UUID)
	assert.Equal(t, a, p.Mods[2].UUID)
}

func TestCreateProfileRejectsDuplicateName(t *testing.T) {
	t.Parallel()

	g := &ManagedGame{Path: t.TempDir()}
	_, err := g.CreateProfile("Default", "")
	require.NoError(t, err)

	_, err = g.CreateProfile("Default", "")
	assert.Error(t, err)
}

func TestDeleteProfileSelectsNewActive(t *testing.T) {
	t.Parallel()

	g := &ManagedGame{Path: t.TempDir()}
	p1, err := g.CreateProfile("One", "")
	require.NoError(t, err)
	p2, err := g.CreateProfile("Two", "")
	require.NoError(t, err)

	g.ActiveProfileID = p2.ID
	require.NoError(t, g.DeleteProfile(p2.ID))

	active, err := g.ActiveProfile()
	require.NoError(t, err)
	assert.Equal(t, p1.ID, active.ID)
}

func TestDuplicateProfileCopiesDirectoryAndMods(t *testing.T) {
	t.Parallel()

	g := &ManagedGame{Path: t.TempDir()}
	src, err := g.CreateProfile("Source", "")
	require.NoError(t, err)

	cfgPath := filepath.Join(src.Path, "BepInEx", "config", "x.cfg")
	require.NoError(t, os.MkdirAll(filepath.Dir(cfgPath), 0o755))
	require.NoError(t, os.WriteFile(cfgPath, []byte("hello"), 0o644))

	src.Mods = []ProfileMod{{UUID: NewUUID(), Variant: VariantThunderstore, Ident: ident.MustParseVersion("Owner-Foo-1.0.0"), Enabled: true}}

	dup, err := g.DuplicateProfile("Copy", src.ID)
	require.NoError(t, err)
	assert.Len(t, dup.Mods, 1)

	data, err := os.ReadFile(filepath.Join(dup.Path, "BepInEx", "config", "x.cfg"))
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
}

func TestAppendProfileModKeepsRegistryUUID(t *testing.T) {
	t.Parallel()

	p := &Profile{ID: 1, Name: "Default", Path: t.TempDir()}

	got := p.AppendProfileMod(ProfileMod{
		UUID:    "pkg-uuid-1",
		Variant: VariantThunderstore,
		Ident:   ident.MustParseVersion("Owner-Foo-1.0.0"),
		Enabled: true,
	})
	assert.Equal(t, "pkg-uuid-1", got)
	assert.Equal(t, "pkg-uuid-1", p.Mods[0].UUID)

	// Local mods carry no registry identity and get a generated uuid.
	local := p.AppendProfileMod(ProfileMod{Variant: VariantLocal, LocalName: "Hand-Rolled"})
	assert.NotEmpty(t, local)
	assert.NotEqual(t, "pkg-uuid-1", local)
}

func TestMissingDepsResolvesRegistryMods(t *testing.T) {
	t.Parallel()

	idx := registry.NewIndex()
	idx.Insert(registry.PackageListing{
		UUID: "u-a", Name: "A", FullName: "Owner-A", Owner: "Owner",
		Versions: []registry.PackageVersion{
			{UUID: "v-a1", Version: "1.0.0", FullName: "Owner-A-1.0.0", FileSize: 10, Dependencies: []string{"Owner-B-1.0.0"}},
		},
	})
	idx.Insert(registry.PackageListing{
		UUID: "u-b", Name: "B", FullName: "Owner-B", Owner: "Owner",
		Versions: []registry.PackageVersion{
			{UUID: "v-b1", Version: "1.0.0", FullName: "Owner-B-1.0.0", FileSize: 20},
		},
	})

	p := &Profile{ID: 1, Name: "Default", Path: t.TempDir()}

	missing := p.MissingDeps([]ident.VersionIdent{ident.MustParseVersion("Owner-A-1.0.0")}, idx)
	require.Len(t, missing, 2)
	assert.Equal(t, "u-a", missing[0].Package.UUID)
	assert.Equal(t, "u-b", missing[1].Package.UUID)
	assert.Equal(t, int64(20), missing[1].Version.FileSize)

	// Mods already in the profile are not reported as missing.
	p.Mods = []ProfileMod{{UUID: "u-b", Variant: VariantThunderstore, Ident: ident.MustParseVersion("Owner-B-1.0.0"), Enabled: true}}
	missing = p.MissingDeps([]ident.VersionIdent{ident.MustParseVersion("Owner-A-1.0.0")}, idx)
	require.Len(t, missing, 1)
	assert.Equal(t, "u-a", missing[0].Package.UUID)
}
