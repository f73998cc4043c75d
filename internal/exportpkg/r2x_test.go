package exportpkg

import (
	"archive/zip"
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/galeproject/gale/internal/ident"
	"github.com/galeproject/gale/internal/profile"
	"github.com/galeproject/gale/internal/registry"
)

func TestBuildManifestSkipsLocalMods(t *testing.T) {
	t.Parallel()

	p := &profile.Profile{
		ID: 1, Name: "My Pack", Path: t.TempDir(),
		Mods: []profile.ProfileMod{
			{UUID: profile.NewUUID(), Variant: profile.VariantThunderstore, Ident: ident.MustParseVersion("Alice-Mod-1.2.3"), Enabled: true},
			{UUID: profile.NewUUID(), Variant: profile.VariantLocal, LocalName: "Hand-Rolled", Enabled: true},
			{UUID: profile.NewUUID(), Variant: profile.VariantThunderstore, Ident: ident.MustParseVersion("Bob-Other-0.1.0"), Enabled: false},
		},
	}

	m, err := buildManifest(p, "riskofrain2")
	require.NoError(t, err)

	assert.Equal(t, "My Pack", m.ProfileName)
	assert.Equal(t, "riskofrain2", m.Community)
	require.Len(t, m.Mods, 2)
	assert.Equal(t, "Alice-Mod", m.Mods[0].Name)
	assert.Equal(t, R2XVersion{Major: 1, Minor: 2, Patch: 3}, m.Mods[0].Version)
	assert.True(t, m.Mods[0].Enabled)
	assert.False(t, m.Mods[1].Enabled)
}

func TestBuildManifestRejectsNonSemverVersions(t *testing.T) {
	t.Parallel()

	p := &profile.Profile{
		ID: 1, Name: "Broken", Path: t.TempDir(),
		Mods: []profile.ProfileMod{
			{UUID: profile.NewUUID(), Variant: profile.VariantThunderstore, Ident: ident.MustParseVersion("Alice-Mod-beta"), Enabled: true},
		},
	}

	_, err := buildManifest(p, "riskofrain2")
	assert.Error(t, err)
}

func TestResolveManifestCollectsUnresolved(t *testing.T) {
	t.Parallel()

	idx := registry.NewIndex()
	idx.Insert(registry.PackageListing{
		UUID: "u-a", Name: "Mod", FullName: "Alice-Mod", Owner: "Alice",
		Versions: []registry.PackageVersion{
			{UUID: "v-a1", Version: "1.2.3", FullName: "Alice-Mod-1.2.3", FileSize: 42},
		},
	})

	m := R2XManifest{
		ProfileName: "X",
		Mods: []R2XMod{
			{Name: "Alice-Mod", Version: R2XVersion{1, 2, 3}, Enabled: true},
			{Name: "Ghost-Mod", Version: R2XVersion{9, 9, 9}, Enabled: true},
		},
	}

	res := ResolveManifest(m, idx)
	require.Len(t, res.Installs, 1)
	assert.Equal(t, "Alice-Mod-1.2.3", res.Installs[0].Ident.String())
	assert.Equal(t, int64(42), res.Installs[0].FileSize)
	require.Len(t, res.Unresolved, 1)
	assert.Equal(t, "Ghost-Mod-9.9.9", res.Unresolved[0])
}

func TestParseManifestRoundTrip(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	entry, err := zw.Create(ManifestFile)
	require.NoError(t, err)
	_, err = entry.Write([]byte("profileName: X\nmods:\n  - name: Alice-Mod\n    version: {major: 1, minor: 0, patch: 0}\n    enabled: true\n"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)

	m, err := ParseManifest(zr)
	require.NoError(t, err)
	assert.Equal(t, "X", m.ProfileName)
	require.Len(t, m.Mods, 1)
	assert.Equal(t, "Alice-Mod", m.Mods[0].Name)
}

func TestIsExcluded(t *testing.T) {
	t.Parallel()

	assert.True(t, isExcluded("manifest.json"))
	assert.True(t, isExcluded("mods.yml"))
	assert.True(t, isExcluded("snapshots/latest.zip"))
	assert.True(t, isExcluded("BepInEx/plugins/Mod/Mod.dll"), "non-config extensions are excluded")
	assert.False(t, isExcluded("BepInEx/config/mod.cfg"))
	assert.False(t, isExcluded("GDWeave/configs/mod.json"))
}
