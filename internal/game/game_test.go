package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadBundledCatalog(t *testing.T) {
	t.Parallel()

	c, err := Load()
	require.NoError(t, err)

	g, ok := c.Get(DefaultSlug)
	require.True(t, ok, "the default game must exist in the bundled catalog")
	assert.Equal(t, LoaderBepInEx, g.ModLoader.Kind)

	all := c.All()
	assert.NotEmpty(t, all)

	seen := make(map[string]bool)
	for _, g := range all {
		assert.False(t, seen[g.Slug], "catalog slugs must be unique")
		seen[g.Slug] = true
		assert.NotEmpty(t, g.Name)
	}
}

func TestParseRejectsDuplicateSlugs(t *testing.T) {
	t.Parallel()

	_, err := parse([]byte(`[{"slug": "x", "name": "X"}, {"slug": "x", "name": "X again"}]`))
	assert.Error(t, err)
}

func TestIsLoaderPackage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		loader   ModLoader
		fullName string
		want     bool
	}{
		{ModLoader{Kind: LoaderBepInEx}, "BepInEx-BepInExPack", true},
		{ModLoader{Kind: LoaderBepInEx}, "BepInEx-BepInExPack_IL2CPP", true},
		{ModLoader{Kind: LoaderBepInEx}, "SomeTeam-SomeMod", false},
		{ModLoader{Kind: LoaderBepisLoader}, "ResoniteModding-BepisLoader", true},
		{ModLoader{Kind: LoaderBepisLoader}, "ResoniteModding-BepInExRenderer", true},
		{ModLoader{Kind: LoaderMelonLoader}, "LavaGang-MelonLoader", true},
		{ModLoader{Kind: LoaderNorthstar}, "northstar-Northstar", true},
		{ModLoader{Kind: LoaderGDWeave}, "NotNet-GDWeave", true},
		{ModLoader{Kind: LoaderGDWeave}, "NotNet-Other", false},
		{ModLoader{Kind: LoaderBepInEx, PackageName: "Custom-Pack"}, "Custom-Pack", true},
		{ModLoader{Kind: LoaderBepInEx, PackageName: "Custom-Pack"}, "BepInEx-BepInExPack", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.loader.IsLoaderPackage(tt.fullName),
			"%s / %s", tt.loader.Kind, tt.fullName)
	}
}
