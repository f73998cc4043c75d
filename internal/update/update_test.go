package update

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/galeproject/gale/internal/ident"
	"github.com/galeproject/gale/internal/profile"
	"github.com/galeproject/gale/internal/registry"
)

func sampleIndex() *registry.Index {
	idx := registry.NewIndex()
	idx.Insert(registry.PackageListing{
		UUID: "u-a", Name: "A", FullName: "Owner-A", Owner: "Owner",
		Versions: []registry.PackageVersion{
			{UUID: "v-a2", Version: "2.0.0", FullName: "Owner-A-2.0.0"},
			{UUID: "v-a1", Version: "1.0.0", FullName: "Owner-A-1.0.0"},
		},
	})
	idx.Insert(registry.PackageListing{
		UUID: "u-b", Name: "B", FullName: "Owner-B", Owner: "Owner",
		Versions: []registry.PackageVersion{
			{UUID: "v-b1", Version: "1.0.0", FullName: "Owner-B-1.0.0"},
		},
	})
	return idx
}

func TestCheckReportsOutdatedMods(t *testing.T) {
	t.Parallel()

	outdated := profile.NewUUID()
	current := profile.NewUUID()
	local := profile.NewUUID()

	p := &profile.Profile{
		ID: 1, Name: "Default", Path: t.TempDir(),
		Mods: []profile.ProfileMod{
			{UUID: outdated, Variant: profile.VariantThunderstore, Ident: ident.MustParseVersion("Owner-A-1.0.0"), Enabled: true},
			{UUID: current, Variant: profile.VariantThunderstore, Ident: ident.MustParseVersion("Owner-B-1.0.0"), Enabled: true},
			{UUID: local, Variant: profile.VariantLocal, LocalName: "Hand-Rolled", Enabled: true},
		},
	}

	avail := Check(p, sampleIndex())
	require.Len(t, avail, 1)
	assert.Equal(t, outdated, avail[0].UUID)
	assert.Equal(t, "1.0.0", avail[0].Current.Version())
	assert.Equal(t, "2.0.0", avail[0].Latest.Version())
	assert.False(t, avail[0].Ignored)
}

func TestCheckMarksIgnoredUpdates(t *testing.T) {
	t.Parallel()

	uuid := profile.NewUUID()
	p := &profile.Profile{
		ID: 1, Name: "Default", Path: t.TempDir(),
		IgnoredUpdates: []string{uuid},
		Mods: []profile.ProfileMod{
			{UUID: uuid, Variant: profile.VariantThunderstore, Ident: ident.MustParseVersion("Owner-A-1.0.0"), Enabled: true},
		},
	}

	avail := Check(p, sampleIndex())
	require.Len(t, avail, 1)
	assert.True(t, avail[0].Ignored)
	assert.Empty(t, Pending(avail))
}

func TestIgnoreAndUnignore(t *testing.T) {
	t.Parallel()

	p := &profile.Profile{ID: 1, Name: "Default", Path: t.TempDir()}

	Ignore(p, "some-uuid")
	Ignore(p, "some-uuid")
	assert.Equal(t, []string{"some-uuid"}, p.IgnoredUpdates)

	Unignore(p, "some-uuid")
	assert.Empty(t, p.IgnoredUpdates)
}
