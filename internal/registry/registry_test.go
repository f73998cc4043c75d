package registry

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/galeproject/gale/internal/ident"
)

func sampleIndex() *Index {
	idx := NewIndex()
	idx.Insert(PackageListing{
		UUID: "u-a", Name: "A", FullName: "Owner-A", Owner: "Owner",
		Versions: []PackageVersion{{UUID: "v-a1", Version: "1.0.0", FullName: "Owner-A-1.0.0", Dependencies: []string{"Owner-B-1.0.0"}}},
	})
	idx.Insert(PackageListing{
		UUID: "u-b", Name: "B", FullName: "Owner-B", Owner: "Owner",
		Versions: []PackageVersion{{UUID: "v-b1", Version: "1.0.0", FullName: "Owner-B-1.0.0"}},
	})
	idx.Insert(PackageListing{
		UUID: "u-c", Name: "C", FullName: "Owner-C", Owner: "Owner",
		Versions: []PackageVersion{{UUID: "v-c1", Version: "1.0.0", FullName: "Owner-C-1.0.0", Dependencies: []string{"Owner-A-1.0.0"}}},
	})
	return idx
}

func TestFindPackageAndMod(t *testing.T) {
	t.Parallel()

	idx := sampleIndex()

	p, err := idx.FindPackage("Owner-A")
	require.NoError(t, err)
	assert.Equal(t, "u-a", p.UUID)

	mod, err := idx.FindMod("Owner", "A", "1.0.0")
	require.NoError(t, err)
	assert.Equal(t, "v-a1", mod.Version.UUID)

	_, err = idx.FindPackage("Owner-Missing")
	assert.Error(t, err)
}

func TestFindByIdentStr(t *testing.T) {
	t.Parallel()

	idx := sampleIndex()
	mod, err := idx.FindByIdentStr("Owner-B-1.0.0")
	require.NoError(t, err)
	assert.Equal(t, "Owner-B-1.0.0", mod.Version.FullName)
}

func TestDependenciesBFSDedup(t *testing.T) {
	t.Parallel()

	idx := sampleIndex()
	roots := []ident.VersionIdent{ident.MustParseVersion("Owner-C-1.0.0")}

	found, missing := idx.Dependencies(roots)
	assert.Empty(t, missing)

	var names []string
	for _, m := range found {
		names = append(names, m.Package.FullName)
	}
	assert.Equal(t, []string{"Owner-C", "Owner-A", "Owner-B"}, names)
}

func TestDependenciesMissing(t *testing.T) {
	t.Parallel()

	idx := sampleIndex()
	roots := []ident.VersionIdent{ident.MustParseVersion("Owner-Ghost-1.0.0")}

	found, missing := idx.Dependencies(roots)
	assert.Empty(t, found)
	require.Len(t, missing, 1)
	assert.True(t, strings.HasPrefix(missing[0], "Owner-Ghost"))
}

func TestInsertionOrderPreserved(t *testing.T) {
	t.Parallel()

	idx := sampleIndex()
	all := idx.All()
	require.Len(t, all, 3)
	assert.Equal(t, "Owner-A", all[0].FullName)
	assert.Equal(t, "Owner-B", all[1].FullName)
	assert.Equal(t, "Owner-C", all[2].FullName)
}

func TestDecodeStreamSkipsExcluded(t *testing.T) {
	t.Parallel()

	body := `[
		{"uuid4":"u1","name":"Gale","full_name":"Kesomannen-gale","owner":"Kesomannen","versions":[]},
		{"uuid4":"u2","name":"Real","full_name":"Owner-Real","owner":"Owner","versions":[]}
	]`

	idx, err := decodeStream(strings.NewReader(body), nil)
	require.NoError(t, err)
	assert.Equal(t, 1, idx.Len())
	assert.Equal(t, "Owner-Real", idx.All()[0].FullName)
}
