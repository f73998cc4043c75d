package cache

import (
	"archive/zip"
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/galeproject/gale/internal/game"
	"github.com/galeproject/gale/internal/ident"
	"github.com/galeproject/gale/internal/installer"
)

func zipWith(t *testing.T, files map[string]string) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestPathFor(t *testing.T) {
	t.Parallel()

	c := &Cache{Root: "/tmp/cache-root"}
	v := ident.MustParseVersion("Bob-Foo-1.0.0")
	assert.Equal(t, filepath.Join("/tmp/cache-root", "Bob-Foo", "1.0.0"), c.PathFor(v))
}

func TestIngestAndHas(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	c, err := New(root)
	require.NoError(t, err)

	v := ident.MustParseVersion("Bob-Foo-1.0.0")
	assert.False(t, c.Has(v))

	inst, err := installer.For(game.ModLoader{Kind: game.LoaderBepInEx})
	require.NoError(t, err)

	data := zipWith(t, map[string]string{"plugins/Foo.dll": "binary-data"})

	dest, err := c.Ingest(context.Background(), inst, v, data, nil)
	require.NoError(t, err)
	assert.Equal(t, c.PathFor(v), dest)
	assert.True(t, c.Has(v))

	content, readErr := os.ReadFile(filepath.Join(dest, "BepInEx", "plugins", "Bob-Foo", "Foo.dll"))
	require.NoError(t, readErr)
	assert.Equal(t, "binary-data", string(content))
}

func TestIngestFailureCleansUp(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	c, err := New(root)
	require.NoError(t, err)

	v := ident.MustParseVersion("Bob-Bad-1.0.0")
	_, err = c.Ingest(context.Background(), nil, v, []byte("not a zip"), nil)
	assert.Error(t, err)
	assert.False(t, c.Has(v))
}

func TestRemoveAndClear(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	c, err := New(root)
	require.NoError(t, err)

	v := ident.MustParseVersion("Bob-Foo-1.0.0")
	inst, err := installer.For(game.ModLoader{Kind: game.LoaderBepInEx})
	require.NoError(t, err)

	data := zipWith(t, map[string]string{"plugins/Foo.dll": "x"})
	_, err = c.Ingest(context.Background(), inst, v, data, nil)
	require.NoError(t, err)

	require.NoError(t, c.Remove(v))
	assert.False(t, c.Has(v))

	_, err = c.Ingest(context.Background(), inst, v, data, nil)
	require.NoError(t, err)
	require.NoError(t, c.Clear())
	assert.False(t, c.Has(v))
}
