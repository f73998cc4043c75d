package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/galeproject/gale/internal/game"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func bepinexLoader() game.ModLoader {
	return game.ModLoader{Kind: game.LoaderBepInEx}
}

func TestRefreshClassifiesByExtensionAndLoader(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, root, "BepInEx/config/mod.cfg", sampleCfg)
	writeFile(t, root, "BepInEx/config/notes.txt", "free-form text")
	writeFile(t, root, "BepInEx/config/binary.dll", "not a config")

	c := NewCache()
	require.NoError(t, c.Refresh(root, "BepInEx/config", bepinexLoader()))

	require.Len(t, c.Files, 2, "non-config extensions are dropped, not cached")

	byPath := make(map[string]CachedFile)
	for _, f := range c.Files {
		byPath[f.RelativePath] = f
	}

	cfg := byPath["BepInEx/config/mod.cfg"]
	assert.Equal(t, KindBepInEx, cfg.Kind)
	assert.Equal(t, "Example Mod", cfg.DisplayName, "display name comes from the plugin header")

	txt := byPath["BepInEx/config/notes.txt"]
	assert.Equal(t, KindUnsupported, txt.Kind)
	assert.Equal(t, "notes", txt.DisplayName)
}

func TestRefreshSkipsUnmodifiedFiles(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, root, "config/mod.json", `{"speed": 2}`)

	c := NewCache()
	loader := game.ModLoader{Kind: game.LoaderGDWeave}
	require.NoError(t, c.Refresh(root, "config", loader))
	require.Len(t, c.Files, 1)
	firstRead := c.Files[0].ReadTime

	require.NoError(t, c.Refresh(root, "config", loader))
	assert.Equal(t, firstRead, c.Files[0].ReadTime, "unchanged files are not re-parsed")

	// Backdate the cached read time so the file looks newer on disk.
	c.Files[0].ReadTime = firstRead.Add(-time.Hour)
	require.NoError(t, c.Refresh(root, "config", loader))
	assert.True(t, c.Files[0].ReadTime.After(firstRead.Add(-time.Hour)))
}

func TestRefreshDropsDeletedFiles(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, root, "config/a.json", `{}`)
	writeFile(t, root, "config/b.json", `{}`)

	c := NewCache()
	loader := game.ModLoader{Kind: game.LoaderGDWeave}
	require.NoError(t, c.Refresh(root, "config", loader))
	require.Len(t, c.Files, 2)

	require.NoError(t, os.Remove(filepath.Join(root, "config/b.json")))
	require.NoError(t, c.Refresh(root, "config", loader))
	require.Len(t, c.Files, 1)
	assert.Equal(t, "config/a.json", c.Files[0].RelativePath)
}

func TestResolveDuplicateNamesYieldsDistinctDisplayNames(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, root, "config/com.example.mod.client.json", `{}`)
	writeFile(t, root, "config/com.example.mod.server.json", `{}`)

	c := NewCache()
	// Force a shared display name the way two plugins with the same
	// friendly name would.
	loader := game.ModLoader{Kind: game.LoaderGDWeave}
	require.NoError(t, c.Refresh(root, "config", loader))
	for i := range c.Files {
		c.Files[i].DisplayName = "Example Mod"
	}
	c.resolveDuplicateNames()

	require.Len(t, c.Files, 2)
	assert.NotEqual(t, c.Files[0].DisplayName, c.Files[1].DisplayName)
	assert.Contains(t, c.Files[0].DisplayName, "Example Mod (")
}

func TestRefreshLinksMatchesByStem(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, root, "BepInEx/config/Alice-Mod.cfg", "[General]\n\nKey = v\n")

	c := NewCache()
	require.NoError(t, c.Refresh(root, "BepInEx/config", bepinexLoader()))

	c.RefreshLinks([]struct{ UUID, Name string }{
		{UUID: "uuid-1", Name: "Alice-Mod"},
		{UUID: "uuid-2", Name: "Unrelated"},
	})

	assert.Equal(t, "BepInEx/config/Alice-Mod.cfg", c.LinkedConfig["uuid-1"])
	_, linked := c.LinkedConfig["uuid-2"]
	assert.False(t, linked)
}
