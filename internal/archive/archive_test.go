package archive

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildZip(t *testing.T, entries map[string]string) *zip.Reader {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range entries {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	return zr
}

func TestNormalizeEntryName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "plugins/Mod.dll", NormalizeEntryName(`plugins\Mod.dll`))
	assert.Equal(t, "a/b", NormalizeEntryName("a//./b"))
	assert.Equal(t, "..", NormalizeEntryName("a/../.."))
}

func TestSafePathRejectsEscapes(t *testing.T) {
	t.Parallel()

	base := t.TempDir()

	got, ok := SafePath(base, "plugins/Mod.dll")
	require.True(t, ok)
	assert.Equal(t, filepath.Join(base, "plugins", "Mod.dll"), got)

	_, ok = SafePath(base, "../outside.dll")
	assert.False(t, ok)

	_, ok = SafePath(base, "a/../../outside.dll")
	assert.False(t, ok)

	_, ok = SafePath(base, ".")
	assert.False(t, ok)
}

func TestForEachFileSkipsEscapingEntries(t *testing.T) {
	t.Parallel()

	zr := buildZip(t, map[string]string{
		"ok.txt":        "fine",
		"../escape.txt": "nope",
		`sub\win.txt`:   "windows separators",
	})

	var warned int
	var seen []string
	err := ForEachFile(zr, func(string, ...any) { warned++ }, func(relPath string, f *zip.File) error {
		seen = append(seen, relPath)
		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, 1, warned)
	assert.ElementsMatch(t, []string{"ok.txt", "sub/win.txt"}, seen)
}

func TestExtractAllWritesFiles(t *testing.T) {
	t.Parallel()

	zr := buildZip(t, map[string]string{
		"plugins/Mod.dll": "binary",
		"readme.txt":      "docs",
	})

	dest := t.TempDir()
	require.NoError(t, ExtractAll(zr, dest, nil))

	data, err := os.ReadFile(filepath.Join(dest, "plugins", "Mod.dll"))
	require.NoError(t, err)
	assert.Equal(t, "binary", string(data))
}

func TestWriteZipRoundTrip(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "config"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "config", "a.cfg"), []byte("x = 1"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "skip.tmp"), []byte("no"), 0o644))

	dest := filepath.Join(t.TempDir(), "out.zip")
	err := WriteZip(dest, root, func(relPath string) bool {
		return filepath.Ext(relPath) == ".tmp"
	})
	require.NoError(t, err)

	rc, err := OpenFile(dest)
	require.NoError(t, err)
	defer rc.Close()

	require.Len(t, rc.File, 1)
	assert.Equal(t, "config/a.cfg", rc.File[0].Name)
}
