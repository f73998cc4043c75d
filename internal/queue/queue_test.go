package queue

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/galeproject/gale/internal/cache"
	"github.com/galeproject/gale/internal/game"
	"github.com/galeproject/gale/internal/ident"
	"github.com/galeproject/gale/internal/installer"
	"github.com/galeproject/gale/internal/registry"
)

func TestPushWithDepsOrdersDependenciesFirst(t *testing.T) {
	t.Parallel()

	a := ModInstall{Ident: ident.MustParseVersion("Owner-A-1.0.0")}
	deps := []ModInstall{{Ident: ident.MustParseVersion("Owner-B-1.0.0"), Enabled: true, Index: -1}}

	out := PushWithDeps([]ModInstall{a}, deps)
	require.Len(t, out, 2)
	assert.Equal(t, "Owner-B-1.0.0", out[0].Ident.String())
	assert.Equal(t, "Owner-A-1.0.0", out[1].Ident.String())
}

func TestPushWithDepsDedups(t *testing.T) {
	t.Parallel()

	a := ModInstall{Ident: ident.MustParseVersion("Owner-A-1.0.0")}
	deps := []ModInstall{{Ident: ident.MustParseVersion("Owner-A-1.0.0"), Enabled: true, Index: -1}}

	out := PushWithDeps([]ModInstall{a}, deps)
	assert.Len(t, out, 1)
}

type fakeDownloader struct{ data []byte }

func (f *fakeDownloader) Download(_ context.Context, _ ident.VersionIdent, onProgress func(int64)) ([]byte, error) {
	if onProgress != nil {
		onProgress(int64(len(f.data)))
	}
	return f.data, nil
}

type fakeTarget struct {
	dir  string
	mods []string
}

func (f *fakeTarget) Path() string { return f.dir }
func (f *fakeTarget) AppendMod(_ ModInstall, fullName string) string {
	f.mods = append(f.mods, fullName)
	return fullName
}
func (f *fakeTarget) RemoveByUUID(uuid string) {
	for i, m := range f.mods {
		if m == uuid {
			f.mods = append(f.mods[:i], f.mods[i+1:]...)
			return
		}
	}
}
func (f *fakeTarget) ForceRemove(uuid string) error {
	f.RemoveByUUID(uuid)
	return nil
}
func (f *fakeTarget) Save() error { return nil }

func zipBytes(t *testing.T) []byte {
	t.Helper()
	var buf []byte
	// minimal valid empty zip: a hand-written 22-byte end-of-central-directory record
	buf = append(buf, 0x50, 0x4B, 0x05, 0x06)
	buf = append(buf, make([]byte, 18)...)
	return buf
}

func TestQueuePushDedupesInFlight(t *testing.T) {
	t.Parallel()

	c, err := cache.New(t.TempDir())
	require.NoError(t, err)

	idx := registry.NewIndex()
	dl := &fakeDownloader{data: zipBytes(t)}

	q := New(c, dl, idx, func(ProfileTarget) (installer.Installer, error) {
		return installer.For(game.ModLoader{Kind: game.LoaderBepInEx})
	})

	target := &fakeTarget{dir: t.TempDir()}
	m := ModInstall{Ident: ident.MustParseVersion("Owner-A-1.0.0"), InstallTime: time.Now()}

	err = q.Push(context.Background(), target, []ModInstall{m, m}, PushOptions{})
	require.NoError(t, err)
	assert.Len(t, target.mods, 1)
}
