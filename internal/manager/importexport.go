package manager

import (
	"context"
	"encoding/base64"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/galeproject/gale/internal/archive"
	"github.com/galeproject/gale/internal/blobstore"
	"github.com/galeproject/gale/internal/exportpkg"
	"github.com/galeproject/gale/internal/paths"
	"github.com/galeproject/gale/internal/profile"
	"github.com/galeproject/gale/internal/queue"
)

// archiveWarn adapts internal/archive's Warner signature to the standard
// logger; an archive entry escaping its destination is logged and skipped
// rather than aborting the operation.
func archiveWarn(format string, args ...any) { log.Printf("import: "+format, args...) }

// ImportData runs the full r2x import flow:
// parse the manifest, resolve mods against the registry, create a new
// profile (or reuse the one with the same name), extract the remaining config files into it, and enqueue the
// resolved installs. Unresolved mod entries are returned alongside the new
// profile rather than aborting the import.
func (m *Manager) ImportData(ctx context.Context, gameSlug string, data []byte, profileName string) (*profile.Profile, []string, error) {
	zr, err := archive.OpenBytes(data)
	if err != nil {
		return nil, nil, fmt.Errorf("manager: import: %w", err)
	}
	manifest, err := exportpkg.ParseManifest(zr)
	if err != nil {
		return nil, nil, fmt.Errorf("manager: import: %w", err)
	}
	if profileName == "" {
		profileName = manifest.ProfileName
	}

	m.mu.Lock()
	mg, ok := m.mm.Games[gameSlug]
	if !ok {
		m.mu.Unlock()
		return nil, nil, fmt.Errorf("manager: unknown managed game %q", gameSlug)
	}
	rt, err := m.runtimeFor(gameSlug)
	if err != nil {
		m.mu.Unlock()
		return nil, nil, err
	}

	// A profile with the same name is overwritten in place; otherwise a
	// fresh one is created.
	var p *profile.Profile
	for i := range mg.Profiles {
		if mg.Profiles[i].Name == profileName {
			p = &mg.Profiles[i]
			p.Mods = nil
			break
		}
	}
	if p == nil {
		p, err = mg.CreateProfile(profileName, "")
		if err != nil {
			m.mu.Unlock()
			return nil, nil, err
		}
	}

	if err := exportpkg.ExtractConfigFiles(zr, p.Path, archiveWarn); err != nil {
		m.mu.Unlock()
		return nil, nil, err
	}
	result := exportpkg.ResolveManifest(manifest, rt.idx)
	p.IgnoredUpdates = append([]string(nil), manifest.IgnoredUpdates...)

	if err := m.persistProfile(ctx, mg.ID, p); err != nil {
		m.mu.Unlock()
		return nil, nil, err
	}
	if err := m.persistGame(ctx, mg); err != nil {
		m.mu.Unlock()
		return nil, nil, err
	}

	target := &profileTarget{m: m, ctx: ctx, gameID: mg.ID, gameSlug: gameSlug, p: p}
	q := rt.queue
	installs := result.Installs
	m.mu.Unlock()

	if len(installs) > 0 {
		if err := q.Push(ctx, target, installs, queue.PushOptions{SendProgress: true}); err != nil {
			return p, result.Unresolved, err
		}
	}
	return p, result.Unresolved, nil
}

// ImportFile is ImportData's entry point for a host that already has the
// archive's bytes on disk.
func (m *Manager) ImportFile(ctx context.Context, gameSlug, path, profileName string) (*profile.Profile, []string, error) {
	data, err := readAll(path)
	if err != nil {
		return nil, nil, err
	}
	return m.ImportData(ctx, gameSlug, data, profileName)
}

// ImportCode downloads a shared code's payload and runs the standard
// import flow against it.
func (m *Manager) ImportCode(ctx context.Context, gameSlug, code, profileName string) (*profile.Profile, []string, error) {
	m.mu.Lock()
	client := m.client
	m.mu.Unlock()

	raw, err := client.GetLegacyProfile(ctx, code)
	if err != nil {
		return nil, nil, fmt.Errorf("manager: import code %s: %w", code, err)
	}
	data, err := stripLegacyPrefix(raw)
	if err != nil {
		return nil, nil, fmt.Errorf("manager: import code %s: %w", code, err)
	}
	return m.ImportData(ctx, gameSlug, data, profileName)
}

// stripLegacyPrefix undoes the legacy-profile encoding: drop the
// "#r2modman" marker line and base64-decode the rest back into zip bytes.
func stripLegacyPrefix(raw []byte) ([]byte, error) {
	body := strings.TrimPrefix(string(raw), "#r2modman\n")
	data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(body))
	if err != nil {
		return nil, fmt.Errorf("decode shared profile payload: %w", err)
	}
	return data, nil
}

// readAll loads a file's entire contents, the small wrapper ImportFile
// needs around os.ReadFile for a consistent error prefix.
func readAll(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("manager: read %s: %w", path, err)
	}
	return data, nil
}

// ImportLocalMod ingests an arbitrary archive as a LocalMod, appends it to
// a profile, and persists the result.
func (m *Manager) ImportLocalMod(ctx context.Context, gameSlug string, profileID int64, archivePath string) (string, error) {
	m.mu.Lock()
	mg, p, err := m.gameAndProfile(gameSlug, profileID)
	if err != nil {
		m.mu.Unlock()
		return "", err
	}
	inst, err := m.installerForGame(gameSlug)
	if err != nil {
		m.mu.Unlock()
		return "", err
	}
	m.mu.Unlock()

	// localCacheRoot holds every locally-imported mod's extracted files;
	// mode-Separate routing (package_name-qualified target dirs) keeps
	// distinct local mods from colliding within the shared root, the same
	// way internal/cache's content-addressed tree shares one root across
	// every Thunderstore package.
	localCacheRoot := paths.CacheDir(gameSlug) + "/_local"

	store := blobstore.Store{Root: paths.LocalModsDir(gameSlug), Tmp: paths.LocalModsTmpDir(gameSlug)}
	result, err := exportpkg.ImportLocalMod(ctx, store, archivePath, inst, localCacheRoot, archiveWarn)
	if err != nil {
		return "", err
	}

	fullName := "local-" + result.Name + "-" + result.SHA256Hex[:8]

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, mod := range p.Mods {
		if mod.LocalHash == result.SHA256Hex {
			return "", fmt.Errorf("manager: %s is already imported into this profile (same content hash)", result.Name)
		}
	}

	if err := inst.Install(localCacheRoot, p.Path, fullName, true); err != nil {
		return "", fmt.Errorf("manager: install local mod %s: %w", result.Name, err)
	}

	uuid := p.AppendProfileMod(profile.ProfileMod{
		Variant:   profile.VariantLocal,
		LocalName: fullName,
		LocalHash: result.SHA256Hex,
		Enabled:   true,
	})
	if err := m.persistProfile(ctx, mg.ID, p); err != nil {
		return "", err
	}
	return uuid, nil
}

// ExportCode zips a profile into an r2x archive and uploads it via the
// legacy-profile code-sharing endpoint, returning the sharable key.
func (m *Manager) ExportCode(ctx context.Context, gameSlug string, profileID int64) (string, error) {
	m.mu.Lock()
	_, p, err := m.gameAndProfile(gameSlug, profileID)
	client := m.client
	m.mu.Unlock()
	if err != nil {
		return "", err
	}
	return exportpkg.ExportCode(ctx, client, p, gameSlug)
}

// ExportFile writes a profile's r2x archive to destPath.
func (m *Manager) ExportFile(gameSlug string, profileID int64, destPath string) error {
	m.mu.Lock()
	_, p, err := m.gameAndProfile(gameSlug, profileID)
	m.mu.Unlock()
	if err != nil {
		return err
	}
	return exportpkg.ExportProfile(p, gameSlug, destPath)
}

// ExportPack builds a modpack archive in memory from a profile, ready to
// hand to UploadPack.
func (m *Manager) ExportPack(gameSlug string, profileID int64, args exportpkg.PublishArgs) ([]byte, error) {
	m.mu.Lock()
	_, p, err := m.gameAndProfile(gameSlug, profileID)
	m.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return exportpkg.BuildArchive(args, p)
}

// UploadPack publishes an already-built modpack archive through the
// three-phase upload and submission flow.
func (m *Manager) UploadPack(ctx context.Context, args exportpkg.PublishArgs, archiveBytes []byte) error {
	m.mu.Lock()
	client := m.client
	m.mu.Unlock()
	return exportpkg.Publish(ctx, client, args, archiveBytes)
}
