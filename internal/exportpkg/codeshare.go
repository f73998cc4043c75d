package exportpkg

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/galeproject/gale/internal/profile"
	"github.com/galeproject/gale/internal/registry"
	"github.com/galeproject/gale/internal/thunderstore"
)

// legacyProfilePrefix marks a code-shared payload as an r2modman-compatible
// legacy profile export, the convention every r2modman-family client
// expects when decoding a shared code's body.
const legacyProfilePrefix = "#r2modman\n"

// ExportCode zips p into an r2x archive in memory, base64-encodes it behind
// the legacy profile prefix, and uploads it through the legacy-profile
// endpoint, returning the sharable key.
func ExportCode(ctx context.Context, client *thunderstore.Client, p *profile.Profile, gameSlug string) (string, error) {
	zipBytes, err := exportZipBytes(p, gameSlug)
	if err != nil {
		return "", err
	}

	encoded := base64.StdEncoding.EncodeToString(zipBytes)
	payload := []byte(legacyProfilePrefix + encoded)

	key, err := client.CreateLegacyProfile(ctx, payload)
	if err != nil {
		return "", fmt.Errorf("exportpkg: export code: %w", err)
	}
	return key, nil
}

// ImportCode downloads a shared code's payload, strips the legacy-profile
// prefix, decodes it, and resolves its manifest against idx.
func ImportCode(ctx context.Context, client *thunderstore.Client, key string, idx *registry.Index) (ImportResult, error) {
	raw, err := client.GetLegacyProfile(ctx, key)
	if err != nil {
		return ImportResult{}, fmt.Errorf("exportpkg: import code %s: %w", key, err)
	}

	body := strings.TrimPrefix(string(raw), legacyProfilePrefix)
	zipBytes, err := base64.StdEncoding.DecodeString(strings.TrimSpace(body))
	if err != nil {
		return ImportResult{}, fmt.Errorf("exportpkg: import code %s: decode payload: %w", key, err)
	}

	zr, err := openZipBytes(zipBytes)
	if err != nil {
		return ImportResult{}, fmt.Errorf("exportpkg: import code %s: %w", key, err)
	}

	manifest, err := ParseManifest(zr)
	if err != nil {
		return ImportResult{}, fmt.Errorf("exportpkg: import code %s: %w", key, err)
	}

	return ResolveManifest(manifest, idx), nil
}

// exportZipBytes builds an r2x archive for p entirely in memory, the form
// ExportCode needs before it can base64-encode the payload.
func exportZipBytes(p *profile.Profile, gameSlug string) ([]byte, error) {
	manifest, err := buildManifest(p, gameSlug)
	if err != nil {
		return nil, err
	}

	yamlBytes, err := yaml.Marshal(manifest)
	if err != nil {
		return nil, fmt.Errorf("exportpkg: encode manifest: %w", err)
	}

	var buf bytes.Buffer
	if err := writeR2XZip(&buf, p.Path, yamlBytes); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
