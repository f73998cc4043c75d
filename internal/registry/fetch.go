package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/hashicorp/go-cleanhttp"
	"github.com/hashicorp/go-retryablehttp"
)

// excludedPackages lists full_names skipped during fetch; mod-manager
// packages themselves don't belong in an installable mod list.
var excludedPackages = map[string]bool{
	"Kesomannen-gale": true,
	"ebkr-r2modman":   true,
}

// ProgressFunc is invoked at most every 250ms during a fetch with the
// number of packages parsed so far.
type ProgressFunc func(count int)

// Client performs registry fetches against a Thunderstore-compatible host.
type Client struct {
	HTTP *retryablehttp.Client
	Host string // e.g. "thunderstore.io"
}

// NewClient builds a Client with sane retry defaults; registry fetches
// run unattended in the background, so transient failures retry rather
// than surface.
func NewClient(host string) *Client {
	rc := retryablehttp.NewClient()
	rc.HTTPClient = cleanhttp.DefaultPooledClient()
	rc.RetryMax = 3
	rc.Logger = nil
	return &Client{HTTP: rc, Host: host}
}

// Fetch streams the package list for a game slug, calling onProgress
// periodically, and returns a freshly built Index. Parse errors for a
// single package are skipped, not fatal.
func (c *Client) Fetch(ctx context.Context, gameSlug string, onProgress ProgressFunc) (*Index, error) {
	url := fmt.Sprintf("https://%s/c/%s/api/v1/package/", c.Host, gameSlug)

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("registry: build request: %w", err)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("registry: fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("registry: fetch %s: unexpected status %s", url, resp.Status)
	}

	return decodeStream(resp.Body, onProgress)
}

// decodeStream parses a JSON array of PackageListing objects one element
// at a time so memory use stays bounded regardless of registry size.
func decodeStream(r io.Reader, onProgress ProgressFunc) (*Index, error) {
	dec := json.NewDecoder(r)

	if _, err := dec.Token(); err != nil { // consume opening '['
		return nil, fmt.Errorf("registry: decode stream start: %w", err)
	}

	idx := NewIndex()
	count := 0
	lastEmit := time.Time{}

	for dec.More() {
		// Decode the raw element first so one bad package can be logged
		// and skipped without desyncing the token stream.
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("registry: decode package: %w", err)
		}

		var p PackageListing
		if err := json.Unmarshal(raw, &p); err != nil {
			log.Printf("registry: skipping malformed package: %v", err)
			continue
		}

		count++
		if excludedPackages[p.FullName] {
			continue
		}
		idx.Insert(p)

		if onProgress != nil && time.Since(lastEmit) >= 250*time.Millisecond {
			onProgress(count)
			lastEmit = time.Now()
		}
	}

	if _, err := dec.Token(); err != nil { // consume closing ']'
		return nil, fmt.Errorf("registry: decode stream end: %w", err)
	}

	if onProgress != nil {
		onProgress(count)
	}

	return idx, nil
}

// CachePath returns the per-game registry cache file path, e.g.
// "<dataDir>/thunderstore_cache.json".
func CachePath(gameDataDir string) string {
	return filepath.Join(gameDataDir, "thunderstore_cache.json")
}

// LoadCache reads a previously saved index from disk, returning a nil
// index (not an error) when no cache file exists yet.
func LoadCache(path string) (*Index, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("registry: read cache %s: %w", path, err)
	}

	var list []PackageListing
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("registry: parse cache %s: %w", path, err)
	}

	idx := NewIndex()
	for _, p := range list {
		idx.Insert(p)
	}
	return idx, nil
}

// SaveCache atomically writes the index to its cache file, only called
// after a fetch completes in full so a failed pass never clobbers the
// last good snapshot.
func SaveCache(path string, idx *Index) error {
	data, err := json.Marshal(idx.All())
	if err != nil {
		return fmt.Errorf("registry: encode cache: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("registry: mkdir: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("registry: write cache: %w", err)
	}
	return os.Rename(tmp, path)
}
