// Package thunderstore implements the wire-level HTTP client for
// Thunderstore-compatible endpoints: package downloads, the
// legacy-profile code-sharing endpoint, and the usermedia multipart upload
// flow used by modpack publishing.
package thunderstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/hashicorp/go-cleanhttp"
	"github.com/hashicorp/go-retryablehttp"

	"github.com/galeproject/gale/internal/ident"
)

// Client wraps a resilient HTTP client bound to one Thunderstore-compatible
// host, shared by the install queue's Downloader dependency and the
// export/import subsystem.
type Client struct {
	HTTP  *retryablehttp.Client
	Host  string
	Token string // bearer token for authenticated endpoints, set out-of-band
}

// New builds a Client against host (e.g. "thunderstore.io").
func New(host string) *Client {
	rc := retryablehttp.NewClient()
	rc.HTTPClient = cleanhttp.DefaultPooledClient()
	rc.RetryMax = 3
	rc.Logger = nil
	return &Client{HTTP: rc, Host: host}
}

func (c *Client) url(format string, args ...any) string {
	return fmt.Sprintf("https://%s%s", c.Host, fmt.Sprintf(format, args...))
}

func (c *Client) authed(req *retryablehttp.Request) {
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
}

// Download fetches a package version's archive bytes, reporting each chunk's byte count via onProgress
// as it lands. It satisfies internal/queue.Downloader; the queue
// aggregates the deltas into its progress events.
func (c *Client) Download(ctx context.Context, v ident.VersionIdent, onProgress func(n int64)) ([]byte, error) {
	url := c.url("/package/download/%s/%s/%s/", v.Owner(), v.Name(), v.Version())

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("thunderstore: build download request: %w", err)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("thunderstore: download %s: %w", v.String(), err)
	}
	defer resp.Body.Close()

	if err := statusErr(resp); err != nil {
		return nil, fmt.Errorf("thunderstore: download %s: %w", v.String(), err)
	}

	buf := &progressBuffer{onProgress: onProgress}
	if _, err := io.Copy(buf, resp.Body); err != nil {
		return nil, fmt.Errorf("thunderstore: stream download %s: %w", v.String(), err)
	}
	return buf.buf.Bytes(), nil
}

// progressBuffer wraps bytes.Buffer, reporting each write's byte count so
// download progress can be streamed to the install queue's event channel.
type progressBuffer struct {
	buf        bytes.Buffer
	onProgress func(n int64)
}

func (p *progressBuffer) Write(b []byte) (int, error) {
	n, err := p.buf.Write(b)
	if p.onProgress != nil && n > 0 {
		p.onProgress(int64(n))
	}
	return n, err
}

// StatusError distinguishes HTTP failures: 401 means the bearer token is
// invalid, 404 means the resource is missing, anything else is a generic
// network error.
type StatusError struct {
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string { return fmt.Sprintf("unexpected status %s", e.Status) }

// AuthInvalid reports whether the error represents an invalid/expired
// bearer token (HTTP 401).
func (e *StatusError) AuthInvalid() bool { return e.StatusCode == http.StatusUnauthorized }

// Missing reports whether the error represents a missing resource (HTTP 404).
func (e *StatusError) Missing() bool { return e.StatusCode == http.StatusNotFound }

func statusErr(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	return &StatusError{StatusCode: resp.StatusCode, Status: resp.Status}
}

// CreateLegacyProfile uploads a base64-with-prefix encoded profile zip and
// returns the sharing key.
func (c *Client) CreateLegacyProfile(ctx context.Context, payload []byte) (string, error) {
	url := c.url("/api/experimental/legacyprofile/create/")

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, url, payload)
	if err != nil {
		return "", fmt.Errorf("thunderstore: build legacyprofile request: %w", err)
	}
	req.Header.Set("Content-Type", "application/octet-stream")
	c.authed(req)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return "", fmt.Errorf("thunderstore: create legacy profile: %w", err)
	}
	defer resp.Body.Close()

	if err := statusErr(resp); err != nil {
		return "", fmt.Errorf("thunderstore: create legacy profile: %w", err)
	}

	var body struct {
		Key string `json:"key"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("thunderstore: decode legacyprofile response: %w", err)
	}
	return body.Key, nil
}

// GetLegacyProfile retrieves a previously shared profile's raw text payload
// by its key.
func (c *Client) GetLegacyProfile(ctx context.Context, key string) ([]byte, error) {
	url := c.url("/api/experimental/legacyprofile/get/%s/", key)

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("thunderstore: build legacyprofile get request: %w", err)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("thunderstore: get legacy profile %s: %w", key, err)
	}
	defer resp.Body.Close()

	if err := statusErr(resp); err != nil {
		return nil, fmt.Errorf("thunderstore: get legacy profile %s: %w", key, err)
	}
	return io.ReadAll(resp.Body)
}
