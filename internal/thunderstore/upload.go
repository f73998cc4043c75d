package thunderstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/hashicorp/go-retryablehttp"
)

// UploadPart is one presigned part of a usermedia multipart upload, as
// returned by initiate-upload.
type UploadPart struct {
	PartNumber int    `json:"part_number"`
	URL        string `json:"url"`
	Offset     int64  `json:"offset"`
	Length     int64  `json:"length"`
}

// initiateUploadResponse is the body of POST /usermedia/initiate-upload.
type initiateUploadResponse struct {
	UserMedia struct {
		UUID string `json:"uuid"`
	} `json:"user_media"`
	UploadURLs []UploadPart `json:"upload_urls"`
}

// InitiateUpload begins a three-phase multipart upload for a file of the
// given name and size, returning the media UUID and the presigned part URLs.
func (c *Client) InitiateUpload(ctx context.Context, filename string, sizeBytes int64) (string, []UploadPart, error) {
	body, err := json.Marshal(map[string]any{
		"filename":        filename,
		"file_size_bytes": sizeBytes,
	})
	if err != nil {
		return "", nil, fmt.Errorf("thunderstore: encode initiate-upload request: %w", err)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, c.url("/api/experimental/usermedia/initiate-upload/"), body)
	if err != nil {
		return "", nil, fmt.Errorf("thunderstore: build initiate-upload request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.authed(req)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return "", nil, fmt.Errorf("thunderstore: initiate upload: %w", err)
	}
	defer resp.Body.Close()

	if err := statusErr(resp); err != nil {
		return "", nil, fmt.Errorf("thunderstore: initiate upload: %w", err)
	}

	var out initiateUploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", nil, fmt.Errorf("thunderstore: decode initiate-upload response: %w", err)
	}
	return out.UserMedia.UUID, out.UploadURLs, nil
}

// UploadPart PUTs the [offset, offset+length) slice of data to the
// presigned part URL and returns the ETag the server assigned it.
func (c *Client) UploadPart(ctx context.Context, part UploadPart, data []byte) (string, error) {
	if part.Offset+part.Length > int64(len(data)) {
		return "", fmt.Errorf("thunderstore: part %d range [%d,%d) exceeds payload size %d", part.PartNumber, part.Offset, part.Offset+part.Length, len(data))
	}
	slice := data[part.Offset : part.Offset+part.Length]

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPut, part.URL, slice)
	if err != nil {
		return "", fmt.Errorf("thunderstore: build part %d request: %w", part.PartNumber, err)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return "", fmt.Errorf("thunderstore: upload part %d: %w", part.PartNumber, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if err := statusErr(resp); err != nil {
		return "", fmt.Errorf("thunderstore: upload part %d: %w", part.PartNumber, err)
	}

	etag := strings.Trim(resp.Header.Get("ETag"), `"`)
	if etag == "" {
		return "", fmt.Errorf("thunderstore: part %d response missing ETag", part.PartNumber)
	}
	return etag, nil
}

// CompletedPart pairs a part number with the ETag captured from UploadPart,
// as required by the finish-upload request body.
type CompletedPart struct {
	PartNumber int    `json:"part_number"`
	Tag        string `json:"tag"`
}

// FinishUpload completes a multipart upload.
func (c *Client) FinishUpload(ctx context.Context, mediaUUID string, parts []CompletedPart) error {
	body, err := json.Marshal(map[string]any{"parts": parts})
	if err != nil {
		return fmt.Errorf("thunderstore: encode finish-upload request: %w", err)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost,
		c.url("/api/experimental/usermedia/%s/finish-upload/", mediaUUID), body)
	if err != nil {
		return fmt.Errorf("thunderstore: build finish-upload request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.authed(req)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("thunderstore: finish upload %s: %w", mediaUUID, err)
	}
	defer resp.Body.Close()

	return statusErr(resp)
}

// AbortUpload cancels an in-progress multipart upload, called when a part
// upload or finish-upload fails.
func (c *Client) AbortUpload(ctx context.Context, mediaUUID string) error {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost,
		c.url("/api/experimental/usermedia/%s/abort-upload/", mediaUUID), nil)
	if err != nil {
		return fmt.Errorf("thunderstore: build abort-upload request: %w", err)
	}
	c.authed(req)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("thunderstore: abort upload %s: %w", mediaUUID, err)
	}
	defer resp.Body.Close()

	return statusErr(resp)
}

// SubmitRequest is the body of POST /submission/submit.
type SubmitRequest struct {
	UploadUUID          string              `json:"upload_uuid"`
	AuthorName          string              `json:"author_name"`
	Categories          []string            `json:"categories"`
	Communities         []string            `json:"communities"`
	CommunityCategories map[string][]string `json:"community_categories,omitempty"`
	HasNSFWContent      bool                `json:"has_nsfw_content"`
}

// submitErrorBody decodes a 400 response's `file` field, the one
// Thunderstore uses to surface a human-readable validation message.
type submitErrorBody struct {
	File []string `json:"file"`
}

// Submit uploads the finished media as a new package version.
func (c *Client) Submit(ctx context.Context, req SubmitRequest) error {
	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("thunderstore: encode submit request: %w", err)
	}

	httpReq, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, c.url("/api/experimental/submission/submit/"), body)
	if err != nil {
		return fmt.Errorf("thunderstore: build submit request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	c.authed(httpReq)

	resp, err := c.HTTP.Do(httpReq)
	if err != nil {
		return fmt.Errorf("thunderstore: submit: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusBadRequest {
		var buf bytes.Buffer
		io.Copy(&buf, resp.Body)

		var eb submitErrorBody
		if json.Unmarshal(buf.Bytes(), &eb) == nil && len(eb.File) > 0 {
			return fmt.Errorf("thunderstore: submission rejected: %s", strings.Join(eb.File, "; "))
		}
		return fmt.Errorf("thunderstore: submission rejected: %s", buf.String())
	}

	return statusErr(resp)
}
