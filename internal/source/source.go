// Package source acquires images for extraction, either from raw encoded
// bytes or from a remote URL. Fetch failures and decode failures are
// distinct error types so callers can tell network problems from content
// problems.
package source

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"strings"
	"time"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// DecodeError indicates malformed or unsupported image bytes.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string { return fmt.Sprintf("image decode failed: %v", e.Err) }
func (e *DecodeError) Unwrap() error { return e.Err }

// FetchError indicates the remote image source was unreachable or returned
// a non-success status.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string { return fmt.Sprintf("fetch %s failed: %v", e.URL, e.Err) }
func (e *FetchError) Unwrap() error { return e.Err }

// DefaultFetchTimeout bounds remote image downloads.
const DefaultFetchTimeout = 30 * time.Second

// Fetcher downloads and decodes remote images.
type Fetcher struct {
	client *http.Client
}

// NewFetcher creates a Fetcher with the given HTTP client. A nil client
// uses a default with DefaultFetchTimeout.
func NewFetcher(client *http.Client) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: DefaultFetchTimeout}
	}
	return &Fetcher{client: client}
}

// DecodeBytes decodes an encoded image (jpeg, png, bmp, tiff, webp).
func DecodeBytes(data []byte) (image.Image, error) {
	if len(data) == 0 {
		return nil, &DecodeError{Err: errors.New("empty image data")}
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, &DecodeError{Err: err}
	}
	return img, nil
}

// DecodeBase64 decodes a base64 payload, tolerating a data-URL prefix, then
// decodes the image bytes.
func DecodeBase64(s string) (image.Image, error) {
	if idx := strings.IndexByte(s, ','); idx >= 0 && strings.HasPrefix(s, "data:") {
		s = s[idx+1:]
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(s))
	if err != nil {
		return nil, &DecodeError{Err: fmt.Errorf("invalid base64: %w", err)}
	}
	return DecodeBytes(raw)
}

// Fetch downloads the image at url and decodes it. Transport errors and
// non-2xx responses yield a *FetchError; undecodable bodies a *DecodeError.
func (f *Fetcher) Fetch(ctx context.Context, url string) (image.Image, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &FetchError{URL: url, Err: fmt.Errorf("unexpected status %s", resp.Status)}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	return DecodeBytes(data)
}
