package tryon

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// DefaultMIME is assumed when an inline image carries no explicit type.
const DefaultMIME = "image/jpeg"

// ImageRef points at image data either as a fetchable URL or as inline
// bytes with a MIME type. Exactly one representation is populated.
type ImageRef struct {
	URL  string
	Data []byte
	MIME string
}

// InlineImage builds an inline ImageRef, defaulting the MIME type.
func InlineImage(data []byte, mime string) ImageRef {
	if mime == "" {
		mime = DefaultMIME
	}
	return ImageRef{Data: data, MIME: mime}
}

// RemoteImage builds a URL-backed ImageRef.
func RemoteImage(url string) ImageRef {
	return ImageRef{URL: url}
}

func (r ImageRef) IsZero() bool {
	return r.URL == "" && len(r.Data) == 0
}

func (r ImageRef) IsURL() bool {
	return r.URL != ""
}

// DataURI renders inline data as a data: URI. URL refs return their URL
// unchanged so the result is always something a browser can display.
func (r ImageRef) DataURI() string {
	if r.IsURL() {
		return r.URL
	}
	mime := r.MIME
	if mime == "" {
		mime = DefaultMIME
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(r.Data)
}

// String is the persistence form of the reference: the URL for remote
// refs, a data URI for inline ones.
func (r ImageRef) String() string {
	return r.DataURI()
}

// ParseImageRef interprets a client-supplied string as either a data URI
// or a remote URL.
func ParseImageRef(s string) (ImageRef, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return ImageRef{}, fmt.Errorf("empty image reference")
	}
	if strings.HasPrefix(s, "data:") {
		data, mime, err := parseDataURI(s)
		if err != nil {
			return ImageRef{}, err
		}
		return InlineImage(data, mime), nil
	}
	if strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://") {
		return RemoteImage(s), nil
	}
	return ImageRef{}, fmt.Errorf("image reference is neither a data URI nor an http(s) URL")
}

func parseDataURI(s string) (data []byte, mime string, err error) {
	rest := strings.TrimPrefix(s, "data:")
	comma := strings.IndexByte(rest, ',')
	if comma < 0 {
		return nil, "", fmt.Errorf("malformed data URI: missing comma")
	}
	meta, payload := rest[:comma], rest[comma+1:]
	if !strings.HasSuffix(meta, ";base64") {
		return nil, "", fmt.Errorf("unsupported data URI encoding (want base64)")
	}
	mime = strings.TrimSuffix(meta, ";base64")
	if mime == "" {
		mime = DefaultMIME
	}
	data, err = base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", fmt.Errorf("invalid base64 payload in data URI: %w", err)
	}
	return data, mime, nil
}

// fetchInline downloads a URL-backed ref and re-encodes it inline, for
// providers that only accept embedded image data.
func fetchInline(ctx context.Context, client *http.Client, ref ImageRef) (ImageRef, error) {
	if !ref.IsURL() {
		return ref, nil
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref.URL, nil)
	if err != nil {
		return ImageRef{}, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return ImageRef{}, fmt.Errorf("failed to fetch image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return ImageRef{}, fmt.Errorf("failed to fetch image, status: %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return ImageRef{}, err
	}
	mime := resp.Header.Get("Content-Type")
	if i := strings.IndexByte(mime, ';'); i >= 0 {
		mime = mime[:i]
	}
	if !strings.HasPrefix(mime, "image/") {
		mime = DefaultMIME
	}
	return InlineImage(data, mime), nil
}
