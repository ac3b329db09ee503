package utils

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"
)

// DownloadToS3 downloads a remote image and uploads it to S3 under the
// given folder prefix. Returns the object key. Used by the catalog
// importer so we never serve hotlinked images.
func DownloadToS3(ctx context.Context, url, folderPrefix string) (string, error) {
	filename := filepath.Base(url)
	if strings.Contains(filename, "?") {
		filename = strings.Split(filename, "?")[0]
	}
	if filename == "" || filename == "." || len(filename) > 255 {
		filename = "image.jpg"
	}
	// ensure unique names
	objectKey := fmt.Sprintf("%s/%d_%s", folderPrefix, time.Now().UnixNano(), filename)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")

	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("bad status: %s", resp.Status)
	}

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	return UploadFileToS3(ctx, bytes.NewReader(bodyBytes), objectKey, contentType)
}
