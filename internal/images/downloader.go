// Package images fetches captured listing photos to local files so they can
// be attached to the marketplace form's file inputs.
package images

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

var urlExtension = regexp.MustCompile(`(?i)\.(jpe?g|png|webp|gif|bmp)$`)

type Downloader struct {
	dir    string
	client *http.Client
	logger *log.Logger
}

func NewDownloader(dir string, client *http.Client, logger *log.Logger) *Downloader {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Downloader{dir: dir, client: client, logger: logger}
}

// DownloadAll fetches each URL into the downloader's directory, naming files
// sequentially. Individual failures are logged and skipped; the returned
// paths are the images that actually saved.
func (d *Downloader) DownloadAll(ctx context.Context, urls []string) []string {
	if len(urls) == 0 {
		return nil
	}
	if err := os.MkdirAll(d.dir, 0o755); err != nil {
		d.logger.Printf("create images dir: %v", err)
		return nil
	}

	saved := make([]string, 0, len(urls))
	index := 1
	for _, url := range urls {
		path, err := d.downloadOne(ctx, url, index)
		if err != nil {
			d.logger.Printf("skip image %s: %v", url, err)
			continue
		}
		saved = append(saved, path)
		index++
	}
	return saved
}

func (d *Downloader) downloadOne(ctx context.Context, url string, index int) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	name := fmt.Sprintf("%02d%s", index, pickExtension(url, resp.Header.Get("Content-Type")))
	path := filepath.Join(d.dir, name)
	tmpPath := path + ".tmp"

	file, err := os.Create(tmpPath)
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}
	if _, err := io.Copy(file, resp.Body); err != nil {
		file.Close()
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("write file: %w", err)
	}
	if err := file.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("close file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("commit file: %w", err)
	}
	return path, nil
}

// pickExtension prefers the URL suffix, then the response content type for
// webp/png, and defaults to jpg.
func pickExtension(url, contentType string) string {
	base := url
	if i := strings.IndexByte(base, '?'); i >= 0 {
		base = base[:i]
	}
	if m := urlExtension.FindStringSubmatch(base); m != nil {
		return "." + strings.ToLower(m[1])
	}
	lowered := strings.ToLower(contentType)
	if strings.Contains(lowered, "webp") {
		return ".webp"
	}
	if strings.Contains(lowered, "png") {
		return ".png"
	}
	return ".jpg"
}
