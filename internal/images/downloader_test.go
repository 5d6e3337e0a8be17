package images

import (
	"context"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
)

func TestDownloadAllNamesAndExtensions(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/one.PNG"):
			w.Write([]byte("png-bytes"))
		case strings.HasSuffix(r.URL.Path, "/two"):
			w.Header().Set("Content-Type", "image/webp")
			w.Write([]byte("webp-bytes"))
		default:
			w.Header().Set("Content-Type", "application/octet-stream")
			w.Write([]byte("mystery-bytes"))
		}
	}))
	defer server.Close()

	d := NewDownloader(t.TempDir(), server.Client(), log.New(io.Discard, "", 0))
	saved := d.DownloadAll(context.Background(), []string{
		server.URL + "/one.PNG?size=large",
		server.URL + "/two",
		server.URL + "/three",
	})

	if len(saved) != 3 {
		t.Fatalf("saved = %v", saved)
	}
	wantNames := []string{"01.png", "02.webp", "03.jpg"}
	for i, path := range saved {
		if filepath.Base(path) != wantNames[i] {
			t.Fatalf("file %d = %s, want %s", i, filepath.Base(path), wantNames[i])
		}
	}
}

func TestDownloadAllSkipsFailures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "bad") {
			http.Error(w, "gone", http.StatusNotFound)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	d := NewDownloader(t.TempDir(), server.Client(), log.New(io.Discard, "", 0))
	saved := d.DownloadAll(context.Background(), []string{
		server.URL + "/bad.jpg",
		server.URL + "/good.jpg",
	})

	if len(saved) != 1 {
		t.Fatalf("saved = %v, want one surviving image", saved)
	}
	if filepath.Base(saved[0]) != "01.jpg" {
		t.Fatalf("surviving file = %s, want sequential naming to skip failures", filepath.Base(saved[0]))
	}
}

func TestDownloadAllEmpty(t *testing.T) {
	d := NewDownloader(t.TempDir(), nil, log.New(io.Discard, "", 0))
	if saved := d.DownloadAll(context.Background(), nil); len(saved) != 0 {
		t.Fatalf("saved = %v, want none", saved)
	}
}
