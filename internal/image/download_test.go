package image

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"codeberg.org/snonux/wordtale/internal/testutil"
)

func TestDownloader_Download(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok.png":
			_, _ = w.Write(testutil.PNGData())
		case "/big.png":
			_, _ = w.Write([]byte(strings.Repeat("x", 100)))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	tmpDir := t.TempDir()

	t.Run("success", func(t *testing.T) {
		d := NewDownloader(nil)
		dest := filepath.Join(tmpDir, "nested", "ok.png")
		if err := d.Download(context.Background(), server.URL+"/ok.png", dest); err != nil {
			t.Fatalf("Download() error = %v", err)
		}
		testutil.AssertFileExists(t, dest)
	})

	t.Run("too large", func(t *testing.T) {
		d := NewDownloader(&DownloadOptions{MaxSizeBytes: 10})
		dest := filepath.Join(tmpDir, "big.png")
		err := d.Download(context.Background(), server.URL+"/big.png", dest)
		if err == nil || !strings.Contains(err.Error(), "exceeds maximum size") {
			t.Errorf("Expected size error, got %v", err)
		}
		testutil.AssertFileNotExists(t, dest)
	})

	t.Run("http error", func(t *testing.T) {
		d := NewDownloader(nil)
		dest := filepath.Join(tmpDir, "missing.png")
		err := d.Download(context.Background(), server.URL+"/missing.png", dest)
		if err == nil || !strings.Contains(err.Error(), "HTTP 404") {
			t.Errorf("Expected HTTP 404 error, got %v", err)
		}
		testutil.AssertFileNotExists(t, dest)
	})
}
