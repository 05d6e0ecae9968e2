package image

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-resty/resty/v2"
)

// DownloadOptions configures image download behavior
type DownloadOptions struct {
	MaxSizeBytes int64         // Maximum file size to download (0 = no limit)
	Timeout      time.Duration // Timeout of one download
}

// DefaultDownloadOptions returns sensible defaults for image downloads
func DefaultDownloadOptions() *DownloadOptions {
	return &DownloadOptions{
		MaxSizeBytes: 20 * 1024 * 1024, // 20MB
		Timeout:      60 * time.Second,
	}
}

// Downloader fetches generated images that the API returns as URLs
type Downloader struct {
	client  *resty.Client
	options *DownloadOptions
}

// NewDownloader creates a new image downloader
func NewDownloader(options *DownloadOptions) *Downloader {
	if options == nil {
		options = DefaultDownloadOptions()
	}
	return &Downloader{
		client:  resty.New().SetTimeout(options.Timeout),
		options: options,
	}
}

// Download stores the image at url in outputPath
func (d *Downloader) Download(ctx context.Context, url, outputPath string) error {
	if dir := filepath.Dir(outputPath); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	resp, err := d.client.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		Get(url)
	if err != nil {
		return fmt.Errorf("failed to download image: %w", err)
	}
	body := resp.RawBody()
	defer body.Close()

	if resp.StatusCode() != http.StatusOK {
		return fmt.Errorf("failed to download image: HTTP %d", resp.StatusCode())
	}

	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	if err := d.copyLimited(file, body); err != nil {
		os.Remove(outputPath) // Clean up on error
		return err
	}
	return nil
}

func (d *Downloader) copyLimited(dst io.Writer, src io.Reader) error {
	if d.options.MaxSizeBytes <= 0 {
		if _, err := io.Copy(dst, src); err != nil {
			return fmt.Errorf("failed to write file: %w", err)
		}
		return nil
	}

	written, err := io.CopyN(dst, src, d.options.MaxSizeBytes)
	if err != nil && err != io.EOF {
		return fmt.Errorf("failed to write file: %w", err)
	}

	// Check if we hit the size limit
	if written == d.options.MaxSizeBytes {
		if n, _ := src.Read(make([]byte, 1)); n > 0 {
			return fmt.Errorf("image exceeds maximum size of %d bytes", d.options.MaxSizeBytes)
		}
	}
	return nil
}
