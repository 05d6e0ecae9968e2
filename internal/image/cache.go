package image

import (
	"crypto/md5"
	"encoding/hex"
	"io"
	"os"
	"path/filepath"
)

// diskCache stores generated images by a hash of their generation settings
type diskCache struct {
	dir string
}

func newDiskCache(dir string) *diskCache {
	if dir == "" {
		return nil
	}
	return &diskCache{dir: dir}
}

// path returns the cache file for the given settings
func (c *diskCache) path(parts ...string) string {
	if c == nil {
		return ""
	}

	h := md5.New()
	for _, part := range parts {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	hash := hex.EncodeToString(h.Sum(nil))

	// Use first 2 chars as subdirectory for better file system performance
	return filepath.Join(c.dir, hash[:2], hash[2:]+".png")
}

// load copies a cached image to dest and reports whether there was one
func (c *diskCache) load(cacheFile, dest string) bool {
	if c == nil {
		return false
	}
	if _, err := os.Stat(cacheFile); err != nil {
		return false
	}
	return copyFile(cacheFile, dest) == nil
}

// store copies a freshly generated image into the cache
func (c *diskCache) store(src, cacheFile string) {
	if c == nil {
		return
	}
	_ = copyFile(src, cacheFile) // Ignore cache errors
}

// copyFile copies src to dst through a temporary file in dst's directory
// that is renamed into place, so readers of dst never see a partial image
func copyFile(src, dst string) error {
	dir := filepath.Dir(dst)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	source, err := os.Open(src)
	if err != nil {
		return err
	}
	defer source.Close()

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(dst)+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name()) // No-op after a successful rename

	if _, err := io.Copy(tmp, source); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), dst)
}
