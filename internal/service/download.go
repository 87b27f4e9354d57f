package service

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// Downloader saves screenshots into a directory. It satisfies input.Saver.
type Downloader struct {
	Images  *ImageService
	Dir     string
	Timeout time.Duration
	Logger  func(string)
}

// NewDownloader creates a Downloader writing into dir. An empty dir selects
// the user's Downloads folder, falling back to the working directory.
func NewDownloader(images *ImageService, dir string, logger func(string)) *Downloader {
	if dir == "" {
		dir = DefaultDownloadDir()
	}
	return &Downloader{Images: images, Dir: dir, Timeout: defaultImageTimeout, Logger: logger}
}

// DefaultDownloadDir is ~/Downloads when it exists.
func DefaultDownloadDir() string {
	home, err := os.UserHomeDir()
	if err == nil {
		d := filepath.Join(home, "Downloads")
		if fi, err := os.Stat(d); err == nil && fi.IsDir() {
			return d
		}
	}
	return "."
}

// Save copies the image at src to Dir/filename.
func (d *Downloader) Save(src, filename string) error {
	ctx, cancel := context.WithTimeout(context.Background(), d.Timeout)
	defer cancel()
	_, err := d.SaveContext(ctx, src, filename)
	return err
}

// SaveContext copies the image and returns the written path. The file is
// written under a temporary name and renamed once complete.
func (d *Downloader) SaveContext(ctx context.Context, src, filename string) (string, error) {
	if filename == "" || filename != filepath.Base(filename) {
		return "", fmt.Errorf("invalid download filename %q", filename)
	}
	if err := os.MkdirAll(d.Dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create download directory %s: %w", d.Dir, err)
	}

	rc, err := d.Images.Open(ctx, src)
	if err != nil {
		return "", err
	}
	defer rc.Close()

	tmp, err := os.CreateTemp(d.Dir, ".download-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, rc); err != nil {
		tmp.Close()
		return "", fmt.Errorf("failed to download %s: %w", src, err)
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}

	dest := filepath.Join(d.Dir, filename)
	if err := os.Rename(tmp.Name(), dest); err != nil {
		return "", fmt.Errorf("failed to move download into place: %w", err)
	}
	if d.Logger != nil {
		d.Logger(fmt.Sprintf("Saved %s to %s", src, dest))
	}
	return dest, nil
}
