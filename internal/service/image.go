package service

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/nfnt/resize"

	"showcase/internal/catalog"
)

const (
	// ThumbnailWidth is the width of gallery thumbnails.
	ThumbnailWidth = 240
	// ThumbnailHeight is the height of gallery thumbnails.
	ThumbnailHeight = 160

	defaultImageTimeout = 30 * time.Second
)

// ImageInfo holds the natural size of a decoded image.
type ImageInfo struct {
	Width  int
	Height int
}

// ImageService loads screenshot and icon references. References are either
// http(s) URLs or filesystem paths; relative ones resolve against BaseDir,
// which may itself be a URL prefix.
type ImageService struct {
	BaseDir string
	Client  *http.Client
}

// NewImageService creates a new ImageService.
func NewImageService(baseDir string, timeout time.Duration) *ImageService {
	if timeout <= 0 {
		timeout = defaultImageTimeout
	}
	return &ImageService{
		BaseDir: baseDir,
		Client:  &http.Client{Timeout: timeout},
	}
}

// Resolve returns the absolute location of ref.
func (is *ImageService) Resolve(ref string) string {
	return ResolveReference(is.BaseDir, ref)
}

// ResolveReference joins a relative reference onto base. Absolute paths and
// URLs are returned unchanged.
func ResolveReference(base, ref string) string {
	if ref == "" || base == "" || catalog.IsRemote(ref) || filepath.IsAbs(ref) {
		return ref
	}
	if catalog.IsRemote(base) {
		return strings.TrimSuffix(base, "/") + "/" + strings.TrimPrefix(filepath.ToSlash(ref), "./")
	}
	return filepath.Join(base, filepath.FromSlash(ref))
}

// Open returns a reader over the referenced image bytes.
func (is *ImageService) Open(ctx context.Context, ref string) (io.ReadCloser, error) {
	loc := is.Resolve(ref)
	if loc == "" {
		return nil, fmt.Errorf("empty image reference")
	}
	if !catalog.IsRemote(loc) {
		f, err := os.Open(loc)
		if err != nil {
			return nil, fmt.Errorf("failed to open image %s: %w", loc, err)
		}
		return f, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, loc, nil)
	if err != nil {
		return nil, err
	}
	client := is.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch image %s: %w", loc, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("failed to fetch image %s: %s", loc, resp.Status)
	}
	return resp.Body, nil
}

// Load reads and decodes an image.
func (is *ImageService) Load(ctx context.Context, ref string) (*ImageInfo, image.Image, error) {
	rc, err := is.Open(ctx, ref)
	if err != nil {
		return nil, nil, err
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read image %s: %w", ref, err)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to decode image %s: %w", ref, err)
	}
	bounds := img.Bounds()
	return &ImageInfo{
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
	}, img, nil
}

// Thumbnail scales img down to fit maxW x maxH, keeping its aspect ratio.
func (is *ImageService) Thumbnail(img image.Image, maxW, maxH uint) image.Image {
	return resize.Thumbnail(maxW, maxH, img, resize.Lanczos3)
}

// EncodePNG is a helper to convert an image to bytes for UI resources.
func EncodePNG(img image.Image) ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := png.Encode(buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
