// Package assets fetches externally hosted candidate images and stores
// them as local files served from the uploads directory.
package assets

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// maxImageBytes caps a single download. Sheets occasionally point at
// full-resolution originals; anything bigger than this is not a
// profile photo.
const maxImageBytes = 10 << 20

var extensionByType = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// ImageResolver downloads an image URL into Dir and returns the public
// path it will be served under.
type ImageResolver struct {
	client       *http.Client
	dir          string
	publicPrefix string
}

func NewImageResolver(dir, publicPrefix string, timeout time.Duration) *ImageResolver {
	return &ImageResolver{
		client:       &http.Client{Timeout: timeout},
		dir:          dir,
		publicPrefix: publicPrefix,
	}
}

func (r *ImageResolver) Resolve(ctx context.Context, imageURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(imageURL))
	if err != nil {
		return "", fmt.Errorf("parse image url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("unsupported image url scheme %q", u.Scheme)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", err
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch image: status %d", resp.StatusCode)
	}

	contentType := resp.Header.Get("Content-Type")
	if i := strings.IndexByte(contentType, ';'); i >= 0 {
		contentType = contentType[:i]
	}
	contentType = strings.TrimSpace(strings.ToLower(contentType))
	if !strings.HasPrefix(contentType, "image/") {
		return "", fmt.Errorf("not an image: content type %q", contentType)
	}

	ext, ok := extensionByType[contentType]
	if !ok {
		ext = ".img"
	}
	name := fmt.Sprintf("%d-%s%s", time.Now().UnixMilli(), uuid.NewString()[:8], ext)

	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	f, err := os.Create(filepath.Join(r.dir, name))
	if err != nil {
		return "", fmt.Errorf("create image file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, io.LimitReader(resp.Body, maxImageBytes)); err != nil {
		return "", fmt.Errorf("write image file: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", err
	}

	return path.Join(r.publicPrefix, name), nil
}
