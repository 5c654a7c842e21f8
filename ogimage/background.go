package ogimage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// DefaultBackground is the token every unknown background resolves to.
const DefaultBackground = "default"

const maxRemoteImageSize = 5 << 20

// ErrRemoteDisabled is returned by Fetch when remote backgrounds are off.
var ErrRemoteDisabled = errors.New("ogimage: remote backgrounds disabled")

var allowedBackgrounds = map[string]bool{
	"css":          true,
	"default":      true,
	"javascript":   true,
	"pedro":        true,
	"react-router": true,
	"remix":        true,
	"typescript":   true,
}

var backgroundExts = []string{".png", ".jpg", ".jpeg", ".webp"}

// ResolveBackground returns token when it names a known background and
// "default" otherwise. The result is always safe to use as a file name.
func ResolveBackground(token string) string {
	if allowedBackgrounds[token] {
		return token
	}
	return DefaultBackground
}

// Backgrounds loads background images from a directory and, when enabled,
// from remote URLs.
type Backgrounds struct {
	dir     string
	remote  bool
	client  *http.Client
	maxSize int64
}

// BackgroundOption configures Backgrounds.
type BackgroundOption func(*Backgrounds)

// WithRemote enables fetching absolute background URLs, each request
// bounded by timeout.
func WithRemote(timeout time.Duration) BackgroundOption {
	return func(b *Backgrounds) {
		b.remote = true
		b.client = &http.Client{Timeout: timeout}
	}
}

// WithHTTPClient replaces the client used for remote backgrounds.
func WithHTTPClient(c *http.Client) BackgroundOption {
	return func(b *Backgrounds) {
		b.client = c
	}
}

// NewBackgrounds creates a loader for dir. Remote fetching is off unless
// WithRemote is given.
func NewBackgrounds(dir string, opts ...BackgroundOption) *Backgrounds {
	b := &Backgrounds{
		dir:     dir,
		client:  &http.Client{Timeout: 3 * time.Second},
		maxSize: maxRemoteImageSize,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Remote reports whether remote fetching is enabled.
func (b *Backgrounds) Remote() bool {
	return b != nil && b.remote
}

// Load returns the background for token after resolving it against the
// allow-list. A nil picture with a nil error means no file exists.
func (b *Backgrounds) Load(ctx context.Context, token string) (*Picture, error) {
	if b == nil || b.dir == "" {
		return nil, nil
	}
	name := ResolveBackground(token)
	for _, ext := range backgroundExts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		data, err := os.ReadFile(filepath.Join(b.dir, name+ext))
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read background %s: %w", name, err)
		}
		pic, err := decodePicture(data)
		if err != nil {
			return nil, fmt.Errorf("decode background %s%s: %w", name, ext, err)
		}
		return pic, nil
	}
	return nil, nil
}

// Fetch downloads and decodes an absolute http(s) image URL.
func (b *Backgrounds) Fetch(ctx context.Context, url string) (*Picture, error) {
	if !b.Remote() {
		return nil, ErrRemoteDisabled
	}
	if !strings.HasPrefix(url, "https://") && !strings.HasPrefix(url, "http://") {
		return nil, fmt.Errorf("fetch background: unsupported url %q", url)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch background: %w", err)
	}
	resp, err := b.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch background: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch background: status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, b.maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("fetch background: %w", err)
	}
	if int64(len(data)) > b.maxSize {
		return nil, fmt.Errorf("fetch background: body exceeds %d bytes", b.maxSize)
	}
	pic, err := decodePicture(data)
	if err != nil {
		return nil, fmt.Errorf("fetch background: %w", err)
	}
	return pic, nil
}
