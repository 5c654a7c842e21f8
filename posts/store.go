package posts

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	// ErrNotFound is returned when no file backs the requested slug and language.
	ErrNotFound = errors.New("post not found")
	// ErrInvalidSlug marks slugs or languages that cannot name a file in the
	// posts directory. It always wraps ErrNotFound.
	ErrInvalidSlug = fmt.Errorf("%w: invalid slug", ErrNotFound)
)

const fileExt = ".md"

var reSafeName = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// Store reads posts from dir. Translations live in dir/<lang>/<slug>.md.
type Store struct {
	dir         string
	defaultLang string
	logger      *zap.Logger
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithLogger sets the logger used for skipped files.
func WithLogger(l *zap.Logger) StoreOption {
	return func(s *Store) {
		s.logger = l
	}
}

// WithDefaultLanguage sets the language of the files directly inside dir
// (default "pt").
func WithDefaultLanguage(lang string) StoreOption {
	return func(s *Store) {
		s.defaultLang = strings.ToLower(lang)
	}
}

// NewStore creates a Store rooted at dir.
func NewStore(dir string, opts ...StoreOption) *Store {
	s := &Store{
		dir:         dir,
		defaultLang: "pt",
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Dir returns the root posts directory.
func (s *Store) Dir() string {
	return s.dir
}

// DefaultLanguage returns the language of the root directory.
func (s *Store) DefaultLanguage() string {
	return s.defaultLang
}

// ListPosts returns metadata for every post in the default language, newest
// first. Bodies are dropped. Files with broken front matter are skipped; the
// only error is an unreadable directory.
func (s *Store) ListPosts(ctx context.Context) ([]Post, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read posts dir: %w", err)
	}

	var (
		mu    sync.Mutex
		posts []Post
	)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, fileExt) {
			continue
		}
		slug := strings.TrimSuffix(name, fileExt)
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			p, err := s.readFile(filepath.Join(s.dir, name), slug, s.defaultLang)
			if err != nil {
				s.logger.Warn("skipping post", zap.String("file", name), zap.Error(err))
				return nil
			}
			p.Body = ""
			mu.Lock()
			posts = append(posts, p)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	SortByDate(posts)
	return posts, nil
}

// GetPost reads one post. An empty lang or the default language reads from
// the root directory. Any failure to produce the post is reported as
// ErrNotFound so callers can fall back or redirect.
func (s *Store) GetPost(ctx context.Context, slug, lang string) (Post, error) {
	if err := ctx.Err(); err != nil {
		return Post{}, err
	}
	path, lang, err := s.pathFor(slug, lang)
	if err != nil {
		return Post{}, err
	}
	p, err := s.readFile(path, slug, lang)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.logger.Warn("unreadable post", zap.String("slug", slug), zap.String("lang", lang), zap.Error(err))
		}
		return Post{}, fmt.Errorf("%w: %s (%s)", ErrNotFound, slug, lang)
	}
	return p, nil
}

// Variants lists the non-default languages that have a file for slug.
func (s *Store) Variants(ctx context.Context, slug string) []string {
	if !reSafeName.MatchString(slug) {
		return nil
	}
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil
	}
	var langs []string
	for _, entry := range entries {
		if ctx.Err() != nil {
			return nil
		}
		lang := strings.ToLower(entry.Name())
		if !entry.IsDir() || lang == s.defaultLang || !reSafeName.MatchString(lang) {
			continue
		}
		if _, err := os.Stat(filepath.Join(s.dir, entry.Name(), slug+fileExt)); err == nil {
			langs = append(langs, lang)
		}
	}
	sort.Strings(langs)
	return langs
}

func (s *Store) pathFor(slug, lang string) (string, string, error) {
	if !reSafeName.MatchString(slug) {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidSlug, slug)
	}
	lang = strings.ToLower(lang)
	if lang == "" || lang == s.defaultLang {
		return filepath.Join(s.dir, slug+fileExt), s.defaultLang, nil
	}
	if !reSafeName.MatchString(lang) {
		return "", "", fmt.Errorf("%w: language %q", ErrInvalidSlug, lang)
	}
	return filepath.Join(s.dir, lang, slug+fileExt), lang, nil
}

func (s *Store) readFile(path, slug, lang string) (Post, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Post{}, err
	}
	p, err := parseSource(slug, raw)
	if err != nil {
		return Post{}, err
	}
	sum := sha256.Sum256(raw)
	p.Checksum = hex.EncodeToString(sum[:])
	p.Lang = lang
	return p, nil
}

// SortByDate orders posts newest first. Posts without a usable date go last;
// equal dates fall back to slug order.
func SortByDate(posts []Post) {
	sort.SliceStable(posts, func(i, j int) bool {
		a, b := posts[i], posts[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.After(b.Date)
		}
		return a.Slug < b.Slug
	})
}
