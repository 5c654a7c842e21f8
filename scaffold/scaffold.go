// Package scaffold writes new post files from the embedded templates.
package scaffold

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"text/template"
	"time"
)

// Templates contains the scaffold template files.
// Files use Go text/template syntax and have a .tmpl suffix.
//
//go:embed all:templates
var Templates embed.FS

// ErrExists is returned when the target file is already there.
var ErrExists = errors.New("post already exists")

var reSlug = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// Post holds the front matter of a new post.
type Post struct {
	Slug        string
	Title       string
	Date        string // YYYY-MM-DD, defaults to today
	Description string
	Tags        []string
	Author      string
	Background  string
	Lang        string // translation directory; empty writes to the posts root
	I18n        string // language of an available translation
}

var postTemplate = template.Must(template.New("post.md.tmpl").
	Funcs(template.FuncMap{"quote": strconv.Quote}).
	ParseFS(Templates, "templates/post.md.tmpl"))

// Path returns where p is written inside dir.
func (p Post) Path(dir string) string {
	if p.Lang != "" {
		return filepath.Join(dir, p.Lang, p.Slug+".md")
	}
	return filepath.Join(dir, p.Slug+".md")
}

// WritePost renders p into dir and returns the created path. Existing
// files are never overwritten.
func WritePost(dir string, p Post) (string, error) {
	p.Slug = strings.TrimSpace(p.Slug)
	if !reSlug.MatchString(p.Slug) {
		return "", fmt.Errorf("invalid slug %q: use lowercase letters, digits and dashes", p.Slug)
	}
	p.Lang = strings.ToLower(strings.TrimSpace(p.Lang))
	if p.Lang != "" && !reSlug.MatchString(p.Lang) {
		return "", fmt.Errorf("invalid language %q", p.Lang)
	}
	if p.Title == "" {
		p.Title = ToTitle(p.Slug)
	}
	if p.Date == "" {
		p.Date = time.Now().Format(time.DateOnly)
	}
	p.Tags = cleanTags(p.Tags)

	path := p.Path(dir)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if errors.Is(err, fs.ErrExist) {
		return "", fmt.Errorf("%w: %s", ErrExists, path)
	}
	if err != nil {
		return "", fmt.Errorf("create %s: %w", path, err)
	}
	if err := postTemplate.Execute(f, p); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("execute template: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return path, nil
}

func cleanTags(tags []string) []string {
	var out []string
	for _, t := range tags {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// ToTitle converts a hyphenated name to a title-case string.
// e.g. "my-post" -> "My Post"
func ToTitle(s string) string {
	parts := strings.Split(s, "-")
	for i, p := range parts {
		if len(p) > 0 {
			parts[i] = strings.ToUpper(p[:1]) + p[1:]
		}
	}
	return strings.Join(parts, " ")
}
