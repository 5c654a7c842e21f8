// Package posts reads blog posts from a directory of markdown files with a
// YAML front matter header. Every call goes back to disk; there is no write
// path.
package posts

import (
	"strings"
	"time"
)

// Post is one blog entry as read from a single markdown file.
type Post struct {
	Slug          string
	Title         string
	Date          time.Time // zero when the front matter date is missing or unparsable
	RawDate       string
	Description   string
	Tags          []string
	Body          string // empty in ListPosts results
	Author        string
	AuthorImage   string
	Background    string // background token, resolved against an allow-list by the image pipeline
	BackgroundURL string // absolute URL declared in backgroundImage
	I18n          string // language of an available translation, as declared by the author
	Lang          string // language directory the post was read from
	ReadingTime   int    // minutes, always >= 1
	Checksum      string // hex sha256 of the source file
}

// Link returns the canonical path of the post page.
func (p Post) Link() string {
	return "/feed/" + p.Slug
}

// HasDate reports whether the front matter date parsed.
func (p Post) HasDate() bool {
	return !p.Date.IsZero()
}

// titleFromSlug turns "hello-world" into "Hello World".
func titleFromSlug(slug string) string {
	parts := strings.FieldsFunc(slug, func(r rune) bool { return r == '-' || r == '_' })
	for i, p := range parts {
		parts[i] = strings.ToUpper(p[:1]) + p[1:]
	}
	return strings.Join(parts, " ")
}
