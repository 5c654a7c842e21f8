package posts

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/adrg/frontmatter"

	"github.com/iwilldev/site/internal/yamlutil"
)

var yamlFormat = frontmatter.NewFormat("---", "---", yamlutil.Unmarshal)

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

// parseSource splits raw file contents into front matter and body and
// coerces the metadata into a Post. Slug, Lang and Checksum are left to the
// caller.
func parseSource(slug string, raw []byte) (Post, error) {
	meta := map[string]any{}
	body, err := frontmatter.Parse(bytes.NewReader(raw), &meta, yamlFormat)
	if err != nil {
		return Post{}, fmt.Errorf("parse front matter: %w", err)
	}
	p := fromMeta(slug, meta)
	p.Body = string(body)
	p.ReadingTime = ReadingTime(p.Body)
	return p, nil
}

// fromMeta maps the loosely typed front matter onto Post. Missing fields get
// explicit defaults and unknown keys are ignored.
func fromMeta(slug string, meta map[string]any) Post {
	p := Post{
		Slug:        slug,
		Title:       stringField(meta, "title"),
		Description: stringField(meta, "description"),
		Tags:        tagsField(meta["tags"]),
		Author:      stringField(meta, "author"),
		AuthorImage: stringField(meta, "authorImage"),
		I18n:        strings.ToLower(stringField(meta, "i18n")),
	}
	if p.Title == "" {
		p.Title = titleFromSlug(slug)
	}
	p.Date, p.RawDate = dateField(meta["date"])

	p.Background = stringField(meta, "background")
	if p.Background == "" {
		p.Background = stringField(meta, "image")
	}
	if bg := stringField(meta, "backgroundImage"); bg != "" {
		if isAbsoluteURL(bg) {
			p.BackgroundURL = bg
		} else if p.Background == "" {
			p.Background = bg
		}
	}
	return p
}

func stringField(meta map[string]any, key string) string {
	v, ok := meta[key]
	if !ok || v == nil {
		return ""
	}
	switch s := v.(type) {
	case string:
		return strings.TrimSpace(s)
	case time.Time:
		return s.Format(time.RFC3339)
	default:
		return strings.TrimSpace(fmt.Sprint(s))
	}
}

func tagsField(v any) []string {
	var raw []string
	switch t := v.(type) {
	case nil:
		return nil
	case string:
		raw = strings.Split(t, ",")
	case []string:
		raw = t
	case []any:
		for _, item := range t {
			if item != nil {
				raw = append(raw, fmt.Sprint(item))
			}
		}
	default:
		raw = []string{fmt.Sprint(t)}
	}
	var tags []string
	for _, tag := range raw {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

func dateField(v any) (time.Time, string) {
	switch d := v.(type) {
	case time.Time:
		return d.UTC(), d.Format("2006-01-02")
	case string:
		s := strings.TrimSpace(d)
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t.UTC(), s
			}
		}
		return time.Time{}, s
	case nil:
		return time.Time{}, ""
	default:
		return time.Time{}, fmt.Sprint(d)
	}
}

func isAbsoluteURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
