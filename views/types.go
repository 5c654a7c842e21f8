package views

import (
	"github.com/iwilldev/site/locale"
	"github.com/iwilldev/site/posts"
)

// Site carries the site-wide values every page needs.
type Site struct {
	Name        string
	URL         string
	Description string
	Author      string
	Tagline     string
	Lang        string
	Bio         []string
	Experience  []Experience
	Links       []Link
}

// Experience is one entry of the /path timeline. Description is trusted
// HTML from the site config.
type Experience struct {
	JobTitle    string `yaml:"job_title"`
	Company     string `yaml:"company"`
	JobType     string `yaml:"job_type"`
	StartDate   string `yaml:"start_date"`
	EndDate     string `yaml:"end_date"`
	Description string `yaml:"description"`
}

// Link is one entry of the /links page.
type Link struct {
	Label string `yaml:"label"`
	URL   string `yaml:"url"`
}

// PageMeta carries per-page OpenGraph and SEO metadata into the <head>.
type PageMeta struct {
	Title       string
	Description string
	Path        string // canonical path, joined onto Site.URL
	Image       string // absolute or root-relative og:image
	OGType      string // "website" or "article"
	JSONLD      []string
}

// PostPage is everything the post view renders.
type PostPage struct {
	Post     posts.Post
	HTML     string // rendered markdown body
	Labels   locale.Labels
	Variants []string // translations of a default-language post
	Original bool     // false on a translated variant page
	Related  []posts.Post
}

// FeedPage lists posts, optionally narrowed to one tag.
type FeedPage struct {
	Posts     []posts.Post
	Tags      []string
	ActiveTag string
	Labels    locale.Labels
}
