package ogimage

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/iwilldev/site/locale"
	"github.com/iwilldev/site/posts"
)

// Fixed output size of every preview image.
const (
	Width  = 1200
	Height = 630
)

const (
	DefaultSiteName = "iwill.dev"
	DefaultTagline  = "iwill.dev | Construindo soluções que aproximam pessoas e tecnologias"
	DefaultAuthor   = "William Gonçalves"
)

var (
	colorCanvas      = ParseHex("#171717")
	colorText        = ParseHex("#ffffff")
	colorDescription = ParseHex("#e5e5e5")
	colorChip        = ParseHex("#a22f9e")
)

// Template is a laid-out-ready scene graph for one image.
type Template struct {
	Width, Height int
	Family        string
	Root          *Node
	// Degraded is set when a background could not be loaded and was left
	// out. Such renders should not be cached.
	Degraded bool
}

// Markup serializes the template as HTML.
func (t *Template) Markup() string {
	return t.Root.Markup()
}

// Compositor turns posts and page titles into templates.
type Compositor struct {
	assets        *Assets
	backgrounds   *Backgrounds
	siteName      string
	tagline       string
	defaultAuthor string
	logger        *zap.Logger
}

// CompositorOption configures a Compositor.
type CompositorOption func(*Compositor)

// WithSiteName sets the title used by BuildPage when none is given.
func WithSiteName(name string) CompositorOption {
	return func(c *Compositor) {
		if name != "" {
			c.siteName = name
		}
	}
}

// WithTagline sets the footer line of page images.
func WithTagline(tagline string) CompositorOption {
	return func(c *Compositor) {
		if tagline != "" {
			c.tagline = tagline
		}
	}
}

// WithDefaultAuthor sets the author shown when a post names none.
func WithDefaultAuthor(author string) CompositorOption {
	return func(c *Compositor) {
		if author != "" {
			c.defaultAuthor = author
		}
	}
}

// WithLogger sets the logger for background failures.
func WithLogger(l *zap.Logger) CompositorOption {
	return func(c *Compositor) {
		c.logger = l
	}
}

// NewCompositor creates a Compositor. bg may be nil to disable backgrounds.
func NewCompositor(assets *Assets, bg *Backgrounds, opts ...CompositorOption) *Compositor {
	c := &Compositor{
		assets:        assets,
		backgrounds:   bg,
		siteName:      DefaultSiteName,
		tagline:       DefaultTagline,
		defaultAuthor: DefaultAuthor,
		logger:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Compositor) canvas(children ...*Node) *Template {
	root := Box(Style{
		Justify:    JustifyBetween,
		Width:      Width,
		Height:     Height,
		Padding:    All(80),
		Background: colorCanvas,
		Color:      colorText,
	}, children...)
	return &Template{Width: Width, Height: Height, Family: c.assets.Family, Root: root}
}

func (c *Compositor) logo() *Node {
	return Img(c.assets.Logo, "Logo", Style{Width: 60})
}

func title(text string) *Node {
	return Text("h1", strings.TrimSpace(text), Style{
		FontSize:   60,
		LineHeight: 1.25,
		PreLine:    true,
		MaxLines:   3,
	})
}

func footerLine(text string) *Node {
	return Text("span", text, Style{FontSize: 24, LineHeight: 4.0 / 3, Color: colorText})
}

// BuildPost composes the preview of a post. Missing optional fields drop
// their sections; background failures are logged and leave it out.
func (c *Compositor) BuildPost(ctx context.Context, p posts.Post) *Template {
	labels := locale.For(p.Lang)
	author := p.Author
	if author == "" {
		author = c.defaultAuthor
	}

	var description *Node
	if d := strings.TrimSpace(p.Description); d != "" {
		description = Text("p", d, Style{
			FontSize:   30,
			LineHeight: 1.2,
			Color:      colorDescription,
			MaxLines:   2,
		})
	}

	meta := Box(Style{},
		footerLine(labels.PublishedOn(p.Date, author)),
		footerLine(labels.ReadingTime(p.ReadingTime)),
	)

	var chips []*Node
	for _, tag := range p.Tags {
		chips = append(chips, Text("span", tag, Style{
			FontSize:   24,
			LineHeight: 4.0 / 3,
			Padding:    XY(24, 8),
			Margin:     Edges{Left: 16},
			Background: colorChip,
			RadiusFull: true,
		}))
	}
	var tags *Node
	if len(chips) > 0 {
		tags = Box(Style{Direction: Row, Align: AlignCenter, PushEnd: true}, chips...)
	}

	bg, degraded := c.background(ctx, p)
	tpl := c.canvas(
		Img(bg, "Background", Style{
			Absolute: true,
			Height:   Height,
			Opacity:  0.5,
			Radius:   32,
		}),
		Box(Style{Margin: Edges{Bottom: 32}}, c.logo(), title(p.Title), description),
		Box(Style{Direction: Row, Align: AlignCenter}, meta, tags),
	)
	tpl.Degraded = degraded
	return tpl
}

// BuildPage composes the preview of a static page.
func (c *Compositor) BuildPage(text string) *Template {
	if strings.TrimSpace(text) == "" {
		text = c.siteName
	}
	return c.canvas(
		Box(Style{Margin: Edges{Bottom: 32}}, c.logo(), title(text)),
		Box(Style{Direction: Row, Align: AlignCenter},
			Box(Style{}, footerLine(c.tagline)),
		),
	)
}

// background returns the picture for p and whether a configured source
// failed. A missing local file is not a failure.
func (c *Compositor) background(ctx context.Context, p posts.Post) (*Picture, bool) {
	degraded := false
	if p.BackgroundURL != "" && c.backgrounds.Remote() {
		pic, err := c.backgrounds.Fetch(ctx, p.BackgroundURL)
		if err == nil {
			return pic, false
		}
		degraded = true
		c.logger.Warn("remote background unavailable",
			zap.String("slug", p.Slug), zap.String("url", p.BackgroundURL), zap.Error(err))
	}
	pic, err := c.backgrounds.Load(ctx, p.Background)
	if err != nil {
		c.logger.Warn("background unavailable",
			zap.String("slug", p.Slug), zap.String("token", p.Background), zap.Error(err))
		return nil, true
	}
	return pic, degraded
}
