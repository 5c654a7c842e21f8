// Package locale matches requested language variants against the ones the
// site publishes and formats the few strings that differ between them.
package locale

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Default is the language posts are written in.
const Default = "pt"

// Match resolves raw (a path segment or query value such as "en-US") to one
// of supported. Only high-confidence matches count.
func Match(raw string, supported []string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" || len(supported) == 0 {
		return "", false
	}
	tag, err := language.Parse(raw)
	if err != nil {
		return "", false
	}
	tags := make([]language.Tag, 0, len(supported))
	for _, s := range supported {
		t, err := language.Parse(s)
		if err != nil {
			t = language.Und
		}
		tags = append(tags, t)
	}
	_, idx, conf := language.NewMatcher(tags).Match(tag)
	if conf < language.High || idx < 0 || idx >= len(supported) {
		return "", false
	}
	if tags[idx] == language.Und {
		return "", false
	}
	return strings.ToLower(supported[idx]), true
}

// Labels formats localized strings for one language.
type Labels struct {
	Lang string
	tag  language.Tag

	publishedOn string
	by          string
	minutes     string
	minute      string
	also        string
	dateLayout  string
	months      [12]string
	longDate    func(d time.Time, months [12]string) string
}

var portuguese = Labels{
	Lang:        "pt",
	tag:         language.Portuguese,
	publishedOn: "Publicado em",
	by:          "por",
	minutes:     "minutos de leitura",
	minute:      "minuto de leitura",
	also:        "Também disponível em",
	dateLayout:  "02/01/2006",
	months: [12]string{"janeiro", "fevereiro", "março", "abril", "maio", "junho",
		"julho", "agosto", "setembro", "outubro", "novembro", "dezembro"},
	longDate: func(d time.Time, months [12]string) string {
		return fmt.Sprintf("%d de %s de %d", d.Day(), months[d.Month()-1], d.Year())
	},
}

var english = Labels{
	Lang:        "en",
	tag:         language.English,
	publishedOn: "Published on",
	by:          "by",
	minutes:     "minutes of reading",
	minute:      "minute of reading",
	also:        "Also available in",
	dateLayout:  "01/02/2006",
	months: [12]string{"January", "February", "March", "April", "May", "June",
		"July", "August", "September", "October", "November", "December"},
	longDate: func(d time.Time, months [12]string) string {
		return fmt.Sprintf("%s %d, %d", months[d.Month()-1], d.Day(), d.Year())
	},
}

// Supported lists the languages with labels.
func Supported() []string {
	return []string{portuguese.Lang, english.Lang}
}

// For returns the labels of lang. Anything that does not match English
// gets Portuguese.
func For(lang string) Labels {
	if m, ok := Match(lang, []string{english.Lang}); ok && m == english.Lang {
		return english
	}
	return portuguese
}

// ShortDate formats d as dd/mm/yyyy or mm/dd/yyyy.
func (l Labels) ShortDate(d time.Time) string {
	if d.IsZero() {
		return ""
	}
	return d.Format(l.dateLayout)
}

// LongDate formats d with the month spelled out.
func (l Labels) LongDate(d time.Time) string {
	if d.IsZero() {
		return ""
	}
	return l.longDate(d, l.months)
}

// PublishedOn builds the "Publicado em ... por ..." line. Missing parts are
// left out.
func (l Labels) PublishedOn(d time.Time, author string) string {
	return l.published(l.ShortDate(d), author)
}

// Byline is the long form used in meta descriptions, e.g.
// "Publicado em 21 de junho de 2025 por Ana - 2 minutos de leitura".
func (l Labels) Byline(d time.Time, author string, minutes int) string {
	if line := l.published(l.LongDate(d), author); line != "" {
		return line + " - " + l.ReadingTime(minutes)
	}
	return l.ReadingTime(minutes)
}

func (l Labels) published(date, author string) string {
	var b strings.Builder
	if date != "" {
		b.WriteString(l.publishedOn)
		b.WriteByte(' ')
		b.WriteString(date)
	}
	if author != "" {
		if b.Len() > 0 {
			b.WriteByte(' ')
			b.WriteString(l.by)
			b.WriteByte(' ')
		}
		b.WriteString(author)
	}
	return b.String()
}

// ReadingTime renders n minutes of reading.
func (l Labels) ReadingTime(n int) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", l.minute)
	}
	return fmt.Sprintf("%d %s", n, l.minutes)
}

// AlsoAvailableIn names lang in the current language, e.g.
// "Também disponível em inglês".
func (l Labels) AlsoAvailableIn(lang string) string {
	return l.also + " " + l.LanguageName(lang)
}

// LanguageName returns the display name of lang in the current language.
func (l Labels) LanguageName(lang string) string {
	tag, err := language.Parse(lang)
	if err != nil {
		return lang
	}
	if name := display.Tags(l.tag).Name(tag); name != "" {
		return name
	}
	return lang
}
