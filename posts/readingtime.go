package posts

import (
	"math"
	"regexp"
	"strings"
)

// WordsPerMinute is the reading speed used by ReadingTime.
const WordsPerMinute = 75

var (
	reHTMLTag      = regexp.MustCompile(`</?[^>]+(>|$)`)
	reMarkdownMark = regexp.MustCompile("[#*`~-]")
)

// ReadingTime estimates the minutes needed to read a markdown body. HTML
// tags and markdown emphasis, heading and list markers are dropped before
// counting words. The result is never below one minute.
func ReadingTime(body string) int {
	plain := reHTMLTag.ReplaceAllString(body, "")
	plain = reMarkdownMark.ReplaceAllString(plain, "")
	words := len(strings.Fields(plain))
	minutes := int(math.Ceil(float64(words) / WordsPerMinute))
	if minutes < 1 {
		return 1
	}
	return minutes
}
