package posts

import (
	"strings"
	"testing"
)

func words(n int) string {
	return strings.TrimSpace(strings.Repeat("palavra ", n))
}

func TestReadingTimeFloor(t *testing.T) {
	tests := []string{
		"",
		"   ",
		"# ## ***",
		"<p></p>",
		words(1),
		words(75),
	}
	for _, body := range tests {
		if got := ReadingTime(body); got != 1 {
			t.Errorf("ReadingTime(%q) = %d, want 1", body, got)
		}
	}
}

func TestReadingTimeRoundsUp(t *testing.T) {
	tests := []struct {
		words int
		want  int
	}{
		{76, 2},
		{150, 2},
		{151, 3},
		{750, 10},
	}
	for _, tt := range tests {
		if got := ReadingTime(words(tt.words)); got != tt.want {
			t.Errorf("ReadingTime(%d words) = %d, want %d", tt.words, got, tt.want)
		}
	}
}

func TestReadingTimeMonotonic(t *testing.T) {
	prev := 0
	body := ""
	for i := 0; i < 400; i++ {
		body += " palavra"
		if i%7 == 0 {
			body += " **negrito**"
		}
		got := ReadingTime(body)
		if got < prev {
			t.Fatalf("reading time decreased from %d to %d at %d words", prev, got, i)
		}
		prev = got
	}
}

func TestReadingTimeIgnoresMarkup(t *testing.T) {
	plain := words(80)
	marked := "<div class=\"x\">" + strings.ReplaceAll(plain, "palavra", "**palavra**") + "</div>\n# - ~ `"
	if ReadingTime(plain) != ReadingTime(marked) {
		t.Errorf("markup changed reading time: %d vs %d", ReadingTime(plain), ReadingTime(marked))
	}
}
