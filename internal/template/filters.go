package template

import (
	"fmt"
	"math"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/flosch/pongo2/v6"

	"github.com/aellingwood/janos/internal/slug"
	"github.com/aellingwood/janos/internal/store"
)

var filterOnce sync.Once

// registerBuiltinFilters registers the date, readingTime, and slug
// filters with pongo2. Registration is global in pongo2, so it runs
// once per process.
func registerBuiltinFilters() {
	filterOnce.Do(func() {
		pongo2.RegisterFilter("date", filterDate)
		pongo2.RegisterFilter("readingTime", filterReadingTime)
		pongo2.RegisterFilter("slug", filterSlug)
	})
}

// RegisterFilter exposes pongo2's filter registry so hosts can add
// their own filters. Re-registering an existing name is an error.
func RegisterFilter(name string, fn func(in, param *pongo2.Value) (*pongo2.Value, *pongo2.Error)) error {
	registerBuiltinFilters()
	return pongo2.RegisterFilter(name, fn)
}

// Moment-style date tokens, longest first so e.g. MMMM wins over MM.
var dateTokens = []struct{ token, layout string }{
	{"YYYY", "2006"},
	{"dddd", "Monday"},
	{"MMMM", "January"},
	{"MMM", "Jan"},
	{"ddd", "Mon"},
	{"YY", "06"},
	{"MM", "01"},
	{"DD", "02"},
	{"HH", "15"},
	{"mm", "04"},
	{"ss", "05"},
	{"ZZ", "-0700"},
	{"M", "1"},
	{"D", "2"},
	{"H", "15"},
	{"m", "4"},
	{"s", "5"},
	{"Z", "-07:00"},
}

// translateDateFormat converts a moment-style format string into a Go
// time layout.
func translateDateFormat(format string) string {
	var b strings.Builder
	for len(format) > 0 {
		matched := false
		for _, dt := range dateTokens {
			if strings.HasPrefix(format, dt.token) {
				b.WriteString(dt.layout)
				format = format[len(dt.token):]
				matched = true
				break
			}
		}
		if !matched {
			b.WriteByte(format[0])
			format = format[1:]
		}
	}
	return b.String()
}

func filterDate(in, param *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	var t time.Time
	switch v := in.Interface().(type) {
	case time.Time:
		t = v
	default:
		t = store.ToTime(in.String())
	}
	if t.IsZero() {
		return pongo2.AsValue(""), nil
	}
	format := param.String()
	if format == "" || format == "<nil>" {
		format = "YYYY-MM-DD"
	}
	return pongo2.AsValue(t.Format(translateDateFormat(format))), nil
}

var tagPattern = regexp.MustCompile(`<[^>]*>`)

// DefaultWordsPerMinute is the reading speed assumed by the
// readingTime filter when no rate is given.
const DefaultWordsPerMinute = 200

// ReadingTime strips tags from html, counts whitespace-separated
// words, and phrases the result: "less than 1 min read", "1 min read",
// or "<N> min read".
func ReadingTime(html string, wordsPerMinute int) string {
	if wordsPerMinute <= 0 {
		wordsPerMinute = DefaultWordsPerMinute
	}
	words := len(strings.Fields(tagPattern.ReplaceAllString(html, " ")))
	minutes := int(math.Ceil(float64(words) / float64(wordsPerMinute)))
	switch minutes {
	case 0:
		return "less than 1 min read"
	case 1:
		return "1 min read"
	default:
		return fmt.Sprintf("%d min read", minutes)
	}
}

func filterReadingTime(in, param *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	wpm := 0
	if param != nil && !param.IsNil() {
		wpm = param.Integer()
	}
	return pongo2.AsValue(ReadingTime(in.String(), wpm)), nil
}

func filterSlug(in, param *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	return pongo2.AsValue(slug.Tag(in.String())), nil
}
