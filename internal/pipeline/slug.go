package pipeline

import (
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"
)

const (
	maxSlugLength      = 80
	fallbackSuffixSize = 8
)

// Slugify lowercases value and joins its ASCII letters and digits with single
// hyphens. The result never exceeds maxSlugLength and is cut at a word boundary;
// only a single word longer than the limit is truncated mid-word.
func Slugify(value string) string {
	var b strings.Builder
	for _, word := range slugWords(value) {
		needed := len(word)
		if b.Len() > 0 {
			needed++
		}
		if b.Len()+needed > maxSlugLength {
			if b.Len() == 0 {
				b.WriteString(word[:maxSlugLength])
			}
			break
		}
		if b.Len() > 0 {
			b.WriteByte('-')
		}
		b.WriteString(word)
	}
	return b.String()
}

func slugWords(value string) []string {
	var (
		words   []string
		current strings.Builder
	)
	flush := func() {
		if current.Len() > 0 {
			words = append(words, current.String())
			current.Reset()
		}
	}

	for _, r := range norm.NFKD.String(value) {
		switch {
		case unicode.Is(unicode.Mn, r):
			continue
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			current.WriteRune(unicode.ToLower(r))
		default:
			flush()
		}
	}
	flush()
	return words
}

// FallbackSlug names an article whose title has no ASCII letters or digits.
func FallbackSlug(category string) string {
	prefix := Slugify(category)
	if prefix == "" {
		prefix = "article"
	}
	return prefix + "-" + strings.ReplaceAll(uuid.NewString(), "-", "")[:fallbackSuffixSize]
}

// DatedSlug appends the UTC calendar date of at to slug.
func DatedSlug(slug string, at time.Time) string {
	return slug + "-" + at.UTC().Format("2006-01-02")
}
