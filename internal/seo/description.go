package seo

import (
	"strings"
)

const (
	MinDescriptionLength = 120
	MaxDescriptionLength = 160
	MaxTitleLength       = 55

	ellipsis = "..."
)

// DefaultDescription is used when a page has no description at all.
const DefaultDescription = "Read the latest news and insights on NeuralPost."

var descriptionPadding = []string{
	" Read more on NeuralPost for the latest updates.",
	" Stay informed with in-depth analysis and expert insights.",
	" Explore AI, tech, business and science coverage daily.",
}

// NormalizeDescription fits description into the 120-160 character band.
// Lengths are counted in runes.
func NormalizeDescription(description string) string {
	trimmed := strings.TrimSpace(description)
	if trimmed == "" {
		return DefaultDescription
	}

	runes := []rune(trimmed)
	switch {
	case len(runes) > MaxDescriptionLength:
		return truncateRunes(runes, MaxDescriptionLength)
	case len(runes) >= MinDescriptionLength:
		return trimmed
	}

	for i := 0; len(runes) < MinDescriptionLength; i++ {
		runes = append(runes, []rune(descriptionPadding[i%len(descriptionPadding)])...)
	}
	if len(runes) > MaxDescriptionLength {
		runes = runes[:MaxDescriptionLength]
	}
	return strings.TrimRight(string(runes), " ")
}

// TruncateTitle shortens title to MaxTitleLength runes with a trailing ellipsis.
func TruncateTitle(title string) string {
	trimmed := strings.TrimSpace(title)
	runes := []rune(trimmed)
	if len(runes) <= MaxTitleLength {
		return trimmed
	}
	return truncateRunes(runes, MaxTitleLength)
}

func truncateRunes(runes []rune, limit int) string {
	cut := limit - len([]rune(ellipsis))
	return strings.TrimSpace(string(runes[:cut])) + ellipsis
}
