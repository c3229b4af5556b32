package pipeline

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"New Model Tops Benchmark!":   "new-model-tops-benchmark",
		"  already-a-slug  ":          "already-a-slug",
		"Café déjà vu":                "cafe-deja-vu",
		"GPT-5 & the $1T market":      "gpt-5-the-1t-market",
		"---":                         "",
		"Multiple   spaces___between": "multiple-spaces-between",
	}
	for input, want := range cases {
		assert.Equal(t, want, Slugify(input), "Slugify(%q)", input)
	}
}

func TestSlugifyCapsLength(t *testing.T) {
	t.Parallel()

	slug := Slugify(strings.Repeat("word ", 40))
	assert.LessOrEqual(t, len(slug), maxSlugLength)
	assert.False(t, strings.HasSuffix(slug, "-"))
	for _, word := range strings.Split(slug, "-") {
		assert.Equal(t, "word", word)
	}

	// 79 bytes of words, then a word that would push past the cap.
	slug = Slugify(strings.Repeat("abcd ", 15) + "wxyz tail")
	assert.Equal(t, strings.Repeat("abcd-", 15)+"wxyz", slug)
	assert.Len(t, slug, 79)

	long := strings.Repeat("a", maxSlugLength+20)
	assert.Equal(t, long[:maxSlugLength], Slugify(long))
}

func TestSlugifyDropsNonLatinText(t *testing.T) {
	t.Parallel()

	assert.Empty(t, Slugify("人工智能"))
	assert.Equal(t, "gpt-5", Slugify("人工智能 GPT 5"))
}

func TestFallbackSlug(t *testing.T) {
	t.Parallel()

	slug := FallbackSlug("AI")
	assert.Regexp(t, `^ai-[0-9a-f]{8}$`, slug)
	assert.NotEqual(t, slug, FallbackSlug("AI"))
	assert.Regexp(t, `^article-[0-9a-f]{8}$`, FallbackSlug(""))
}

func TestDatedSlugUsesUTCDate(t *testing.T) {
	t.Parallel()

	at := time.Date(2025, 12, 31, 23, 30, 0, 0, time.FixedZone("UTC-5", -5*3600))
	assert.Equal(t, "chips-2026-01-01", DatedSlug("chips", at))
}
