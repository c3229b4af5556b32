package seo

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeDescriptionEmptyUsesDefault(t *testing.T) {
	t.Parallel()

	assert.Equal(t, DefaultDescription, NormalizeDescription(""))
	assert.Equal(t, DefaultDescription, NormalizeDescription("   "))
}

func TestNormalizeDescriptionPadsShortInput(t *testing.T) {
	t.Parallel()

	got := NormalizeDescription("Chipmakers race to ship new accelerators.")
	length := utf8.RuneCountInString(got)

	assert.True(t, strings.HasPrefix(got, "Chipmakers race to ship new accelerators. Read more on NeuralPost"))
	assert.GreaterOrEqual(t, length, MinDescriptionLength)
	assert.LessOrEqual(t, length, MaxDescriptionLength)
}

func TestNormalizeDescriptionPadsSingleCharacter(t *testing.T) {
	t.Parallel()

	got := NormalizeDescription("x")
	length := utf8.RuneCountInString(got)
	assert.GreaterOrEqual(t, length, MinDescriptionLength)
	assert.LessOrEqual(t, length, MaxDescriptionLength)
}

func TestNormalizeDescriptionBoundaries(t *testing.T) {
	t.Parallel()

	exact120 := strings.Repeat("a", 120)
	exact160 := strings.Repeat("b", 160)
	assert.Equal(t, exact120, NormalizeDescription(exact120))
	assert.Equal(t, exact160, NormalizeDescription(exact160))

	over := strings.Repeat("c", 161)
	got := NormalizeDescription(over)
	assert.Equal(t, strings.Repeat("c", 157)+"...", got)
	assert.Equal(t, MaxDescriptionLength, utf8.RuneCountInString(got))

	just119 := strings.Repeat("d", 119)
	padded := NormalizeDescription(just119)
	assert.True(t, strings.HasPrefix(padded, just119))
	assert.LessOrEqual(t, utf8.RuneCountInString(padded), MaxDescriptionLength)
	assert.GreaterOrEqual(t, utf8.RuneCountInString(padded), MinDescriptionLength)
}

func TestNormalizeDescriptionCountsRunes(t *testing.T) {
	t.Parallel()

	accented := strings.Repeat("é", 150)
	assert.Equal(t, accented, NormalizeDescription(accented))

	long := strings.Repeat("ü", 200)
	got := NormalizeDescription(long)
	assert.Equal(t, MaxDescriptionLength, utf8.RuneCountInString(got))
	assert.True(t, strings.HasSuffix(got, "..."))
}

func TestTruncateTitle(t *testing.T) {
	t.Parallel()

	short := "Quantum chips reach a milestone"
	assert.Equal(t, short, TruncateTitle(short))

	long := strings.Repeat("word ", 20)
	got := TruncateTitle(long)
	assert.LessOrEqual(t, utf8.RuneCountInString(got), MaxTitleLength)
	assert.True(t, strings.HasSuffix(got, "..."))
	assert.False(t, strings.Contains(got, " ..."))
}
