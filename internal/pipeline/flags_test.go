package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/zouhourab1996-stack/neural-post-ai/internal/news"
)

func TestRandomFlagsApproximateProbabilities(t *testing.T) {
	t.Parallel()

	policy := NewRandomFlags(42)
	const runs = 5000

	featured, trending := 0, 0
	for i := 0; i < runs; i++ {
		flags := policy.Decide(news.CategoryAI)
		if flags.Featured {
			featured++
		}
		if flags.Trending {
			trending++
		}
	}

	assert.InDelta(t, 0.3, float64(featured)/runs, 0.05)
	assert.InDelta(t, 0.4, float64(trending)/runs, 0.05)
}

func TestRandomFlagsHonoursExtremes(t *testing.T) {
	t.Parallel()

	policy := NewRandomFlags(7)
	policy.FeaturedProbability = 1
	policy.TrendingProbability = 0

	for i := 0; i < 20; i++ {
		assert.Equal(t, Flags{Featured: true}, policy.Decide(news.CategoryTech))
	}
}

func TestFixedFlags(t *testing.T) {
	t.Parallel()

	assert.Equal(t, Flags{Trending: true}, FixedFlags{Trending: true}.Decide(news.CategoryScience))
}
