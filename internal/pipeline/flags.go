package pipeline

import (
	"math/rand"
	"sync"
	"time"

	"github.com/zouhourab1996-stack/neural-post-ai/internal/news"
)

// Flags are the editorial placements given to a new article.
type Flags struct {
	Featured bool
	Trending bool
}

// FlagPolicy decides the editorial flags for a freshly generated article.
type FlagPolicy interface {
	Decide(category news.Category) Flags
}

// RandomFlags draws flags independently with fixed probabilities.
type RandomFlags struct {
	FeaturedProbability float64
	TrendingProbability float64

	mu  sync.Mutex
	rnd *rand.Rand
}

// NewRandomFlags returns the default policy: 30% featured, 40% trending.
func NewRandomFlags(seed int64) *RandomFlags {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &RandomFlags{
		FeaturedProbability: 0.3,
		TrendingProbability: 0.4,
		rnd:                 rand.New(rand.NewSource(seed)),
	}
}

func (r *RandomFlags) Decide(news.Category) Flags {
	r.mu.Lock()
	defer r.mu.Unlock()

	return Flags{
		Featured: r.rnd.Float64() < r.FeaturedProbability,
		Trending: r.rnd.Float64() < r.TrendingProbability,
	}
}

// FixedFlags always returns the same flags.
type FixedFlags Flags

func (f FixedFlags) Decide(news.Category) Flags {
	return Flags(f)
}
