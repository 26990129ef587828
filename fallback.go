package lotofacil

import (
	mrand "math/rand/v2"
	"slices"
)

// FallbackGenerator synthesizes games locally when the backend cannot be trusted.
// It never consults session history, so repeats across a session are possible.
type FallbackGenerator struct {
	source RandomSource
}

// NewFallbackGenerator creates a fallback generator; a nil source uses crypto/rand
func NewFallbackGenerator(source RandomSource) *FallbackGenerator {
	if source == nil {
		source = NewSecureRandomGenerator()
	}
	return &FallbackGenerator{source: source}
}

// Generate returns count fallback games for strategy
func (f *FallbackGenerator) Generate(count int, strategy Strategy) []Game {
	games := make([]Game, 0, count)
	for range count {
		games = append(games, Game{
			Numbers:     f.drawNumbers(),
			Probability: BaseProbability,
			Strategy:    strategy,
			Methodology: FallbackMethodology,
			Analysis:    FallbackAnalysis,
		})
	}
	return games
}

// maxDrawAttempts bounds rejection sampling against a source stuck on a few values
const maxDrawAttempts = 1000

// drawNumbers collects GameSize distinct numbers by rejection sampling.
// After maxDrawAttempts the draw is completed from a math/rand permutation.
func (f *FallbackGenerator) drawNumbers() []int {
	seen := make(map[int]struct{}, GameSize)
	numbers := make([]int, 0, GameSize)

	add := func(n int) {
		if _, dup := seen[n]; dup {
			return
		}
		seen[n] = struct{}{}
		numbers = append(numbers, n)
	}

	for attempt := 0; len(numbers) < GameSize && attempt < maxDrawAttempts; attempt++ {
		n, err := f.source.GenerateInRange(NumberMin, NumberMax)
		if err != nil || n < NumberMin || n > NumberMax {
			// the fallback must not fail; degrade to the math/rand source
			n = NumberMin + mrand.IntN(NumberMax-NumberMin+1)
		}
		add(n)
	}

	for _, i := range mrand.Perm(NumberMax - NumberMin + 1) {
		if len(numbers) == GameSize {
			break
		}
		add(NumberMin + i)
	}

	slices.Sort(numbers)
	return numbers
}
