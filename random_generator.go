package lotofacil

import (
	"crypto/rand"
	"math/big"
	mrand "math/rand/v2"
	"sync"
)

// RandomSource produces uniformly distributed integers in [min, max] (inclusive)
type RandomSource interface {
	GenerateInRange(min, max int) (int, error)
}

// SecureRandomGenerator implements secure random number generation using crypto/rand
type SecureRandomGenerator struct{}

// NewSecureRandomGenerator creates a new secure random generator
func NewSecureRandomGenerator() *SecureRandomGenerator {
	return &SecureRandomGenerator{}
}

// GenerateInRange generates a secure random number within the specified range [min, max] (inclusive)
func (g *SecureRandomGenerator) GenerateInRange(min, max int) (int, error) {
	if min > max {
		return 0, ErrInvalidParameters.WithDetails("min must be less than or equal to max")
	}
	if min == max {
		return min, nil
	}

	rangeSize := max - min + 1
	randomBig, err := rand.Int(rand.Reader, big.NewInt(int64(rangeSize)))
	if err != nil {
		return 0, err
	}
	return int(randomBig.Int64()) + min, nil
}

// SeededRandomGenerator is a reproducible RandomSource, useful in tests and simulations
type SeededRandomGenerator struct {
	mu sync.Mutex
	r  *mrand.Rand
}

// NewSeededRandomGenerator creates a PCG-backed generator from seed
func NewSeededRandomGenerator(seed uint64) *SeededRandomGenerator {
	return &SeededRandomGenerator{r: mrand.New(mrand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// GenerateInRange generates a number within [min, max] (inclusive)
func (g *SeededRandomGenerator) GenerateInRange(min, max int) (int, error) {
	if min > max {
		return 0, ErrInvalidParameters.WithDetails("min must be less than or equal to max")
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	return min + g.r.IntN(max-min+1), nil
}
