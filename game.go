package lotofacil

import (
	"fmt"
	"slices"
	"strings"
)

// Game represents one generated 15-number combination and its metadata
type Game struct {
	Numbers     []int    `json:"numbers"`     // 15 distinct numbers in [1,25], ascending
	Probability string   `json:"probability"` // Odds as reported by the producer
	Strategy    Strategy `json:"strategy"`    // Strategy the game was requested with
	Methodology string   `json:"methodology"` // Technique claimed by the producer, kept verbatim
	Analysis    string   `json:"analysis"`    // Free-text rationale
}

// ValidateNumbers checks the combination invariant: exactly GameSize distinct
// integers within [NumberMin, NumberMax], strictly ascending.
func ValidateNumbers(numbers []int) error {
	if len(numbers) != GameSize {
		return ErrInvalidGame.WithDetails(fmt.Sprintf("expected %d numbers, got %d", GameSize, len(numbers)))
	}

	for i, n := range numbers {
		if n < NumberMin || n > NumberMax {
			return ErrInvalidGame.WithDetails(fmt.Sprintf("number %d at position %d is outside [%d,%d]", n, i, NumberMin, NumberMax))
		}
		// strictly ascending also rules out duplicates
		if i > 0 && n <= numbers[i-1] {
			return ErrInvalidGame.WithDetails(fmt.Sprintf("numbers not strictly ascending at position %d (%d after %d)", i, n, numbers[i-1]))
		}
	}
	return nil
}

// Validate validates the game data
func (g *Game) Validate() error {
	if err := ValidateNumbers(g.Numbers); err != nil {
		return err
	}

	switch {
	case g.Probability == "":
		return ErrInvalidGame.WithDetails("missing probability")
	case g.Strategy == "":
		return ErrInvalidGame.WithDetails("missing strategy")
	case g.Methodology == "":
		return ErrInvalidGame.WithDetails("missing methodology")
	case g.Analysis == "":
		return ErrInvalidGame.WithDetails("missing analysis")
	}
	return nil
}

// IsFallback reports whether the game was generated locally
func (g *Game) IsFallback() bool { return g.Methodology == FallbackMethodology }

// Format renders the numbers zero-padded and space separated, e.g. "01 02 05 ..."
func (g *Game) Format() string { return FormatNumbers(g.Numbers) }

// Clone returns a deep copy of the game
func (g Game) Clone() Game {
	g.Numbers = slices.Clone(g.Numbers)
	return g
}

// FormatNumbers renders numbers zero-padded and space separated
func FormatNumbers(numbers []int) string {
	parts := make([]string, len(numbers))
	for i, n := range numbers {
		parts[i] = fmt.Sprintf("%02d", n)
	}
	return strings.Join(parts, " ")
}
