package lotofacil

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"
)

// GenerationRequest is an immutable generation request: how many games, which
// strategy, and the session combinations the backend is asked not to repeat.
type GenerationRequest struct {
	count      int
	strategy   Strategy
	exclusions [][]int
}

// NewGenerationRequest validates the caller input and snapshots history.
// It fails only with a validation error.
func NewGenerationRequest(count int, strategy Strategy, history [][]int) (*GenerationRequest, error) {
	if err := ValidateCount(count); err != nil {
		return nil, err
	}
	if !strategy.Valid() {
		return nil, ErrInvalidStrategy.WithDetails(string(strategy))
	}

	return &GenerationRequest{
		count:      count,
		strategy:   strategy,
		exclusions: cloneCombinations(history),
	}, nil
}

// Count returns the number of requested games
func (r *GenerationRequest) Count() int { return r.count }

// Strategy returns the requested strategy
func (r *GenerationRequest) Strategy() Strategy { return r.strategy }

// Exclusions returns a copy of the combinations the backend must avoid
func (r *GenerationRequest) Exclusions() [][]int { return cloneCombinations(r.exclusions) }

// SystemInstruction returns the fixed behavioural policy for the backend
func (r *GenerationRequest) SystemInstruction() string { return SystemInstruction }

// Prompt renders the task description: the task itself, an exclusion clause
// when history is non-empty, and the output schema.
func (r *GenerationRequest) Prompt() string {
	var b strings.Builder

	fmt.Fprintf(&b, promptTaskTemplate, r.count, r.strategy)
	b.WriteString("\n")

	if len(r.exclusions) > 0 {
		// [][]int always marshals
		data, _ := json.Marshal(r.exclusions)
		fmt.Fprintf(&b, promptExclusionTemplate, data)
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, promptFormatTemplate,
		r.count, GameSize, NumberMin, NumberMax, r.strategy, MaxAnalysisLength)
	return b.String()
}

// ResponseSchema describes the expected payload in the structured-output
// schema dialect of the generation backend.
func (r *GenerationRequest) ResponseSchema() map[string]any {
	str := map[string]any{"type": "STRING"}
	return map[string]any{
		"type": "ARRAY",
		"items": map[string]any{
			"type": "OBJECT",
			"properties": map[string]any{
				"numbers": map[string]any{
					"type":  "ARRAY",
					"items": map[string]any{"type": "INTEGER"},
				},
				"probability": str,
				"strategy":    str,
				"methodology": str,
				"analysis":    str,
			},
			"required": []string{"numbers", "probability", "strategy", "methodology", "analysis"},
		},
	}
}

func cloneCombinations(in [][]int) [][]int {
	if len(in) == 0 {
		return nil
	}
	out := make([][]int, len(in))
	for i, c := range in {
		out[i] = slices.Clone(c)
	}
	return out
}
