package lotofacil

import "strings"

// Strategy names a generation policy routed to the backend.
// The statistics behind each one live only in the backend instructions.
type Strategy string

const (
	StrategyHotNumbers     Strategy = "HOT_NUMBERS"
	StrategyColdNumbers    Strategy = "COLD_NUMBERS"
	StrategyBalanced       Strategy = "BALANCED"
	StrategyFibonacciPrime Strategy = "FIBONACCI_PRIME"
	StrategyGoldStandard   Strategy = "GOLD_STANDARD"
)

type strategyInfo struct {
	label       string
	description string
}

var strategyCatalog = map[Strategy]strategyInfo{
	StrategyGoldStandard:   {"Padrão Ouro", "Fusão suprema de estratégias: moldura, primos, Fibonacci e paridade simultaneamente."},
	StrategyHotNumbers:     {"Ciclo & Frequência", "Dezenas quentes e ciclo atual das dezenas."},
	StrategyColdNumbers:    {"Retorno da Zebra", "Números atrasados matematicamente."},
	StrategyBalanced:       {"Padrão Moldura", "Geometria da moldura e equilíbrio par/ímpar."},
	StrategyFibonacciPrime: {"Primos & Fibonacci", "Sequências matemáticas puras."},
}

// Strategies returns every known strategy in display order
func Strategies() []Strategy {
	return []Strategy{
		StrategyGoldStandard,
		StrategyHotNumbers,
		StrategyColdNumbers,
		StrategyBalanced,
		StrategyFibonacciPrime,
	}
}

// ParseStrategy resolves a strategy id, ignoring case and surrounding spaces
func ParseStrategy(s string) (Strategy, error) {
	st := Strategy(strings.ToUpper(strings.TrimSpace(s)))
	if !st.Valid() {
		return "", ErrInvalidStrategy.WithDetails(s)
	}
	return st, nil
}

// Valid reports whether s is one of the enumerated strategies
func (s Strategy) Valid() bool {
	_, ok := strategyCatalog[s]
	return ok
}

// Label returns the display name of the strategy
func (s Strategy) Label() string { return strategyCatalog[s].label }

// Description returns a short description of the strategy
func (s Strategy) Description() string { return strategyCatalog[s].description }

func (s Strategy) String() string { return string(s) }
