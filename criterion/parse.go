package criterion

import (
	"fmt"
	"strings"

	"golang.org/x/exp/rand"
)

// Parse builds a Criterion from a name expression such as "ei", "lcb" or
// "Hedge(ei,lcb,poi)". Parsing lives entirely at this boundary; the
// returned Criterion has no notion of names. dim is the input
// dimensionality, needed by LCB's annealing schedule. src seeds any
// criterion with a stochastic component (Thompson, OptimisticSampling,
// Hedge's arm draw); nil uses the package default generator.
func Parse(expr string, dim int, src rand.Source) (Criterion, error) {
	expr = strings.TrimSpace(expr)
	if inner, ok := stripHedge(expr); ok {
		parts := splitArgs(inner)
		if len(parts) == 0 {
			return nil, fmt.Errorf("criterion: Hedge requires at least one arm")
		}
		arms := make([]Criterion, len(parts))
		for i, part := range parts {
			arm, err := Parse(part, dim, src)
			if err != nil {
				return nil, err
			}
			arms[i] = arm
		}
		return NewHedge(arms, 1, src), nil
	}
	return newNamed(expr, dim, src)
}

func stripHedge(expr string) (string, bool) {
	const prefix = "Hedge("
	if !strings.HasPrefix(expr, prefix) || !strings.HasSuffix(expr, ")") {
		return "", false
	}
	return expr[len(prefix) : len(expr)-1], true
}

// splitArgs splits a comma-separated argument list at top level only,
// respecting nested parentheses (so a nested "Hedge(...)" arm, should one
// ever appear, is not split internally).
func splitArgs(s string) []string {
	var parts []string
	depth := 0
	start := 0
	for i, r := range s {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				parts = append(parts, strings.TrimSpace(s[start:i]))
				start = i + 1
			}
		}
	}
	if start <= len(s) {
		last := strings.TrimSpace(s[start:])
		if last != "" {
			parts = append(parts, last)
		}
	}
	return parts
}

func newNamed(name string, dim int, src rand.Source) (Criterion, error) {
	switch strings.ToLower(name) {
	case "ei":
		return ExpectedImprovement{P: 1}, nil
	case "lcb":
		return &LowerConfidenceBound{Beta: 2, Dim: dim}, nil
	case "lcbannealed":
		return &LowerConfidenceBound{Anneal: true, Delta: 0.1, Dim: dim}, nil
	case "poi":
		return ProbabilityOfImprovement{}, nil
	case "thompson":
		return Thompson{Src: src}, nil
	case "optimisticsampling":
		return OptimisticSampling{Src: src}, nil
	case "aoptimality":
		return AOptimality{}, nil
	case "greedymean":
		return GreedyMean{}, nil
	case "expectedreturn":
		return ExpectedReturn{}, nil
	}
	return nil, fmt.Errorf("criterion: unknown criterion name %q", name)
}
