package criterion

import (
	"math"

	"golang.org/x/exp/rand"

	"github.com/pa-m/bayesopt/inneropt"
)

// Hedge implements the GP-Hedge portfolio over a fixed arm set: each
// iteration, every arm proposes its own argmax via the inner optimizer,
// one arm is drawn with probability proportional to exp(eta*g_j), and
// every arm's cumulative gain is updated by its own proposal's reward -
// not just the chosen arm's - so unchosen arms still learn.
type Hedge struct {
	Arms []Criterion
	// Eta is the softmax temperature; <=0 defaults to 1.
	Eta float64
	Src rand.Source

	gains     []float64
	lastArm   int
	lastProbs []float64
}

// NewHedge builds a Hedge portfolio over arms, eta defaulting to 1 and
// src defaulting to the package rand source when nil.
func NewHedge(arms []Criterion, eta float64, src rand.Source) *Hedge {
	return &Hedge{Arms: arms, Eta: eta, Src: src, gains: make([]float64, len(arms)), lastArm: -1}
}

func (h *Hedge) Name() string { return "hedge" }

// Score satisfies Criterion for callers that only have a single-point
// evaluation budget: it is the best of the arms' individual scores at x.
// The BO loop itself uses Propose, which additionally runs the inner
// optimizer per arm and updates cumulative gains.
func (h *Hedge) Score(pred Predictor, x []float64, yMin float64) (float64, error) {
	best := math.Inf(-1)
	for _, arm := range h.Arms {
		s, err := arm.Score(pred, x, yMin)
		if err != nil {
			return 0, err
		}
		if s > best {
			best = s
		}
	}
	return best, nil
}

// Reset clears cumulative gains, restarting the portfolio's learning.
func (h *Hedge) Reset() {
	h.gains = make([]float64, len(h.Arms))
	h.lastArm = -1
	h.lastProbs = nil
}

// Propose selects the next candidate point. With a single arm it reduces
// to that arm's own proposal; otherwise each arm proposes independently
// via inner, one is drawn by the softmax-weighted gains, and every arm's
// gain is updated by its own proposal's predictive-mean reward.
func (h *Hedge) Propose(pred Predictor, inner *inneropt.GlobalLocal, x0, xmin, xmax []float64, yMin float64) ([]float64, error) {
	n := len(h.Arms)
	if n == 0 {
		return nil, errNoArms
	}
	if len(h.gains) != n {
		h.gains = make([]float64, n)
	}

	proposals := make([][]float64, n)
	for j, arm := range h.Arms {
		score := func(x []float64) float64 {
			s, err := arm.Score(pred, x, yMin)
			if err != nil {
				return math.Inf(-1)
			}
			return s
		}
		xj, _, err := inner.Maximize(score, x0, xmin, xmax)
		if err != nil {
			return nil, err
		}
		proposals[j] = xj
	}

	if n == 1 {
		h.lastArm = 0
		return proposals[0], nil
	}

	eta := h.Eta
	if eta <= 0 {
		eta = 1
	}
	probs := softmax(h.gains, eta)
	h.lastProbs = probs
	chosen := h.draw(probs)
	h.lastArm = chosen

	for j, xj := range proposals {
		p, err := pred.Predict(xj)
		if err != nil {
			continue
		}
		h.gains[j] += yMin - p.Mean
	}

	return proposals[chosen], nil
}

// LastArm returns the index into Arms chosen by the most recent Propose
// call, or -1 if Propose has not run.
func (h *Hedge) LastArm() int { return h.lastArm }

func (h *Hedge) draw(probs []float64) int {
	src := h.Src
	if src == nil {
		src = rand.NewSource(1)
	}
	u := rand.New(src).Float64()
	var cum float64
	for i, p := range probs {
		cum += p
		if u <= cum {
			return i
		}
	}
	return len(probs) - 1
}

func softmax(gains []float64, eta float64) []float64 {
	maxG := math.Inf(-1)
	for _, g := range gains {
		if g*eta > maxG {
			maxG = g * eta
		}
	}
	out := make([]float64, len(gains))
	var sum float64
	for i, g := range gains {
		out[i] = math.Exp(eta*g - maxG)
		sum += out[i]
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}

var errNoArms = &hedgeError{"criterion: Hedge requires at least one arm"}

type hedgeError struct{ msg string }

func (e *hedgeError) Error() string { return e.msg }
