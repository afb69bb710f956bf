// Package config is the parsing boundary between string-named
// configuration (kernel/mean/criterion expressions, learning-mode names)
// and the typed core: every other package receives already-constructed
// kernels, means and criteria, never a name to look up itself.
package config

import (
	"fmt"
	"strings"

	"golang.org/x/exp/rand"

	"github.com/pa-m/bayesopt/criterion"
	"github.com/pa-m/bayesopt/design"
	"github.com/pa-m/bayesopt/kernel"
	"github.com/pa-m/bayesopt/learner"
	"github.com/pa-m/bayesopt/mean"
)

// SurrogateName is one of the recognised surrogate flavours.
type SurrogateName int

const (
	GP SurrogateName = iota
	GPML
	GPNormal
	StudentTJef
	StudentTNIG
)

func parseSurrogateName(s string) (SurrogateName, error) {
	switch strings.ToLower(s) {
	case "gp":
		return GP, nil
	case "gp-ml", "gpml":
		return GPML, nil
	case "gp-normal", "gpnormal":
		return GPNormal, nil
	case "studentt-jef", "studenttjef":
		return StudentTJef, nil
	case "studentt-nig", "studenttnig":
		return StudentTNIG, nil
	}
	return 0, fmt.Errorf("config: unknown surr_name %q", s)
}

// KernelSpec names a kernel expression plus its per-hyperparameter prior.
type KernelSpec struct {
	Name   string
	HPMean []float64
	HPStd  []float64
}

// MeanSpec names a mean expression plus its per-coefficient prior.
type MeanSpec struct {
	Name     string
	CoefMean []float64
	CoefStd  []float64
}

// Parameters holds every recognised configuration option. Fields are
// named exactly as the distilled grammar names them. A zero value is used
// as is; the defaults come from DefaultParameters.
type Parameters struct {
	NIterations   int
	NInitSamples  int
	NIterRelearn  int
	InitMethod    design.Method
	RandomSeed    int64
	VerboseLevel  int
	LogFilename   string

	Noise float64

	SurrName string
	SCType   string // Fixed, ML, MAP, Loo, MCMC
	LAll     bool
	LType    string

	Kernel KernelSpec
	Mean   MeanSpec

	CritName   string
	CritParams []float64

	Alpha, Beta, Delta float64
	Epsilon            float64
	ForceJump          int
}

// DefaultParameters returns the documented defaults for the fields a
// caller does not set explicitly. Kernel.Name and Mean.Name have no
// default and are left empty.
func DefaultParameters() Parameters {
	return Parameters{
		NIterations:  190,
		NInitSamples: 10,
		NIterRelearn: 0,
		InitMethod:   design.LatinHypercube,
		RandomSeed:   0,
		Noise:        1e-10,
		SurrName:     "GP",
		SCType:       "Fixed",
		LType:        "empirical",
		CritName:     "ei",
		Delta:        0.1,
		ForceJump:    20,
	}
}

// Src returns the rand.Source implied by RandomSeed: a negative seed is
// replaced by the fixed constant 0x9E3779B97F4A7C15, so the source is
// deterministic in every case; otherwise the seed is used directly.
func (p Parameters) Src() rand.Source {
	if p.RandomSeed < 0 {
		return rand.NewSource(0x9E3779B97F4A7C15)
	}
	return rand.NewSource(uint64(p.RandomSeed))
}

// BuildKernel parses Kernel.Name for dimension d and, when its length
// equals NHP(), installs Kernel.HPMean as the kernel's flat HP vector.
// Kernel.HPStd is not read here, and no hyperparameter prior is built
// from it.
func (p Parameters) BuildKernel(d int) (kernel.Kernel, error) {
	k, err := kernel.Parse(p.Kernel.Name, d)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if len(p.Kernel.HPMean) == k.NHP() {
		if err := k.SetHP(p.Kernel.HPMean); err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
	}
	return k, nil
}

// BuildMean constructs Mean.Name's mean function for dimension d and
// installs its coefficient prior.
func (p Parameters) BuildMean(d int) (mean.Mean, error) {
	m, err := mean.Parse(p.Mean.Name, d)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if len(p.Mean.CoefMean) == m.NFeatures() && len(p.Mean.CoefStd) == m.NFeatures() {
		if err := m.SetPrior(p.Mean.CoefMean, p.Mean.CoefStd); err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
	}
	return m, nil
}

// BuildCriterion parses CritName for dimension d, seeded by src.
func (p Parameters) BuildCriterion(d int, src rand.Source) (criterion.Criterion, error) {
	c, err := criterion.Parse(p.CritName, d, src)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if lcb, ok := c.(*criterion.LowerConfidenceBound); ok && len(p.CritParams) > 0 {
		lcb.Beta = p.CritParams[0]
	}
	return c, nil
}

// LearnerMode maps SCType to a learner.Mode.
func (p Parameters) LearnerMode() (learner.Mode, error) {
	switch strings.ToLower(p.SCType) {
	case "fixed":
		return learner.Fixed, nil
	case "ml", "map", "loo":
		return learner.Empirical, nil
	case "mcmc":
		return learner.MCMC, nil
	}
	return 0, fmt.Errorf("config: unknown sc_type %q", p.SCType)
}

// Validate checks cross-field invariants that a constructor would
// otherwise discover only partway through building a run.
func (p Parameters) Validate(d int) error {
	if p.NIterations < 1 {
		return fmt.Errorf("config: n_iterations must be >= 1, got %d", p.NIterations)
	}
	if p.NInitSamples < 1 {
		return fmt.Errorf("config: n_init_samples must be >= 1, got %d", p.NInitSamples)
	}
	if p.NInitSamples < d+1 {
		return fmt.Errorf("config: n_init_samples (%d) must be >= d+1 (%d)", p.NInitSamples, d+1)
	}
	if p.NIterRelearn < 0 {
		return fmt.Errorf("config: n_iter_relearn must be >= 0, got %d", p.NIterRelearn)
	}
	if p.Noise < 0 {
		return fmt.Errorf("config: noise must be >= 0, got %g", p.Noise)
	}
	if _, err := parseSurrogateName(p.SurrName); err != nil {
		return err
	}
	if _, err := p.LearnerMode(); err != nil {
		return err
	}
	return nil
}
