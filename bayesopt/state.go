package bayesopt

import (
	"bufio"
	"encoding"
	"encoding/base64"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/exp/rand"

	"github.com/pa-m/bayesopt/design"
)

// stateFormatVersion guards against loading a state written by an
// incompatible layout; bump it whenever a key is added, removed or
// reinterpreted.
const stateFormatVersion = 1

// Save writes the run's resumable state as a key=value text document, one
// key per line: format version, loop bookkeeping (iteration, counterStuck,
// yPrev, best point), the full Parameters, the surrogate's fitted
// hyperparameters and sample matrix, and the RNG state. A '#'-prefixed
// line is a comment and is ignored on load.
//
// The RNG state is persisted via its BinaryMarshaler when the concrete
// source returned by golang.org/x/exp/rand.NewSource implements one
// (base64-encoded on a single line); Restore falls back to a seed
// deterministically derived from RandomSeed and the saved iteration count
// when it does not, so a restored run is always reproducible even if the
// exact interrupted stream position cannot be recovered.
func (o *Optimizer) Save(w io.Writer) error {
	bw := bufio.NewWriter(w)
	kv := func(key, val string) {
		fmt.Fprintf(bw, "%s=%s\n", key, val)
	}
	kv("format_version", strconv.Itoa(stateFormatVersion))
	kv("phase", strconv.Itoa(int(o.phase)))
	kv("current_iter", strconv.Itoa(o.iter))
	kv("counter_stuck", strconv.Itoa(o.counterStuck))
	kv("y_prev", floatStr(o.yPrev))
	kv("best_y", floatStr(o.bestY))
	kv("best_x", csvFloats(o.bestX))
	kv("lb", csvFloats(o.lb))
	kv("ub", csvFloats(o.ub))

	p := o.params
	kv("params.n_iterations", strconv.Itoa(p.NIterations))
	kv("params.n_init_samples", strconv.Itoa(p.NInitSamples))
	kv("params.n_iter_relearn", strconv.Itoa(p.NIterRelearn))
	kv("params.init_method", strconv.Itoa(int(p.InitMethod)))
	kv("params.random_seed", strconv.FormatInt(p.RandomSeed, 10))
	kv("params.verbose_level", strconv.Itoa(p.VerboseLevel))
	kv("params.log_filename", p.LogFilename)
	kv("params.noise", floatStr(p.Noise))
	kv("params.surr_name", p.SurrName)
	kv("params.sc_type", p.SCType)
	kv("params.l_all", strconv.FormatBool(p.LAll))
	kv("params.l_type", p.LType)
	kv("params.kernel_name", p.Kernel.Name)
	kv("params.kernel_hp_mean", csvFloats(p.Kernel.HPMean))
	kv("params.kernel_hp_std", csvFloats(p.Kernel.HPStd))
	kv("params.mean_name", p.Mean.Name)
	kv("params.mean_coef_mean", csvFloats(p.Mean.CoefMean))
	kv("params.mean_coef_std", csvFloats(p.Mean.CoefStd))
	kv("params.crit_name", p.CritName)
	kv("params.crit_params", csvFloats(p.CritParams))
	kv("params.alpha", floatStr(p.Alpha))
	kv("params.beta", floatStr(p.Beta))
	kv("params.delta", floatStr(p.Delta))
	kv("params.epsilon", floatStr(p.Epsilon))
	kv("params.force_jump", strconv.Itoa(p.ForceJump))

	kv("kernel_hp", csvFloats(o.proc.HP()))
	kv("x", csvRows(o.proc.X()))
	kv("y", csvFloats(o.proc.Y()))
	kv("rng_state", marshalRNG(o.src))

	return bw.Flush()
}

// Restore rebuilds an Optimizer from a document written by Save. The
// objective is never serialised and must be supplied by the caller.
func Restore(r io.Reader, objective ObjectiveFunc) (*Optimizer, error) {
	kv, err := parseKV(r)
	if err != nil {
		return nil, &StateError{Msg: err.Error()}
	}

	version, err := strconv.Atoi(kv["format_version"])
	if err != nil {
		return nil, &StateError{Msg: fmt.Sprintf("malformed format_version: %v", err)}
	}
	if version != stateFormatVersion {
		return nil, &StateError{Msg: fmt.Sprintf("unsupported state version %d (want %d)", version, stateFormatVersion)}
	}

	lb := parseCSVFloats(kv["lb"])
	ub := parseCSVFloats(kv["ub"])
	dim := len(lb)
	if dim == 0 || len(ub) != dim {
		return nil, &StateError{Msg: "malformed lb/ub in persisted state"}
	}

	p, err := parseParams(kv)
	if err != nil {
		return nil, &StateError{Msg: err.Error()}
	}

	iter := atoiOr(kv["current_iter"], 0)
	src, ok := unmarshalRNG(kv["rng_state"])
	if !ok {
		src = rand.NewSource(resumeSeed(p.RandomSeed, iter))
	}

	// Build the optimizer against the recovered source directly, rather
	// than NewOptimizer's fresh params.Src(), so the criterion (including
	// any Hedge arms) and the hyperparameter learner resume drawing from
	// the same stream as the rest of the restored run instead of a
	// reseeded-from-zero one.
	o, err := newOptimizer(p, objective, lb, ub, src)
	if err != nil {
		return nil, err
	}

	if hp := parseCSVFloats(kv["kernel_hp"]); len(hp) > 0 {
		if err := o.proc.SetHP(hp); err != nil {
			return nil, &NumericalError{Op: "Restore.SetHP", Err: err}
		}
	}
	X := parseCSVRows(kv["x"])
	y := parseCSVFloats(kv["y"])
	if len(X) > 0 {
		if err := o.proc.SetSamples(X, y); err != nil {
			return nil, &NumericalError{Op: "Restore.SetSamples", Err: err}
		}
	}

	o.phase = Phase(atoiOr(kv["phase"], 0))
	o.iter = iter
	o.counterStuck = atoiOr(kv["counter_stuck"], 0)
	o.yPrev = atofOr(kv["y_prev"], 0)
	o.bestX = parseCSVFloats(kv["best_x"])
	o.bestY = atofOr(kv["best_y"], 0)

	return o, nil
}

func parseParams(kv map[string]string) (Parameters, error) {
	var p Parameters
	p.NIterations = atoiOr(kv["params.n_iterations"], 0)
	p.NInitSamples = atoiOr(kv["params.n_init_samples"], 0)
	p.NIterRelearn = atoiOr(kv["params.n_iter_relearn"], 0)
	p.InitMethod = design.Method(atoiOr(kv["params.init_method"], 0))
	seed, err := strconv.ParseInt(kv["params.random_seed"], 10, 64)
	if err != nil {
		return p, fmt.Errorf("malformed params.random_seed: %w", err)
	}
	p.RandomSeed = seed
	p.VerboseLevel = atoiOr(kv["params.verbose_level"], 0)
	p.LogFilename = kv["params.log_filename"]
	p.Noise = atofOr(kv["params.noise"], 0)
	p.SurrName = kv["params.surr_name"]
	p.SCType = kv["params.sc_type"]
	p.LAll, _ = strconv.ParseBool(kv["params.l_all"])
	p.LType = kv["params.l_type"]
	p.Kernel.Name = kv["params.kernel_name"]
	p.Kernel.HPMean = parseCSVFloats(kv["params.kernel_hp_mean"])
	p.Kernel.HPStd = parseCSVFloats(kv["params.kernel_hp_std"])
	p.Mean.Name = kv["params.mean_name"]
	p.Mean.CoefMean = parseCSVFloats(kv["params.mean_coef_mean"])
	p.Mean.CoefStd = parseCSVFloats(kv["params.mean_coef_std"])
	p.CritName = kv["params.crit_name"]
	p.CritParams = parseCSVFloats(kv["params.crit_params"])
	p.Alpha = atofOr(kv["params.alpha"], 0)
	p.Beta = atofOr(kv["params.beta"], 0)
	p.Delta = atofOr(kv["params.delta"], 0)
	p.Epsilon = atofOr(kv["params.epsilon"], 0)
	p.ForceJump = atoiOr(kv["params.force_jump"], 0)
	return p, nil
}

func parseKV(r io.Reader) (map[string]string, error) {
	kv := make(map[string]string)
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for sc.Scan() {
		line := sc.Text()
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		idx := strings.IndexByte(line, '=')
		if idx < 0 {
			return nil, fmt.Errorf("malformed line %q: missing '='", line)
		}
		kv[line[:idx]] = line[idx+1:]
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return kv, nil
}

func atoiOr(s string, def int) int {
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}

func atofOr(s string, def float64) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return def
	}
	return v
}

func floatStr(f float64) string { return strconv.FormatFloat(f, 'g', -1, 64) }

func csvFloats(xs []float64) string {
	parts := make([]string, len(xs))
	for i, v := range xs {
		parts[i] = floatStr(v)
	}
	return strings.Join(parts, ",")
}

func parseCSVFloats(s string) []float64 {
	if s == "" {
		return nil
	}
	fields := strings.Split(s, ",")
	out := make([]float64, len(fields))
	for i, f := range fields {
		out[i], _ = strconv.ParseFloat(f, 64)
	}
	return out
}

func csvRows(rows [][]float64) string {
	parts := make([]string, len(rows))
	for i, row := range rows {
		parts[i] = csvFloats(row)
	}
	return strings.Join(parts, ";")
}

func parseCSVRows(s string) [][]float64 {
	if s == "" {
		return nil
	}
	rows := strings.Split(s, ";")
	out := make([][]float64, len(rows))
	for i, row := range rows {
		out[i] = parseCSVFloats(row)
	}
	return out
}

// marshalRNG encodes src's state via encoding.BinaryMarshaler when the
// concrete source golang.org/x/exp/rand.NewSource returns implements one;
// otherwise it reports "none" and Restore reseeds deterministically.
func marshalRNG(src rand.Source) string {
	m, ok := src.(encoding.BinaryMarshaler)
	if !ok {
		return "none"
	}
	data, err := m.MarshalBinary()
	if err != nil {
		return "none"
	}
	return base64.StdEncoding.EncodeToString(data)
}

func unmarshalRNG(s string) (rand.Source, bool) {
	if s == "" || s == "none" {
		return nil, false
	}
	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, false
	}
	src := rand.NewSource(1)
	u, ok := src.(encoding.BinaryUnmarshaler)
	if !ok {
		return nil, false
	}
	if err := u.UnmarshalBinary(data); err != nil {
		return nil, false
	}
	return src, true
}

func resumeSeed(seed int64, iter int) uint64 {
	base := uint64(0x9E3779B97F4A7C15)
	if seed >= 0 {
		base = uint64(seed)
	}
	return base ^ (uint64(iter+1) * 0x100000001B3)
}
