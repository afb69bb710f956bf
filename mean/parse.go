package mean

import "fmt"

// Parse builds a Mean from a name such as "Zero", "One", "Constant",
// "Linear" or "LinearConstant". d is the input dimensionality, needed to
// size Linear/LinearConstant's feature vector. Parsing lives entirely at
// this boundary; the returned Mean has no notion of names.
func Parse(name string, d int) (Mean, error) {
	switch name {
	case "Zero":
		return NewZero(), nil
	case "One":
		return NewOne(), nil
	case "Constant":
		return NewConstant(), nil
	case "Linear":
		return NewLinear(d), nil
	case "LinearConstant":
		return NewLinearConstant(d), nil
	}
	return nil, fmt.Errorf("mean: unknown mean name %q", name)
}
