package kernel

import (
	"fmt"
	"strings"
)

// Parse builds a Kernel tree from a name expression such as "MaternIso5",
// "SEArd+LinearARD" or "SEIso*RQIso". Combinators '+' and '*' are parsed
// left to right and associate to the right: "a+b+c" is "a+(b+c)". d is the
// input dimensionality, needed to size ARD hyperparameter vectors. Parsing
// lives entirely at this boundary; the returned Kernel has no notion of
// names.
func Parse(expr string, d int) (Kernel, error) {
	toks, err := tokenize(expr)
	if err != nil {
		return nil, err
	}
	if len(toks) == 0 {
		return nil, fmt.Errorf("kernel: empty expression")
	}
	k, rest, err := parseExpr(toks, d)
	if err != nil {
		return nil, err
	}
	if len(rest) != 0 {
		return nil, fmt.Errorf("kernel: unexpected trailing tokens %v", rest)
	}
	return k, nil
}

func tokenize(expr string) ([]string, error) {
	var toks []string
	cur := strings.Builder{}
	flush := func() {
		if cur.Len() > 0 {
			toks = append(toks, cur.String())
			cur.Reset()
		}
	}
	for _, r := range expr {
		switch r {
		case '+', '*':
			flush()
			toks = append(toks, string(r))
		case ' ', '\t', '\n':
			flush()
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	return toks, nil
}

// parseExpr consumes a right-associative chain "name (op name)*" from the
// front of toks and returns the remaining tokens.
func parseExpr(toks []string, d int) (Kernel, []string, error) {
	if len(toks) == 0 {
		return nil, nil, fmt.Errorf("kernel: expected kernel name")
	}
	leaf, err := newNamed(toks[0], d)
	if err != nil {
		return nil, nil, err
	}
	rest := toks[1:]
	if len(rest) == 0 {
		return leaf, rest, nil
	}
	op := rest[0]
	if op != "+" && op != "*" {
		return nil, nil, fmt.Errorf("kernel: expected '+' or '*', got %q", op)
	}
	right, rest, err := parseExpr(rest[1:], d)
	if err != nil {
		return nil, nil, err
	}
	if op == "+" {
		return NewSum(leaf, right), rest, nil
	}
	return NewProd(leaf, right), rest, nil
}

// newNamed constructs a single atomic kernel by name.
func newNamed(name string, d int) (Kernel, error) {
	switch name {
	case "Const":
		return NewConst(), nil
	case "Linear":
		return NewLinear(), nil
	case "LinearARD":
		return NewLinearARD(d), nil
	case "Hamming":
		return NewHamming(), nil
	case "Poly1":
		return NewPolynomial(1), nil
	case "Poly2":
		return NewPolynomial(2), nil
	case "Poly3":
		return NewPolynomial(3), nil
	case "Poly4":
		return NewPolynomial(4), nil
	case "Poly5":
		return NewPolynomial(5), nil
	case "Poly6":
		return NewPolynomial(6), nil
	case "MaternIso1":
		return NewMatern1Iso(), nil
	case "MaternIso3":
		return NewMatern3Iso(), nil
	case "MaternIso5":
		return NewMatern5Iso(), nil
	case "MaternARD1":
		return NewMatern1Ard(d), nil
	case "MaternARD3":
		return NewMatern3Ard(d), nil
	case "MaternARD5":
		return NewMatern5Ard(d), nil
	case "SEIso":
		return NewSEIso(), nil
	case "SEArd":
		return NewSEArd(d), nil
	case "RQIso":
		return NewRQIso(), nil
	}
	return nil, fmt.Errorf("kernel: unknown kernel name %q", name)
}
