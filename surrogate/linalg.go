package surrogate

import "math"

// solveSymPD solves the small (m x m) symmetric positive-definite system
// A x = b by Gaussian elimination with partial pivoting. m is the mean
// function's feature count, always small, so a dedicated dense solver
// isn't worth reaching for mat.Dense here.
func solveSymPD(a [][]float64, b []float64) ([]float64, error) {
	m := len(b)
	// Work on a copy so the caller's matrix is untouched.
	A := make([][]float64, m)
	for i := range A {
		A[i] = append([]float64{}, a[i]...)
	}
	x := append([]float64{}, b...)

	for col := 0; col < m; col++ {
		piv := col
		best := math.Abs(A[col][col])
		for r := col + 1; r < m; r++ {
			if v := math.Abs(A[r][col]); v > best {
				piv, best = r, v
			}
		}
		if best < 1e-300 {
			return nil, ErrSingularDesign
		}
		if piv != col {
			A[col], A[piv] = A[piv], A[col]
			x[col], x[piv] = x[piv], x[col]
		}
		for r := col + 1; r < m; r++ {
			f := A[r][col] / A[col][col]
			if f == 0 {
				continue
			}
			for c := col; c < m; c++ {
				A[r][c] -= f * A[col][c]
			}
			x[r] -= f * x[col]
		}
	}
	for i := m - 1; i >= 0; i-- {
		s := x[i]
		for j := i + 1; j < m; j++ {
			s -= A[i][j] * x[j]
		}
		x[i] = s / A[i][i]
	}
	return x, nil
}

// solveSymPDWithLogDet is solveSymPD plus log(det(A)), computed from the
// elimination's pivots: a partial-pivoting row swap can leave a pivot
// negative, but |det(A)| is the product of the pivots' absolute values and
// det(A) > 0 for a PD matrix, so the log-sum of |pivot| is log(det(A)).
func solveSymPDWithLogDet(a [][]float64, b []float64) ([]float64, float64, error) {
	m := len(b)
	A := make([][]float64, m)
	for i := range A {
		A[i] = append([]float64{}, a[i]...)
	}
	x := append([]float64{}, b...)

	var logdet float64
	for col := 0; col < m; col++ {
		piv := col
		best := math.Abs(A[col][col])
		for r := col + 1; r < m; r++ {
			if v := math.Abs(A[r][col]); v > best {
				piv, best = r, v
			}
		}
		if best < 1e-300 {
			return nil, 0, ErrSingularDesign
		}
		if piv != col {
			A[col], A[piv] = A[piv], A[col]
			x[col], x[piv] = x[piv], x[col]
		}
		logdet += math.Log(math.Abs(A[col][col]))
		for r := col + 1; r < m; r++ {
			f := A[r][col] / A[col][col]
			if f == 0 {
				continue
			}
			for c := col; c < m; c++ {
				A[r][c] -= f * A[col][c]
			}
			x[r] -= f * x[col]
		}
	}
	for i := m - 1; i >= 0; i-- {
		s := x[i]
		for j := i + 1; j < m; j++ {
			s -= A[i][j] * x[j]
		}
		x[i] = s / A[i][i]
	}
	return x, logdet, nil
}

func dotVec(a, b []float64) float64 {
	var s float64
	for i := range a {
		s += a[i] * b[i]
	}
	return s
}
