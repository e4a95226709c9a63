package linalg

import (
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// ExtendVecDense extends the length of vec in-place to be at least n.
func ExtendVecDense(vec *mat.VecDense, n int) *mat.VecDense {
	if vec == nil {
		return mat.NewVecDense(n, make([]float64, n))
	}
	rawVec := vec.RawVector()
	d := n - rawVec.N
	if d <= 0 {
		return vec
	}
	rawVec.Data = append(rawVec.Data, make([]float64, d)...)
	rawVec.N = n
	vec.SetRawVector(rawVec)
	return vec
}

// RandomNormalVecDense returns a vector of length n with i.i.d. standard normal entries
// drawn from random.
func RandomNormalVecDense(n int, random *rand.Rand) *mat.VecDense {
	data := make([]float64, n)
	for i := range data {
		data[i] = random.NormFloat64()
	}
	return mat.NewVecDense(n, data)
}

// IdentitySymDense returns the n-by-n identity matrix.
func IdentitySymDense(n int) *mat.SymDense {
	m := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		m.SetSym(i, i, 1)
	}
	return m
}
