package utils

import (
	"fmt"

	"gonum.org/v1/gonum/blas/blas64"
	"gonum.org/v1/gonum/mat"
)

type Matrix struct {
	M        *mat.Dense
	readOnly bool
	name     string
}

func NewMatrix(nr, nc int, dataO ...[]float64) (R Matrix) {
	var m *mat.Dense
	if len(dataO) != 0 {
		if len(dataO[0]) != nr*nc {
			err := fmt.Errorf("mismatch in allocation: NewMatrix nr,nc = %v,%v, len(data[0]) = %v\n", nr, nc, len(dataO[0]))
			panic(err)
		}
		m = mat.NewDense(nr, nc, dataO[0])
	} else {
		m = mat.NewDense(nr, nc, make([]float64, nr*nc))
	}
	R = Matrix{
		m,
		false,
		"unnamed - hint: pass a variable name to SetReadOnly()",
	}
	return
}

// Dims, At and T minimally satisfy the mat.Matrix interface.
func (m Matrix) Dims() (r, c int)          { return m.M.Dims() }
func (m Matrix) At(i, j int) float64       { return m.M.At(i, j) }
func (m Matrix) T() mat.Matrix             { return m.M.T() }
func (m Matrix) RawMatrix() blas64.General { return m.M.RawMatrix() }

func (m Matrix) Data() []float64 { return m.RawMatrix().Data }

func (m *Matrix) SetReadOnly(name ...string) Matrix {
	if len(name) != 0 {
		m.name = name[0]
	}
	m.readOnly = true
	return *m
}

func (m Matrix) Copy() (R Matrix) { // Does not change receiver
	var (
		data   = m.M.RawMatrix().Data
		nr, nc = m.Dims()
		dataR  = make([]float64, nr*nc)
	)
	copy(dataR, data)
	R = NewMatrix(nr, nc, dataR)
	return
}

func (m Matrix) Transpose() (R Matrix) { // Does not change receiver
	var (
		nr, nc = m.Dims()
	)
	R = NewMatrix(nc, nr)
	for j := 0; j < nc; j++ {
		for i := 0; i < nr; i++ {
			R.M.Set(j, i, m.M.At(i, j))
		}
	}
	return
}

func (m Matrix) Mul(A Matrix) (R Matrix) { // Does not change receiver
	var (
		nrM, _ = m.M.Dims()
		_, ncA = A.M.Dims()
	)
	R = NewMatrix(nrM, ncA)
	R.M.Mul(m.M, A.M)
	return
}

func (m Matrix) Set(i, j int, val float64) Matrix { // Changes receiver
	m.checkWritable()
	m.M.Set(i, j, val)
	return m
}

func (m Matrix) Add(A Matrix) Matrix { // Changes receiver
	var (
		dataM = m.RawMatrix().Data
		dataA = A.RawMatrix().Data
	)
	m.checkWritable()
	for i, val := range dataA {
		dataM[i] += val
	}
	return m
}

func (m Matrix) Scale(a float64) Matrix { // Changes receiver
	var (
		data = m.RawMatrix().Data
	)
	m.checkWritable()
	for i := range data {
		data[i] *= a
	}
	return m
}

func (m Matrix) Row(i int) (R Vector) {
	var (
		_, nc = m.Dims()
	)
	data := make([]float64, nc)
	copy(data, m.M.RawRowView(i))
	R = NewVector(nc, data)
	return
}

// LUSolve solves m * X = b for X using a dense LU factorization. The
// receiver must be square and nonsingular.
func (m Matrix) LUSolve(b Matrix) (X Matrix) {
	var (
		err error
		lu  mat.LU
	)
	lu.Factorize(m.M)
	nr, nc := b.Dims()
	X = NewMatrix(nr, nc)
	if err = lu.SolveTo(X.M, false, b.M); err != nil {
		panic(err)
	}
	return
}

// CholSolve solves m * X = b for a symmetric positive definite receiver.
// Falls back to LU when the Cholesky factorization fails (the local Gram
// matrices can lose definiteness to roundoff at high orders).
func (m Matrix) CholSolve(b Matrix) (X Matrix) {
	var (
		nr, _    = m.Dims()
		sym      = mat.NewSymDense(nr, nil)
		ch       mat.Cholesky
		nrb, ncb = b.Dims()
	)
	for i := 0; i < nr; i++ {
		for j := i; j < nr; j++ {
			sym.SetSym(i, j, 0.5*(m.At(i, j)+m.At(j, i)))
		}
	}
	if ok := ch.Factorize(sym); !ok {
		return m.LUSolve(b)
	}
	X = NewMatrix(nrb, ncb)
	if err := ch.SolveTo(X.M, b.M); err != nil {
		panic(err)
	}
	return
}

func (m Matrix) Print(msgI ...string) (o string) {
	var (
		name = ""
	)
	if len(msgI) != 0 {
		name = msgI[0]
	}
	formatString := "%s = \n%8.5f\n"
	o = fmt.Sprintf(formatString, name, mat.Formatted(m.M, mat.Squeeze()))
	return
}

func (m Matrix) checkWritable() {
	if m.readOnly {
		err := fmt.Errorf("attempt to write to a read only matrix named: \"%v\"", m.name)
		panic(err)
	}
}
