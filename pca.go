package scm

import (
	"errors"
	"fmt"
	"math"

	dvec3 "github.com/flywave/go3d/float64/vec3"
	"gonum.org/v1/gonum/mat"
)

// PcaModel is a linear statistical model of per-vertex xyz data: a mean
// vector of length 3V, an orthonormal basis of 3V rows and K columns and
// the K eigenvalues (variances) of the basis directions.
//
// The basis is kept exactly as stored in the file. It is not scaled by the
// eigenvalues; use ScaledBasis when the scaled form is needed.
type PcaModel struct {
	mean        *mat.VecDense
	basis       *mat.Dense
	eigenvalues *mat.VecDense
}

func NewPcaModel(mean *mat.VecDense, basis *mat.Dense, eigenvalues *mat.VecDense) (*PcaModel, error) {
	if mean == nil || basis == nil || eigenvalues == nil {
		return nil, errors.New("pca model needs mean, basis and eigenvalues")
	}
	rows, cols := basis.Dims()
	if rows == 0 || cols == 0 {
		return nil, errors.New("pca basis is empty")
	}
	if rows%3 != 0 {
		return nil, fmt.Errorf("pca basis has %d rows, not a multiple of 3", rows)
	}
	if mean.Len() != rows {
		return nil, fmt.Errorf("mean has %d entries, basis has %d rows", mean.Len(), rows)
	}
	if eigenvalues.Len() != cols {
		return nil, fmt.Errorf("%d eigenvalues for %d basis columns", eigenvalues.Len(), cols)
	}
	return &PcaModel{mean: mean, basis: basis, eigenvalues: eigenvalues}, nil
}

func (m *PcaModel) Mean() *mat.VecDense {
	return m.mean
}

// Basis returns the unscaled orthonormal basis.
func (m *PcaModel) Basis() *mat.Dense {
	return m.basis
}

func (m *PcaModel) Eigenvalues() *mat.VecDense {
	return m.eigenvalues
}

func (m *PcaModel) NumComponents() int {
	_, c := m.basis.Dims()
	return c
}

func (m *PcaModel) DataDimension() int {
	r, _ := m.basis.Dims()
	return r
}

func (m *PcaModel) VertexCount() int {
	return m.DataDimension() / 3
}

func (m *PcaModel) MeanAtPoint(vertex int) dvec3.T {
	i := vertex * 3
	return dvec3.T{m.mean.AtVec(i), m.mean.AtVec(i + 1), m.mean.AtVec(i + 2)}
}

// BasisAtPoint returns the three basis rows belonging to vertex. The
// result shares storage with the model.
func (m *PcaModel) BasisAtPoint(vertex int) mat.Matrix {
	return m.basis.Slice(vertex*3, vertex*3+3, 0, m.NumComponents())
}

// ScaledBasis returns a copy of the basis with column i multiplied by
// sqrt(eigenvalue i).
func (m *PcaModel) ScaledBasis() *mat.Dense {
	k := m.NumComponents()
	sq := make([]float64, k)
	for i := 0; i < k; i++ {
		sq[i] = math.Sqrt(m.eigenvalues.AtVec(i))
	}
	var scaled mat.Dense
	scaled.Apply(func(_, j int, v float64) float64 {
		return v * sq[j]
	}, m.basis)
	return &scaled
}

// DrawSample returns mean + ScaledBasis·coeffs. Missing trailing
// coefficients are taken as zero.
func (m *PcaModel) DrawSample(coeffs []float64) (*mat.VecDense, error) {
	k := m.NumComponents()
	if len(coeffs) > k {
		return nil, fmt.Errorf("%d coefficients for a model with %d components", len(coeffs), k)
	}
	alphas := mat.NewVecDense(k, nil)
	for i, c := range coeffs {
		alphas.SetVec(i, c)
	}
	var sample mat.VecDense
	sample.MulVec(m.ScaledBasis(), alphas)
	sample.AddVec(&sample, m.mean)
	return &sample, nil
}

// IsOrthonormal reports whether BᵀB is the identity within tol.
func (m *PcaModel) IsOrthonormal(tol float64) bool {
	var gram mat.Dense
	gram.Mul(m.basis.T(), m.basis)
	k := m.NumComponents()
	for i := 0; i < k; i++ {
		for j := 0; j < k; j++ {
			want := 0.0
			if i == j {
				want = 1
			}
			if math.Abs(gram.At(i, j)-want) > tol {
				return false
			}
		}
	}
	return true
}

func (m *PcaModel) meanVertices() []dvec3.T {
	vs := make([]dvec3.T, m.VertexCount())
	for i := range vs {
		vs[i] = m.MeanAtPoint(i)
	}
	return vs
}
