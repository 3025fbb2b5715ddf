// Package sparse provides minimal sparse and dense matrix types for
// feature data. The CSR (compressed sparse row) form is what the svmlight
// codec produces; Dense exists so callers can hand over small in-memory
// feature tables without building index arrays by hand.
//
// Matrices are immutable after construction. Values are float64.
package sparse

import (
	"fmt"
	"iter"
)

// Matrix is a read-only view over a two-dimensional feature table.
//
// Row iteration yields only nonzero entries, in ascending column order.
// Implementations must be safe for concurrent reads.
type Matrix interface {
	// Dims returns the number of rows and columns.
	Dims() (rows, cols int)

	// At returns the value at row i, column j.
	// It panics if the indices are out of range.
	At(i, j int) float64

	// Row iterates over the nonzero entries of row i as (column, value)
	// pairs in ascending column order.
	Row(i int) iter.Seq2[int, float64]
}

// CSR is a compressed sparse row matrix.
//
// Nonzero values of row i live in data[indptr[i]:indptr[i+1]], with their
// column positions in the parallel indices slice.
type CSR struct {
	rows, cols int
	indptr     []int
	indices    []int
	data       []float64
}

// NewCSR builds a CSR matrix from raw compressed-row arrays.
// indptr must have rows+1 entries; indices and data must have the same
// length, with column indices in [0, cols) and ascending within each row.
func NewCSR(rows, cols int, indptr, indices []int, data []float64) (*CSR, error) {
	if rows < 0 || cols < 0 {
		return nil, fmt.Errorf("sparse: negative dimensions %dx%d", rows, cols)
	}
	if len(indptr) != rows+1 {
		return nil, fmt.Errorf("sparse: indptr length %d, want %d", len(indptr), rows+1)
	}
	if len(indices) != len(data) {
		return nil, fmt.Errorf("sparse: indices length %d != data length %d", len(indices), len(data))
	}
	if indptr[0] != 0 || indptr[rows] != len(data) {
		return nil, fmt.Errorf("sparse: indptr endpoints [%d, %d], want [0, %d]", indptr[0], indptr[rows], len(data))
	}
	for i := 0; i < rows; i++ {
		if indptr[i] > indptr[i+1] {
			return nil, fmt.Errorf("sparse: indptr not monotone at row %d", i)
		}
		prev := -1
		for p := indptr[i]; p < indptr[i+1]; p++ {
			j := indices[p]
			if j < 0 || j >= cols {
				return nil, fmt.Errorf("sparse: column %d out of range [0, %d) in row %d", j, cols, i)
			}
			if j <= prev {
				return nil, fmt.Errorf("sparse: columns not ascending in row %d", i)
			}
			prev = j
		}
	}
	return &CSR{rows: rows, cols: cols, indptr: indptr, indices: indices, data: data}, nil
}

// Dims returns the matrix dimensions.
func (m *CSR) Dims() (int, int) { return m.rows, m.cols }

// NNZ returns the number of stored (nonzero) entries.
func (m *CSR) NNZ() int { return len(m.data) }

// At returns the value at row i, column j.
func (m *CSR) At(i, j int) float64 {
	if i < 0 || i >= m.rows || j < 0 || j >= m.cols {
		panic(fmt.Sprintf("sparse: index (%d, %d) out of range %dx%d", i, j, m.rows, m.cols))
	}
	// Rows are short in practice; linear scan beats binary search overhead.
	for p := m.indptr[i]; p < m.indptr[i+1]; p++ {
		if m.indices[p] == j {
			return m.data[p]
		}
	}
	return 0
}

// Row iterates over the nonzero entries of row i.
func (m *CSR) Row(i int) iter.Seq2[int, float64] {
	if i < 0 || i >= m.rows {
		panic(fmt.Sprintf("sparse: row %d out of range %d", i, m.rows))
	}
	return func(yield func(int, float64) bool) {
		for p := m.indptr[i]; p < m.indptr[i+1]; p++ {
			if !yield(m.indices[p], m.data[p]) {
				return
			}
		}
	}
}

// Dense is a row-major dense matrix.
type Dense struct {
	rows, cols int
	data       []float64
}

// NewDense wraps a row-major data slice of length rows*cols.
func NewDense(rows, cols int, data []float64) (*Dense, error) {
	if rows < 0 || cols < 0 {
		return nil, fmt.Errorf("sparse: negative dimensions %dx%d", rows, cols)
	}
	if len(data) != rows*cols {
		return nil, fmt.Errorf("sparse: data length %d, want %d", len(data), rows*cols)
	}
	return &Dense{rows: rows, cols: cols, data: data}, nil
}

// FromRows builds a Dense matrix from a slice of equal-length rows.
// An empty input yields a 0x0 matrix.
func FromRows(rows [][]float64) (*Dense, error) {
	if len(rows) == 0 {
		return &Dense{}, nil
	}
	cols := len(rows[0])
	data := make([]float64, 0, len(rows)*cols)
	for i, r := range rows {
		if len(r) != cols {
			return nil, fmt.Errorf("sparse: row %d has %d columns, want %d", i, len(r), cols)
		}
		data = append(data, r...)
	}
	return &Dense{rows: len(rows), cols: cols, data: data}, nil
}

// Dims returns the matrix dimensions.
func (m *Dense) Dims() (int, int) { return m.rows, m.cols }

// At returns the value at row i, column j.
func (m *Dense) At(i, j int) float64 {
	if i < 0 || i >= m.rows || j < 0 || j >= m.cols {
		panic(fmt.Sprintf("sparse: index (%d, %d) out of range %dx%d", i, j, m.rows, m.cols))
	}
	return m.data[i*m.cols+j]
}

// Row iterates over the nonzero entries of row i.
func (m *Dense) Row(i int) iter.Seq2[int, float64] {
	if i < 0 || i >= m.rows {
		panic(fmt.Sprintf("sparse: row %d out of range %d", i, m.rows))
	}
	return func(yield func(int, float64) bool) {
		for j := 0; j < m.cols; j++ {
			if v := m.data[i*m.cols+j]; v != 0 {
				if !yield(j, v) {
					return
				}
			}
		}
	}
}

// ToCSR converts any Matrix to CSR form, dropping zero entries.
func ToCSR(m Matrix) *CSR {
	if c, ok := m.(*CSR); ok {
		return c
	}
	rows, cols := m.Dims()
	indptr := make([]int, rows+1)
	var indices []int
	var data []float64
	for i := 0; i < rows; i++ {
		for j, v := range m.Row(i) {
			indices = append(indices, j)
			data = append(data, v)
		}
		indptr[i+1] = len(data)
	}
	return &CSR{rows: rows, cols: cols, indptr: indptr, indices: indices, data: data}
}

// Equal reports whether two matrices have the same dimensions and the
// same value at every position.
func Equal(a, b Matrix) bool {
	ar, ac := a.Dims()
	br, bc := b.Dims()
	if ar != br || ac != bc {
		return false
	}
	for i := 0; i < ar; i++ {
		for j := 0; j < ac; j++ {
			if a.At(i, j) != b.At(i, j) {
				return false
			}
		}
	}
	return true
}

var (
	_ Matrix = (*CSR)(nil)
	_ Matrix = (*Dense)(nil)
)
