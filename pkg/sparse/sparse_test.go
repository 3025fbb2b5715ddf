package sparse

import (
	"testing"
)

func mustDense(t *testing.T, rows [][]float64) *Dense {
	t.Helper()
	m, err := FromRows(rows)
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func TestDenseAt(t *testing.T) {
	m := mustDense(t, [][]float64{{0, 1}, {2, 3.5}})
	r, c := m.Dims()
	if r != 2 || c != 2 {
		t.Fatalf("Dims() = %dx%d, want 2x2", r, c)
	}
	if got := m.At(1, 1); got != 3.5 {
		t.Fatalf("At(1,1) = %v, want 3.5", got)
	}
	if got := m.At(0, 0); got != 0 {
		t.Fatalf("At(0,0) = %v, want 0", got)
	}
}

func TestFromRowsRagged(t *testing.T) {
	if _, err := FromRows([][]float64{{1, 2}, {3}}); err == nil {
		t.Fatal("expected error for ragged rows")
	}
}

func TestNewCSRValidation(t *testing.T) {
	cases := []struct {
		name    string
		rows    int
		cols    int
		indptr  []int
		indices []int
		data    []float64
	}{
		{"bad indptr length", 2, 2, []int{0, 1}, []int{0}, []float64{1}},
		{"length mismatch", 1, 2, []int{0, 1}, []int{0, 1}, []float64{1}},
		{"column out of range", 1, 2, []int{0, 1}, []int{5}, []float64{1}},
		{"columns not ascending", 1, 3, []int{0, 2}, []int{2, 1}, []float64{1, 2}},
		{"indptr not monotone", 2, 2, []int{0, 2, 1}, []int{0, 1}, []float64{1, 2}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewCSR(tc.rows, tc.cols, tc.indptr, tc.indices, tc.data); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestCSRRoundTrip(t *testing.T) {
	csr, err := NewCSR(2, 3,
		[]int{0, 2, 3},
		[]int{0, 2, 1},
		[]float64{1, 2, 3},
	)
	if err != nil {
		t.Fatal(err)
	}
	if csr.NNZ() != 3 {
		t.Fatalf("NNZ() = %d, want 3", csr.NNZ())
	}
	want := mustDense(t, [][]float64{{1, 0, 2}, {0, 3, 0}})
	if !Equal(csr, want) {
		t.Fatal("CSR and Dense views disagree")
	}
}

func TestRowIteration(t *testing.T) {
	m := mustDense(t, [][]float64{{0, 5, 0, 7}})
	var cols []int
	var vals []float64
	for j, v := range m.Row(0) {
		cols = append(cols, j)
		vals = append(vals, v)
	}
	if len(cols) != 2 || cols[0] != 1 || cols[1] != 3 {
		t.Fatalf("nonzero columns = %v, want [1 3]", cols)
	}
	if vals[0] != 5 || vals[1] != 7 {
		t.Fatalf("nonzero values = %v, want [5 7]", vals)
	}
}

func TestToCSR(t *testing.T) {
	d := mustDense(t, [][]float64{{0, 1}, {2, 3.14159}})
	c := ToCSR(d)
	if c.NNZ() != 3 {
		t.Fatalf("NNZ() = %d, want 3", c.NNZ())
	}
	if !Equal(c, d) {
		t.Fatal("ToCSR changed values")
	}
	// Converting a CSR returns it unchanged.
	if ToCSR(c) != c {
		t.Fatal("ToCSR(CSR) should be identity")
	}
}

func TestEqualDims(t *testing.T) {
	a := mustDense(t, [][]float64{{1}})
	b := mustDense(t, [][]float64{{1, 0}})
	if Equal(a, b) {
		t.Fatal("matrices with different dims reported equal")
	}
}
