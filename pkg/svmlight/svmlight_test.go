package svmlight

import (
	"bytes"
	"strings"
	"testing"

	"github.com/haivivi/dset/pkg/sparse"
)

func mustMatrix(t *testing.T, rows [][]float64) *sparse.Dense {
	t.Helper()
	m, err := sparse.FromRows(rows)
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func TestEncodeZeroBased(t *testing.T) {
	m := mustMatrix(t, [][]float64{{0, 1}, {2, 3.14159}})
	var buf bytes.Buffer
	if err := Encode(m, []float64{7, 3}, &buf, EncodeOptions{}); err != nil {
		t.Fatal(err)
	}
	want := "7 1:1\n3 0:2 1:3.14159\n"
	if buf.String() != want {
		t.Fatalf("encoded %q, want %q", buf.String(), want)
	}
}

func TestEncodeOneBased(t *testing.T) {
	m := mustMatrix(t, [][]float64{{0, 1}, {2, 3.14159}})
	var buf bytes.Buffer
	if err := Encode(m, []float64{7, 3}, &buf, EncodeOptions{ZeroBased: BaseOne}); err != nil {
		t.Fatal(err)
	}
	want := "7 2:1\n3 1:2 2:3.14159\n"
	if buf.String() != want {
		t.Fatalf("encoded %q, want %q", buf.String(), want)
	}
}

func TestEncodeComment(t *testing.T) {
	m := mustMatrix(t, [][]float64{{1}})
	var buf bytes.Buffer
	err := Encode(m, []float64{1}, &buf, EncodeOptions{Comment: "first\nsecond"})
	if err != nil {
		t.Fatal(err)
	}
	want := "# first\n# second\n1 0:1\n"
	if buf.String() != want {
		t.Fatalf("encoded %q, want %q", buf.String(), want)
	}
}

func TestEncodeQueryIDs(t *testing.T) {
	m := mustMatrix(t, [][]float64{{1}, {2}})
	var buf bytes.Buffer
	err := Encode(m, []float64{1, 0}, &buf, EncodeOptions{QueryIDs: []int64{3, 3}})
	if err != nil {
		t.Fatal(err)
	}
	want := "1 qid:3 0:1\n0 qid:3 0:2\n"
	if buf.String() != want {
		t.Fatalf("encoded %q, want %q", buf.String(), want)
	}
}

func TestEncodeLengthMismatch(t *testing.T) {
	m := mustMatrix(t, [][]float64{{1}, {2}})
	var buf bytes.Buffer
	if err := Encode(m, []float64{1}, &buf, EncodeOptions{}); err == nil {
		t.Fatal("expected error for label length mismatch")
	}
	if err := Encode(m, []float64{1, 2}, &buf, EncodeOptions{QueryIDs: []int64{1}}); err == nil {
		t.Fatal("expected error for qid length mismatch")
	}
}

func TestEncodeFloatLabel(t *testing.T) {
	m := mustMatrix(t, [][]float64{{1}})
	var buf bytes.Buffer
	if err := Encode(m, []float64{0.5}, &buf, EncodeOptions{}); err != nil {
		t.Fatal(err)
	}
	if got, want := buf.String(), "0.5 0:1\n"; got != want {
		t.Fatalf("encoded %q, want %q", got, want)
	}
}

func TestDecodeZeroBased(t *testing.T) {
	in := "7 1:1\n3 0:2 1:3.14159\n"
	m, labels, err := Decode(strings.NewReader(in), DecodeOptions{ZeroBased: BaseZero})
	if err != nil {
		t.Fatal(err)
	}
	want := mustMatrix(t, [][]float64{{0, 1}, {2, 3.14159}})
	if !sparse.Equal(m, want) {
		t.Fatal("decoded matrix mismatch")
	}
	if len(labels) != 2 || labels[0] != 7 || labels[1] != 3 {
		t.Fatalf("labels = %v, want [7 3]", labels)
	}
}

func TestDecodeAutoBase(t *testing.T) {
	// No zero index anywhere: auto treats input as one-based.
	in := "1 1:5 3:6\n"
	m, _, err := Decode(strings.NewReader(in), DecodeOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if _, cols := m.Dims(); cols != 3 {
		t.Fatalf("cols = %d, want 3", cols)
	}
	if got := m.At(0, 0); got != 5 {
		t.Fatalf("At(0,0) = %v, want 5", got)
	}

	// A zero index forces zero-based interpretation.
	in = "1 0:5 3:6\n"
	m, _, err = Decode(strings.NewReader(in), DecodeOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if _, cols := m.Dims(); cols != 4 {
		t.Fatalf("cols = %d, want 4", cols)
	}
}

func TestDecodeOneBasedRejectsZeroIndex(t *testing.T) {
	_, _, err := Decode(strings.NewReader("1 0:5\n"), DecodeOptions{ZeroBased: BaseOne})
	if err == nil {
		t.Fatal("expected error for zero index in one-based input")
	}
}

func TestDecodeCommentsAndBlankLines(t *testing.T) {
	in := "# header\n\n1 0:2 # trailing\n\n0 1:3\n"
	m, labels, err := Decode(strings.NewReader(in), DecodeOptions{ZeroBased: BaseZero})
	if err != nil {
		t.Fatal(err)
	}
	rows, _ := m.Dims()
	if rows != 2 || len(labels) != 2 {
		t.Fatalf("rows = %d, labels = %v; want 2 samples", rows, labels)
	}
}

func TestDecodeQid(t *testing.T) {
	in := "1 qid:4 0:2\n"
	if _, _, err := Decode(strings.NewReader(in), DecodeOptions{ZeroBased: BaseZero}); err != nil {
		t.Fatalf("qid token should be tolerated: %v", err)
	}
	_, _, err := Decode(strings.NewReader("1 0:2\n"), DecodeOptions{ZeroBased: BaseZero, QueryID: true})
	if err == nil {
		t.Fatal("expected error for missing qid when required")
	}
}

func TestDecodeNFeatures(t *testing.T) {
	m, _, err := Decode(strings.NewReader("1 0:2\n"), DecodeOptions{ZeroBased: BaseZero, NFeatures: 10})
	if err != nil {
		t.Fatal(err)
	}
	if _, cols := m.Dims(); cols != 10 {
		t.Fatalf("cols = %d, want 10", cols)
	}
	_, _, err = Decode(strings.NewReader("1 9:2\n"), DecodeOptions{ZeroBased: BaseZero, NFeatures: 5})
	if err == nil {
		t.Fatal("expected error for index beyond NFeatures")
	}
}

func TestDecodeLabelsOnly(t *testing.T) {
	// Samples with every feature at zero encode as bare labels; decoding
	// them yields a rows-by-zero matrix under any index base.
	in := "1\n-1\n"
	for _, base := range []Base{BaseAuto, BaseZero, BaseOne} {
		m, labels, err := Decode(strings.NewReader(in), DecodeOptions{ZeroBased: base})
		if err != nil {
			t.Fatalf("base %v: %v", base, err)
		}
		rows, cols := m.Dims()
		if rows != 2 || cols != 0 {
			t.Fatalf("base %v: dims = (%d, %d), want (2, 0)", base, rows, cols)
		}
		if len(labels) != 2 || labels[0] != 1 || labels[1] != -1 {
			t.Fatalf("base %v: labels = %v, want [1 -1]", base, labels)
		}
	}
}

func TestRoundTripAllZero(t *testing.T) {
	orig := mustMatrix(t, [][]float64{{0, 0}, {0, 0}})
	labels := []float64{1, -1}

	var buf bytes.Buffer
	if err := Encode(orig, labels, &buf, EncodeOptions{ZeroBased: BaseOne}); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "1\n-1\n" {
		t.Fatalf("encoded %q, want bare labels", buf.String())
	}
	m, got, err := Decode(&buf, DecodeOptions{ZeroBased: BaseOne})
	if err != nil {
		t.Fatal(err)
	}
	if rows, _ := m.Dims(); rows != 2 {
		t.Fatalf("rows = %d, want 2", rows)
	}
	if m.NNZ() != 0 {
		t.Fatalf("NNZ = %d, want 0", m.NNZ())
	}
	if len(got) != 2 || got[0] != 1 || got[1] != -1 {
		t.Fatalf("labels = %v, want [1 -1]", got)
	}
}

func TestDecodeMalformed(t *testing.T) {
	cases := []string{
		"abc 0:1\n",
		"1 x:1\n",
		"1 0:y\n",
		"1 0\n",
		"1 2:1 1:2\n", // not ascending
		"1 -1:2\n",
	}
	for _, in := range cases {
		if _, _, err := Decode(strings.NewReader(in), DecodeOptions{ZeroBased: BaseZero}); err == nil {
			t.Fatalf("expected error for %q", in)
		}
	}
}

func TestRoundTrip(t *testing.T) {
	orig := mustMatrix(t, [][]float64{{0, 1}, {2, 3.14159}})
	labels := []float64{7, 3}

	var buf bytes.Buffer
	if err := Encode(orig, labels, &buf, EncodeOptions{ZeroBased: BaseOne}); err != nil {
		t.Fatal(err)
	}
	m, got, err := Decode(&buf, DecodeOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if !sparse.Equal(m, orig) {
		t.Fatal("round trip changed matrix values")
	}
	if len(got) != 2 || got[0] != 7 || got[1] != 3 {
		t.Fatalf("round trip labels = %v, want [7 3]", got)
	}
}
