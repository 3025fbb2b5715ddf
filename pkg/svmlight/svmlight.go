// Package svmlight implements the svmlight/libsvm text format: one sample
// per line, a numeric label followed by whitespace-separated index:value
// pairs for the nonzero features. Zero-valued features are never written,
// which makes the format a natural fit for sparse data, and it is the
// wire format understood by the svmlight and libsvm command line tools.
//
//	7 2:1
//	3 1:2 2:3.14159
//
// Lines may carry an optional qid:N token after the label and trailing
// comments introduced by '#'. Feature indices can be zero-based or
// one-based; both directions are configurable and the decoder can infer
// the base from the data.
package svmlight

// Base selects how feature indices on the wire map to column positions.
type Base int

const (
	// BaseAuto infers the index base when decoding: one-based unless a
	// zero index appears anywhere in the input. Not valid for encoding.
	BaseAuto Base = iota

	// BaseZero treats wire indices as zero-based column positions.
	BaseZero

	// BaseOne treats wire indices as one-based (libsvm convention).
	BaseOne
)

func (b Base) String() string {
	switch b {
	case BaseAuto:
		return "auto"
	case BaseZero:
		return "zero"
	case BaseOne:
		return "one"
	}
	return "invalid"
}

// DecodeOptions configures Decode.
type DecodeOptions struct {
	// ZeroBased selects the index base of the input. The default,
	// BaseAuto, infers it from the data.
	ZeroBased Base

	// NFeatures fixes the column count of the decoded matrix. Zero means
	// infer from the highest feature index seen. Decoding fails if the
	// input references a column at or beyond this count.
	NFeatures int

	// QueryID requires every line to carry a qid token when true.
	// When false, qid tokens are accepted and ignored.
	QueryID bool
}

// EncodeOptions configures Encode.
type EncodeOptions struct {
	// ZeroBased selects the index base written to the wire. BaseAuto is
	// treated as BaseZero, mirroring the common default.
	ZeroBased Base

	// Comment is written as '#'-prefixed header lines before the data.
	// Embedded newlines produce multiple comment lines.
	Comment string

	// QueryIDs, when non-nil, writes a qid token per sample. Its length
	// must equal the number of rows.
	QueryIDs []int64
}
