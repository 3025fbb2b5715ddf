package svmlight

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/haivivi/dset/pkg/sparse"
)

// Encode writes one line per matrix row in svmlight format. Zero-valued
// features are omitted. Labels that hold integral values are written
// without a decimal part so the output matches what the svmlight and
// libsvm tools themselves produce.
func Encode(features sparse.Matrix, labels []float64, w io.Writer, opts EncodeOptions) error {
	rows, _ := features.Dims()
	if rows != len(labels) {
		return fmt.Errorf("svmlight: %d feature rows but %d labels", rows, len(labels))
	}
	if opts.QueryIDs != nil && len(opts.QueryIDs) != rows {
		return fmt.Errorf("svmlight: %d feature rows but %d query ids", rows, len(opts.QueryIDs))
	}

	one := 0
	switch opts.ZeroBased {
	case BaseAuto, BaseZero:
	case BaseOne:
		one = 1
	default:
		return fmt.Errorf("svmlight: invalid index base %d", opts.ZeroBased)
	}

	bw := bufio.NewWriter(w)
	if opts.Comment != "" {
		for _, line := range strings.Split(opts.Comment, "\n") {
			if _, err := fmt.Fprintf(bw, "# %s\n", line); err != nil {
				return fmt.Errorf("svmlight: write: %w", err)
			}
		}
	}

	for i := 0; i < rows; i++ {
		bw.WriteString(formatNumber(labels[i]))
		if opts.QueryIDs != nil {
			bw.WriteString(" qid:")
			bw.WriteString(strconv.FormatInt(opts.QueryIDs[i], 10))
		}
		for j, v := range features.Row(i) {
			bw.WriteByte(' ')
			bw.WriteString(strconv.Itoa(j + one))
			bw.WriteByte(':')
			bw.WriteString(formatValue(v))
		}
		if err := bw.WriteByte('\n'); err != nil {
			return fmt.Errorf("svmlight: write: %w", err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("svmlight: write: %w", err)
	}
	return nil
}

// formatNumber renders a label: integral values without a decimal part,
// everything else at full float64 precision.
func formatNumber(v float64) string {
	if v == math.Trunc(v) && !math.IsInf(v, 0) && math.Abs(v) < 1e15 {
		return strconv.FormatInt(int64(v), 10)
	}
	return formatValue(v)
}

// formatValue renders a feature value with 16 significant digits, the
// precision the reference tools use.
func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'g', 16, 64)
}
