package svmlight

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/haivivi/dset/pkg/sparse"
)

// Decode reads samples in svmlight format until EOF and returns the
// feature matrix in CSR form together with the label vector.
//
// Blank lines are skipped and '#' starts a comment running to the end of
// the line. Feature indices must be ascending within a line. The column
// count is the highest feature index seen plus one unless opts.NFeatures
// pins it.
func Decode(r io.Reader, opts DecodeOptions) (*sparse.CSR, []float64, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)

	var (
		labels  []float64
		indptr  = []int{0}
		indices []int
		data    []float64
		minIdx  = -1
		maxIdx  = -1
		lineno  int
	)

	for sc.Scan() {
		lineno++
		line := sc.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		label, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return nil, nil, fmt.Errorf("svmlight: line %d: invalid label %q", lineno, fields[0])
		}
		labels = append(labels, label)

		features := fields[1:]
		if len(features) > 0 && strings.HasPrefix(features[0], "qid:") {
			if _, err := strconv.ParseInt(features[0][len("qid:"):], 10, 64); err != nil {
				return nil, nil, fmt.Errorf("svmlight: line %d: invalid qid %q", lineno, features[0])
			}
			features = features[1:]
		} else if opts.QueryID {
			return nil, nil, fmt.Errorf("svmlight: line %d: missing qid token", lineno)
		}

		prev := -1
		for _, f := range features {
			colon := strings.IndexByte(f, ':')
			if colon <= 0 {
				return nil, nil, fmt.Errorf("svmlight: line %d: malformed pair %q", lineno, f)
			}
			idx, err := strconv.Atoi(f[:colon])
			if err != nil || idx < 0 {
				return nil, nil, fmt.Errorf("svmlight: line %d: invalid feature index %q", lineno, f[:colon])
			}
			val, err := strconv.ParseFloat(f[colon+1:], 64)
			if err != nil {
				return nil, nil, fmt.Errorf("svmlight: line %d: invalid feature value %q", lineno, f[colon+1:])
			}
			if idx <= prev {
				return nil, nil, fmt.Errorf("svmlight: line %d: feature indices not ascending (%d after %d)", lineno, idx, prev)
			}
			prev = idx
			if minIdx < 0 || idx < minIdx {
				minIdx = idx
			}
			if idx > maxIdx {
				maxIdx = idx
			}
			indices = append(indices, idx)
			data = append(data, val)
		}
		indptr = append(indptr, len(data))
	}
	if err := sc.Err(); err != nil {
		return nil, nil, fmt.Errorf("svmlight: read: %w", err)
	}

	offset, err := indexOffset(opts.ZeroBased, minIdx)
	if err != nil {
		return nil, nil, err
	}
	if offset != 0 {
		maxIdx += offset
		for i := range indices {
			indices[i] += offset
		}
	}

	cols := maxIdx + 1
	if opts.NFeatures > 0 {
		if cols > opts.NFeatures {
			return nil, nil, fmt.Errorf("svmlight: feature index %d out of range for %d features", maxIdx, opts.NFeatures)
		}
		cols = opts.NFeatures
	}

	m, err := sparse.NewCSR(len(labels), cols, indptr, indices, data)
	if err != nil {
		return nil, nil, fmt.Errorf("svmlight: %w", err)
	}
	return m, labels, nil
}

// indexOffset maps the configured base and the smallest wire index seen
// to the shift applied to every index. minIdx is -1 when the input had
// no features at all.
func indexOffset(base Base, minIdx int) (int, error) {
	switch base {
	case BaseZero:
		return 0, nil
	case BaseOne:
		if minIdx < 0 {
			return 0, nil
		}
		if minIdx == 0 {
			return 0, fmt.Errorf("svmlight: zero feature index in one-based input")
		}
		return -1, nil
	case BaseAuto:
		// One-based unless a zero index proves otherwise.
		if minIdx >= 1 {
			return -1, nil
		}
		return 0, nil
	}
	return 0, fmt.Errorf("svmlight: invalid index base %d", base)
}
