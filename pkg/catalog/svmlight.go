package catalog

import (
	"fmt"

	"github.com/haivivi/dset/pkg/dataset"
	"github.com/haivivi/dset/pkg/svmlight"
)

func init() {
	RegisterType("svmlight", buildSVMLight)
}

// buildSVMLight translates the loosely typed catalog args into the
// svmlight codec options and constructs the adapter.
func buildSVMLight(e Entry, credentials map[string]any) (Dataset, error) {
	loadArgs, err := decodeOptions(e.LoadArgs)
	if err != nil {
		return nil, fmt.Errorf("load_args: %w", err)
	}
	saveArgs, err := encodeOptions(e.SaveArgs)
	if err != nil {
		return nil, fmt.Errorf("save_args: %w", err)
	}
	return dataset.NewSVMLight(dataset.Spec{
		Filepath:    e.Filepath,
		LoadArgs:    loadArgs,
		SaveArgs:    saveArgs,
		Version:     e.version(),
		Credentials: credentials,
		FSArgs:      e.FSArgs,
		Metadata:    e.Metadata,
	})
}

func decodeOptions(args map[string]any) (svmlight.DecodeOptions, error) {
	var opts svmlight.DecodeOptions
	for k, v := range args {
		switch k {
		case "zero_based":
			base, err := parseBase(v)
			if err != nil {
				return opts, err
			}
			opts.ZeroBased = base
		case "n_features":
			n, ok := asInt(v)
			if !ok {
				return opts, fmt.Errorf("n_features: want an integer, got %T", v)
			}
			opts.NFeatures = n
		case "query_id":
			b, ok := v.(bool)
			if !ok {
				return opts, fmt.Errorf("query_id: want a bool, got %T", v)
			}
			opts.QueryID = b
		default:
			return opts, fmt.Errorf("unknown key %q", k)
		}
	}
	return opts, nil
}

func encodeOptions(args map[string]any) (svmlight.EncodeOptions, error) {
	var opts svmlight.EncodeOptions
	for k, v := range args {
		switch k {
		case "zero_based":
			base, err := parseBase(v)
			if err != nil {
				return opts, err
			}
			if base == svmlight.BaseAuto {
				return opts, fmt.Errorf("zero_based: %q is not valid for saving", v)
			}
			opts.ZeroBased = base
		case "comment":
			s, ok := v.(string)
			if !ok {
				return opts, fmt.Errorf("comment: want a string, got %T", v)
			}
			opts.Comment = s
		default:
			return opts, fmt.Errorf("unknown key %q", k)
		}
	}
	return opts, nil
}

// parseBase accepts true/false and the string "auto".
func parseBase(v any) (svmlight.Base, error) {
	switch x := v.(type) {
	case bool:
		if x {
			return svmlight.BaseZero, nil
		}
		return svmlight.BaseOne, nil
	case string:
		if x == "auto" {
			return svmlight.BaseAuto, nil
		}
	}
	return 0, fmt.Errorf("zero_based: want true, false or \"auto\", got %v", v)
}

// asInt normalizes the integer types YAML decoding can produce.
func asInt(v any) (int, bool) {
	switch x := v.(type) {
	case int:
		return x, true
	case int64:
		return int(x), true
	case uint64:
		return int(x), true
	case float64:
		if x == float64(int(x)) {
			return int(x), true
		}
	}
	return 0, false
}
