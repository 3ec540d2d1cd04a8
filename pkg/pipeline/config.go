package pipeline

import (
	stderrors "errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/drainflow/pkg/errors"
)

// LoadConfig reads a TOML run file:
//
//	elevation     = "dem.asc"
//	old_direction = "flow.asc"
//	network       = "channels.asc"
//	metric        = "transversal"
//	lambda        = 0.5
//	fixed_network = true
//	formats       = ["asc", "svg"]
//
// Relative grid paths are resolved against the directory of the file.
// Unknown keys are rejected.
func LoadConfig(path string) (Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return Options{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "config %s", path)
		}
		return Options{}, err
	}
	opts, err := ParseConfig(data)
	if err != nil {
		return Options{}, errors.Wrap(errors.GetCode(err), err, "config %s", path)
	}

	base := filepath.Dir(path)
	for _, p := range []*string{&opts.Elevation, &opts.OldDirection, &opts.Network} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(base, *p)
		}
	}
	return opts, nil
}

// ParseConfig decodes TOML run options without touching the file system.
func ParseConfig(data []byte) (Options, error) {
	var opts Options
	md, err := toml.Decode(string(data), &opts)
	if err != nil {
		return Options{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode toml")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Options{}, errors.New(errors.ErrCodeInvalidInput, "unknown keys: %s", strings.Join(keys, ", "))
	}
	return opts, nil
}

// Merge overlays the non-zero fields of override onto o and returns the
// result. Used to let command-line flags win over a run file.
func (o Options) Merge(override Options) Options {
	out := o
	if override.Elevation != "" {
		out.Elevation = override.Elevation
	}
	if override.OldDirection != "" {
		out.OldDirection = override.OldDirection
	}
	if override.Network != "" {
		out.Network = override.Network
	}
	if override.Metric != "" {
		out.Metric = override.Metric
	}
	if override.Lambda != nil {
		out.Lambda = override.Lambda
	}
	if override.CellSizeX != 0 {
		out.CellSizeX = override.CellSizeX
	}
	if override.CellSizeY != 0 {
		out.CellSizeY = override.CellSizeY
	}
	if len(override.Formats) > 0 {
		out.Formats = override.Formats
	}
	if override.MinArea != 0 {
		out.MinArea = override.MinArea
	}
	if override.Logger != nil {
		out.Logger = override.Logger
	}
	out.FixedNetwork = out.FixedNetwork || override.FixedNetwork
	out.StrictAbort = out.StrictAbort || override.StrictAbort
	out.Verify = out.Verify || override.Verify
	out.Detailed = out.Detailed || override.Detailed
	out.Refresh = out.Refresh || override.Refresh
	out.validated = false
	return out
}
