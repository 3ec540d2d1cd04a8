package gridio

import (
	stderrors "errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/matzehuels/drainflow/pkg/errors"
)

// Format identifies a grid file format.
type Format string

const (
	FormatASCII Format = "asc"
	FormatJSON  Format = "json"
)

// DetectFormat picks the format from the extension of path.
func DetectFormat(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".asc", ".txt":
		return FormatASCII, nil
	case ".json":
		return FormatJSON, nil
	}
	return "", errors.New(errors.ErrCodeInvalidFormat, "unknown grid format for %q (want .asc, .txt or .json)", path)
}

// Read decodes a grid in the given format.
func Read(r io.Reader, f Format) (*Raster, error) {
	switch f {
	case FormatASCII:
		return ReadASCII(r)
	case FormatJSON:
		return ReadJSON(r)
	}
	return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported format %q", f)
}

// Write encodes a grid in the given format.
func Write(rs *Raster, w io.Writer, f Format) error {
	switch f {
	case FormatASCII:
		return WriteASCII(rs, w)
	case FormatJSON:
		return WriteJSON(rs, w)
	}
	return errors.New(errors.ErrCodeInvalidFormat, "unsupported format %q", f)
}

// ImportFile reads the grid file at path.
func ImportFile(path string) (*Raster, error) {
	if err := errors.ValidateGridPath(path); err != nil {
		return nil, err
	}
	format, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	rs, err := Read(f, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rs, nil
}

// ExportFile writes rs to path in the format implied by its extension.
func ExportFile(rs *Raster, path string) error {
	format, err := DetectFormat(path)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := Write(rs, f, format); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
