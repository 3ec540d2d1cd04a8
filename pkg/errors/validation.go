package errors

import (
	"math"
	"path/filepath"
	"strings"
	"unicode"
)

// ValidateLambda checks that the upstream-deviation weight lies in [0,1].
// NaN is rejected.
func ValidateLambda(lambda float64) error {
	if math.IsNaN(lambda) || lambda < 0 || lambda > 1 {
		return New(ErrCodeInvalidLambda, "lambda must be within [0,1], got %g", lambda)
	}
	return nil
}

// ValidateMetricName checks a metric name as typed on the command line or in a
// config file. Matching is case-insensitive.
func ValidateMetricName(name string) error {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "angular", "lad", "transversal", "ltd":
		return nil
	case "":
		return New(ErrCodeInvalidMetric, "metric cannot be empty")
	}
	return New(ErrCodeInvalidMetric, "unknown metric %q (want angular or transversal)", name)
}

// ValidateCellSize checks a raster cell size. Sizes must be finite and
// strictly positive.
func ValidateCellSize(axis string, size float64) error {
	if math.IsNaN(size) || math.IsInf(size, 0) || size <= 0 {
		return New(ErrCodeInvalidInput, "cell size %s must be positive, got %g", axis, size)
	}
	return nil
}

// ValidateGridPath validates a path to a grid file given on the command line.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 4096 characters
//   - No null bytes or control characters
//   - Must not name a directory-like path (trailing separator)
func ValidateGridPath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 4096
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	if strings.HasSuffix(path, "/") || strings.HasSuffix(path, string(filepath.Separator)) {
		return New(ErrCodeInvalidPath, "path %q names a directory, not a grid file", path)
	}

	return nil
}
