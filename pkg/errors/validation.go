package errors

import (
	"strings"
	"unicode"
)

// MaxDimension caps the width and height of a rendering frame in pixels.
// Larger frames are almost certainly typos and would allocate huge rasters.
const MaxDimension = 1 << 15

// ValidateDimensions checks a frame size requested by a user.
//
// The layout engine itself tolerates zero extents (it simply draws nothing),
// but a user asking for an empty picture has made a mistake, so the
// user-facing surfaces reject anything that is not strictly positive.
func ValidateDimensions(width, height int) error {
	if width <= 0 || height <= 0 {
		return New(ErrCodeInvalidDimensions, "width and height must be positive (got %dx%d)", width, height)
	}
	if width > MaxDimension || height > MaxDimension {
		return New(ErrCodeInvalidDimensions, "width and height must not exceed %d (got %dx%d)", MaxDimension, width, height)
	}
	return nil
}

// ValidateRoot validates the root path at which a hierarchy is built.
//
// Validation rules:
//   - Path cannot be empty
//   - No control characters
//   - No path traversal sequences (..)
//   - No trailing slash except for "/" itself
func ValidateRoot(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "root path cannot be empty")
	}

	for _, r := range path {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "root path contains invalid characters")
		}
	}

	for _, seg := range strings.Split(path, "/") {
		if seg == ".." {
			return New(ErrCodeInvalidPath, "root path cannot contain path traversal sequences (..)")
		}
	}

	if path != "/" && strings.HasSuffix(path, "/") {
		return New(ErrCodeInvalidPath, "root path cannot end with a slash: %q", path)
	}

	return nil
}
