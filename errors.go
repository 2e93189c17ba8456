package asar

import (
	"errors"

	"github.com/hotelspunk33/asar/internal/header"
	"github.com/hotelspunk33/asar/internal/tree"
)

// Errors re-exported from internal packages.
var (
	// ErrInvalidPath is returned when a path has an empty or illegal segment,
	// or when an insert collides with an existing entry.
	ErrInvalidPath = tree.ErrInvalidPath

	// ErrMalformedHeader is returned when archive framing or header text
	// violates the format.
	ErrMalformedHeader = header.ErrMalformedHeader
)

// Sentinel errors specific to the asar package.
var (
	// ErrNotFound is returned when a path does not exist, or when a read
	// addresses a folder instead of a file.
	ErrNotFound = errors.New("asar: not found")

	// ErrInvalidOperation is returned when a directory-mode method is called
	// on an archive-mode instance or vice versa.
	ErrInvalidOperation = errors.New("asar: invalid operation")

	// ErrTooManyFiles is returned when the file count exceeds the configured limit.
	ErrTooManyFiles = errors.New("asar: too many files")

	// ErrSizeOverflow is returned when byte counts exceed supported limits.
	ErrSizeOverflow = errors.New("asar: size overflow")
)
