package blp

import (
	"errors"
	"fmt"
	"io"
)

var (
	// ErrMalformedContainer is returned for a bad signature or an
	// impossible header field
	ErrMalformedContainer = errors.New("blp: malformed container")

	// ErrUnsupportedVersion is returned when the modern inner format
	// version is not 1
	ErrUnsupportedVersion = errors.New("blp: unsupported version")

	// ErrUnsupportedMipLevel is returned when a JPEG-encoded texture is
	// asked for a level other than 0 or for a level smaller than 4x4
	ErrUnsupportedMipLevel = errors.New("blp: unsupported mip level")

	// ErrTruncatedData is returned when the byte source ends mid-read
	ErrTruncatedData = errors.New("blp: truncated data")

	// ErrDecodeFailure is returned when the JPEG collaborator rejects a level
	ErrDecodeFailure = errors.New("blp: decode failure")

	// ErrMissingLevel is returned for a level index outside the usable
	// mip chain
	ErrMissingLevel = errors.New("blp: mip level not present")
)

// readError maps short reads to ErrTruncatedData and passes other
// source errors through with context.
func readError(what string, err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: reading %s", ErrTruncatedData, what)
	}
	return fmt.Errorf("blp: reading %s: %w", what, err)
}
