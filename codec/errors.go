package codec

import "errors"

var (
	// ErrCodecNotFound is returned when a codec is not found in the registry
	ErrCodecNotFound = errors.New("codec not found")

	// ErrInvalidParameter is returned when decoding parameters are invalid
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrUnsupportedFormat is returned when no registered codec recognises the data
	ErrUnsupportedFormat = errors.New("unsupported format")
)
