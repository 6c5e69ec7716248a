package codec

// Codec is the universal interface for texture decoders
type Codec interface {
	// Decode decodes a complete texture file held in memory
	Decode(data []byte, opts *DecodeOptions) (*DecodeResult, error)

	// Signature returns the leading bytes that identify the format
	Signature() []byte

	// Name returns a human-readable name
	Name() string
}

// DecodeOptions controls which parts of a texture are decoded
type DecodeOptions struct {
	// WantAlpha keeps the decoded alpha channel. When false every pixel
	// is returned fully opaque.
	WantAlpha bool

	// MaxLevels caps the number of mip levels returned (0 = all stored levels)
	MaxLevels int
}

// DefaultDecodeOptions returns options that decode every level with alpha
func DefaultDecodeOptions() *DecodeOptions {
	return &DecodeOptions{WantAlpha: true}
}

// Validate validates decode options
func (o *DecodeOptions) Validate() error {
	if o.MaxLevels < 0 || o.MaxLevels > MaxMipLevels {
		return ErrInvalidParameter
	}
	return nil
}

// MaxMipLevels is the largest number of mip levels a texture may carry
const MaxMipLevels = 16

// Level is one decoded mip level
type Level struct {
	Index     int    // Mip index, 0 is the full-size image
	Width     int    // Level width in pixels
	Height    int    // Level height in pixels
	PixelData []byte // RGBA8888, row-major, no row padding
}

// DecodeResult contains the result of decoding
type DecodeResult struct {
	Width      int     // Full-size image width
	Height     int     // Full-size image height
	Components int     // Number of color components per pixel
	BitDepth   int     // Bits per sample
	Levels     []Level // Decoded levels in ascending index order
}
