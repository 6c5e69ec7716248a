package baseline

import (
	"github.com/cocosip/go-blp-codec/codec"
)

// Codec implements the codec.Codec interface for standalone JPEG Baseline files
type Codec struct{}

// NewCodec creates a new JPEG Baseline codec
func NewCodec() *Codec {
	return &Codec{}
}

var signature = []byte{0xFF, 0xD8, 0xFF}

// Decode decodes JPEG Baseline data into a single RGBA level
func (c *Codec) Decode(data []byte, opts *codec.DecodeOptions) (*codec.DecodeResult, error) {
	if opts == nil {
		opts = codec.DefaultDecodeOptions()
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	pixelData, width, height, err := DecodeRGBA(data)
	if err != nil {
		return nil, err
	}
	if !opts.WantAlpha {
		for i := 3; i < len(pixelData); i += 4 {
			pixelData[i] = 0xFF
		}
	}

	return &codec.DecodeResult{
		Width:      width,
		Height:     height,
		Components: 4,
		BitDepth:   8, // Baseline is always 8-bit
		Levels: []codec.Level{{
			Width:     width,
			Height:    height,
			PixelData: pixelData,
		}},
	}, nil
}

// Signature returns the SOI marker followed by the first marker prefix
func (c *Codec) Signature() []byte {
	return signature
}

// Name returns the human-readable name
func (c *Codec) Name() string {
	return "jpeg-baseline"
}

// Register registers this codec with the global registry
func init() {
	codec.Register(NewCodec())
}
