package blp

import (
	"bytes"

	"github.com/cocosip/go-blp-codec/codec"
)

// Codec implements the codec.Codec interface for one container version
type Codec struct {
	version FormatVersion
}

// NewLegacyCodec creates a codec for "BLP1" textures
func NewLegacyCodec() *Codec {
	return &Codec{version: Legacy}
}

// NewModernCodec creates a codec for "BLP2" textures
func NewModernCodec() *Codec {
	return &Codec{version: Modern}
}

// Decode decodes every supported level of an in-memory texture
func (c *Codec) Decode(data []byte, opts *codec.DecodeOptions) (*codec.DecodeResult, error) {
	if opts == nil {
		opts = codec.DefaultDecodeOptions()
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	if !bytes.HasPrefix(data, c.Signature()) {
		return nil, codec.ErrUnsupportedFormat
	}

	d, levels, err := Decode(data, opts.WantAlpha, opts.MaxLevels)
	if err != nil {
		return nil, err
	}

	result := &codec.DecodeResult{
		Width:      d.Width,
		Height:     d.Height,
		Components: 4,
		BitDepth:   8,
		Levels:     make([]codec.Level, len(levels)),
	}
	for i, m := range levels {
		result.Levels[i] = codec.Level{
			Index:     m.Index,
			Width:     m.Width,
			Height:    m.Height,
			PixelData: m.Pix,
		}
	}
	return result, nil
}

// Signature returns the four signature bytes of the container version
func (c *Codec) Signature() []byte {
	return []byte(c.version.String())
}

// Name returns the human-readable name
func (c *Codec) Name() string {
	if c.version == Legacy {
		return "blp1"
	}
	return "blp2"
}

func init() {
	codec.Register(NewLegacyCodec())
	codec.Register(NewModernCodec())
}
