package blp

import "fmt"

// Palette is a 256-entry color table in R, G, B, A byte order
type Palette [256][4]byte

// BuildPalette converts 1024 stored bytes (B, G, R, A per entry) into a
// palette and applies pp to its alpha bytes.
func BuildPalette(raw []byte, pp AlphaPostProcess) (*Palette, error) {
	if len(raw) < paletteSize {
		return nil, fmt.Errorf("%w: palette has %d of %d bytes", ErrTruncatedData, len(raw), paletteSize)
	}

	var p Palette
	for i := range p {
		e := raw[i*4 : i*4+4]
		p[i] = [4]byte{e[2], e[1], e[0], e[3]}
	}
	p.Apply(pp)
	return &p, nil
}

// Apply adjusts every alpha byte in place. AlphaInvert is an involution.
func (p *Palette) Apply(pp AlphaPostProcess) {
	switch pp {
	case AlphaForceOpaque:
		for i := range p {
			p[i][3] = 0xFF
		}
	case AlphaInvert:
		for i := range p {
			p[i][3] ^= 0xFF
		}
	}
}
