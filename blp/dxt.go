package blp

import (
	"encoding/binary"
	"fmt"
	"image"
)

// alphaMode is the per-tile alpha encoding of a block-compressed texture
type alphaMode int

const (
	alphaModeNone         alphaMode = iota // no alpha prelude
	alphaModeExplicit                      // 8 bytes: 4 bits per pixel
	alphaModeInterpolated                  // 8 bytes: endpoints + 3-bit indices
)

func blockAlphaMode(depth, alphaType int) alphaMode {
	switch {
	case alphaType == AlphaTypeInterpolated && depth == 8:
		return alphaModeInterpolated
	case alphaType == AlphaTypeExplicit && (depth == 4 || depth == 8):
		return alphaModeExplicit
	default:
		return alphaModeNone
	}
}

// blockLayout describes how the tiles of one texture are decoded
type blockLayout struct {
	alpha alphaMode
	// applyAlpha copies the prelude alpha into the pixels. Only 8-bit
	// textures do; a 4-bit texture reads its prelude but stays opaque.
	applyAlpha bool
	// fourColor disables the color-key mode regardless of endpoint order.
	// A texture with a real alpha channel always interpolates four
	// opaque colors.
	fourColor bool
}

func newBlockLayout(depth, alphaType int) blockLayout {
	mode := blockAlphaMode(depth, alphaType)
	return blockLayout{
		alpha:      mode,
		applyAlpha: mode != alphaModeNone && depth == 8,
		fourColor:  depth == 8 || mode != alphaModeNone,
	}
}

// tileSize returns the bytes taken by one tile
func (l blockLayout) tileSize() int {
	if l.alpha == alphaModeNone {
		return 8
	}
	return 16
}

// interpolationTable is the scratch state of a single tile
type interpolationTable struct {
	colors [4][4]byte  // R, G, B, A candidates
	alphas [8]byte     // interpolated alpha candidates
	alpha  [16]byte    // per-pixel alpha from the prelude
	pixels [16][4]byte // decoded tile, row-major
}

// decodeBlocks fills dst from 4x4 tiles stored row-major. Edge tiles are
// read whole; only pixels inside dst are written.
func decodeBlocks(dst *image.NRGBA, payload []byte, depth, alphaType int) error {
	w, h := dst.Rect.Dx(), dst.Rect.Dy()
	layout := newBlockLayout(depth, alphaType)
	tilesX, tilesY := (w+3)/4, (h+3)/4
	size := layout.tileSize()

	need := tilesX * tilesY * size
	if len(payload) < need {
		return fmt.Errorf("%w: block level has %d of %d bytes", ErrTruncatedData, len(payload), need)
	}

	var t interpolationTable
	for ty := 0; ty < tilesY; ty++ {
		for tx := 0; tx < tilesX; tx++ {
			off := (ty*tilesX + tx) * size
			layout.decodeTile(&t, payload[off:off+size])
			t.store(dst, tx*4, ty*4)
		}
	}
	return nil
}

// decodeTile decodes one tile's bytes into t.pixels
func (l blockLayout) decodeTile(t *interpolationTable, block []byte) {
	color := block
	switch l.alpha {
	case alphaModeExplicit:
		t.explicitAlpha(block[:8])
		color = block[8:]
	case alphaModeInterpolated:
		t.interpolatedAlpha(block[:8])
		color = block[8:]
	}

	c0 := binary.LittleEndian.Uint16(color[0:])
	c1 := binary.LittleEndian.Uint16(color[2:])
	t.colorCandidates(c0, c1, c0 > c1 || l.fourColor)

	selectors := newBitReader(color[4:8])
	for i := range t.pixels {
		t.pixels[i] = t.colors[selectors.read(2)]
		if l.applyAlpha {
			t.pixels[i][3] = t.alpha[i]
		}
	}
}

// explicitAlpha reads four little-endian 16-bit rows of 4-bit alpha
// values. Each value is widened by a left shift without replication.
func (t *interpolationTable) explicitAlpha(prelude []byte) {
	bits := newBitReader(prelude)
	for i := range t.alpha {
		t.alpha[i] = byte(bits.read(4) << 4)
	}
}

// interpolatedAlpha reads two alpha endpoints followed by sixteen 3-bit
// indices into the eight-entry alpha table.
func (t *interpolationTable) interpolatedAlpha(prelude []byte) {
	t.alphas = alphaTable(prelude[0], prelude[1])
	bits := newBitReader(prelude[2:8])
	for i := range t.alpha {
		t.alpha[i] = t.alphas[bits.read(3)]
	}
}

// alphaTable builds the eight alpha candidates from two endpoints. When
// a0 > a1 six values are interpolated between them; otherwise four are,
// followed by 0 and 255.
func alphaTable(a0, a1 byte) [8]byte {
	var table [8]byte
	table[0], table[1] = a0, a1
	x0, x1 := int(a0), int(a1)
	if a0 > a1 {
		for i := 1; i <= 6; i++ {
			table[i+1] = byte(((7-i)*x0 + i*x1 + 3) / 7)
		}
		return table
	}
	for i := 1; i <= 4; i++ {
		table[i+1] = byte(((5-i)*x0 + i*x1 + 2) / 5)
	}
	table[6] = 0
	table[7] = 0xFF
	return table
}

// expand565 unpacks a 5-6-5 color into the high bits of each byte
func expand565(c uint16) [3]int {
	return [3]int{
		int(c>>8) & 0xF8,
		int(c>>3) & 0xFC,
		int(c<<3) & 0xF8,
	}
}

// colorCandidates builds the four color candidates of a tile. In
// three-color mode candidate 3 is transparent black.
func (t *interpolationTable) colorCandidates(c0, c1 uint16, fourColor bool) {
	e0, e1 := expand565(c0), expand565(c1)
	for ch := 0; ch < 3; ch++ {
		a, b := e0[ch], e1[ch]
		t.colors[0][ch] = byte(a)
		t.colors[1][ch] = byte(b)
		if fourColor {
			t.colors[2][ch] = byte((2*a + b + 1) / 3)
			t.colors[3][ch] = byte((a + 2*b + 1) / 3)
		} else {
			t.colors[2][ch] = byte((a + b) / 2)
			t.colors[3][ch] = 0
		}
	}
	t.colors[0][3] = 0xFF
	t.colors[1][3] = 0xFF
	t.colors[2][3] = 0xFF
	t.colors[3][3] = 0xFF
	if !fourColor {
		t.colors[3][3] = 0
	}
}

// store copies the decoded tile to dst at (x0, y0), clipped to dst's bounds
func (t *interpolationTable) store(dst *image.NRGBA, x0, y0 int) {
	w, h := dst.Rect.Dx(), dst.Rect.Dy()
	for py := 0; py < 4 && y0+py < h; py++ {
		row := (y0+py)*dst.Stride + x0*4
		for px := 0; px < 4 && x0+px < w; px++ {
			copy(dst.Pix[row+px*4:row+px*4+4], t.pixels[py*4+px][:])
		}
	}
}
