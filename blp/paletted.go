package blp

import (
	"fmt"
	"image"
)

// alphaPlaneSize returns the bytes taken by a separate alpha plane of
// n pixels at the given depth.
func alphaPlaneSize(depth, n int) int {
	switch depth {
	case 1:
		return (n + 7) / 8
	case 4:
		return (n + 1) / 2
	case 8:
		return n
	default:
		return 0
	}
}

// decodePaletted fills dst from one level of palette indices followed by an
// optional alpha plane. Pass 1 resolves every index through the palette;
// pass 2 overlays the alpha plane when depth is 1, 4 or 8.
func decodePaletted(dst *image.NRGBA, payload []byte, pal *Palette, depth int) error {
	w, h := dst.Rect.Dx(), dst.Rect.Dy()
	n := w * h
	need := n + alphaPlaneSize(depth, n)
	if len(payload) < need {
		return fmt.Errorf("%w: palette level has %d of %d bytes", ErrTruncatedData, len(payload), need)
	}

	indices := payload[:n]
	for y := 0; y < h; y++ {
		row := dst.Pix[y*dst.Stride : y*dst.Stride+w*4]
		for x := 0; x < w; x++ {
			copy(row[x*4:x*4+4], pal[indices[y*w+x]][:])
		}
	}

	overlayAlpha(dst, payload[n:need], depth)
	return nil
}

// overlayAlpha writes a separately stored alpha plane over dst's alpha
// channel, leaving color untouched. Depth 1 sets 0 or 255 per bit, depth 4
// widens each nibble with <<4, depth 8 copies bytes. Other depths do nothing.
func overlayAlpha(dst *image.NRGBA, plane []byte, depth int) {
	if depth != 1 && depth != 4 && depth != 8 {
		return
	}

	w, h := dst.Rect.Dx(), dst.Rect.Dy()
	bits := newBitReader(plane)
	for y := 0; y < h; y++ {
		row := dst.Pix[y*dst.Stride : y*dst.Stride+w*4]
		for x := 0; x < w; x++ {
			var a byte
			switch depth {
			case 1:
				if bits.read(1) != 0 {
					a = 0xFF
				}
			case 4:
				a = byte(bits.read(4) << 4)
			case 8:
				a = byte(bits.read(8))
			}
			row[x*4+3] = a
		}
	}
}
