package blp

import (
	"fmt"
	"image"
)

// decodeRaw fills dst from B, G, R, A pixels. Without an alpha channel
// every pixel is opaque.
func decodeRaw(dst *image.NRGBA, payload []byte, depth int) error {
	w, h := dst.Rect.Dx(), dst.Rect.Dy()
	if need := w * h * 4; len(payload) < need {
		return fmt.Errorf("%w: raw level has %d of %d bytes", ErrTruncatedData, len(payload), need)
	}

	for y := 0; y < h; y++ {
		src := payload[y*w*4 : (y+1)*w*4]
		row := dst.Pix[y*dst.Stride : y*dst.Stride+w*4]
		copy(row, src)
		SwapRedBlue(row)
		if depth == 0 {
			for x := 3; x < len(row); x += 4 {
				row[x] = 0xFF
			}
		}
	}
	return nil
}
