package baseline

import (
	"github.com/cocosip/go-blp-codec/jpeg/common"
)

// DecodeRGBA decodes JPEG Baseline data and expands it to four bytes per
// pixel. Grayscale is replicated into R, G and B; three-component images get
// an opaque alpha; four-component images keep their components in stream
// order.
func DecodeRGBA(jpegData []byte) (pixelData []byte, width, height int, err error) {
	pix, width, height, components, err := Decode(jpegData)
	if err != nil {
		return nil, 0, 0, err
	}

	n := width * height
	switch components {
	case 4:
		return pix, width, height, nil
	case 3:
		out := make([]byte, n*4)
		for i := 0; i < n; i++ {
			out[i*4+0] = pix[i*3+0]
			out[i*4+1] = pix[i*3+1]
			out[i*4+2] = pix[i*3+2]
			out[i*4+3] = 0xFF
		}
		return out, width, height, nil
	case 1:
		out := make([]byte, n*4)
		for i, v := range pix {
			out[i*4+0] = v
			out[i*4+1] = v
			out[i*4+2] = v
			out[i*4+3] = 0xFF
		}
		return out, width, height, nil
	default:
		return nil, 0, 0, common.ErrInvalidComponents
	}
}

// SplitDecoder decodes JPEG streams stored as a shared header followed by a
// separately stored entropy-coded payload.
type SplitDecoder struct{}

// DecodeJPEG joins header and payload in a scratch buffer and decodes the
// result to RGBA.
func (SplitDecoder) DecodeJPEG(header, payload []byte) ([]byte, int, int, error) {
	scratch := make([]byte, 0, len(header)+len(payload))
	scratch = append(scratch, header...)
	scratch = append(scratch, payload...)
	return DecodeRGBA(scratch)
}
