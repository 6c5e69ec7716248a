package blp

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/cocosip/go-blp-codec/jpeg/baseline"
)

// JPEGDecoder decodes a JPEG stream stored as a shared header plus one
// level's entropy-coded payload. It returns four bytes per pixel in the
// order the stream's components are stored.
type JPEGDecoder interface {
	DecodeJPEG(header, payload []byte) (pixels []byte, width, height int, err error)
}

// DefaultJPEGDecoder is the pure-Go baseline decoder
var DefaultJPEGDecoder JPEGDecoder = baseline.SplitDecoder{}

// SwapRedBlue exchanges the first and third byte of every 4-byte pixel in
// place. Applying it twice restores the input.
func SwapRedBlue(pix []byte) {
	for i := 0; i+3 < len(pix); i += 4 {
		pix[i], pix[i+2] = pix[i+2], pix[i]
	}
}

// decodeJPEGLevel reads the shared header and the level payload, runs the
// collaborator and corrects the channel order. Only level 0 of at least
// 4x4 pixels is supported.
func (dec *Decoder) decodeJPEGLevel(d *Descriptor, r io.ReadSeeker, level int, entry LevelEntry, w, h int) ([]byte, error) {
	if level != 0 || w < 4 || h < 4 {
		return nil, fmt.Errorf("%w: level %d (%dx%d) of a JPEG texture", ErrUnsupportedMipLevel, level, w, h)
	}

	if _, err := r.Seek(d.start+legacyHeaderEnd, io.SeekStart); err != nil {
		return nil, readError("JPEG header", err)
	}
	var size uint32
	if err := binary.Read(r, binary.LittleEndian, &size); err != nil {
		return nil, readError("JPEG header size", err)
	}
	if size > maxJPEGHeader {
		return nil, fmt.Errorf("%w: JPEG header of %d bytes", ErrMalformedContainer, size)
	}
	header := make([]byte, size)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, readError("JPEG header", err)
	}

	payload, err := readAt(r, d.start, entry)
	if err != nil {
		return nil, err
	}

	jd := dec.JPEG
	if jd == nil {
		jd = DefaultJPEGDecoder
	}
	pix, jw, jh, err := jd.DecodeJPEG(header, payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecodeFailure, err)
	}
	if jw != w || jh != h || len(pix) != w*h*4 {
		return nil, fmt.Errorf("%w: decoded %dx%d, header says %dx%d", ErrDecodeFailure, jw, jh, w, h)
	}

	SwapRedBlue(pix)
	return pix, nil
}
