// Package blp decodes BLP texture containers: the legacy "BLP1" layout
// (JPEG or palette images) and the modern "BLP2" layout (palette,
// block-compressed or raw images). Each stored mip level is returned as a
// plain RGBA buffer.
//
// Decoding is synchronous and keeps no state between calls; independent
// sources may be decoded concurrently.
package blp

import (
	"bytes"
	"fmt"
	"image"
	"io"
)

// MipLevel is one decoded level. Pix is RGBA8888, row-major, with no row
// padding; the caller owns it.
type MipLevel struct {
	Index  int
	Width  int
	Height int
	Pix    []byte
}

// Image returns the level as an *image.NRGBA sharing Pix
func (m *MipLevel) Image() *image.NRGBA {
	return &image.NRGBA{
		Pix:    m.Pix,
		Stride: m.Width * 4,
		Rect:   image.Rect(0, 0, m.Width, m.Height),
	}
}

// Decoder decodes levels of opened textures. The zero value uses
// DefaultJPEGDecoder for legacy JPEG textures.
type Decoder struct {
	JPEG JPEGDecoder
}

var defaultDecoder = &Decoder{}

// Open reads the signature and header at r's current position.
// Level offsets in the returned descriptor are relative to that position.
func Open(r io.ReadSeeker) (*Descriptor, error) {
	start, err := r.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, fmt.Errorf("blp: locating container start: %w", err)
	}

	version, err := sniff(r)
	if err != nil {
		return nil, err
	}

	d := &Descriptor{Version: version, start: start}
	switch version {
	case Legacy:
		err = parseLegacyHeader(r, d)
	case Modern:
		err = parseModernHeader(r, d)
	}
	if err != nil {
		return nil, err
	}
	return d, nil
}

// DecodeLevel decodes one level with the default decoder
func DecodeLevel(d *Descriptor, r io.ReadSeeker, level int, wantAlpha bool) (*MipLevel, error) {
	return defaultDecoder.DecodeLevel(d, r, level, wantAlpha)
}

// DecodeAll decodes every supported level with the default decoder
func DecodeAll(d *Descriptor, r io.ReadSeeker, wantAlpha bool) ([]*MipLevel, error) {
	return defaultDecoder.DecodeAll(d, r, wantAlpha, 0)
}

// Decode opens an in-memory texture and decodes up to maxLevels levels
// (0 = all supported levels).
func Decode(data []byte, wantAlpha bool, maxLevels int) (*Descriptor, []*MipLevel, error) {
	r := bytes.NewReader(data)
	d, err := Open(r)
	if err != nil {
		return nil, nil, err
	}
	levels, err := defaultDecoder.DecodeAll(d, r, wantAlpha, maxLevels)
	if err != nil {
		return nil, nil, err
	}
	return d, levels, nil
}

// DecodeAll decodes the supported levels of d in ascending order, at most
// maxLevels of them when maxLevels > 0. A texture with no usable levels
// yields an empty slice.
func (dec *Decoder) DecodeAll(d *Descriptor, r io.ReadSeeker, wantAlpha bool, maxLevels int) ([]*MipLevel, error) {
	n := d.SupportedLevelCount()
	if maxLevels > 0 && maxLevels < n {
		n = maxLevels
	}

	levels := make([]*MipLevel, 0, n)
	for i := 0; i < n; i++ {
		m, err := dec.DecodeLevel(d, r, i, wantAlpha)
		if err != nil {
			return nil, err
		}
		levels = append(levels, m)
	}
	return levels, nil
}

// DecodeLevel decodes level of the texture described by d from r. When
// wantAlpha is false the alpha data is still read but every returned pixel
// is opaque. On error no buffer is returned.
func (dec *Decoder) DecodeLevel(d *Descriptor, r io.ReadSeeker, level int, wantAlpha bool) (*MipLevel, error) {
	if d.Compression == CompressionJPEG && level > 0 {
		return nil, fmt.Errorf("%w: level %d of a JPEG texture", ErrUnsupportedMipLevel, level)
	}

	entry, w, h, err := d.levelPlan(level)
	if err != nil {
		return nil, err
	}

	var pix []byte
	switch d.Compression {
	case CompressionJPEG:
		pix, err = dec.decodeJPEGLevel(d, r, level, entry, w, h)
	case CompressionPalette:
		pix, err = decodePaletteLevel(d, r, entry, w, h)
	case CompressionBlock:
		layout := newBlockLayout(d.AlphaDepth, d.AlphaType)
		need := ((w + 3) / 4) * ((h + 3) / 4) * layout.tileSize()
		pix, err = decodeWith(r, d.start, entry, w, h, need, func(dst *image.NRGBA, payload []byte) error {
			return decodeBlocks(dst, payload, d.AlphaDepth, d.AlphaType)
		})
	case CompressionRaw:
		pix, err = decodeWith(r, d.start, entry, w, h, w*h*4, func(dst *image.NRGBA, payload []byte) error {
			return decodeRaw(dst, payload, d.AlphaDepth)
		})
	default:
		err = fmt.Errorf("%w: compression %s", ErrMissingLevel, d.Compression)
	}
	if err != nil {
		return nil, err
	}

	if !wantAlpha {
		for i := 3; i < len(pix); i += 4 {
			pix[i] = 0xFF
		}
	}
	return &MipLevel{Index: level, Width: w, Height: h, Pix: pix}, nil
}

// decodePaletteLevel reads the palette stored after the header and
// decodes one palette-indexed level. The legacy layout applies the picture
// type's alpha rule; the modern one forces opaque entries when there is no
// alpha plane.
func decodePaletteLevel(d *Descriptor, r io.ReadSeeker, entry LevelEntry, w, h int) ([]byte, error) {
	pp := d.postProcess
	offset := int64(legacyHeaderEnd)
	if d.Version == Modern {
		offset = modernHeaderEnd
		pp = AlphaNone
		if d.AlphaDepth == 0 {
			pp = AlphaForceOpaque
		}
	}

	raw, err := readAt(r, d.start, LevelEntry{Offset: uint32(offset), Length: paletteSize})
	if err != nil {
		return nil, err
	}
	pal, err := BuildPalette(raw, pp)
	if err != nil {
		return nil, err
	}

	need := w*h + alphaPlaneSize(d.AlphaDepth, w*h)
	return decodeWith(r, d.start, entry, w, h, need, func(dst *image.NRGBA, payload []byte) error {
		return decodePaletted(dst, payload, pal, d.AlphaDepth)
	})
}

// decodeWith reads entry's payload, checks it holds at least need bytes and
// runs fn over a fresh w x h buffer
func decodeWith(r io.ReadSeeker, start int64, entry LevelEntry, w, h, need int, fn func(*image.NRGBA, []byte) error) ([]byte, error) {
	payload, err := readAt(r, start, entry)
	if err != nil {
		return nil, err
	}
	if len(payload) < need {
		return nil, fmt.Errorf("%w: level has %d of %d bytes", ErrTruncatedData, len(payload), need)
	}
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	if err := fn(dst, payload); err != nil {
		return nil, err
	}
	return dst.Pix, nil
}

// readAt reads entry.Length bytes at start+entry.Offset. Ranges past the
// end of the source fail with ErrTruncatedData before anything is allocated.
func readAt(r io.ReadSeeker, start int64, entry LevelEntry) ([]byte, error) {
	end, err := r.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, readError("source size", err)
	}
	pos := start + int64(entry.Offset)
	if pos+int64(entry.Length) > end {
		return nil, fmt.Errorf("%w: %d bytes at offset %d, source ends at %d", ErrTruncatedData, entry.Length, pos, end)
	}
	if _, err := r.Seek(pos, io.SeekStart); err != nil {
		return nil, readError("level data", err)
	}
	buf := make([]byte, entry.Length)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, readError("level data", err)
	}
	return buf, nil
}
