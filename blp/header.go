package blp

import (
	"encoding/binary"
	"fmt"
	"io"
)

// sniff reads the four signature bytes and returns the container version
func sniff(r io.Reader) (FormatVersion, error) {
	var magic [4]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil {
		return 0, readError("signature", err)
	}

	v := binary.LittleEndian.Uint32(magic[:])
	if v&0x00FFFFFF != signatureTag {
		return 0, fmt.Errorf("%w: bad signature %q", ErrMalformedContainer, magic[:])
	}

	switch magic[3] {
	case '1':
		return Legacy, nil
	case '2':
		return Modern, nil
	default:
		return 0, fmt.Errorf("%w: bad version byte %q", ErrMalformedContainer, magic[3])
	}
}

// parseLegacyHeader decodes the fields following a "BLP1" signature
func parseLegacyHeader(r io.Reader, d *Descriptor) error {
	var raw [6 + 2*MaxLevels]uint32
	if err := binary.Read(r, binary.LittleEndian, &raw); err != nil {
		return readError("legacy header", err)
	}

	switch raw[0] {
	case 0:
		d.Compression = CompressionJPEG
	case 1:
		d.Compression = CompressionPalette
	default:
		d.Compression = CompressionUnknown
	}

	// raw[1] is an alpha-depth hint that the picture type overrides
	d.PictureType = raw[4]
	d.PictureSubtype = raw[5]
	if d.PictureType == 5 {
		d.postProcess = AlphaInvert
		d.AlphaDepth = 0
	} else {
		d.postProcess = AlphaNone
		d.AlphaDepth = 8
	}

	if err := setDimensions(d, raw[2], raw[3]); err != nil {
		return err
	}
	setLevels(d, raw[6:6+MaxLevels], raw[6+MaxLevels:])
	return nil
}

// parseModernHeader decodes the fields following a "BLP2" signature
func parseModernHeader(r io.Reader, d *Descriptor) error {
	var fixed struct {
		Version     uint32
		Compression uint8
		AlphaDepth  uint8
		AlphaType   uint8
		_           uint8
		Width       uint32
		Height      uint32
		Offsets     [MaxLevels]uint32
		Lengths     [MaxLevels]uint32
	}
	if err := binary.Read(r, binary.LittleEndian, &fixed); err != nil {
		return readError("modern header", err)
	}

	if fixed.Version != 1 {
		return fmt.Errorf("%w: inner version %d", ErrUnsupportedVersion, fixed.Version)
	}

	switch fixed.Compression {
	case 1:
		d.Compression = CompressionPalette
	case 2:
		d.Compression = CompressionBlock
	case 3:
		d.Compression = CompressionRaw
	default:
		d.Compression = CompressionUnknown
	}

	d.AlphaDepth = int(fixed.AlphaDepth)
	d.AlphaType = int(fixed.AlphaType)
	switch d.AlphaDepth {
	case 0, 1, 4, 8:
	default:
		return fmt.Errorf("%w: alpha depth %d", ErrMalformedContainer, d.AlphaDepth)
	}

	if err := setDimensions(d, fixed.Width, fixed.Height); err != nil {
		return err
	}
	setLevels(d, fixed.Offsets[:], fixed.Lengths[:])
	return nil
}

func setDimensions(d *Descriptor, width, height uint32) error {
	if width == 0 || height == 0 || width > MaxDimension || height > MaxDimension {
		return fmt.Errorf("%w: dimensions %dx%d", ErrMalformedContainer, width, height)
	}
	d.Width = int(width)
	d.Height = int(height)
	return nil
}

func setLevels(d *Descriptor, offsets, lengths []uint32) {
	for i := range d.Levels {
		d.Levels[i] = LevelEntry{Offset: offsets[i], Length: lengths[i]}
	}
}
