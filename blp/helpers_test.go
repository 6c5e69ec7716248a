package blp

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/cocosip/go-blp-codec/internal/jpegtest"
)

// texture assembles a container in memory. Level payloads follow the
// header and extra; a nil level leaves its table entry absent.
type texture struct {
	version      FormatVersion
	compression  uint32
	innerVersion uint32 // modern only, 1 when zero
	alphaDepth   byte
	alphaType    byte
	pictureType  uint32 // legacy only
	width        uint32
	height       uint32
	extra        []byte // palette or JPEG header block
	levels       [][]byte
}

// Offsets of the level tables from the container start
const (
	legacyOffsetsAt = 4 + 6*4
	legacyLengthsAt = legacyOffsetsAt + MaxLevels*4
	modernOffsetsAt = 4 + 4 + 4 + 2*4
	modernLengthsAt = modernOffsetsAt + MaxLevels*4
)

func (tx texture) bytes() []byte {
	var buf bytes.Buffer
	le := func(v any) {
		_ = binary.Write(&buf, binary.LittleEndian, v)
	}

	headerEnd := legacyHeaderEnd
	if tx.version == Modern {
		headerEnd = modernHeaderEnd
	}
	var offsets, lengths [MaxLevels]uint32
	pos := uint32(headerEnd + len(tx.extra))
	for i, lvl := range tx.levels {
		if lvl == nil {
			continue
		}
		offsets[i] = pos
		lengths[i] = uint32(len(lvl))
		pos += uint32(len(lvl))
	}

	if tx.version == Modern {
		buf.WriteString("BLP2")
		inner := tx.innerVersion
		if inner == 0 {
			inner = 1
		}
		le(inner)
		buf.Write([]byte{byte(tx.compression), tx.alphaDepth, tx.alphaType, 0})
	} else {
		buf.WriteString("BLP1")
		le(tx.compression)
		le(uint32(tx.alphaDepth))
	}
	le(tx.width)
	le(tx.height)
	if tx.version != Modern {
		le(tx.pictureType)
		le(uint32(0))
	}
	le(offsets)
	le(lengths)

	buf.Write(tx.extra)
	for _, lvl := range tx.levels {
		buf.Write(lvl)
	}
	return buf.Bytes()
}

// storedPalette returns 1024 palette bytes in stored B, G, R, A order where
// entry i is (B=i, G=i+1, R=i+2, A=i+3).
func storedPalette() []byte {
	raw := make([]byte, paletteSize)
	for i := 0; i < 256; i++ {
		raw[i*4+0] = byte(i)
		raw[i*4+1] = byte(i + 1)
		raw[i*4+2] = byte(i + 2)
		raw[i*4+3] = byte(i + 3)
	}
	return raw
}

// jpegTexture builds a legacy JPEG texture whose single level decodes to
// the constant stored components b, g, r, a.
func jpegTexture(t *testing.T, width, height int, stored [4]byte, pictureType uint32) []byte {
	t.Helper()
	stream, err := jpegtest.EncodeFlat(width, height, stored[:], 0)
	if err != nil {
		t.Fatalf("EncodeFlat failed: %v", err)
	}
	header, payload := splitJPEG(t, stream)

	extra := binary.LittleEndian.AppendUint32(nil, uint32(len(header)))
	extra = append(extra, header...)
	return texture{
		version:     Legacy,
		compression: 0,
		pictureType: pictureType,
		width:       uint32(width),
		height:      uint32(height),
		extra:       extra,
		levels:      [][]byte{payload},
	}.bytes()
}

// splitJPEG cuts a stream after its SOS segment
func splitJPEG(t *testing.T, stream []byte) ([]byte, []byte) {
	t.Helper()
	sos := bytes.Index(stream, []byte{0xFF, 0xDA})
	if sos < 0 {
		t.Fatal("no SOS marker in stream")
	}
	end := sos + 2 + (int(stream[sos+2])<<8 | int(stream[sos+3]))
	return stream[:end], stream[end:]
}

func pixelAt(m *MipLevel, x, y int) [4]byte {
	i := (y*m.Width + x) * 4
	return [4]byte{m.Pix[i], m.Pix[i+1], m.Pix[i+2], m.Pix[i+3]}
}

func mustDecode(t *testing.T, data []byte, wantAlpha bool) (*Descriptor, []*MipLevel) {
	t.Helper()
	d, levels, err := Decode(data, wantAlpha, 0)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	return d, levels
}
