// Package jpegtest builds small baseline JPEG streams for tests.
package jpegtest

import (
	"bytes"
	"fmt"
	"math/bits"

	"github.com/cocosip/go-blp-codec/jpeg/common"
)

// EncodeFlat writes a baseline JPEG whose components are constant over the
// whole image: component i of every pixel decodes to samples[i] exactly.
// One, three or four components are supported, all sampled 1x1. Three
// components are tagged as untransformed RGB through an Adobe segment.
// A positive restartInterval inserts RST markers every that many MCUs.
//
// Every block carries only a DC term, so the output is lossless and the
// stream is small enough to embed in fixtures.
func EncodeFlat(width, height int, samples []byte, restartInterval int) ([]byte, error) {
	n := len(samples)
	if n != 1 && n != 3 && n != 4 {
		return nil, common.ErrInvalidComponents
	}
	if width <= 0 || height <= 0 || width > 0xFFFF || height > 0xFFFF {
		return nil, common.ErrInvalidDimensions
	}
	if restartInterval < 0 || restartInterval > 0xFFFF {
		return nil, fmt.Errorf("invalid restart interval %d", restartInterval)
	}

	var buf bytes.Buffer
	marker := func(m uint16) {
		buf.WriteByte(byte(m >> 8))
		buf.WriteByte(byte(m))
	}
	u16 := func(v int) {
		buf.WriteByte(byte(v >> 8))
		buf.WriteByte(byte(v))
	}

	marker(common.MarkerSOI)

	if n == 3 {
		marker(common.MarkerAPP14)
		u16(2 + 12)
		buf.WriteString("Adobe")
		buf.Write([]byte{0, 100, 0, 0, 0, 0, 0})
	}

	// Unit quantization so the DC term is the sample itself
	marker(common.MarkerDQT)
	u16(2 + 1 + 64)
	buf.WriteByte(0)
	buf.Write(bytes.Repeat([]byte{1}, 64))

	marker(common.MarkerSOF0)
	u16(2 + 6 + n*3)
	buf.WriteByte(8)
	u16(height)
	u16(width)
	buf.WriteByte(byte(n))
	for i := 0; i < n; i++ {
		buf.Write([]byte{byte(i + 1), 0x11, 0})
	}

	// DC: categories 0..11, all 4-bit codes, so the code equals the category
	marker(common.MarkerDHT)
	u16(2 + 1 + 16 + 12)
	buf.WriteByte(0x00)
	buf.Write([]byte{0, 0, 0, 12, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0})
	buf.Write([]byte{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11})

	// AC: a single 1-bit code "0" for EOB
	marker(common.MarkerDHT)
	u16(2 + 1 + 16 + 1)
	buf.WriteByte(0x10)
	buf.Write([]byte{1, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0})
	buf.WriteByte(0x00)

	if restartInterval > 0 {
		marker(common.MarkerDRI)
		u16(4)
		u16(restartInterval)
	}

	marker(common.MarkerSOS)
	u16(2 + 1 + n*2 + 3)
	buf.WriteByte(byte(n))
	for i := 0; i < n; i++ {
		buf.Write([]byte{byte(i + 1), 0x00})
	}
	buf.Write([]byte{0, 63, 0})

	w := &bitWriter{buf: &buf}
	pred := make([]int, n)
	mcus := common.DivCeil(width, 8) * common.DivCeil(height, 8)
	for m := 0; m < mcus; m++ {
		if restartInterval > 0 && m > 0 && m%restartInterval == 0 {
			w.flush()
			marker(uint16(common.MarkerRST0 + (m/restartInterval-1)%8))
			clear(pred)
		}
		for c := 0; c < n; c++ {
			dc := (int(samples[c]) - 128) * 8
			diff := dc - pred[c]
			pred[c] = dc

			s := categoryOf(diff)
			w.write(uint32(s), 4)
			if s > 0 {
				v := diff
				if v < 0 {
					v += 1<<uint(s) - 1
				}
				w.write(uint32(v), s)
			}
			w.write(0, 1) // EOB
		}
	}
	w.flush()

	marker(common.MarkerEOI)
	return buf.Bytes(), nil
}

func categoryOf(v int) int {
	if v < 0 {
		v = -v
	}
	return bits.Len(uint(v))
}

// bitWriter packs MSB-first bits and stuffs a zero after every 0xFF
type bitWriter struct {
	buf   *bytes.Buffer
	acc   uint32
	nBits int
}

func (w *bitWriter) write(v uint32, n int) {
	for i := n - 1; i >= 0; i-- {
		w.acc = w.acc<<1 | (v>>uint(i))&1
		w.nBits++
		if w.nBits == 8 {
			w.emit(byte(w.acc))
			w.acc, w.nBits = 0, 0
		}
	}
}

// flush pads the last byte with one bits
func (w *bitWriter) flush() {
	if w.nBits > 0 {
		w.write(0xFF, 8-w.nBits)
	}
}

func (w *bitWriter) emit(b byte) {
	w.buf.WriteByte(b)
	if b == 0xFF {
		w.buf.WriteByte(0x00)
	}
}
