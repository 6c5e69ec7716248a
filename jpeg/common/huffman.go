package common

import "io"

// HuffmanTable represents a Huffman coding table
type HuffmanTable struct {
	// Number of codes of each length (1-16 bits)
	Bits [16]int
	// Values for each code, in order of code length
	Values []byte
	// Canonical decoding tables, indexed by code length - 1
	minCode [16]int32
	maxCode [16]int32
	valPtr  [16]int32
	// Lookup table for codes up to 8 bits
	lookupTable [256]int16 // value: (nbits << 8) | value, -1 if not found
}

// Build derives the canonical codes and the fast lookup table.
func (h *HuffmanTable) Build() error {
	for i := range h.lookupTable {
		h.lookupTable[i] = -1
	}

	total := 0
	for _, n := range h.Bits {
		total += n
	}
	if total > 256 || total > len(h.Values) {
		return ErrInvalidDHT
	}

	code := int32(0)
	k := int32(0)
	for l := 0; l < 16; l++ {
		if h.Bits[l] == 0 {
			h.maxCode[l] = -1
			code <<= 1
			continue
		}

		if code+int32(h.Bits[l]) > 1<<uint(l+1) {
			return ErrInvalidDHT
		}
		h.valPtr[l] = k
		h.minCode[l] = code
		for i := 0; i < h.Bits[l]; i++ {
			if l < 8 {
				shift := uint(7 - l)
				base := int(code) << shift
				entry := int16((l+1)<<8 | int(h.Values[k]))
				for j := 0; j < 1<<shift; j++ {
					h.lookupTable[base+j] = entry
				}
			}
			code++
			k++
		}
		h.maxCode[l] = code - 1
		code <<= 1
	}

	return nil
}

// HuffmanDecoder reads Huffman symbols from entropy-coded scan bytes.
// Stuffed 0xFF00 pairs are collapsed while reading.
type HuffmanDecoder struct {
	data  []byte
	pos   int
	bits  uint32 // Bit buffer
	nBits int    // Number of valid bits in buffer
}

// NewHuffmanDecoder creates a new Huffman decoder over scan bytes
func NewHuffmanDecoder(data []byte) *HuffmanDecoder {
	return &HuffmanDecoder{data: data}
}

// Reset discards buffered bits so the next read starts on a byte boundary.
// It is used at restart intervals.
func (d *HuffmanDecoder) Reset() {
	d.bits = 0
	d.nBits = 0
}

func (d *HuffmanDecoder) readByte() (byte, error) {
	if d.pos >= len(d.data) {
		return 0, io.ErrUnexpectedEOF
	}
	b := d.data[d.pos]
	if b == 0xFF {
		if d.pos+1 >= len(d.data) {
			return 0, io.ErrUnexpectedEOF
		}
		if d.data[d.pos+1] != 0x00 {
			return 0, ErrInvalidData
		}
		d.pos++
	}
	d.pos++
	return b, nil
}

// fill tops the buffer up to at least 8 bits when data remains.
func (d *HuffmanDecoder) fill() {
	for d.nBits < 8 {
		b, err := d.readByte()
		if err != nil {
			return
		}
		d.bits = d.bits<<8 | uint32(b)
		d.nBits += 8
	}
}

// ReadBits reads n bits (n <= 16) as an unsigned integer
func (d *HuffmanDecoder) ReadBits(n int) (uint32, error) {
	if n == 0 {
		return 0, nil
	}

	for d.nBits < n {
		b, err := d.readByte()
		if err != nil {
			return 0, err
		}
		d.bits = d.bits<<8 | uint32(b)
		d.nBits += 8
	}

	d.nBits -= n
	return (d.bits >> uint(d.nBits)) & (1<<uint(n) - 1), nil
}

// Decode decodes the next Huffman symbol
func (d *HuffmanDecoder) Decode(table *HuffmanTable) (byte, error) {
	d.fill()
	if d.nBits >= 8 {
		peek := (d.bits >> uint(d.nBits-8)) & 0xFF
		if entry := table.lookupTable[peek]; entry >= 0 {
			d.nBits -= int(entry >> 8)
			return byte(entry & 0xFF), nil
		}
	}

	code := int32(0)
	for l := 0; l < 16; l++ {
		bit, err := d.ReadBits(1)
		if err != nil {
			return 0, err
		}
		code = code<<1 | int32(bit)

		if table.maxCode[l] >= 0 && code <= table.maxCode[l] {
			return table.Values[table.valPtr[l]+code-table.minCode[l]], nil
		}
	}

	return 0, ErrHuffmanDecode
}

// ReceiveExtend decodes a coefficient value
// This combines RECEIVE and EXTEND operations
func (d *HuffmanDecoder) ReceiveExtend(ssss int) (int, error) {
	if ssss == 0 {
		return 0, nil
	}
	if ssss > 16 {
		return 0, ErrInvalidData
	}

	bits, err := d.ReadBits(ssss)
	if err != nil {
		return 0, err
	}

	val := int(bits)
	if val < 1<<uint(ssss-1) {
		val += (-1 << uint(ssss)) + 1
	}
	return val, nil
}
