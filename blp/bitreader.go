package blp

// bitReader reads little-endian bit fields: bits are taken from the least
// significant end of each byte first, bytes in order. 1-bit alpha planes,
// packed 4-bit alpha rows, 3-bit alpha indices and 2-bit color selectors
// all use this order.
type bitReader struct {
	data  []byte
	pos   int
	acc   uint32
	nBits uint
}

func newBitReader(data []byte) *bitReader {
	return &bitReader{data: data}
}

// read returns the next n bits (n <= 24). Callers size data up front;
// reading past the end yields zero bits.
func (b *bitReader) read(n uint) uint32 {
	for b.nBits < n {
		var next byte
		if b.pos < len(b.data) {
			next = b.data[b.pos]
		}
		b.pos++
		b.acc |= uint32(next) << b.nBits
		b.nBits += 8
	}
	v := b.acc & (1<<n - 1)
	b.acc >>= n
	b.nBits -= n
	return v
}
