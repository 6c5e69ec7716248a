package common

import (
	"encoding/binary"
	"io"
)

// Reader provides utilities for reading JPEG segments
type Reader struct {
	r   io.ByteScanner
	src io.Reader
	buf [2]byte
}

// ByteReadReader is satisfied by *bytes.Reader and *bufio.Reader.
type ByteReadReader interface {
	io.Reader
	io.ByteScanner
}

// NewReader creates a new JPEG reader
func NewReader(r ByteReadReader) *Reader {
	return &Reader{r: r, src: r}
}

// ReadByte reads a single byte
func (r *Reader) ReadByte() (byte, error) {
	return r.r.ReadByte()
}

// ReadUint16 reads a 16-bit big-endian value
func (r *Reader) ReadUint16() (uint16, error) {
	if _, err := io.ReadFull(r.src, r.buf[:2]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(r.buf[:2]), nil
}

// ReadMarker reads the next JPEG marker, skipping fill bytes.
func (r *Reader) ReadMarker() (uint16, error) {
	b, err := r.ReadByte()
	if err != nil {
		return 0, err
	}
	if b != 0xFF {
		return 0, ErrInvalidMarker
	}

	for {
		b, err = r.ReadByte()
		if err != nil {
			return 0, err
		}
		if b != 0xFF {
			break
		}
	}

	// 0x00 is a stuffed byte, not a marker
	if b == 0x00 {
		return 0, ErrInvalidMarker
	}

	return uint16(0xFF00) | uint16(b), nil
}

// ReadSegment reads a segment with its length
// Returns the segment data (without the length field)
func (r *Reader) ReadSegment() ([]byte, error) {
	length, err := r.ReadUint16()
	if err != nil {
		return nil, err
	}

	// Length includes itself (2 bytes)
	if length < 2 {
		return nil, ErrInvalidData
	}

	data := make([]byte, length-2)
	if _, err := io.ReadFull(r.src, data); err != nil {
		return nil, err
	}
	return data, nil
}

// ReadScan collects entropy-coded bytes up to the next non-RST marker.
// Stuffed 0xFF00 pairs are kept; restart markers are dropped. The marker that
// ends the scan is returned (0 when the stream ends without one).
func (r *Reader) ReadScan() ([]byte, uint16, error) {
	var scan []byte
	for {
		b, err := r.ReadByte()
		if err == io.EOF {
			return scan, 0, nil
		}
		if err != nil {
			return nil, 0, err
		}
		if b != 0xFF {
			scan = append(scan, b)
			continue
		}

		b2, err := r.ReadByte()
		if err == io.EOF {
			return scan, 0, nil
		}
		if err != nil {
			return nil, 0, err
		}
		switch {
		case b2 == 0x00:
			scan = append(scan, b, b2)
		case IsRST(uint16(0xFF00) | uint16(b2)):
		case b2 == 0xFF:
			// fill byte before a marker
			if err := r.r.UnreadByte(); err != nil {
				return scan, 0, nil
			}
		default:
			return scan, uint16(0xFF00) | uint16(b2), nil
		}
	}
}
