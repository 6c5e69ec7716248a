package common

import (
	"bytes"
	"errors"
	"testing"
)

func TestHuffmanDecode(t *testing.T) {
	table := &HuffmanTable{Values: []byte{'a', 'b', 'c'}}
	table.Bits[1] = 2 // a=00, b=01
	table.Bits[2] = 1 // c=100
	if err := table.Build(); err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	// 00 01 100 00, padded with ones
	dec := NewHuffmanDecoder([]byte{0x18, 0x7F})
	for i, want := range []byte("abca") {
		got, err := dec.Decode(table)
		if err != nil {
			t.Fatalf("symbol %d: Decode failed: %v", i, err)
		}
		if got != want {
			t.Errorf("symbol %d = %q, want %q", i, got, want)
		}
	}
}

func TestHuffmanBuildRejectsOverfullTable(t *testing.T) {
	table := &HuffmanTable{Values: []byte{1, 2, 3}}
	table.Bits[0] = 3 // three 1-bit codes
	if err := table.Build(); !errors.Is(err, ErrInvalidDHT) {
		t.Errorf("Build error = %v, want ErrInvalidDHT", err)
	}

	short := &HuffmanTable{Values: []byte{1}}
	short.Bits[3] = 2
	if err := short.Build(); !errors.Is(err, ErrInvalidDHT) {
		t.Errorf("Build with missing values error = %v, want ErrInvalidDHT", err)
	}
}

func TestReceiveExtend(t *testing.T) {
	tests := []struct {
		data []byte
		ssss int
		want int
	}{
		{[]byte{0b01000000}, 3, -5},
		{[]byte{0b11000000}, 3, 6},
		{[]byte{0b00000000}, 1, -1},
		{[]byte{0b10000000}, 1, 1},
		{nil, 0, 0},
	}
	for _, tt := range tests {
		got, err := NewHuffmanDecoder(tt.data).ReceiveExtend(tt.ssss)
		if err != nil {
			t.Fatalf("ReceiveExtend(%d) failed: %v", tt.ssss, err)
		}
		if got != tt.want {
			t.Errorf("ReceiveExtend(%08b, %d) = %d, want %d", tt.data, tt.ssss, got, tt.want)
		}
	}
}

func TestReadBitsUnstuffs(t *testing.T) {
	dec := NewHuffmanDecoder([]byte{0xFF, 0x00, 0x0F})
	v, err := dec.ReadBits(16)
	if err != nil {
		t.Fatalf("ReadBits failed: %v", err)
	}
	if v != 0xFF0F {
		t.Errorf("ReadBits = %#x, want 0xff0f", v)
	}
	if _, err := dec.ReadBits(1); err == nil {
		t.Error("ReadBits past the end succeeded")
	}
}

func TestReadScan(t *testing.T) {
	data := []byte{0x12, 0xFF, 0x00, 0x34, 0xFF, 0xD0, 0x56, 0xFF, 0xFF, 0xD9}
	r := NewReader(bytes.NewReader(data))
	scan, marker, err := r.ReadScan()
	if err != nil {
		t.Fatalf("ReadScan failed: %v", err)
	}
	if want := []byte{0x12, 0xFF, 0x00, 0x34, 0x56}; !bytes.Equal(scan, want) {
		t.Errorf("scan = % x, want % x", scan, want)
	}
	if marker != MarkerEOI {
		t.Errorf("marker = %#x, want EOI", marker)
	}

	r = NewReader(bytes.NewReader([]byte{0x01, 0x02}))
	scan, marker, err = r.ReadScan()
	if err != nil || marker != 0 || len(scan) != 2 {
		t.Errorf("unterminated scan = % x, %#x, %v", scan, marker, err)
	}
}

func TestReadMarker(t *testing.T) {
	r := NewReader(bytes.NewReader([]byte{0xFF, 0xFF, 0xC0, 0x00, 0x04, 0xAA, 0xBB}))
	m, err := r.ReadMarker()
	if err != nil || m != MarkerSOF0 {
		t.Fatalf("ReadMarker = %#x, %v", m, err)
	}
	seg, err := r.ReadSegment()
	if err != nil || !bytes.Equal(seg, []byte{0xAA, 0xBB}) {
		t.Errorf("ReadSegment = % x, %v", seg, err)
	}

	if _, err := NewReader(bytes.NewReader([]byte{0x12, 0x34})).ReadMarker(); !errors.Is(err, ErrInvalidMarker) {
		t.Errorf("ReadMarker error = %v, want ErrInvalidMarker", err)
	}
}

func TestMarkerClasses(t *testing.T) {
	for _, m := range []uint16{MarkerSOF0, MarkerSOF1, MarkerSOF2, MarkerSOF3, 0xFFCF} {
		if !IsSOF(m) {
			t.Errorf("IsSOF(%#x) = false", m)
		}
	}
	for _, m := range []uint16{MarkerDHT, 0xFFC8, 0xFFCC, MarkerSOS, MarkerRST0} {
		if IsSOF(m) {
			t.Errorf("IsSOF(%#x) = true", m)
		}
	}
	if HasLength(MarkerSOI) || HasLength(MarkerRST7) || !HasLength(MarkerDQT) {
		t.Error("HasLength misclassifies markers")
	}
}

func TestIDCTConstantBlock(t *testing.T) {
	var coef [64]int32
	out := make([]byte, 64)

	for _, level := range []int{0, 1, 10, 127, -128, -3} {
		coef[0] = int32(level * 8)
		IDCT(coef[:], out, 8)
		want := byte(Clamp(level+128, 0, 255))
		for i, v := range out {
			if v != want {
				t.Fatalf("DC %d: sample %d = %d, want %d", coef[0], i, v, want)
			}
		}
	}
}
