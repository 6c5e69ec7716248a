// Package source loads texture bytes from files or file systems. Inputs
// wrapped in gzip or zstd are unpacked transparently so archives of
// compressed textures can be decoded without a separate step.
package source

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// MaxUnpackedSize bounds the size of an unpacked input
const MaxUnpackedSize = 256 << 20

// ErrTooLarge is returned when an unpacked input exceeds MaxUnpackedSize
var ErrTooLarge = errors.New("source: input too large")

var (
	gzipMagic = []byte{0x1F, 0x8B}
	zstdMagic = []byte{0x28, 0xB5, 0x2F, 0xFD}
)

// Wrapping names the outer encoding of an input
type Wrapping int

const (
	Plain Wrapping = iota
	Gzip
	Zstd
)

func (w Wrapping) String() string {
	switch w {
	case Gzip:
		return "gzip"
	case Zstd:
		return "zstd"
	default:
		return "plain"
	}
}

// Sniff reports the outer encoding of data from its leading bytes
func Sniff(data []byte) Wrapping {
	switch {
	case bytes.HasPrefix(data, gzipMagic):
		return Gzip
	case bytes.HasPrefix(data, zstdMagic):
		return Zstd
	default:
		return Plain
	}
}

// Open reads the file at path and returns its unpacked contents
func Open(path string) (*bytes.Reader, error) {
	plain, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(plain), nil
}

// ReadFile reads the file at path and returns its unpacked bytes
func ReadFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Unpack(data)
}

// FromFS reads name from fsys and returns its unpacked contents
func FromFS(fsys fs.FS, name string) (*bytes.Reader, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, err
	}
	plain, err := Unpack(data)
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(plain), nil
}

// Unpack returns data with any gzip or zstd wrapping removed. Plain data
// is returned as is.
func Unpack(data []byte) ([]byte, error) {
	switch Sniff(data) {
	case Gzip:
		zr, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("source: gzip: %w", err)
		}
		defer zr.Close()
		return readLimited(zr, "gzip")

	case Zstd:
		dec, err := zstd.NewReader(bytes.NewReader(data),
			zstd.WithDecoderConcurrency(1),
			zstd.WithDecoderLowmem(true),
			zstd.WithDecoderMaxMemory(MaxUnpackedSize),
		)
		if err != nil {
			return nil, fmt.Errorf("source: zstd: %w", err)
		}
		defer dec.Close()
		return readLimited(dec, "zstd")

	default:
		return data, nil
	}
}

func readLimited(r io.Reader, name string) ([]byte, error) {
	plain, err := io.ReadAll(io.LimitReader(r, MaxUnpackedSize+1))
	if err != nil {
		return nil, fmt.Errorf("source: %s: %w", name, err)
	}
	if len(plain) > MaxUnpackedSize {
		return nil, ErrTooLarge
	}
	return plain, nil
}
