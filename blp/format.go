package blp

import "fmt"

// FormatVersion distinguishes the two container layouts
type FormatVersion int

const (
	// Legacy is the "BLP1" layout: JPEG or palette images
	Legacy FormatVersion = 1
	// Modern is the "BLP2" layout: palette, block-compressed or raw images
	Modern FormatVersion = 2
)

func (v FormatVersion) String() string {
	switch v {
	case Legacy:
		return "BLP1"
	case Modern:
		return "BLP2"
	default:
		return fmt.Sprintf("FormatVersion(%d)", int(v))
	}
}

// Compression is the pixel encoding of every level in a texture
type Compression int

const (
	// CompressionUnknown marks an encoding this package does not decode.
	// Textures with it have no usable levels.
	CompressionUnknown Compression = iota
	// CompressionJPEG stores each level as JPEG entropy-coded data sharing
	// one header (legacy only)
	CompressionJPEG
	// CompressionPalette stores one palette index per pixel plus an
	// optional alpha plane
	CompressionPalette
	// CompressionBlock stores 4x4 block-compressed tiles (modern only)
	CompressionBlock
	// CompressionRaw stores B,G,R,A bytes per pixel (modern only)
	CompressionRaw
)

func (c Compression) String() string {
	switch c {
	case CompressionJPEG:
		return "jpeg"
	case CompressionPalette:
		return "palette"
	case CompressionBlock:
		return "block"
	case CompressionRaw:
		return "raw"
	default:
		return "unknown"
	}
}

// AlphaPostProcess selects how the alpha bytes of a palette are adjusted
type AlphaPostProcess int

const (
	// AlphaNone keeps palette alpha bytes as stored
	AlphaNone AlphaPostProcess = iota
	// AlphaForceOpaque sets every palette alpha byte to 255
	AlphaForceOpaque
	// AlphaInvert XORs every palette alpha byte with 255
	AlphaInvert
)

// Alpha encodings of block-compressed textures
const (
	AlphaTypeNone         = 0 // color-key transparency only
	AlphaTypeExplicit     = 1 // 4 bits per pixel, packed linear
	AlphaTypeInterpolated = 7 // two endpoints and 3-bit indices
)

const (
	// MaxLevels is the number of entries in the level table
	MaxLevels = 16

	// MaxDimension bounds the width and height accepted from a header
	MaxDimension = 65535

	// maxJPEGHeader bounds the shared JPEG header length
	maxJPEGHeader = 1 << 20

	signatureTag = uint32('B') | uint32('L')<<8 | uint32('P')<<16

	paletteSize = 256 * 4

	// Byte offsets from the container start
	legacyHeaderEnd = 4 + 6*4 + MaxLevels*8
	modernHeaderEnd = 4 + 4 + 4 + 2*4 + MaxLevels*8
)

// LevelEntry locates one mip level relative to the container start
type LevelEntry struct {
	Offset uint32
	Length uint32
}

// Present reports whether the entry describes stored data
func (e LevelEntry) Present() bool {
	return e.Offset != 0 && e.Length != 0
}

// Descriptor is the decoded, read-only header of one texture
type Descriptor struct {
	Version     FormatVersion
	Compression Compression
	// AlphaDepth is the number of alpha bits per pixel: 0, 1, 4 or 8
	AlphaDepth int
	// AlphaType selects the alpha encoding of block-compressed textures
	AlphaType int
	Width     int
	Height    int
	Levels    [MaxLevels]LevelEntry

	// Legacy fields, zero for modern textures
	PictureType    uint32
	PictureSubtype uint32

	// postProcess is applied to the legacy palette
	postProcess AlphaPostProcess
	// start is the source offset of the signature; level offsets are
	// relative to it
	start int64
}

func (d *Descriptor) String() string {
	return fmt.Sprintf("%s %s %dx%d alpha=%d/%d levels=%d",
		d.Version, d.Compression, d.Width, d.Height, d.AlphaDepth, d.AlphaType, d.LevelCount())
}
