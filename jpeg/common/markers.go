package common

// JPEG marker constants
const (
	// Start of Image
	MarkerSOI = 0xFFD8

	// End of Image
	MarkerEOI = 0xFFD9

	// Start of Frame markers
	MarkerSOF0 = 0xFFC0 // Baseline DCT
	MarkerSOF1 = 0xFFC1 // Extended Sequential DCT
	MarkerSOF2 = 0xFFC2 // Progressive DCT
	MarkerSOF3 = 0xFFC3 // Lossless (Sequential)

	// Define Huffman Table
	MarkerDHT = 0xFFC4

	// Define Quantization Table
	MarkerDQT = 0xFFDB

	// Define Restart Interval
	MarkerDRI = 0xFFDD

	// Start of Scan
	MarkerSOS = 0xFFDA

	// Adobe application segment, carries the colour transform flag
	MarkerAPP14 = 0xFFEE

	// Comment
	MarkerCOM = 0xFFFE

	// Restart markers
	MarkerRST0 = 0xFFD0
	MarkerRST7 = 0xFFD7
)

// IsSOF returns true if the marker is a Start of Frame marker
func IsSOF(marker uint16) bool {
	if marker == MarkerDHT || marker == 0xFFC8 || marker == 0xFFCC {
		return false
	}
	return marker >= MarkerSOF0 && marker <= 0xFFCF
}

// IsRST returns true if the marker is a Restart marker
func IsRST(marker uint16) bool {
	return marker >= MarkerRST0 && marker <= MarkerRST7
}

// HasLength returns true if the marker is followed by a length field
func HasLength(marker uint16) bool {
	// Markers without length: SOI, EOI, RSTn, TEM
	if marker == MarkerSOI || marker == MarkerEOI || marker == 0xFF01 {
		return false
	}
	if IsRST(marker) {
		return false
	}
	return true
}
