package baseline

import (
	"bytes"
	"fmt"

	"github.com/cocosip/go-blp-codec/jpeg/common"
)

// Component represents a color component in the image
type Component struct {
	ID              byte   // Component identifier
	H               int    // Horizontal sampling factor
	V               int    // Vertical sampling factor
	Tq              int    // Quantization table selector
	blocksW         int    // Blocks per line, padded to whole MCUs
	blocksH         int    // Block lines, padded to whole MCUs
	dcTableSelector int    // DC Huffman table selector
	acTableSelector int    // AC Huffman table selector
	dcPred          int    // DC prediction value
	data            []byte // Decoded samples, 64 contiguous bytes per block
}

// Decoder represents a JPEG Baseline decoder
type Decoder struct {
	width      int                     // Image width
	height     int                     // Image height
	components []*Component            // Color components
	scan       []*Component            // Components of the current scan
	qtables    [4][64]int32            // Quantization tables, natural order
	dcTables   [4]*common.HuffmanTable // DC Huffman tables
	acTables   [4]*common.HuffmanTable // AC Huffman tables
	maxH       int                     // Largest horizontal sampling factor
	maxV       int                     // Largest vertical sampling factor
	mcuCols    int                     // MCUs per line
	mcuRows    int                     // MCU lines
	restartInt int                     // Restart interval in MCUs
	adobe      bool                    // APP14 Adobe segment present
	transform  byte                    // APP14 colour transform code
	scans      int                     // Number of decoded scans
}

// Decode decodes JPEG Baseline data. Pixels are interleaved with one byte
// per component: 1 = grayscale, 3 = RGB, 4 = components as stored.
func Decode(jpegData []byte) (pixelData []byte, width, height, components int, err error) {
	reader := common.NewReader(bytes.NewReader(jpegData))
	decoder := &Decoder{}

	marker, err := reader.ReadMarker()
	if err != nil {
		return nil, 0, 0, 0, err
	}
	if marker != common.MarkerSOI {
		return nil, 0, 0, 0, common.ErrInvalidSOI
	}

	var pending uint16
	for {
		marker := pending
		pending = 0
		if marker == 0 {
			marker, err = reader.ReadMarker()
			if err != nil {
				return nil, 0, 0, 0, err
			}
		}

		switch {
		case marker == common.MarkerSOF0 || marker == common.MarkerSOF1:
			if err := decoder.parseSOF(reader); err != nil {
				return nil, 0, 0, 0, err
			}

		case common.IsSOF(marker):
			return nil, 0, 0, 0, fmt.Errorf("%w: frame marker 0x%04X", common.ErrUnsupportedFormat, marker)

		case marker == common.MarkerDQT:
			if err := decoder.parseDQT(reader); err != nil {
				return nil, 0, 0, 0, err
			}

		case marker == common.MarkerDHT:
			if err := decoder.parseDHT(reader); err != nil {
				return nil, 0, 0, 0, err
			}

		case marker == common.MarkerDRI:
			if err := decoder.parseDRI(reader); err != nil {
				return nil, 0, 0, 0, err
			}

		case marker == common.MarkerAPP14:
			if err := decoder.parseAPP14(reader); err != nil {
				return nil, 0, 0, 0, err
			}

		case marker == common.MarkerSOS:
			if err := decoder.parseSOS(reader); err != nil {
				return nil, 0, 0, 0, err
			}
			scanData, next, err := reader.ReadScan()
			if err != nil {
				return nil, 0, 0, 0, err
			}
			if err := decoder.decodeScan(scanData); err != nil {
				return nil, 0, 0, 0, err
			}
			if next == 0 {
				// Stream ended without EOI
				return decoder.finish()
			}
			pending = next

		case marker == common.MarkerEOI:
			return decoder.finish()

		default:
			// Skip unknown markers
			if common.HasLength(marker) {
				if _, err := reader.ReadSegment(); err != nil {
					return nil, 0, 0, 0, err
				}
			}
		}
	}
}

func (d *Decoder) finish() ([]byte, int, int, int, error) {
	if d.scans == 0 {
		return nil, 0, 0, 0, common.ErrMissingScan
	}
	return d.convertToPixels(), d.width, d.height, len(d.components), nil
}

// parseSOF parses Start of Frame marker
func (d *Decoder) parseSOF(reader *common.Reader) error {
	data, err := reader.ReadSegment()
	if err != nil {
		return err
	}

	if len(data) < 6 {
		return common.ErrInvalidSOF
	}
	if d.components != nil {
		return fmt.Errorf("%w: multiple frames", common.ErrInvalidSOF)
	}

	if precision := int(data[0]); precision != 8 {
		return fmt.Errorf("%w: precision %d (only 8-bit supported for baseline)", common.ErrUnsupportedFormat, precision)
	}

	d.height = int(data[1])<<8 | int(data[2])
	d.width = int(data[3])<<8 | int(data[4])
	numComponents := int(data[5])

	if d.width <= 0 || d.height <= 0 {
		return common.ErrInvalidDimensions
	}

	if numComponents != 1 && numComponents != 3 && numComponents != 4 {
		return common.ErrInvalidComponents
	}

	if len(data) < 6+numComponents*3 {
		return common.ErrInvalidSOF
	}

	d.maxH, d.maxV = 1, 1
	d.components = make([]*Component, numComponents)

	for i := 0; i < numComponents; i++ {
		offset := 6 + i*3
		comp := &Component{
			ID: data[offset],
			H:  int(data[offset+1] >> 4),
			V:  int(data[offset+1] & 0x0F),
			Tq: int(data[offset+2]),
		}

		if comp.H <= 0 || comp.H > 4 || comp.V <= 0 || comp.V > 4 || comp.Tq > 3 {
			return common.ErrInvalidSOF
		}

		d.maxH = max(d.maxH, comp.H)
		d.maxV = max(d.maxV, comp.V)
		d.components[i] = comp
	}

	d.mcuCols = common.DivCeil(d.width, d.maxH*8)
	d.mcuRows = common.DivCeil(d.height, d.maxV*8)

	for _, comp := range d.components {
		comp.blocksW = d.mcuCols * comp.H
		comp.blocksH = d.mcuRows * comp.V
		comp.data = make([]byte, comp.blocksW*comp.blocksH*64)
	}

	return nil
}

// parseDQT parses Define Quantization Table marker
func (d *Decoder) parseDQT(reader *common.Reader) error {
	data, err := reader.ReadSegment()
	if err != nil {
		return err
	}

	offset := 0
	for offset < len(data) {
		pq := data[offset] >> 4   // Precision (0=8-bit, 1=16-bit)
		tq := data[offset] & 0x0F // Table ID
		offset++

		if tq > 3 {
			return common.ErrInvalidDQT
		}

		// Table entries are stored in zig-zag order
		if pq == 0 {
			if offset+64 > len(data) {
				return common.ErrInvalidDQT
			}
			for i := 0; i < 64; i++ {
				d.qtables[tq][common.ZigZag[i]] = int32(data[offset+i])
			}
			offset += 64
		} else {
			if offset+128 > len(data) {
				return common.ErrInvalidDQT
			}
			for i := 0; i < 64; i++ {
				d.qtables[tq][common.ZigZag[i]] = int32(data[offset+i*2])<<8 | int32(data[offset+i*2+1])
			}
			offset += 128
		}
	}

	return nil
}

// parseDHT parses Define Huffman Table marker
func (d *Decoder) parseDHT(reader *common.Reader) error {
	data, err := reader.ReadSegment()
	if err != nil {
		return err
	}

	offset := 0
	for offset < len(data) {
		tc := data[offset] >> 4   // Table class (0=DC, 1=AC)
		th := data[offset] & 0x0F // Table ID
		offset++

		if th > 3 || tc > 1 {
			return common.ErrInvalidDHT
		}

		table := &common.HuffmanTable{}
		totalCodes := 0
		for i := 0; i < 16; i++ {
			if offset >= len(data) {
				return common.ErrInvalidDHT
			}
			table.Bits[i] = int(data[offset])
			totalCodes += table.Bits[i]
			offset++
		}

		if offset+totalCodes > len(data) {
			return common.ErrInvalidDHT
		}
		table.Values = make([]byte, totalCodes)
		copy(table.Values, data[offset:offset+totalCodes])
		offset += totalCodes

		if err := table.Build(); err != nil {
			return err
		}

		if tc == 0 {
			d.dcTables[th] = table
		} else {
			d.acTables[th] = table
		}
	}

	return nil
}

// parseDRI parses Define Restart Interval marker
func (d *Decoder) parseDRI(reader *common.Reader) error {
	data, err := reader.ReadSegment()
	if err != nil {
		return err
	}

	if len(data) != 2 {
		return common.ErrInvalidData
	}

	d.restartInt = int(data[0])<<8 | int(data[1])
	return nil
}

// parseAPP14 records the Adobe colour transform flag
func (d *Decoder) parseAPP14(reader *common.Reader) error {
	data, err := reader.ReadSegment()
	if err != nil {
		return err
	}
	if len(data) >= 12 && string(data[:5]) == "Adobe" {
		d.adobe = true
		d.transform = data[11]
	}
	return nil
}

// parseSOS parses Start of Scan marker
func (d *Decoder) parseSOS(reader *common.Reader) error {
	data, err := reader.ReadSegment()
	if err != nil {
		return err
	}
	if d.components == nil {
		return fmt.Errorf("%w: scan before frame header", common.ErrInvalidSOS)
	}

	if len(data) < 1 {
		return common.ErrInvalidSOS
	}

	ns := int(data[0]) // Number of components in scan
	if ns < 1 || ns > len(d.components) || len(data) < 1+ns*2+3 {
		return common.ErrInvalidSOS
	}

	d.scan = d.scan[:0]
	for i := 0; i < ns; i++ {
		cs := data[1+i*2]
		tdTa := data[1+i*2+1]

		var comp *Component
		for _, c := range d.components {
			if c.ID == cs {
				comp = c
				break
			}
		}
		if comp == nil {
			return common.ErrInvalidSOS
		}

		comp.dcTableSelector = int(tdTa >> 4)
		comp.acTableSelector = int(tdTa & 0x0F)
		if comp.dcTableSelector > 3 || comp.acTableSelector > 3 {
			return common.ErrInvalidSOS
		}
		comp.dcPred = 0
		d.scan = append(d.scan, comp)
	}

	// Spectral selection and successive approximation are fixed for
	// sequential DCT and are not checked.
	return nil
}

// decodeScan decodes the entropy-coded data of one scan
func (d *Decoder) decodeScan(scanData []byte) error {
	huffDec := common.NewHuffmanDecoder(scanData)

	restart := func(done, total int) {
		if d.restartInt > 0 && done%d.restartInt == 0 && done < total {
			huffDec.Reset()
			for _, comp := range d.scan {
				comp.dcPred = 0
			}
		}
	}

	if len(d.scan) == 1 {
		// Non-interleaved: one block per MCU, covering only the
		// component's own visible area
		comp := d.scan[0]
		cols := common.DivCeil(common.DivCeil(d.width*comp.H, d.maxH), 8)
		rows := common.DivCeil(common.DivCeil(d.height*comp.V, d.maxV), 8)
		total := cols * rows
		for n := 0; n < total; n++ {
			if err := d.decodeBlock(huffDec, comp, n%cols, n/cols); err != nil {
				return err
			}
			restart(n+1, total)
		}
		d.scans++
		return nil
	}

	total := d.mcuCols * d.mcuRows
	for n := 0; n < total; n++ {
		mcuX, mcuY := n%d.mcuCols, n/d.mcuCols
		for _, comp := range d.scan {
			for v := 0; v < comp.V; v++ {
				for h := 0; h < comp.H; h++ {
					if err := d.decodeBlock(huffDec, comp, mcuX*comp.H+h, mcuY*comp.V+v); err != nil {
						return err
					}
				}
			}
		}
		restart(n+1, total)
	}

	d.scans++
	return nil
}

// decodeBlock decodes a single 8x8 block
func (d *Decoder) decodeBlock(huffDec *common.HuffmanDecoder, comp *Component, blockX, blockY int) error {
	var coef [64]int32

	dcTable := d.dcTables[comp.dcTableSelector]
	if dcTable == nil {
		return common.ErrInvalidDHT
	}

	s, err := huffDec.Decode(dcTable)
	if err != nil {
		return err
	}

	diff, err := huffDec.ReceiveExtend(int(s))
	if err != nil {
		return err
	}

	comp.dcPred += diff
	coef[0] = int32(comp.dcPred)

	acTable := d.acTables[comp.acTableSelector]
	if acTable == nil {
		return common.ErrInvalidDHT
	}

	for k := 1; k < 64; {
		rs, err := huffDec.Decode(acTable)
		if err != nil {
			return err
		}

		r := int(rs >> 4)   // Run length of zeros
		s := int(rs & 0x0F) // Coefficient size

		if s == 0 {
			if r != 15 {
				break // EOB
			}
			k += 16 // ZRL
			continue
		}

		k += r
		if k >= 64 {
			return common.ErrInvalidData
		}

		val, err := huffDec.ReceiveExtend(s)
		if err != nil {
			return err
		}

		coef[common.ZigZag[k]] = int32(val)
		k++
	}

	qtable := &d.qtables[comp.Tq]
	for i := range coef {
		coef[i] *= qtable[i]
	}

	if blockX >= comp.blocksW || blockY >= comp.blocksH {
		return common.ErrInvalidData
	}
	blockOffset := (blockY*comp.blocksW + blockX) * 64
	common.IDCT(coef[:], comp.data[blockOffset:blockOffset+64], 8)

	return nil
}

// sample returns component comp's value at image position (x, y),
// honouring its sampling factors.
func (d *Decoder) sample(comp *Component, x, y int) byte {
	sx := x * comp.H / d.maxH
	sy := y * comp.V / d.maxV
	blockOffset := ((sy/8)*comp.blocksW + sx/8) * 64
	return comp.data[blockOffset+(sy%8)*8+sx%8]
}

// convertToPixels converts component data to interleaved pixel data
func (d *Decoder) convertToPixels() []byte {
	numComponents := len(d.components)
	pixelData := make([]byte, d.width*d.height*numComponents)

	// 3 components are YCbCr unless an Adobe segment says otherwise;
	// 4 components are only transformed for YCCK.
	ycc := (numComponents == 3 && (!d.adobe || d.transform != 0)) ||
		(numComponents == 4 && d.adobe && d.transform == 2)

	offset := 0
	for y := 0; y < d.height; y++ {
		for x := 0; x < d.width; x++ {
			for i, comp := range d.components {
				pixelData[offset+i] = d.sample(comp, x, y)
			}
			if ycc {
				r, g, b := ycbcrToRGB(pixelData[offset], pixelData[offset+1], pixelData[offset+2])
				pixelData[offset+0] = r
				pixelData[offset+1] = g
				pixelData[offset+2] = b
			}
			offset += numComponents
		}
	}

	return pixelData
}

// ycbcrToRGB converts YCbCr to RGB
func ycbcrToRGB(yy, cb, cr byte) (byte, byte, byte) {
	y := int(yy)
	cbVal := int(cb) - 128
	crVal := int(cr) - 128

	r := y + (91881*crVal+32768)>>16
	g := y + (32768-22554*cbVal-46802*crVal)>>16
	b := y + (116130*cbVal+32768)>>16

	return byte(common.Clamp(r, 0, 255)),
		byte(common.Clamp(g, 0, 255)),
		byte(common.Clamp(b, 0, 255))
}
