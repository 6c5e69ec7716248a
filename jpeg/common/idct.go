package common

// Constants for the integer IDCT (scaled by 2048)
const (
	w1 = 2841 // 2048*sqrt(2)*cos(1*pi/16)
	w2 = 2676 // 2048*sqrt(2)*cos(2*pi/16)
	w3 = 2408 // 2048*sqrt(2)*cos(3*pi/16)
	w5 = 1609 // 2048*sqrt(2)*cos(5*pi/16)
	w6 = 1108 // 2048*sqrt(2)*cos(6*pi/16)
	w7 = 565  // 2048*sqrt(2)*cos(7*pi/16)

	r2 = 181 // 256/sqrt(2)
)

// IDCT performs the inverse DCT on one dequantized 8x8 block.
// coef holds 64 coefficients in natural order; out receives level-shifted
// samples, one row every stride bytes.
func IDCT(coef []int32, out []byte, stride int) {
	var tmp [64]int32

	for y := 0; y < 8; y++ {
		row := coef[y*8 : y*8+8 : y*8+8]
		dst := tmp[y*8 : y*8+8 : y*8+8]

		if row[1]|row[2]|row[3]|row[4]|row[5]|row[6]|row[7] == 0 {
			dc := row[0] << 3
			for i := range dst {
				dst[i] = dc
			}
			continue
		}

		v := butterfly(
			(row[0]<<11)+128, row[4]<<11, row[6], row[2],
			row[1], row[7], row[5], row[3], 0,
		)
		for i := range dst {
			dst[i] = v[i] >> 8
		}
	}

	for x := 0; x < 8; x++ {
		if tmp[8+x]|tmp[16+x]|tmp[24+x]|tmp[32+x]|tmp[40+x]|tmp[48+x]|tmp[56+x] == 0 {
			dc := byte(Clamp(int(((tmp[x]+32)>>6)+128), 0, 255))
			for y := 0; y < 8; y++ {
				out[y*stride+x] = dc
			}
			continue
		}

		v := butterfly(
			(tmp[x]<<8)+8192, tmp[32+x]<<8, tmp[48+x], tmp[16+x],
			tmp[8+x], tmp[56+x], tmp[40+x], tmp[24+x], 3,
		)
		for y := 0; y < 8; y++ {
			out[y*stride+x] = byte(Clamp(int((v[y]>>14)+128), 0, 255))
		}
	}
}

// butterfly runs the three stages of the 1-D transform. Inputs are the
// pre-scaled even terms (x0, x1), the remaining even terms (x2, x3) and the
// odd terms (x4..x7); outputs are unnormalized samples 0..7. The column pass
// keeps the rotation products at the lower precision of x0 by shifting them
// right by shift bits.
func butterfly(x0, x1, x2, x3, x4, x5, x6, x7 int32, shift uint) [8]int32 {
	var rnd int32
	if shift > 0 {
		rnd = 1 << (shift - 1)
	}

	x8 := w7*(x4+x5) + rnd
	x4 = (x8 + (w1-w7)*x4) >> shift
	x5 = (x8 - (w1+w7)*x5) >> shift
	x8 = w3*(x6+x7) + rnd
	x6 = (x8 - (w3-w5)*x6) >> shift
	x7 = (x8 - (w3+w5)*x7) >> shift

	x8 = x0 + x1
	x0 -= x1
	x1 = w6*(x3+x2) + rnd
	x2 = (x1 - (w2+w6)*x2) >> shift
	x3 = (x1 + (w2-w6)*x3) >> shift
	x1 = x4 + x6
	x4 -= x6
	x6 = x5 + x7
	x5 -= x7

	x7 = x8 + x3
	x8 -= x3
	x3 = x0 + x2
	x0 -= x2
	x2 = (r2*(x4+x5) + 128) >> 8
	x4 = (r2*(x4-x5) + 128) >> 8

	return [8]int32{
		x7 + x1,
		x3 + x2,
		x0 + x4,
		x8 + x6,
		x8 - x6,
		x0 - x4,
		x3 - x2,
		x7 - x1,
	}
}
