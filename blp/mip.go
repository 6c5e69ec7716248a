package blp

import "fmt"

// LevelCount returns the number of usable mip levels: the leading run of
// present level entries. Entries after the first absent one are ignored.
// Textures with an unknown compression have none.
func (d *Descriptor) LevelCount() int {
	if d.Compression == CompressionUnknown {
		return 0
	}
	n := 0
	for n < MaxLevels && d.Levels[n].Present() {
		n++
	}
	return n
}

// SupportedLevelCount returns how many leading levels can be decoded.
// JPEG textures only support level 0, and only when it is at least 4x4.
func (d *Descriptor) SupportedLevelCount() int {
	n := d.LevelCount()
	if d.Compression == CompressionJPEG {
		if n == 0 || d.Width < 4 || d.Height < 4 {
			return 0
		}
		return 1
	}
	return n
}

// LevelSize returns the dimensions of level by successive halving,
// never going below 1.
func (d *Descriptor) LevelSize(level int) (width, height int) {
	return max(1, d.Width>>uint(level)), max(1, d.Height>>uint(level))
}

// levelPlan validates a requested level and returns its table entry
// and dimensions.
func (d *Descriptor) levelPlan(level int) (LevelEntry, int, int, error) {
	if level < 0 || level >= MaxLevels {
		return LevelEntry{}, 0, 0, fmt.Errorf("%w: index %d outside 0..%d", ErrMissingLevel, level, MaxLevels-1)
	}
	if level >= d.LevelCount() {
		return LevelEntry{}, 0, 0, fmt.Errorf("%w: index %d, texture has %d", ErrMissingLevel, level, d.LevelCount())
	}
	w, h := d.LevelSize(level)
	return d.Levels[level], w, h, nil
}
