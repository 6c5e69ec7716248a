package main

import (
	"bufio"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	_ "github.com/cocosip/go-blp-codec/blp"
	"github.com/cocosip/go-blp-codec/codec"
	_ "github.com/cocosip/go-blp-codec/jpeg/baseline"
	"github.com/cocosip/go-blp-codec/source"
)

// wrapperExts are stripped before the texture extension
var wrapperExts = []string{".gz", ".zst"}

// isTexture reports whether path names a texture, optionally wrapped
func isTexture(path string) bool {
	return strings.EqualFold(filepath.Ext(trimWrapper(path)), ".blp")
}

func trimWrapper(path string) string {
	for _, ext := range wrapperExts {
		if strings.HasSuffix(strings.ToLower(path), ext) {
			return path[:len(path)-len(ext)]
		}
	}
	return path
}

// baseName returns the file name without wrapper and texture extensions
func baseName(path string) string {
	name := filepath.Base(trimWrapper(path))
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// levelPath returns the output path of one mip level
func levelPath(outDir, input string, level int, format string) string {
	return filepath.Join(outDir, fmt.Sprintf("%s_mip%d.%s", baseName(input), level, format))
}

// convertFile decodes input and writes one image per level into outDir.
// It returns the written paths.
func convertFile(input, outDir string, cfg *Config) ([]string, error) {
	data, err := source.ReadFile(input)
	if err != nil {
		return nil, err
	}

	c, err := codec.Detect(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", input, err)
	}
	result, err := c.Decode(data, cfg.DecodeOptions())
	if err != nil {
		return nil, fmt.Errorf("%s: %s: %w", input, c.Name(), err)
	}
	if len(result.Levels) == 0 {
		return nil, fmt.Errorf("%s: no decodable levels", input)
	}

	if err := os.MkdirAll(outDir, 0755); err != nil {
		return nil, err
	}

	written := make([]string, 0, len(result.Levels))
	for _, lvl := range result.Levels {
		img := &image.NRGBA{
			Pix:    lvl.PixelData,
			Stride: lvl.Width * 4,
			Rect:   image.Rect(0, 0, lvl.Width, lvl.Height),
		}
		out := levelPath(outDir, input, lvl.Index, cfg.Output.Format)
		if err := writeImage(out, img, cfg.Output.Format); err != nil {
			return written, err
		}
		written = append(written, out)
	}
	return written, nil
}

func writeImage(path string, img image.Image, format string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	w := bufio.NewWriter(f)
	if err := encodeImage(w, img, format); err != nil {
		f.Close()
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func encodeImage(w io.Writer, img image.Image, format string) error {
	switch format {
	case "png":
		return png.Encode(w, img)
	case "bmp":
		return bmp.Encode(w, img)
	case "tiff":
		return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate, Predictor: true})
	default:
		return fmt.Errorf("unsupported output format %q", format)
	}
}
