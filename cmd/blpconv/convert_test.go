package main

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/klauspost/compress/gzip"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

// rawBLP2 returns a 2x2 modern raw texture with levels 2x2 and 1x1.
// Every stored pixel is B=10, G=20, R=30, A=40.
func rawBLP2() []byte {
	const headerEnd = 148
	level0 := bytes.Repeat([]byte{10, 20, 30, 40}, 4)
	level1 := []byte{10, 20, 30, 40}

	var buf bytes.Buffer
	buf.WriteString("BLP2")
	binary.Write(&buf, binary.LittleEndian, uint32(1))
	buf.Write([]byte{3, 8, 0, 0})
	binary.Write(&buf, binary.LittleEndian, [2]uint32{2, 2})
	var offsets, lengths [16]uint32
	offsets[0], lengths[0] = headerEnd, uint32(len(level0))
	offsets[1], lengths[1] = headerEnd+uint32(len(level0)), uint32(len(level1))
	binary.Write(&buf, binary.LittleEndian, offsets)
	binary.Write(&buf, binary.LittleEndian, lengths)
	buf.Write(level0)
	buf.Write(level1)
	return buf.Bytes()
}

func TestNames(t *testing.T) {
	tests := []struct {
		path    string
		texture bool
		base    string
	}{
		{"dir/Icon.blp", true, "Icon"},
		{"dir/Icon.BLP", true, "Icon"},
		{"dir/Icon.blp.gz", true, "Icon"},
		{"dir/Icon.blp.zst", true, "Icon"},
		{"dir/Icon.png", false, "Icon"},
		{"dir/archive.gz", false, "archive"},
	}
	for _, tt := range tests {
		if got := isTexture(tt.path); got != tt.texture {
			t.Errorf("isTexture(%q) = %v, want %v", tt.path, got, tt.texture)
		}
		if got := baseName(tt.path); got != tt.base {
			t.Errorf("baseName(%q) = %q, want %q", tt.path, got, tt.base)
		}
	}

	if got, want := levelPath("out", "in/Icon.blp.gz", 2, "bmp"), filepath.Join("out", "Icon_mip2.bmp"); got != want {
		t.Errorf("levelPath = %q, want %q", got, want)
	}
}

func TestConvertFile(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "Icon.blp")
	if err := os.WriteFile(input, rawBLP2(), 0o644); err != nil {
		t.Fatal(err)
	}
	outDir := filepath.Join(dir, "out")

	cfg := defaultConfig()
	written, err := convertFile(input, outDir, cfg)
	if err != nil {
		t.Fatalf("convertFile failed: %v", err)
	}
	if len(written) != 2 {
		t.Fatalf("wrote %d files, want 2", len(written))
	}

	f, err := os.Open(filepath.Join(outDir, "Icon_mip0.png"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("png.Decode failed: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 2 || b.Dy() != 2 {
		t.Errorf("bounds = %v, want 2x2", b)
	}
	r, g, b, a := img.At(1, 1).RGBA()
	if r>>8 == 0 || g>>8 == 0 || b>>8 == 0 || a>>8 != 40 {
		t.Errorf("pixel = %d,%d,%d,%d", r>>8, g>>8, b>>8, a>>8)
	}
}

func TestConvertFileFormats(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "Icon.blp.gz")
	var gz bytes.Buffer
	zw := gzip.NewWriter(&gz)
	zw.Write(rawBLP2())
	zw.Close()
	if err := os.WriteFile(input, gz.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}

	decoders := map[string]func([]byte) (image.Image, error){
		"bmp": func(b []byte) (image.Image, error) { return bmp.Decode(bytes.NewReader(b)) },
		"tiff": func(b []byte) (image.Image, error) { return tiff.Decode(bytes.NewReader(b)) },
	}
	for format, decode := range decoders {
		t.Run(format, func(t *testing.T) {
			cfg := defaultConfig()
			cfg.Output.Format = format
			cfg.Output.WantAlpha = false
			cfg.Output.MaxLevels = 1

			outDir := filepath.Join(dir, format)
			written, err := convertFile(input, outDir, cfg)
			if err != nil {
				t.Fatalf("convertFile failed: %v", err)
			}
			if len(written) != 1 {
				t.Fatalf("wrote %d files, want 1", len(written))
			}
			data, err := os.ReadFile(written[0])
			if err != nil {
				t.Fatal(err)
			}
			img, err := decode(data)
			if err != nil {
				t.Fatalf("decode %s failed: %v", format, err)
			}
			r, g, b, a := img.At(0, 0).RGBA()
			if r>>8 != 30 || g>>8 != 20 || b>>8 != 10 || a>>8 != 255 {
				t.Errorf("pixel = %d,%d,%d,%d, want 30,20,10,255", r>>8, g>>8, b>>8, a>>8)
			}
		})
	}
}

func TestConvertFileErrors(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.blp")
	if err := os.WriteFile(bad, []byte("not a texture"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := convertFile(bad, dir, defaultConfig()); err == nil {
		t.Error("convertFile on junk succeeded")
	}
	if _, err := convertFile(filepath.Join(dir, "missing.blp"), dir, defaultConfig()); err == nil {
		t.Error("convertFile on a missing file succeeded")
	}
}

func TestProcessDirectory(t *testing.T) {
	in := t.TempDir()
	out := t.TempDir()
	sub := filepath.Join(in, "ui", "icons")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{filepath.Join(in, "A.blp"), filepath.Join(sub, "B.blp")} {
		if err := os.WriteFile(name, rawBLP2(), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.WriteFile(filepath.Join(in, "readme.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := defaultConfig()
	cfg.Output.Dir = out
	if err := processDirectory(in, cfg); err != nil {
		t.Fatalf("processDirectory failed: %v", err)
	}
	for _, want := range []string{
		filepath.Join(out, "A_mip0.png"),
		filepath.Join(out, "A_mip1.png"),
		filepath.Join(out, "ui", "icons", "B_mip0.png"),
	} {
		if _, err := os.Stat(want); err != nil {
			t.Errorf("missing output %s: %v", want, err)
		}
	}

	if err := os.WriteFile(filepath.Join(sub, "broken.blp"), []byte("BLP2"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := processDirectory(in, cfg); err == nil {
		t.Error("processDirectory with a broken texture succeeded")
	}
}

func TestJobFor(t *testing.T) {
	in := t.TempDir()
	sub := filepath.Join(in, "sub")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	tex := filepath.Join(sub, "C.blp")
	if err := os.WriteFile(tex, rawBLP2(), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := defaultConfig()
	cfg.Output.Dir = "out"
	cfg.Watch.Dirs = []string{in}

	j, ok := jobFor(tex, cfg)
	if !ok {
		t.Fatal("jobFor rejected a watched texture")
	}
	if j.input != tex || j.outDir != filepath.Join("out", "sub") {
		t.Errorf("job = %+v", j)
	}

	if _, ok := jobFor(filepath.Join(sub, "missing.blp"), cfg); ok {
		t.Error("jobFor accepted a missing file")
	}
	outside := filepath.Join(t.TempDir(), "D.blp")
	os.WriteFile(outside, rawBLP2(), 0o644)
	if _, ok := jobFor(outside, cfg); ok {
		t.Error("jobFor accepted a file outside the watched dirs")
	}
}

func TestDebouncer(t *testing.T) {
	var fired atomic.Int32
	done := make(chan string, 4)
	db := newDebouncer(20*time.Millisecond, func(path string) {
		fired.Add(1)
		done <- path
	})
	defer db.stop()

	for i := 0; i < 5; i++ {
		db.trigger("a.blp")
	}

	select {
	case path := <-done:
		if path != "a.blp" {
			t.Errorf("fired for %q", path)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("debouncer never fired")
	}
	time.Sleep(60 * time.Millisecond)
	if n := fired.Load(); n != 1 {
		t.Errorf("fired %d times, want 1", n)
	}
}
