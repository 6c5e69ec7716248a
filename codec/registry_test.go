package codec_test

import (
	"errors"
	"testing"

	_ "github.com/cocosip/go-blp-codec/blp"
	"github.com/cocosip/go-blp-codec/codec"
	_ "github.com/cocosip/go-blp-codec/jpeg/baseline"
)

type fakeCodec struct {
	name string
	sig  []byte
}

func (f *fakeCodec) Decode(data []byte, opts *codec.DecodeOptions) (*codec.DecodeResult, error) {
	return &codec.DecodeResult{}, nil
}

func (f *fakeCodec) Signature() []byte { return f.sig }

func (f *fakeCodec) Name() string { return f.name }

func TestCodecRegistry(t *testing.T) {
	tests := []struct {
		name      string
		key       string
		wantFound bool
		wantName  string
	}{
		{
			name:      "Get baseline by name",
			key:       "jpeg-baseline",
			wantFound: true,
			wantName:  "jpeg-baseline",
		},
		{
			name:      "Get baseline by signature",
			key:       "\xFF\xD8\xFF",
			wantFound: true,
			wantName:  "jpeg-baseline",
		},
		{
			name:      "Get legacy texture by name",
			key:       "blp1",
			wantFound: true,
			wantName:  "blp1",
		},
		{
			name:      "Get modern texture by signature",
			key:       "BLP2",
			wantFound: true,
			wantName:  "blp2",
		},
		{
			name:      "Get non-existent codec",
			key:       "non-existent",
			wantFound: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := codec.Get(tt.key)
			if !tt.wantFound {
				if !errors.Is(err, codec.ErrCodecNotFound) {
					t.Errorf("Get(%q) error = %v, want ErrCodecNotFound", tt.key, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Get(%q) failed: %v", tt.key, err)
			}
			if c.Name() != tt.wantName {
				t.Errorf("Name() = %q, want %q", c.Name(), tt.wantName)
			}
		})
	}
}

func TestList(t *testing.T) {
	codecs := codec.List()
	names := make([]string, len(codecs))
	for i, c := range codecs {
		names[i] = c.Name()
	}

	want := []string{"blp1", "blp2", "jpeg-baseline"}
	if len(names) != len(want) {
		t.Fatalf("List() = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("List()[%d] = %q, want %q", i, names[i], want[i])
		}
	}
}

func TestDetect(t *testing.T) {
	r := codec.NewRegistry()
	short := &fakeCodec{name: "short", sig: []byte("AB")}
	long := &fakeCodec{name: "long", sig: []byte("ABCD")}
	empty := &fakeCodec{name: "empty"}
	r.Register(short)
	r.Register(long)
	r.Register(empty)

	tests := []struct {
		data []byte
		want codec.Codec
	}{
		{[]byte("ABCDxyz"), long},
		{[]byte("ABC"), short},
		{[]byte("AB"), short},
	}
	for _, tt := range tests {
		got, err := r.Detect(tt.data)
		if err != nil {
			t.Errorf("Detect(%q) failed: %v", tt.data, err)
			continue
		}
		if got != tt.want {
			t.Errorf("Detect(%q) = %s, want %s", tt.data, got.Name(), tt.want.Name())
		}
	}

	for _, data := range [][]byte{nil, []byte("A"), []byte("xyz")} {
		if _, err := r.Detect(data); !errors.Is(err, codec.ErrUnsupportedFormat) {
			t.Errorf("Detect(%q) error = %v, want ErrUnsupportedFormat", data, err)
		}
	}

	if _, err := codec.Detect([]byte("BLP2\x01\x00\x00\x00")); err != nil {
		t.Errorf("default registry Detect(BLP2) failed: %v", err)
	}
}

func TestDecodeOptionsValidate(t *testing.T) {
	tests := []struct {
		maxLevels int
		valid     bool
	}{
		{0, true},
		{1, true},
		{codec.MaxMipLevels, true},
		{-1, false},
		{codec.MaxMipLevels + 1, false},
	}
	for _, tt := range tests {
		opts := codec.DefaultDecodeOptions()
		opts.MaxLevels = tt.maxLevels
		err := opts.Validate()
		if tt.valid && err != nil {
			t.Errorf("MaxLevels %d: unexpected error %v", tt.maxLevels, err)
		}
		if !tt.valid && !errors.Is(err, codec.ErrInvalidParameter) {
			t.Errorf("MaxLevels %d: error = %v, want ErrInvalidParameter", tt.maxLevels, err)
		}
	}
	if !codec.DefaultDecodeOptions().WantAlpha {
		t.Error("default options drop alpha")
	}
}
