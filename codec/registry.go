package codec

import (
	"bytes"
	"sort"
	"sync"
)

// Registry manages the available codecs
type Registry struct {
	mu     sync.RWMutex
	codecs map[string]Codec // key can be either name or signature
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{codecs: make(map[string]Codec)}
}

var defaultRegistry = NewRegistry()

// Register registers a codec using both its name and signature
func Register(codec Codec) {
	defaultRegistry.Register(codec)
}

// Get retrieves a codec by name or signature
func Get(nameOrSignature string) (Codec, error) {
	return defaultRegistry.Get(nameOrSignature)
}

// Detect returns the registered codec whose signature prefixes data
func Detect(data []byte) (Codec, error) {
	return defaultRegistry.Detect(data)
}

// List returns all registered codecs
func List() []Codec {
	return defaultRegistry.List()
}

// Register registers a codec using both its name and signature
func (r *Registry) Register(codec Codec) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.codecs[codec.Name()] = codec
	r.codecs[string(codec.Signature())] = codec
}

// Get retrieves a codec by name or signature
func (r *Registry) Get(nameOrSignature string) (Codec, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	codec, ok := r.codecs[nameOrSignature]
	if !ok {
		return nil, ErrCodecNotFound
	}
	return codec, nil
}

// Detect returns the codec with the longest signature that prefixes data
func (r *Registry) Detect(data []byte) (Codec, error) {
	var best Codec
	for _, codec := range r.List() {
		sig := codec.Signature()
		if len(sig) == 0 || !bytes.HasPrefix(data, sig) {
			continue
		}
		if best == nil || len(sig) > len(best.Signature()) {
			best = codec
		}
	}
	if best == nil {
		return nil, ErrUnsupportedFormat
	}
	return best, nil
}

// List returns all registered codecs (deduplicated), sorted by name
func (r *Registry) List() []Codec {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[Codec]bool)
	codecs := make([]Codec, 0)

	for _, codec := range r.codecs {
		if !seen[codec] {
			seen[codec] = true
			codecs = append(codecs, codec)
		}
	}

	sort.Slice(codecs, func(i, j int) bool {
		return codecs[i].Name() < codecs[j].Name()
	})
	return codecs
}
