package export

import (
	"context"
	"errors"
)

var (
	// ErrNoPages is returned when an artifact has nothing to encode
	ErrNoPages = errors.New("artifact has no pages")
	// ErrUnsupportedFormat is returned for an export format without an encoder
	ErrUnsupportedFormat = errors.New("unsupported export format")
)

// Part is one file produced by an encoder.
type Part struct {
	Name string
	Data []byte
}

// Encoder serializes an assembled artifact into one or more files.
type Encoder interface {
	Format() string
	ContentType() string
	Encode(ctx context.Context, a *Artifact) ([]Part, error)
}

// Registry maps export formats to encoders.
type Registry map[string]Encoder

// NewRegistry indexes encoders by format.
func NewRegistry(encoders ...Encoder) Registry {
	r := make(Registry, len(encoders))
	for _, e := range encoders {
		r[e.Format()] = e
	}
	return r
}

// Get returns the encoder for format.
func (r Registry) Get(format string) (Encoder, error) {
	e, ok := r[format]
	if !ok {
		return nil, ErrUnsupportedFormat
	}
	return e, nil
}
