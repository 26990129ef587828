package lotofacil

import "context"

// GenerationBackend produces candidate games for a request. The payload is
// untrusted: the GenerationClient strips, decodes and validates it, so a
// backend only has to deliver what the remote producer returned.
type GenerationBackend interface {
	Produce(ctx context.Context, req *GenerationRequest) ([]byte, error)
}

// BackendFunc adapts an ordinary function to GenerationBackend
type BackendFunc func(ctx context.Context, req *GenerationRequest) ([]byte, error)

// Produce calls f(ctx, req)
func (f BackendFunc) Produce(ctx context.Context, req *GenerationRequest) ([]byte, error) {
	return f(ctx, req)
}
