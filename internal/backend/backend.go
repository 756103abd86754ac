package backend

import (
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"time"

	"thumbcache/internal/logging"
	"thumbcache/internal/metrics"
)

// Dispatch errors. ErrGenerationFailed wraps the backend's own error so
// callers can inspect the cause while matching on the category.
var (
	// ErrInvalidSource reports an unreadable or degenerate input file.
	ErrInvalidSource = errors.New("invalid source file")
	// ErrNoCapableBackend reports that no registered backend supports the
	// mime type, or none of the supporting ones is currently available.
	ErrNoCapableBackend = errors.New("no capable backend")
	// ErrGenerationFailed reports that a capable backend ran and failed.
	ErrGenerationFailed = errors.New("thumbnail generation failed")
)

// Result is the outcome of a successful generation: the thumbnail pixels
// plus whatever the backend learned about the original source.
type Result struct {
	Image image.Image

	// Dimensions of the original source, 0 when unknown.
	SourceWidth  int
	SourceHeight int

	// Extra metadata fields contributed by the backend, such as the
	// movie length for video sources. May be nil.
	Extra map[string]string
}

// Backend is a single thumbnail generation strategy. Implementations are
// stateless across invocations and safe for concurrent use.
type Backend interface {
	// Name identifies the backend in logs and metrics.
	Name() string
	// Supports reports whether the backend can handle a mime type.
	Supports(mime string) bool
	// Available probes whether the backend's runtime dependency is
	// currently present. Called on every dispatch; must be cheap.
	Available() bool
	// Generate produces a thumbnail of src fitting within px by px
	// pixels. The aspect ratio of the source is preserved.
	Generate(ctx context.Context, src string, px int) (*Result, error)
}

// Registry is an ordered, immutable-after-construction list of backends.
// Order is significant: earlier backends win for the mime types they
// support.
type Registry struct {
	backends []Backend
}

// NewRegistry builds a registry from backends in priority order.
func NewRegistry(backends ...Backend) *Registry {
	return &Registry{backends: backends}
}

// Names returns the backend names in priority order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.backends))
	for i, b := range r.backends {
		names[i] = b.Name()
	}
	return names
}

// Backends returns the registered backends in priority order.
func (r *Registry) Backends() []Backend {
	return r.backends
}

// Select returns the first backend that supports mime and is currently
// available. Probes are evaluated fresh on every call.
func (r *Registry) Select(mime string) (Backend, error) {
	supported := false
	for _, b := range r.backends {
		if !b.Supports(mime) {
			continue
		}
		supported = true
		if b.Available() {
			return b, nil
		}
		logging.Debug("backend %s supports %s but is unavailable", b.Name(), mime)
	}

	metrics.NoBackendTotal.WithLabelValues(mime).Inc()
	if supported {
		return nil, fmt.Errorf("%w: backends for %s exist but none is available", ErrNoCapableBackend, mime)
	}
	return nil, fmt.Errorf("%w: no backend supports %s", ErrNoCapableBackend, mime)
}

// Dispatch selects one backend for mime and invokes it. The source is
// rejected before any backend runs if it is missing or zero bytes.
func (r *Registry) Dispatch(ctx context.Context, src, mime string, px int) (*Result, error) {
	if err := checkSource(src); err != nil {
		return nil, err
	}

	b, err := r.Select(mime)
	if err != nil {
		return nil, err
	}
	return r.invoke(ctx, b, src, px)
}

// DispatchAll tries every supporting, available backend in priority
// order until one succeeds. Availability probes are memoized for the
// duration of this one call so a flapping external tool cannot be
// observed twice within a single request.
func (r *Registry) DispatchAll(ctx context.Context, src, mime string, px int) (*Result, error) {
	if err := checkSource(src); err != nil {
		return nil, err
	}

	available := make(map[string]bool, len(r.backends))
	var lastErr error
	supported := false

	for _, b := range r.backends {
		if !b.Supports(mime) {
			continue
		}
		supported = true

		ok, probed := available[b.Name()]
		if !probed {
			ok = b.Available()
			available[b.Name()] = ok
		}
		if !ok {
			continue
		}

		result, err := r.invoke(ctx, b, src, px)
		if err == nil {
			return result, nil
		}
		logging.Debug("backend %s failed for %s: %v", b.Name(), src, err)
		lastErr = err
	}

	if !supported {
		metrics.NoBackendTotal.WithLabelValues(mime).Inc()
		return nil, fmt.Errorf("%w: no backend supports %s", ErrNoCapableBackend, mime)
	}
	if lastErr == nil {
		metrics.NoBackendTotal.WithLabelValues(mime).Inc()
		return nil, fmt.Errorf("%w: backends for %s exist but none is available", ErrNoCapableBackend, mime)
	}
	return nil, lastErr
}

func (r *Registry) invoke(ctx context.Context, b Backend, src string, px int) (*Result, error) {
	start := time.Now()
	result, err := b.Generate(ctx, src, px)
	metrics.GenerationDuration.WithLabelValues(b.Name()).Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.GenerationsTotal.WithLabelValues(b.Name(), "error").Inc()
		return nil, fmt.Errorf("%w: backend %s: %v", ErrGenerationFailed, b.Name(), err)
	}
	if result == nil || result.Image == nil {
		metrics.GenerationsTotal.WithLabelValues(b.Name(), "error").Inc()
		return nil, fmt.Errorf("%w: backend %s returned no image", ErrGenerationFailed, b.Name())
	}

	metrics.GenerationsTotal.WithLabelValues(b.Name(), "success").Inc()
	return result, nil
}

// checkSource rejects degenerate inputs before any backend is invoked.
func checkSource(src string) error {
	info, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSource, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%w: %s is a directory", ErrInvalidSource, src)
	}
	if info.Size() == 0 {
		return fmt.Errorf("%w: %s is empty", ErrInvalidSource, src)
	}
	return nil
}
