// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers can register hooks at startup
// to receive events about pipeline execution, cache operations, and requests
// served by the HTTP API.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// This approach:
//   - Avoids import cycles (hooks are registered by main, not by libraries)
//   - Keeps the core library dependency-free from observability frameworks
//   - Allows different backends (OpenTelemetry, Prometheus, DataDog, etc.)
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetPipelineHooks(&myPipelineHooks{})
//	    observability.SetCacheHooks(&myCacheHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Pipeline().OnParseStart(ctx, len(input))
//	// ... do parsing ...
//	observability.Pipeline().OnParseComplete(ctx, len(entries), duration, err)
//
// [LogHooks] is a ready-made implementation that writes every event to a
// charmbracelet/log logger at debug level.
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Pipeline Hooks
// =============================================================================

// PipelineHooks receives events from the render pipeline.
type PipelineHooks interface {
	// Parse events (du text to entries)
	OnParseStart(ctx context.Context, inputBytes int)
	OnParseComplete(ctx context.Context, entries int, duration time.Duration, err error)

	// Layout events (entries to boxes)
	OnLayoutStart(ctx context.Context, root string, width, height int)
	OnLayoutComplete(ctx context.Context, boxes int, duration time.Duration, err error)

	// Render events
	OnRenderStart(ctx context.Context, formats []string)
	OnRenderComplete(ctx context.Context, formats []string, duration time.Duration, err error)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from the HTTP server.
type HTTPHooks interface {
	// OnRequest records an incoming request.
	OnRequest(ctx context.Context, method, path string)

	// OnResponse records a completed response.
	OnResponse(ctx context.Context, method, path string, statusCode int, duration time.Duration)

	// OnError records a request that failed while being handled.
	OnError(ctx context.Context, method, path string, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopPipelineHooks is a no-op implementation of PipelineHooks.
type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnParseStart(context.Context, int)                                 {}
func (NoopPipelineHooks) OnParseComplete(context.Context, int, time.Duration, error)       {}
func (NoopPipelineHooks) OnLayoutStart(context.Context, string, int, int)                  {}
func (NoopPipelineHooks) OnLayoutComplete(context.Context, int, time.Duration, error)      {}
func (NoopPipelineHooks) OnRenderStart(context.Context, []string)                          {}
func (NoopPipelineHooks) OnRenderComplete(context.Context, []string, time.Duration, error) {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, int, time.Duration) {}
func (NoopHTTPHooks) OnError(context.Context, string, string, error)                 {}

// =============================================================================
// Global Hook Registry
// =============================================================================

type hookSet struct {
	pipeline PipelineHooks
	cache    CacheHooks
	http     HTTPHooks
}

func noopHooks() hookSet {
	return hookSet{NoopPipelineHooks{}, NoopCacheHooks{}, NoopHTTPHooks{}}
}

var (
	hooksMu sync.RWMutex
	hooks   = noopHooks()
)

func install(set func(*hookSet)) {
	hooksMu.Lock()
	set(&hooks)
	hooksMu.Unlock()
}

func current() hookSet {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return hooks
}

// SetPipelineHooks replaces the pipeline hooks. Nil is ignored.
// Call it at startup, before the first pipeline run.
func SetPipelineHooks(h PipelineHooks) {
	if h != nil {
		install(func(s *hookSet) { s.pipeline = h })
	}
}

// SetCacheHooks replaces the cache hooks. Nil is ignored.
func SetCacheHooks(h CacheHooks) {
	if h != nil {
		install(func(s *hookSet) { s.cache = h })
	}
}

// SetHTTPHooks replaces the HTTP server hooks. Nil is ignored.
func SetHTTPHooks(h HTTPHooks) {
	if h != nil {
		install(func(s *hookSet) { s.http = h })
	}
}

// Pipeline returns the active pipeline hooks.
func Pipeline() PipelineHooks { return current().pipeline }

// Cache returns the active cache hooks.
func Cache() CacheHooks { return current().cache }

// HTTP returns the active HTTP hooks.
func HTTP() HTTPHooks { return current().http }

// Reset puts the no-op hooks back. Tests use it in t.Cleanup.
func Reset() {
	install(func(s *hookSet) { *s = noopHooks() })
}
