package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks writes every event to a logger at debug level. It implements
// [PipelineHooks], [CacheHooks] and [HTTPHooks].
type LogHooks struct {
	Logger *log.Logger
}

// NewLogHooks returns hooks that log to l.
func NewLogHooks(l *log.Logger) *LogHooks {
	return &LogHooks{Logger: l.WithPrefix("hooks")}
}

// Install registers h for all event categories.
func (h *LogHooks) Install() {
	SetPipelineHooks(h)
	SetCacheHooks(h)
	SetHTTPHooks(h)
}

func (h *LogHooks) OnParseStart(_ context.Context, inputBytes int) {
	h.Logger.Debug("parse start", "bytes", inputBytes)
}

func (h *LogHooks) OnParseComplete(_ context.Context, entries int, d time.Duration, err error) {
	h.Logger.Debug("parse done", "entries", entries, "elapsed", d, "err", err)
}

func (h *LogHooks) OnLayoutStart(_ context.Context, root string, width, height int) {
	h.Logger.Debug("layout start", "root", root, "width", width, "height", height)
}

func (h *LogHooks) OnLayoutComplete(_ context.Context, boxes int, d time.Duration, err error) {
	h.Logger.Debug("layout done", "boxes", boxes, "elapsed", d, "err", err)
}

func (h *LogHooks) OnRenderStart(_ context.Context, formats []string) {
	h.Logger.Debug("render start", "formats", formats)
}

func (h *LogHooks) OnRenderComplete(_ context.Context, formats []string, d time.Duration, err error) {
	h.Logger.Debug("render done", "formats", formats, "elapsed", d, "err", err)
}

func (h *LogHooks) OnCacheHit(_ context.Context, keyType string) {
	h.Logger.Debug("cache hit", "type", keyType)
}

func (h *LogHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.Logger.Debug("cache miss", "type", keyType)
}

func (h *LogHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.Logger.Debug("cache set", "type", keyType, "bytes", size)
}

func (h *LogHooks) OnRequest(_ context.Context, method, path string) {
	h.Logger.Debug("request", "method", method, "path", path)
}

func (h *LogHooks) OnResponse(_ context.Context, method, path string, status int, d time.Duration) {
	h.Logger.Debug("response", "method", method, "path", path, "status", status, "elapsed", d)
}

func (h *LogHooks) OnError(_ context.Context, method, path string, err error) {
	h.Logger.Debug("request failed", "method", method, "path", path, "err", err)
}

var (
	_ PipelineHooks = (*LogHooks)(nil)
	_ CacheHooks    = (*LogHooks)(nil)
	_ HTTPHooks     = (*LogHooks)(nil)
)
