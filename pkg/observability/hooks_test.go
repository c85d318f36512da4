package observability

import (
	"context"
	"testing"
	"time"
)

type recordingEngineHooks struct {
	NoopEngineHooks
	compiles int
}

func (h *recordingEngineHooks) OnCompileStart(ctx context.Context, nodeCount int) {
	h.compiles++
}

type recordingCacheHooks struct {
	NoopCacheHooks
	hits, misses int
}

func (h *recordingCacheHooks) OnCacheHit(ctx context.Context, keyType string)  { h.hits++ }
func (h *recordingCacheHooks) OnCacheMiss(ctx context.Context, keyType string) { h.misses++ }

func TestSetAndResetHooks(t *testing.T) {
	t.Cleanup(Reset)

	eh := &recordingEngineHooks{}
	ch := &recordingCacheHooks{}
	SetEngineHooks(eh)
	SetCacheHooks(ch)

	ctx := context.Background()
	Engine().OnCompileStart(ctx, 3)
	Cache().OnCacheHit(ctx, "validate")
	Cache().OnCacheMiss(ctx, "layout")

	if eh.compiles != 1 {
		t.Errorf("compiles = %d, want 1", eh.compiles)
	}
	if ch.hits != 1 || ch.misses != 1 {
		t.Errorf("cache events = %d hits, %d misses", ch.hits, ch.misses)
	}

	Reset()
	Engine().OnCompileStart(ctx, 3)
	if eh.compiles != 1 {
		t.Error("events delivered after Reset")
	}
}

func TestSetHooksIgnoresNil(t *testing.T) {
	t.Cleanup(Reset)

	SetEngineHooks(nil)
	SetCacheHooks(nil)

	// Defaults stay usable.
	Engine().OnValidateComplete(context.Background(), true, 0, time.Millisecond)
	Cache().OnCacheSet(context.Background(), "artifact", 42)
}
