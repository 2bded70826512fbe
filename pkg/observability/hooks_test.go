package observability

import (
	"context"
	"errors"
	"testing"
	"time"
)

type recordingRegistryHooks struct {
	NoopRegistryHooks
	resolves  []string
	fallbacks [][2]string
}

func (h *recordingRegistryHooks) OnResolve(_ context.Context, requested string) {
	h.resolves = append(h.resolves, requested)
}

func (h *recordingRegistryHooks) OnFallback(_ context.Context, requested, fallback string) {
	h.fallbacks = append(h.fallbacks, [2]string{requested, fallback})
}

func TestRegistryHooks(t *testing.T) {
	defer Reset()

	rec := &recordingRegistryHooks{}
	SetRegistryHooks(rec)

	ctx := context.Background()
	Registry().OnResolve(ctx, "layered")
	Registry().OnFallback(ctx, "fancy", "layered")

	if len(rec.resolves) != 1 || rec.resolves[0] != "layered" {
		t.Errorf("resolves = %v", rec.resolves)
	}
	if len(rec.fallbacks) != 1 || rec.fallbacks[0] != [2]string{"fancy", "layered"} {
		t.Errorf("fallbacks = %v", rec.fallbacks)
	}
}

type countingRenderHooks struct {
	NoopRenderHooks
	stages int
	errs   int
}

func (h *countingRenderHooks) OnStageComplete(_ context.Context, _ string, _ time.Duration, err error) {
	h.stages++
	if err != nil {
		h.errs++
	}
}

func TestRenderHooks(t *testing.T) {
	defer Reset()

	rec := &countingRenderHooks{}
	SetRenderHooks(rec)

	ctx := context.Background()
	Render().OnStageComplete(ctx, "normalizing", time.Millisecond, nil)
	Render().OnStageComplete(ctx, "laying_out", time.Millisecond, errors.New("boom"))

	if rec.stages != 2 || rec.errs != 1 {
		t.Errorf("stages = %d, errs = %d, want 2/1", rec.stages, rec.errs)
	}
}

func TestSetNilKeepsCurrent(t *testing.T) {
	defer Reset()

	rec := &recordingRegistryHooks{}
	SetRegistryHooks(rec)
	SetRegistryHooks(nil)

	Registry().OnResolve(context.Background(), "x")
	if len(rec.resolves) != 1 {
		t.Error("nil registration should not replace existing hooks")
	}
}

func TestReset(t *testing.T) {
	SetCacheHooks(&NoopCacheHooks{})
	Reset()

	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Errorf("Reset should restore no-op cache hooks, got %T", Cache())
	}
}
