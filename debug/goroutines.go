package debug

// Debug goroutine metrics logger. Started only when config.Debug is true.
// Emits goroutine count, stack usage and outstanding detection buffers at a
// fixed interval so a leak in the analyzer shows up next to heap growth.

import (
	"context"
	"log/slog"
	"runtime"
	"runtime/metrics"
	"time"

	"github.com/soocke/quadscan/domain/detect"
)

// StartGoroutineLogger launches a ticker that logs goroutine count, stack
// memory and pooled buffer usage until ctx is cancelled.
func StartGoroutineLogger(ctx context.Context, interval time.Duration, logger *slog.Logger) {
	if interval <= 0 {
		interval = time.Second
	}
	go func() {
		t := time.NewTicker(interval)
		defer t.Stop()
		samples := []metrics.Sample{{Name: "/sched/goroutines:goroutines"}}
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
			}
			logger.Info("goroutine-stacks", goroutineAttrs(samples)...)
		}
	}()
}

func goroutineAttrs(samples []metrics.Sample) []any {
	metrics.Read(samples)
	var goroutines uint64
	if samples[0].Value.Kind() == metrics.KindUint64 {
		goroutines = samples[0].Value.Uint64()
	}
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	return []any{
		slog.Uint64("goroutines", goroutines),
		slog.Uint64("stack_inuse", ms.StackInuse),
		slog.Uint64("stack_sys", ms.StackSys),
		slog.Uint64("heap_alloc", ms.HeapAlloc),
		slog.Int64("detect_buffers", detect.Outstanding()),
	}
}
