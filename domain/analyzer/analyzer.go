// Package analyzer runs quad detection off the UI goroutine with a
// keep-only-latest policy and publishes each result atomically.
package analyzer

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/soocke/quadscan/domain/capture"
	"github.com/soocke/quadscan/domain/detect"
	"github.com/soocke/quadscan/domain/geometry"
)

const (
	analyzerStatsLogInterval = 5 * time.Second
	// DefaultMaxDim caps the longest side of the detection copy.
	DefaultMaxDim = 300
)

var errEmptyFrame = errors.New("analyzer: empty frame")

// ErrRunning is returned by Configure while the worker is active.
var ErrRunning = errors.New("analyzer: running")

// Result is one analyzed frame. Points holds either nothing or four corners
// in full-resolution, display-oriented frame coordinates. Image is the
// unrotated source frame the points belong to.
type Result struct {
	Points     []r2.Vec
	Frame      geometry.FrameSize
	Rotation   geometry.Rotation
	Image      *image.RGBA
	Origin     string
	Sequence   uint64
	AnalyzedAt time.Time
	Duration   time.Duration
}

// Found reports whether the result carries a full quad.
func (r Result) Found() bool { return len(r.Points) == 4 }

// Stats summarises analyzer behaviour for instrumentation.
type Stats struct {
	Analyzed  uint64
	Found     uint64
	Dropped   uint64
	Failed    uint64
	AvgDetect time.Duration
	Sequence  uint64
}

// Analyzer consumes frame snapshots on a single worker goroutine. Submit never
// blocks: a frame still waiting when a newer one arrives is discarded.
type Analyzer struct {
	detector detect.Detector
	maxDim   int
	logger   *slog.Logger

	workCh chan capture.FrameSnapshot
	latest atomic.Pointer[Result]

	running     atomic.Bool
	analyzed    atomic.Uint64
	found       atomic.Uint64
	dropped     atomic.Uint64
	failed      atomic.Uint64
	detectNanos atomic.Uint64

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New returns an analyzer using d on copies no larger than maxDim.
func New(d detect.Detector, maxDim int, logger *slog.Logger) *Analyzer {
	if maxDim <= 0 {
		maxDim = DefaultMaxDim
	}
	return &Analyzer{
		detector: d,
		maxDim:   maxDim,
		logger:   logger,
		workCh:   make(chan capture.FrameSnapshot, 1),
	}
}

// Start launches the worker. It is a no-op when already running. A frame
// left queued by a Submit that raced the previous Stop is discarded.
func (a *Analyzer) Start(ctx context.Context) {
	if a == nil || !a.running.CompareAndSwap(false, true) {
		return
	}
	a.drain()
	ctx, cancel := context.WithCancel(ctx)
	a.mu.Lock()
	a.cancel = cancel
	a.mu.Unlock()
	a.wg.Add(1)
	go a.run(ctx)
}

// Stop cancels the worker, drops any queued frame and waits for the worker
// to exit. The detector is not invoked after Stop returns.
func (a *Analyzer) Stop() {
	if a == nil || !a.running.CompareAndSwap(true, false) {
		return
	}
	a.mu.Lock()
	cancel := a.cancel
	a.cancel = nil
	a.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	a.wg.Wait()
	a.drain()
}

// Configure swaps the detector and downscale limit. It is only allowed while
// stopped so a frame is never analyzed with mixed settings.
func (a *Analyzer) Configure(d detect.Detector, maxDim int) error {
	if a == nil {
		return nil
	}
	if a.running.Load() {
		return ErrRunning
	}
	if maxDim <= 0 {
		maxDim = DefaultMaxDim
	}
	a.mu.Lock()
	a.detector, a.maxDim = d, maxDim
	a.mu.Unlock()
	return nil
}

// Running reports whether the worker is active.
func (a *Analyzer) Running() bool { return a != nil && a.running.Load() }

// Submit hands a frame to the worker, replacing any frame still waiting.
// It returns false when the frame was not accepted.
func (a *Analyzer) Submit(snap capture.FrameSnapshot) bool {
	if a == nil || snap.Empty() || !a.running.Load() {
		return false
	}
	select {
	case a.workCh <- snap:
		return true
	default:
	}
	select {
	case <-a.workCh:
		a.dropped.Add(1)
	default:
	}
	select {
	case a.workCh <- snap:
		return true
	default:
		a.dropped.Add(1)
		return false
	}
}

// Latest returns the most recently published result.
func (a *Analyzer) Latest() Result {
	if a == nil {
		return Result{}
	}
	if r := a.latest.Load(); r != nil {
		return *r
	}
	return Result{}
}

// Reset forgets the published result.
func (a *Analyzer) Reset() {
	if a != nil {
		a.latest.Store(nil)
	}
}

// Stats returns the counters accumulated since New.
func (a *Analyzer) Stats() Stats {
	if a == nil {
		return Stats{}
	}
	analyzed := a.analyzed.Load()
	var avg time.Duration
	if analyzed > 0 {
		avg = time.Duration(a.detectNanos.Load() / analyzed)
	}
	return Stats{
		Analyzed:  analyzed,
		Found:     a.found.Load(),
		Dropped:   a.dropped.Load(),
		Failed:    a.failed.Load(),
		AvgDetect: avg,
		Sequence:  a.Latest().Sequence,
	}
}

func (a *Analyzer) run(ctx context.Context) {
	defer a.wg.Done()
	logTicker := time.NewTicker(analyzerStatsLogInterval)
	defer logTicker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-logTicker.C:
			a.logStats()
		case snap := <-a.workCh:
			if ctx.Err() != nil {
				a.dropped.Add(1)
				return
			}
			res := a.process(ctx, snap)
			if ctx.Err() != nil {
				return
			}
			a.latest.Store(&res)
		}
	}
}

func (a *Analyzer) drain() {
	for {
		select {
		case <-a.workCh:
			a.dropped.Add(1)
		default:
			return
		}
	}
}

// process runs one frame through downscale, detection and mapping. Any
// failure, including a panic, yields a result without points; the detection
// copy is recycled on every path.
func (a *Analyzer) process(ctx context.Context, snap capture.FrameSnapshot) (res Result) {
	res = Result{
		Frame:    snap.Frame(),
		Rotation: snap.Rotation,
		Image:    snap.Image,
		Origin:   snap.Origin,
		Sequence: snap.Sequence,
	}
	start := time.Now()
	var small *image.RGBA
	defer func() {
		detect.Recycle(small)
		res.Duration = time.Since(start)
		res.AnalyzedAt = time.Now()
		a.analyzed.Add(1)
		a.detectNanos.Add(uint64(res.Duration.Nanoseconds()))
		if r := recover(); r != nil {
			res.Points = nil
			a.fail(snap.Sequence, fmt.Errorf("analyzer: panic: %v", r))
		}
		if res.Found() {
			a.found.Add(1)
		}
	}()

	a.mu.Lock()
	detector, maxDim := a.detector, a.maxDim
	a.mu.Unlock()
	var factor float64
	small, factor = detect.ResizeMax(snap.Image, maxDim)
	if small == nil {
		a.fail(snap.Sequence, errEmptyFrame)
		return res
	}
	raw, err := detector.Detect(ctx, small)
	if err != nil {
		a.fail(snap.Sequence, err)
		return res
	}
	if len(raw) != 4 {
		return res
	}
	b := small.Bounds()
	mapped := geometry.MapDetected(raw, snap.Rotation, geometry.FrameSize{Width: b.Dx(), Height: b.Dy()}, factor)
	res.Points = geometry.ClampPoints(mapped, snap.Frame())
	return res
}

func (a *Analyzer) fail(seq uint64, err error) {
	a.failed.Add(1)
	if a.logger != nil && !errors.Is(err, context.Canceled) {
		a.logger.Error("analyzer", "sequence", seq, "error", err)
	}
}

func (a *Analyzer) logStats() {
	if a.logger == nil {
		return
	}
	st := a.Stats()
	a.logger.Debug("analyzer.stats",
		"analyzed", st.Analyzed,
		"found", st.Found,
		"dropped", st.Dropped,
		"failed", st.Failed,
		"avg_detect", st.AvgDetect,
	)
}
