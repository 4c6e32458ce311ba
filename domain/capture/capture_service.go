package capture

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/soocke/quadscan/domain/geometry"
)

const (
	captureStatsLogInterval = 5 * time.Second
	defaultInterval         = 33 * time.Millisecond
	retryDelay              = 5 * time.Millisecond
)

// CaptureService acquires frames from a Grabber at a fixed interval and
// exposes the latest capture alongside instrumentation data. Use
// NewCaptureService to construct an instance.
type CaptureService interface {
	ServiceContract
	FrameSource
	Stats() CaptureStats
	SessionID() string
	SetRotation(geometry.Rotation)
	SetInterval(time.Duration)
	SetFrameHandler(FrameHandler)
}

type captureService struct {
	grabber  Grabber
	interval atomic.Int64
	logger   *slog.Logger

	running  atomic.Bool
	latest   atomic.Pointer[FrameSnapshot]
	handler  atomic.Pointer[FrameHandler]
	rotation atomic.Int32
	session  atomic.Pointer[string]

	captures     atomic.Uint64
	skipped      atomic.Uint64
	captureNanos atomic.Uint64
	sequence     atomic.Uint64

	errLog *rate.Limiter

	mu   sync.Mutex
	done chan struct{}
	wg   sync.WaitGroup
}

func newCaptureService(logger *slog.Logger, g Grabber, interval time.Duration) *captureService {
	s := &captureService{grabber: g, logger: logger, errLog: rate.NewLimiter(rate.Every(time.Second), 1)}
	s.SetInterval(interval)
	return s
}

// NewCaptureService constructs a capture service polling g every interval.
func NewCaptureService(logger *slog.Logger, g Grabber, interval time.Duration) CaptureService {
	return newCaptureService(logger, g, interval)
}

func (s *captureService) SetRotation(r geometry.Rotation) { s.rotation.Store(int32(r.Normalize())) }

// SetInterval changes the pacing between grabs; it applies from the next
// frame. Non-positive values restore the default.
func (s *captureService) SetInterval(d time.Duration) {
	if d <= 0 {
		d = defaultInterval
	}
	s.interval.Store(int64(d))
}

// SetFrameHandler installs fn to be called with every new frame. Nil removes
// the handler.
func (s *captureService) SetFrameHandler(fn FrameHandler) {
	if fn == nil {
		s.handler.Store(nil)
		return
	}
	s.handler.Store(&fn)
}

func (s *captureService) LatestFrame() FrameSnapshot {
	snap := s.latest.Load()
	if snap == nil {
		return FrameSnapshot{}
	}
	return *snap
}

func (s *captureService) Running() bool { return s.running.Load() }

// SessionID identifies the current (or last) capture run.
func (s *captureService) SessionID() string {
	if id := s.session.Load(); id != nil {
		return *id
	}
	return ""
}

func (s *captureService) Stats() CaptureStats {
	captures := s.captures.Load()
	skipped := s.skipped.Load()
	total := s.captureNanos.Load()
	var avg time.Duration
	avgMicros := 0.0
	if captures > 0 && total > 0 {
		avg = time.Duration(total / captures)
		avgMicros = float64(avg) / float64(time.Microsecond)
	}
	snapshot := s.LatestFrame()
	age := time.Duration(0)
	if !snapshot.CapturedAt.IsZero() {
		age = time.Since(snapshot.CapturedAt)
	}
	return CaptureStats{
		SessionID:        s.SessionID(),
		Captures:         captures,
		Skipped:          skipped,
		AvgCapture:       avg,
		AvgCaptureMicros: avgMicros,
		LastCapture:      snapshot.CapturedAt,
		LatestFrameAge:   age,
		Sequence:         snapshot.Sequence,
	}
}

func (s *captureService) Start() {
	if s.grabber == nil || !s.running.CompareAndSwap(false, true) {
		return
	}
	id := uuid.NewString()
	s.session.Store(&id)
	done := make(chan struct{})
	s.mu.Lock()
	s.done = done
	s.mu.Unlock()
	s.wg.Add(1)
	go s.loop(done)
	if s.logger != nil {
		s.logger.Info("capture.start", "session", id, "interval", time.Duration(s.interval.Load()))
	}
}

// Stop ends the capture loop and waits for it to exit.
func (s *captureService) Stop() {
	if !s.running.CompareAndSwap(true, false) {
		return
	}
	s.mu.Lock()
	if s.done != nil {
		close(s.done)
		s.done = nil
	}
	s.mu.Unlock()
	s.wg.Wait()
	if s.logger != nil {
		s.logger.Info("capture.stop", "session", s.SessionID(), "captures", s.captures.Load())
	}
}

func (s *captureService) loop(done <-chan struct{}) {
	defer s.wg.Done()
	logTicker := time.NewTicker(captureStatsLogInterval)
	defer logTicker.Stop()
	timer := time.NewTimer(0)
	defer timer.Stop()
	for {
		select {
		case <-done:
			return
		case <-timer.C:
		}
		start := time.Now()
		img, origin, err := s.grabber.Grab()
		if err != nil || img == nil {
			// grab failures repeat every retry; log at most one per second
			if err != nil && s.logger != nil && s.errLog.Allow() {
				s.logger.Error("capture grab", "error", err, "skipped", s.skipped.Load()+1)
			}
			s.skipped.Add(1)
			timer.Reset(retryDelay)
			continue
		}

		elapsed := time.Since(start)
		s.captureNanos.Add(uint64(elapsed.Nanoseconds()))
		s.captures.Add(1)
		seq := s.sequence.Add(1)
		b := img.Bounds()
		snap := &FrameSnapshot{
			Image:      img,
			Width:      b.Dx(),
			Height:     b.Dy(),
			Rotation:   geometry.Rotation(s.rotation.Load()),
			Origin:     origin,
			CapturedAt: time.Now(),
			Sequence:   seq,
		}
		s.latest.Store(snap)
		if h := s.handler.Load(); h != nil {
			(*h)(*snap)
		}

		select {
		case <-logTicker.C:
			s.logStats()
		default:
		}

		wait := time.Duration(s.interval.Load()) - elapsed
		if wait < 0 {
			wait = 0
		}
		timer.Reset(wait)
	}
}

func (s *captureService) logStats() {
	if s.logger == nil {
		return
	}
	stats := s.Stats()
	s.logger.Debug("capture.stats",
		"session", stats.SessionID,
		"captures", stats.Captures,
		"skipped", stats.Skipped,
		"avg_capture", stats.AvgCapture,
		"age", stats.LatestFrameAge,
	)
}
