package capture

import "time"

// CaptureStats summarises capture loop behaviour for instrumentation.
type CaptureStats struct {
	SessionID        string
	Captures         uint64
	Skipped          uint64
	AvgCapture       time.Duration
	AvgCaptureMicros float64
	LastCapture      time.Time
	LatestFrameAge   time.Duration
	Sequence         uint64
}
