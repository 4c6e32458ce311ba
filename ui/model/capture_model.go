package model

import (
	"sync/atomic"
)

// CaptureModel tracks whether capture is enabled and which source feeds it.
// The zero value is disabled and usable. Concurrency-safe because UI
// callbacks and presenter ticks may race.
type CaptureModel struct {
	enabled atomic.Bool
	source  atomic.Pointer[string]
}

// Enabled reports whether capture is currently enabled.
func (m *CaptureModel) Enabled() bool {
	if m == nil {
		return false
	}
	return m.enabled.Load()
}

// SetEnabled stores the enabled flag.
func (m *CaptureModel) SetEnabled(b bool) {
	if m == nil {
		return
	}
	m.enabled.Store(b)
}

// Source returns the active source label ("screen", "dir").
func (m *CaptureModel) Source() string {
	if m == nil {
		return ""
	}
	if s := m.source.Load(); s != nil {
		return *s
	}
	return ""
}

// SetSource records the active source label.
func (m *CaptureModel) SetSource(s string) {
	if m == nil {
		return
	}
	m.source.Store(&s)
}
