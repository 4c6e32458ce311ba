package model

import (
	"time"
)

// SessionModel tracks the current capture session duration, the accumulated
// active time and how many analyzed frames of the session contained a quad.
// Presenters poll Values and Hits; it is only touched from the UI goroutine.
// The zero value is ready to use.
type SessionModel struct {
	active              bool
	captureStart        time.Time
	lastSessionDuration time.Duration
	accumulated         time.Duration

	lastSeq  uint64
	analyzed uint64
	found    uint64
}

// NewSessionModel returns a pointer to a ready-to-use SessionModel.
func NewSessionModel() *SessionModel { return &SessionModel{} }

// OnTick updates the model using the current capture state and timestamp.
func (m *SessionModel) OnTick(capturing bool, now time.Time) {
	if m == nil {
		return
	}
	if capturing {
		if !m.active { // off -> on starts a new session
			m.active = true
			m.captureStart = now
			m.lastSessionDuration = 0
			m.analyzed, m.found = 0, 0
		}
		m.lastSessionDuration = now.Sub(m.captureStart)
	} else if m.active { // on -> off
		m.lastSessionDuration = now.Sub(m.captureStart)
		m.accumulated += m.lastSessionDuration
		m.active = false
	}
}

// OnResult counts an analyzer result once per sequence number while a
// session is active.
func (m *SessionModel) OnResult(seq uint64, found bool) {
	if m == nil || !m.active || seq == 0 || seq == m.lastSeq {
		return
	}
	m.lastSeq = seq
	m.analyzed++
	if found {
		m.found++
	}
}

// Values returns the current session duration and the total accumulated duration.
// The total includes the ongoing session when active.
func (m *SessionModel) Values() (session, total time.Duration) {
	if m == nil {
		return 0, 0
	}
	session = m.lastSessionDuration
	total = m.accumulated
	if m.active {
		total += session
	}
	return
}

// Hits returns analyzed and quad-found frame counts for the current session.
func (m *SessionModel) Hits() (analyzed, found uint64) {
	if m == nil {
		return 0, 0
	}
	return m.analyzed, m.found
}
