package presenter

import "time"

// Loop aggregates feature presenters and drives periodic updates.
//
// It calls Tick on the sub-presenters and invokes a scheduler callback.
// The zero value is usable (methods are nil-safe).
type Loop struct {
	Session  *SessionPresenter
	Status   *StatusPresenter
	Overlay  *OverlayPresenter
	Schedule func()
}

func NewLoop(sess *SessionPresenter, status *StatusPresenter, overlay *OverlayPresenter, schedule func()) *Loop {
	return &Loop{Session: sess, Status: status, Overlay: overlay, Schedule: schedule}
}

func (l *Loop) Tick() {
	if l == nil {
		return
	}
	now := time.Now()
	l.Status.Tick(now)
	l.Session.Tick(now)
	l.Overlay.Tick(now)
	if l.Schedule != nil {
		l.Schedule()
	}
}
