package presenter

import (
	"time"

	"github.com/soocke/quadscan/ui/model"
)

// CaptureEnabledModel reports whether capture is enabled.
type CaptureEnabledModel interface{ Enabled() bool }

// SessionView displays session durations and detection counts.
type SessionView interface {
	SetSession(session, total time.Duration)
	SetDetections(analyzed, found uint64)
}

// SessionPresenter formats session values from the model to the view.
type SessionPresenter struct {
	sess    *model.SessionModel
	cap     CaptureEnabledModel
	results ResultSource
	view    SessionView
}

// NewSessionPresenter returns a new SessionPresenter. results may be nil.
func NewSessionPresenter(sess *model.SessionModel, cap CaptureEnabledModel, results ResultSource, view SessionView) *SessionPresenter {
	return &SessionPresenter{sess: sess, cap: cap, results: results, view: view}
}

// Tick advances the session model and pushes values to the view.
func (p *SessionPresenter) Tick(now time.Time) {
	if p == nil || p.sess == nil || p.cap == nil || p.view == nil {
		return
	}
	p.sess.OnTick(p.cap.Enabled(), now)
	if p.results != nil {
		res := p.results.Latest()
		p.sess.OnResult(res.Sequence, res.Found())
	}
	s, t := p.sess.Values()
	p.view.SetSession(s, t)
	a, f := p.sess.Hits()
	p.view.SetDetections(a, f)
}
