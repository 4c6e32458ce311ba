package presenter

import (
	"time"
)

// Pipeline status labels.
const (
	StatusIdle      = "idle"
	StatusWaiting   = "waiting for frames"
	StatusSearching = "searching"
	StatusFound     = "quad found"
)

// StateView sets the state label in the view.
type StateView interface{ SetStateLabel(string) }

// StatusPresenter reflects whether the pipeline is idle, waiting for the
// first result, searching or currently tracking a quad.
type StatusPresenter struct {
	enabled func() bool
	results ResultSource
	view    StateView
	latest  string
}

func NewStatusPresenter(enabled func() bool, results ResultSource, view StateView) *StatusPresenter {
	return &StatusPresenter{enabled: enabled, results: results, view: view}
}

// Status derives the current label.
func (p *StatusPresenter) Status() string {
	if p == nil || p.enabled == nil || !p.enabled() {
		return StatusIdle
	}
	if p.results == nil {
		return StatusWaiting
	}
	res := p.results.Latest()
	switch {
	case res.Sequence == 0:
		return StatusWaiting
	case res.Found():
		return StatusFound
	default:
		return StatusSearching
	}
}

// Tick updates the view when the label changed.
func (p *StatusPresenter) Tick(now time.Time) {
	if p == nil || p.view == nil {
		return
	}
	s := p.Status()
	if s == p.latest {
		return
	}
	p.latest = s
	p.view.SetStateLabel("State: " + s)
}
