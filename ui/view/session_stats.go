package view

import (
	"fmt"
	"time"

	//lint:ignore ST1001 Dot import for concise Tk widget DSL.
	. "modernc.org/tk9.0"
)

// SessionStats shows session and total capture durations plus how many
// analyzed frames of the session contained a quad.
type SessionStats interface {
	SetSession(d time.Duration)
	SetTotal(d time.Duration)
	SetDetections(analyzed, found uint64)
}

type sessionStats struct {
	sessionLbl *LabelWidget
	totalLbl   *LabelWidget
	hitsLbl    *LabelWidget
}

// NewSessionStats creates the labels at (row, startCol) and the two
// following columns, inside parent when it is not nil.
func NewSessionStats(parent *FrameWidget, row, startCol int) SessionStats {
	s := &sessionStats{sessionLbl: Label(Width(14)), totalLbl: Label(Width(14)), hitsLbl: Label(Width(18))}
	for i, lbl := range []*LabelWidget{s.sessionLbl, s.totalLbl, s.hitsLbl} {
		if parent != nil {
			Grid(lbl, In(parent), Row(row), Column(startCol+i), Sticky("w"), Padx("0.2m"))
		} else {
			Grid(lbl, Row(row), Column(startCol+i), Sticky("w"), Padx("0.2m"))
		}
	}
	s.sessionLbl.Configure(Txt("Session: 00:00"))
	s.totalLbl.Configure(Txt("Total: 00:00"))
	s.hitsLbl.Configure(Txt("Quads: 0/0"))
	return s
}

func clock(d time.Duration) string {
	seconds := int(d.Seconds())
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

// SetSession updates the session duration display.
func (s *sessionStats) SetSession(d time.Duration) {
	if s == nil || s.sessionLbl == nil {
		return
	}
	s.sessionLbl.Configure(Txt("Session: " + clock(d)))
}

// SetTotal updates the total duration display.
func (s *sessionStats) SetTotal(d time.Duration) {
	if s == nil || s.totalLbl == nil {
		return
	}
	s.totalLbl.Configure(Txt("Total: " + clock(d)))
}

// SetDetections shows found/analyzed frame counts.
func (s *sessionStats) SetDetections(analyzed, found uint64) {
	if s == nil || s.hitsLbl == nil {
		return
	}
	s.hitsLbl.Configure(Txt(fmt.Sprintf("Quads: %d/%d", found, analyzed)))
}
