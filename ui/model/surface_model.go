package model

import (
	"sync/atomic"

	"github.com/soocke/quadscan/domain/geometry"
)

// SurfaceModel holds the preview surface size in pixels. The size is packed
// into one word so readers never see a width from one resize and a height
// from another. The zero value is an empty surface.
type SurfaceModel struct {
	packed atomic.Uint64
}

// NewSurfaceModel returns a model initialised to w x h.
func NewSurfaceModel(w, h int) *SurfaceModel {
	m := &SurfaceModel{}
	m.Set(w, h)
	return m
}

// Set replaces the size and reports whether it changed. Negative values are
// stored as zero.
func (m *SurfaceModel) Set(w, h int) bool {
	if m == nil {
		return false
	}
	w, h = max(0, w), max(0, h)
	v := uint64(uint32(w))<<32 | uint64(uint32(h))
	return m.packed.Swap(v) != v
}

// Size returns the current surface size.
func (m *SurfaceModel) Size() geometry.SurfaceSize {
	if m == nil {
		return geometry.SurfaceSize{}
	}
	v := m.packed.Load()
	return geometry.SurfaceSize{Width: int(uint32(v >> 32)), Height: int(uint32(v))}
}
