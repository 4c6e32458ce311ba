package presenter

import (
	"context"
)

// CaptureModel provides enabled state access.
type CaptureModel interface {
	Enabled() bool
	SetEnabled(bool)
}

// LifecycleContract narrows what presenter needs from the capture layer.
type LifecycleContract interface {
	Start()
	Stop()
}

// AnalyzerContract is the analyzer lifecycle driven alongside capture.
type AnalyzerContract interface {
	Start(ctx context.Context)
	Stop()
	Reset()
}

// CaptureView updates UI elements affected by capture toggling.
type CaptureView interface {
	PreviewReset()
	ConfigEditable(bool)
}

// CapturePresenter owns presentation logic for toggling the capture
// pipeline. The analyzer is started before capture so the first frame is
// not lost, and stopped after it so no frame arrives at a stopped analyzer.
type CapturePresenter struct {
	ctx      context.Context
	model    CaptureModel
	service  LifecycleContract
	analyzer AnalyzerContract
	overlay  *OverlayPresenter
	view     CaptureView
}

func NewCapturePresenter(ctx context.Context, model CaptureModel, service LifecycleContract, analyzer AnalyzerContract, overlay *OverlayPresenter, view CaptureView) *CapturePresenter {
	if ctx == nil {
		ctx = context.Background()
	}
	return &CapturePresenter{ctx: ctx, model: model, service: service, analyzer: analyzer, overlay: overlay, view: view}
}

func (c *CapturePresenter) ready() bool {
	return c != nil && c.model != nil && c.service != nil && c.analyzer != nil && c.view != nil
}

// Enable starts the analyzer and the capture service. Idempotent.
func (c *CapturePresenter) Enable() {
	if !c.ready() || c.model.Enabled() {
		return
	}
	c.analyzer.Start(c.ctx)
	c.service.Start()
	c.model.SetEnabled(true)
	c.view.ConfigEditable(false)
}

// Disable stops capture and analysis and clears the preview. Idempotent.
func (c *CapturePresenter) Disable() {
	if !c.ready() || !c.model.Enabled() {
		return
	}
	c.service.Stop()
	c.analyzer.Stop()
	c.analyzer.Reset()
	c.model.SetEnabled(false)
	c.overlay.Reset()
	c.view.PreviewReset()
	c.view.ConfigEditable(true)
}

// Toggle flips enabled state delegating to Enable/Disable.
func (c *CapturePresenter) Toggle() {
	if !c.ready() {
		return
	}
	if c.model.Enabled() {
		c.Disable()
		return
	}
	c.Enable()
}
