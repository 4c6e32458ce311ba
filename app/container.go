package app

import (
	"context"
	"log/slog"

	"github.com/soocke/quadscan/config"
	"github.com/soocke/quadscan/domain/pipeline"
	"github.com/soocke/quadscan/ui/model"
	"github.com/soocke/quadscan/ui/presenter"
	"github.com/soocke/quadscan/ui/view"
)

// AppContainer assembles models, services, presenters and the root view.
type AppContainer struct {
	Config     *config.Config
	ConfigPath string
	Logger     *slog.Logger
	Capture    *model.CaptureModel
	Session    *model.SessionModel
	Surface    *model.SurfaceModel
	Pipeline   *pipeline.Pipeline
	Selection  view.SelectionOverlay
	RootView   *view.RootView
	UI         view.UI

	// Presenters
	SessionPresenter *presenter.SessionPresenter
	StatusPresenter  *presenter.StatusPresenter
	OverlayPresenter *presenter.OverlayPresenter
	CapturePresenter *presenter.CapturePresenter
	Loop             *presenter.Loop
}

// BuildContainer constructs all components. No Tk widgets are created; the
// root view is built by the app once the window exists.
func BuildContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger, cfgPath string) (*AppContainer, error) {
	c := &AppContainer{Config: cfg, ConfigPath: cfgPath, Logger: logger}
	c.Capture = &model.CaptureModel{}
	c.Session = model.NewSessionModel()
	c.Surface = model.NewSurfaceModel(cfg.PreviewWidth, cfg.PreviewHeight)
	c.Selection = view.NewSelectionOverlay(cfg, cfgPath, logger)

	grabber, err := pipeline.NewGrabber(cfg, c.Selection.ActiveRect)
	if err != nil {
		return nil, err
	}
	c.Pipeline = pipeline.New(cfg, grabber, logger)
	c.Capture.SetSource(cfg.Source)

	c.RootView = view.NewRootView(cfg, cfgPath, logger)
	c.UI = c.RootView

	results := c.Pipeline.Analyzer
	c.OverlayPresenter = presenter.NewOverlayPresenter(c.Capture.Enabled, results, c.Surface, c.UI, presenter.SettingsFromConfig(cfg), logger)
	c.StatusPresenter = presenter.NewStatusPresenter(c.Capture.Enabled, results, c.UI)
	c.SessionPresenter = presenter.NewSessionPresenter(c.Session, c.Capture, results, c.UI)
	c.CapturePresenter = presenter.NewCapturePresenter(ctx, c.Capture, c.Pipeline.Capture, c.Pipeline.Analyzer, c.OverlayPresenter, c.UI)
	return c, nil
}

// ApplyConfig pushes an edited config into the pipeline and overlay.
func (c *AppContainer) ApplyConfig(cfg *config.Config) {
	if c == nil || cfg == nil {
		return
	}
	if err := c.Pipeline.Apply(cfg); err != nil && c.Logger != nil {
		c.Logger.Warn("config apply", "error", err)
	}
	c.OverlayPresenter.SetSettings(presenter.SettingsFromConfig(cfg))
}

// SetOverlayMode switches between polygon and marker rendering.
func (c *AppContainer) SetOverlayMode(mode string) {
	if c == nil || c.Config == nil {
		return
	}
	c.Config.OverlayMode = mode
	_ = c.Config.Validate()
	c.OverlayPresenter.SetSettings(presenter.SettingsFromConfig(c.Config))
	if c.Logger != nil {
		c.Logger.Info("overlay mode", "mode", c.Config.OverlayMode)
	}
}
