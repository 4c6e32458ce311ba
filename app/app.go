package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	. "modernc.org/tk9.0"

	"github.com/soocke/quadscan/config"
	"github.com/soocke/quadscan/debug"
	"github.com/soocke/quadscan/ui/presenter"
	"github.com/soocke/quadscan/ui/theme"
	"github.com/soocke/quadscan/ui/view"
)

const (
	tick = 33 * time.Millisecond
)

type app struct {
	config  *config.Config
	logger  *slog.Logger
	width   int
	height  int
	afterID string

	ctx    context.Context
	cancel context.CancelFunc
	c      *AppContainer
}

// NewApp creates the main window and assembles the container. It fails when
// the configured frame source cannot be opened.
func NewApp(title string, width, height int, cfg *config.Config, logger *slog.Logger, cfgPath string) (*app, error) {
	ctx, cancel := context.WithCancel(context.Background())
	c, err := BuildContainer(ctx, cfg, logger, cfgPath)
	if err != nil {
		cancel()
		return nil, err
	}
	a := &app{config: cfg, logger: logger, width: width, height: height, ctx: ctx, cancel: cancel, c: c}

	App.WmTitle(title)
	WmProtocol(App, "WM_DELETE_WINDOW", a.exitHandler)
	WmGeometry(App, fmt.Sprintf("%dx%d+100+100", width, height))
	return a, nil
}

func (a *app) Start() {
	theme.InitStyles()
	c := a.c
	c.RootView.Build(view.Callbacks{
		ToggleCapture: c.CapturePresenter.Toggle,
		Selection:     c.Selection.OpenOrFocus,
		Exit:          a.exitHandler,
		ModeChanged:   c.SetOverlayMode,
		ConfigApplied: c.ApplyConfig,
		Resize:        func(w, h int) { c.Surface.Set(w, h) },
	})
	c.Loop = presenter.NewLoop(c.SessionPresenter, c.StatusPresenter, c.OverlayPresenter, a.scheduleUpdate)

	if a.config.Debug {
		debug.StartGoroutineLogger(a.ctx, 5*time.Second, a.logger)
		debug.StartMemLogger(a.ctx, 5*time.Second, a.logger)
	}
	a.logger.Info("app.start", "source", c.Capture.Source(), "mode", a.config.OverlayMode, "rotation", a.config.SourceRotation)

	a.scheduleUpdate()
	App.Wait()
}

func (a *app) exitHandler() {
	// Cancel scheduled after event if any.
	if a.afterID != "" {
		TclAfterCancel(a.afterID)
		a.afterID = ""
	}
	a.c.CapturePresenter.Disable()
	a.cancel()
	st := a.c.Pipeline.Analyzer.Stats()
	a.logger.Info("app.exit", "analyzed", st.Analyzed, "found", st.Found, "dropped", st.Dropped, "renders", a.c.OverlayPresenter.Renders())
	Destroy(App)
}

func (a *app) scheduleUpdate() {
	// Schedule the next update using TclAfter to stay on Tk's event loop thread.
	a.afterID = TclAfter(tick, func() {
		defer func() {
			if r := recover(); r != nil {
				a.logger.Error("update loop panic", "panic", r)
				a.scheduleUpdate()
			}
		}()
		a.c.Loop.Tick()
	})
}
