package view

import (
	"image"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/soocke/quadscan/config"
	"github.com/soocke/quadscan/ui/theme"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

var overlayModes = []string{config.OverlayPolygon, config.OverlayMarkers}

// foundSuffix matches the state text shown while a quad is tracked.
const foundSuffix = "quad found"

// RootView composes the top-level application layout and wires UI callbacks.
// It owns high-level subviews but exposes minimal exported fields for presenters.
type RootView struct {
	cfg     *config.Config
	cfgPath string
	logger  *slog.Logger

	// Subviews
	Session     SessionStats
	ConfigPanel ConfigPanel
	Preview     OverlayPreview

	// Widgets
	StateLabel *TLabelWidget
	ModeSelect *TComboboxWidget
	previewRow int
}

// UI abstracts the subset of view operations needed by presenters, enabling decoupling
// from the concrete RootView implementation.
type UI interface {
	SetStateLabel(text string)
	SetConfigEditable(enabled bool)
	UpdatePreview(img image.Image)
	SetSession(session, total time.Duration)
	SetDetections(analyzed, found uint64)
	PreviewReset()
	ConfigEditable(bool)
}

func NewRootView(cfg *config.Config, cfgPath string, logger *slog.Logger) *RootView {
	return &RootView{cfg: cfg, cfgPath: cfgPath, logger: logger}
}

// Callbacks bundles the user actions the root view forwards.
type Callbacks struct {
	ToggleCapture func()
	Selection     func()
	Exit          func()
	ModeChanged   func(mode string)
	ConfigApplied func(*config.Config)
	Resize        func(w, h int)
}

// Build constructs the layout. Nil callbacks are replaced with no-ops.
func (rv *RootView) Build(cb Callbacks) {
	if rv == nil {
		return
	}
	noop := func() {}
	if cb.ToggleCapture == nil {
		cb.ToggleCapture = noop
	}
	if cb.Selection == nil {
		cb.Selection = noop
	}
	if cb.Exit == nil {
		cb.Exit = noop
	}
	// Row 0: session stats, state label, buttons frame
	rv.Session = NewSessionStats(nil, 0, 0)
	rv.StateLabel = TLabel(Txt("State: <none>"), Style(theme.StyleStateLabel))
	Grid(rv.StateLabel, Row(0), Column(3), Sticky("we"), Padx("0.4m"), Pady("0.3m"))

	btnFrame := Frame()
	Grid(btnFrame, Row(0), Column(4), Sticky("ne"), Padx("0.3m"), Pady("0.3m"))
	captureBtn := TButton(Txt("Toggle Capture"), Style(theme.StylePrimaryButton), Command(cb.ToggleCapture))
	Grid(captureBtn, In(btnFrame), Row(0), Column(0), Sticky("we"), Padx("0.2m"), Pady("0.2m"))
	rv.ModeSelect = TCombobox(Values(overlayModes), Width(14))
	Grid(rv.ModeSelect, In(btnFrame), Row(1), Column(0), Sticky("we"), Padx("0.2m"), Pady("0.2m"))
	rv.ModeSelect.Current(rv.modeIndex())
	Bind(rv.ModeSelect, "<<ComboboxSelected>>", Command(func() {
		if rv.ModeSelect == nil || cb.ModeChanged == nil {
			return
		}
		idx, err := strconv.Atoi(rv.ModeSelect.Current(nil))
		if err != nil || idx < 0 || idx >= len(overlayModes) {
			if rv.logger != nil {
				rv.logger.Error("overlay mode parse error", "error", err)
			}
			return
		}
		cb.ModeChanged(overlayModes[idx])
	}))
	selectionBtn := Button(Txt("Selection Grid"), Command(cb.Selection))
	Grid(selectionBtn, In(btnFrame), Row(2), Column(0), Sticky("we"), Padx("0.2m"), Pady("0.2m"))
	exitBtn := TButton(Txt("Exit"), Style(theme.StyleDangerButton), Command(cb.Exit))
	Grid(exitBtn, In(btnFrame), Row(3), Column(0), Sticky("we"), Padx("0.2m"), Pady("0.2m"))

	// Config panel rows
	rv.ConfigPanel = NewConfigPanel(rv.cfg, rv.cfgPath, rv.logger, cb.ConfigApplied)
	rv.previewRow = rv.ConfigPanel.Build(1)

	w, h := 640, 360
	if rv.cfg != nil {
		w, h = rv.cfg.PreviewWidth, rv.cfg.PreviewHeight
	}
	rv.Preview = NewOverlayPreview(rv.previewRow, w, h, cb.Resize)
}

func (rv *RootView) modeIndex() int {
	if rv.cfg == nil {
		return 0
	}
	for i, m := range overlayModes {
		if m == rv.cfg.OverlayMode {
			return i
		}
	}
	return 0
}

// SetStateLabel updates the state label text and highlights it while a
// quad is tracked.
func (rv *RootView) SetStateLabel(text string) {
	if rv != nil && rv.StateLabel != nil {
		found := strings.HasSuffix(text, foundSuffix)
		rv.StateLabel.Configure(Txt(text), Style(theme.StateStyle(found)))
	}
}

// SetConfigEditable toggles config panel editability.
func (rv *RootView) SetConfigEditable(enabled bool) {
	if rv != nil && rv.ConfigPanel != nil {
		rv.ConfigPanel.SetEditable(enabled)
	}
}

// UpdatePreview proxies to the overlay preview.
func (rv *RootView) UpdatePreview(img image.Image) {
	if rv != nil && rv.Preview != nil {
		rv.Preview.UpdatePreview(img)
	}
}

// SetSession updates both session and total capture durations.
func (rv *RootView) SetSession(session, total time.Duration) {
	if rv == nil || rv.Session == nil {
		return
	}
	rv.Session.SetSession(session)
	rv.Session.SetTotal(total)
}

// SetDetections updates the found/analyzed counter.
func (rv *RootView) SetDetections(analyzed, found uint64) {
	if rv == nil || rv.Session == nil {
		return
	}
	rv.Session.SetDetections(analyzed, found)
}

// --- CapturePresenter view contract methods ---
// PreviewReset clears the preview surface.
func (rv *RootView) PreviewReset() {
	if rv != nil && rv.Preview != nil {
		rv.Preview.Reset()
	}
}

// ConfigEditable redirects to SetConfigEditable to satisfy CaptureView interface.
func (rv *RootView) ConfigEditable(b bool) { rv.SetConfigEditable(b) }
