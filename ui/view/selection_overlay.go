package view

import (
	"fmt"
	"image"
	"log/slog"
	"runtime"
	"sync/atomic"

	"github.com/soocke/quadscan/config"
	"github.com/soocke/quadscan/domain/capture"
	"github.com/soocke/quadscan/ui/theme"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders
	. "modernc.org/tk9.0"
)

// SelectionOverlay is a translucent window the user drags over the screen to
// restrict screen capture. The confirmed rectangle is persisted to the config
// and read by the screen grabber on every frame.
type SelectionOverlay interface {
	OpenOrFocus()
	Clear()
	ActiveRect() *image.Rectangle
}

type selectionOverlay struct {
	logger  *slog.Logger
	cfg     *config.Config
	cfgPath string
	rect    atomic.Pointer[image.Rectangle]
	win     *ToplevelWidget
}

// NewSelectionOverlay restores any selection saved in cfg.
func NewSelectionOverlay(cfg *config.Config, cfgPath string, logger *slog.Logger) SelectionOverlay {
	v := &selectionOverlay{logger: logger, cfg: cfg, cfgPath: cfgPath}
	if r := cfg.Selection(); !r.Empty() {
		v.rect.Store(&r)
	}
	return v
}

// ActiveRect returns the confirmed region or nil for the full screen.
func (v *selectionOverlay) ActiveRect() *image.Rectangle {
	r := v.rect.Load()
	if r == nil || r.Empty() {
		return nil
	}
	out := *r
	return &out
}

func (v *selectionOverlay) OpenOrFocus() {
	if v.win != nil {
		v.win.Raise(nil)
		return
	}
	screen := capture.ScreenBounds()
	initial := v.initialRegion(screen)

	win := App.Toplevel(Borderwidth(2), Background(theme.SelectionFill))
	win.WmTitle("Capture Region")
	v.win = win
	WmGeometry(win.Window, fmt.Sprintf("%dx%d+%d+%d", initial.Dx(), initial.Dy(), initial.Min.X, initial.Min.Y))
	WmAttributes(win.Window, "-topmost", 1)
	if runtime.GOOS == "windows" {
		WmAttributes(win.Window, "-transparentcolor", theme.SelectionFill)
	} else {
		WmAttributes(win.Window, "-alpha", 0.35)
	}
	v.layout(win)
	Bind(win, "<Return>", Command(v.confirm))
	Bind(win, "<Escape>", Command(v.close))
}

// initialRegion reopens on the saved region, or centers a window covering
// part of the screen.
func (v *selectionOverlay) initialRegion(screen image.Rectangle) image.Rectangle {
	if r := v.ActiveRect(); r != nil {
		return *r
	}
	w, h := max(screen.Dx()*2/3, 1), max(screen.Dy()*5/9, 1)
	x := screen.Min.X + (screen.Dx()-w)/2
	y := screen.Min.Y + (screen.Dy()-h)/2
	return image.Rect(x, y, x+w, y+h)
}

func (v *selectionOverlay) layout(win *ToplevelWidget) {
	GridRowConfigure(win.Window, 0, Weight(1))
	GridColumnConfigure(win.Window, 1, Weight(1))
	for _, col := range []int{0, 2} {
		edge := win.Frame(Width(4), Background(theme.SelectionEdge))
		Grid(edge, Row(0), Column(col), Sticky("ns"))
	}
	body := win.Frame(Background(theme.SelectionFill))
	Grid(body, Row(0), Column(1), Sticky("nsew"))

	controls := win.Frame()
	Grid(controls, Row(1), Column(0), Columnspan(3), Sticky("we"))
	buttons := []struct {
		label string
		cmd   func()
	}{
		{"Confirm [Enter]", v.confirm},
		{"Cancel [Esc]", v.close},
		{"Full Screen", v.clearAndClose},
	}
	for i, b := range buttons {
		btn := win.Button(Txt(b.label), Command(b.cmd))
		Grid(btn, In(controls), Row(0), Column(i), Sticky("we"), Padx("0.2m"), Pady("0.2m"))
	}
}

// Clear drops the region so capture covers the whole screen again.
func (v *selectionOverlay) Clear() {
	v.rect.Store(nil)
	v.persist(image.Rectangle{})
	if v.logger != nil {
		v.logger.Info("capture region cleared")
	}
}

func (v *selectionOverlay) clearAndClose() {
	v.Clear()
	v.close()
}

func (v *selectionOverlay) confirm() {
	if v.win == nil {
		return
	}
	geom := WmGeometry(v.win.Window)
	r, ok := capture.ParseGeometry(geom)
	if !ok {
		if v.logger != nil {
			v.logger.Warn("capture region unreadable", "geometry", geom)
		}
		v.close()
		return
	}
	r = capture.ClampRegion(r, capture.ScreenBounds())
	if r.Empty() {
		v.Clear()
	} else {
		v.rect.Store(&r)
		v.persist(r)
		if v.logger != nil {
			v.logger.Info("capture region set", "rect", r.String())
		}
	}
	v.close()
}

func (v *selectionOverlay) persist(r image.Rectangle) {
	if v.cfg == nil {
		return
	}
	v.cfg.SetSelection(r)
	if err := v.cfg.Save(v.cfgPath); err != nil && v.logger != nil {
		v.logger.Warn("capture region save failed", "error", err)
	}
}

func (v *selectionOverlay) close() {
	if v.win != nil {
		Destroy(v.win)
		v.win = nil
	}
}
