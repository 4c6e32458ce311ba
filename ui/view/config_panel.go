package view

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/soocke/quadscan/config"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

// ConfigPanel encapsulates the configuration form widgets and apply logic.
// It owns its widgets and writes back into *config.Config on ApplyChanges.
type ConfigPanel interface {
	Build(startRow int) (endRow int) // constructs widgets starting at startRow, returns next free row
	SetEditable(enabled bool)
	ApplyChanges() // parses widget text into underlying config and persists
}

type configPanel struct {
	cfg       *config.Config
	cfgPath   string
	logger    *slog.Logger
	onApplied func(*config.Config)
	applyBtn  *ButtonWidget
	widgets   map[string]*TextWidget // keyed by config json name
}

// NewConfigPanel creates the view bound to cfg. onApplied, if set, runs
// after a successful apply with the updated config.
func NewConfigPanel(cfg *config.Config, cfgPath string, logger *slog.Logger, onApplied func(*config.Config)) ConfigPanel {
	return &configPanel{cfg: cfg, cfgPath: cfgPath, logger: logger, onApplied: onApplied, widgets: make(map[string]*TextWidget)}
}

func (v *configPanel) Build(startRow int) (row int) {
	c := v.cfg
	row = startRow
	// two label/field pairs per grid row keep the panel short
	col := 0
	makeField := func(id, label, value string) {
		lbl := Label(Txt(label), Anchor("w"))
		Grid(lbl, Row(row), Column(col), Sticky("w"), Padx("0.4m"), Pady("0.15m"))
		w := Text(Height(1), Width(12))
		Grid(w, Row(row), Column(col+1), Sticky("we"), Padx("0.4m"), Pady("0.15m"))
		w.Delete("1.0", END)
		w.Insert("1.0", value)
		v.widgets[id] = w
		if col == 0 {
			col = 2
			return
		}
		col = 0
		row++
	}
	makeField("max_detect_dim", "Max Detect Dim", fmt.Sprintf("%d", c.MaxDetectDim))
	makeField("capture_interval_ms", "Capture Interval ms", fmt.Sprintf("%d", c.CaptureIntervalMs))
	makeField("canny_low", "Edge Low", fmt.Sprintf("%d", c.CannyLow))
	makeField("canny_high", "Edge High", fmt.Sprintf("%d", c.CannyHigh))
	makeField("blur_radius", "Blur Radius", fmt.Sprintf("%.2f", c.BlurRadius))
	makeField("min_area_ratio", "Min Area Ratio", fmt.Sprintf("%.3f", c.MinAreaRatio))
	makeField("approx_epsilon", "Approx Epsilon", fmt.Sprintf("%.3f", c.ApproxEpsilon))
	makeField("source_rotation", "Rotation (0/90/180/270)", fmt.Sprintf("%d", c.SourceRotation))
	makeField("stroke_color", "Stroke Color", c.StrokeColor)
	makeField("stroke_width", "Stroke Width", fmt.Sprintf("%.1f", c.StrokeWidth))
	makeField("overlay_zoom", "Overlay Zoom", fmt.Sprintf("%.2f", c.OverlayZoom))
	makeField("marker_color", "Marker Color", c.MarkerColor)
	makeField("marker_radius", "Marker Radius", fmt.Sprintf("%.1f", c.MarkerRadius))
	makeField("marker_anim_ms", "Marker Anim ms", fmt.Sprintf("%d", c.MarkerAnimMs))
	if col != 0 {
		row++
	}
	v.applyBtn = Button(Txt("Apply Changes"), Command(func() { v.ApplyChanges() }))
	Grid(v.applyBtn, Row(row), Column(0), Columnspan(4), Sticky("we"), Padx("0.4m"), Pady("0.3m"))
	row++
	return row
}

func (v *configPanel) SetEditable(enabled bool) {
	state := "disabled"
	if enabled {
		state = "normal"
	}
	for _, w := range v.widgets {
		if w != nil {
			w.Configure(State(state))
		}
	}
	if v.applyBtn != nil {
		v.applyBtn.Configure(State(state))
	}
}

func (v *configPanel) text(id string) (string, bool) {
	w := v.widgets[id]
	if w == nil {
		return "", false
	}
	s := strings.TrimSpace(strings.Join(w.Get("1.0", END), ""))
	return s, s != ""
}

func (v *configPanel) ApplyChanges() {
	if v.cfg == nil {
		return
	}
	cfg := *v.cfg // copy
	assignFloat := func(id string, dst *float64) {
		if s, ok := v.text(id); ok {
			if f, ok := parseFloatField(s); ok {
				*dst = f
			}
		}
	}
	assignInt := func(id string, dst *int) {
		if s, ok := v.text(id); ok {
			if i, ok := parseIntField(s); ok {
				*dst = i
			}
		}
	}
	assignString := func(id string, dst *string) {
		if s, ok := v.text(id); ok {
			*dst = s
		}
	}
	assignInt("max_detect_dim", &cfg.MaxDetectDim)
	assignInt("capture_interval_ms", &cfg.CaptureIntervalMs)
	assignInt("canny_low", &cfg.CannyLow)
	assignInt("canny_high", &cfg.CannyHigh)
	assignFloat("blur_radius", &cfg.BlurRadius)
	assignFloat("min_area_ratio", &cfg.MinAreaRatio)
	assignFloat("approx_epsilon", &cfg.ApproxEpsilon)
	assignInt("source_rotation", &cfg.SourceRotation)
	assignString("stroke_color", &cfg.StrokeColor)
	assignFloat("stroke_width", &cfg.StrokeWidth)
	assignFloat("overlay_zoom", &cfg.OverlayZoom)
	assignString("marker_color", &cfg.MarkerColor)
	assignFloat("marker_radius", &cfg.MarkerRadius)
	assignInt("marker_anim_ms", &cfg.MarkerAnimMs)
	if err := cfg.Validate(); err != nil && v.logger != nil {
		// invalid colors were reset to defaults; keep going
		v.logger.Warn("config validate", "error", err)
	}
	*v.cfg = cfg
	if err := v.cfg.Save(v.cfgPath); err != nil {
		if v.logger != nil {
			v.logger.Error("config save failed", "error", err)
		}
	} else if v.logger != nil {
		v.logger.Info("config saved", "path", v.cfgPath)
	}
	if v.onApplied != nil {
		v.onApplied(v.cfg)
	}
}

// parsing helpers (unexported)
func parseFloatField(s string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func parseIntField(s string) (int, bool) {
	i, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, false
	}
	return i, true
}
