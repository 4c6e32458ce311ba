package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/color"
	"os"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// ErrInvalidColor is returned when a hex color field cannot be parsed.
var ErrInvalidColor = errors.New("config: invalid color")

// Frame source kinds.
const (
	SourceScreen = "screen"
	SourceDir    = "dir"
)

// Overlay modes. Polygon draws each frame's quad directly; markers animate
// one circle per corner between frames.
const (
	OverlayPolygon = "polygon"
	OverlayMarkers = "markers"
)

// Config holds runtime configuration for capture, detection and overlay rendering.
// Fields may be loaded from a JSON file and overridden by command-line flags.
type Config struct {
	Debug bool `json:"debug"`

	// Frame source
	Source            string `json:"source"`
	SourceDir         string `json:"source_dir"`
	SourceRotation    int    `json:"source_rotation"`
	CaptureIntervalMs int    `json:"capture_interval_ms"`

	// Selection rectangle persistence (screen source only)
	SelectionX int `json:"selection_x"`
	SelectionY int `json:"selection_y"`
	SelectionW int `json:"selection_w"`
	SelectionH int `json:"selection_h"`

	// Detection parameters
	MaxDetectDim  int     `json:"max_detect_dim"`
	BlurRadius    float64 `json:"blur_radius"`
	CannyLow      int     `json:"canny_low"`
	CannyHigh     int     `json:"canny_high"`
	MinAreaRatio  float64 `json:"min_area_ratio"`
	ApproxEpsilon float64 `json:"approx_epsilon"`

	// Overlay
	OverlayMode  string  `json:"overlay_mode"`
	StrokeColor  string  `json:"stroke_color"`
	StrokeWidth  float64 `json:"stroke_width"`
	OverlayZoom  float64 `json:"overlay_zoom"`
	MarkerColor  string  `json:"marker_color"`
	MarkerRadius float64 `json:"marker_radius"`
	MarkerAnimMs int     `json:"marker_anim_ms"`

	// Preview surface
	PreviewWidth  int `json:"preview_width"`
	PreviewHeight int `json:"preview_height"`
}

// DefaultConfig returns a Config populated with standard defaults.
func DefaultConfig() *Config {
	return &Config{
		Debug:             false,
		Source:            SourceScreen,
		SourceDir:         "",
		SourceRotation:    0,
		CaptureIntervalMs: 33,
		MaxDetectDim:      300,
		BlurRadius:        1.0,
		CannyLow:          50,
		CannyHigh:         150,
		MinAreaRatio:      0.10,
		ApproxEpsilon:     0.02,
		OverlayMode:       OverlayPolygon,
		StrokeColor:       "#ff0000",
		StrokeWidth:       8,
		OverlayZoom:       1.05,
		MarkerColor:       "#00ff00",
		MarkerRadius:      10,
		MarkerAnimMs:      300,
		PreviewWidth:      640,
		PreviewHeight:     480,
	}
}

// Validate clamps/normalizes values to safe ranges. It only fails on colors
// that cannot be parsed; those are reset to defaults before returning.
func (c *Config) Validate() error {
	def := DefaultConfig()
	if c.Source != SourceScreen && c.Source != SourceDir {
		c.Source = SourceScreen
	}
	switch c.SourceRotation {
	case 0, 90, 180, 270:
	default:
		c.SourceRotation = ((c.SourceRotation%360 + 360) % 360) / 90 * 90
	}
	if c.CaptureIntervalMs <= 0 {
		c.CaptureIntervalMs = def.CaptureIntervalMs
	}
	if c.MaxDetectDim < 32 {
		c.MaxDetectDim = def.MaxDetectDim
	}
	if c.BlurRadius < 0 {
		c.BlurRadius = def.BlurRadius
	}
	if c.CannyLow < 1 || c.CannyLow > 255 {
		c.CannyLow = def.CannyLow
	}
	if c.CannyHigh < c.CannyLow || c.CannyHigh > 255 {
		c.CannyHigh = c.CannyLow * 3
		if c.CannyHigh > 255 {
			c.CannyHigh = 255
		}
	}
	if c.MinAreaRatio <= 0 || c.MinAreaRatio >= 1 {
		c.MinAreaRatio = def.MinAreaRatio
	}
	if c.ApproxEpsilon <= 0 || c.ApproxEpsilon > 0.2 {
		c.ApproxEpsilon = def.ApproxEpsilon
	}
	if c.OverlayMode != OverlayPolygon && c.OverlayMode != OverlayMarkers {
		c.OverlayMode = OverlayPolygon
	}
	if c.StrokeWidth <= 0 {
		c.StrokeWidth = def.StrokeWidth
	}
	if c.OverlayZoom < 1 || c.OverlayZoom > 2 {
		c.OverlayZoom = def.OverlayZoom
	}
	if c.MarkerRadius <= 0 {
		c.MarkerRadius = def.MarkerRadius
	}
	if c.MarkerAnimMs < 0 {
		c.MarkerAnimMs = def.MarkerAnimMs
	}
	if c.PreviewWidth < 50 {
		c.PreviewWidth = 50
	}
	if c.PreviewHeight < 50 {
		c.PreviewHeight = 50
	}

	var errs []error
	if _, err := ParseColor(c.StrokeColor); err != nil {
		c.StrokeColor = def.StrokeColor
		errs = append(errs, err)
	}
	if _, err := ParseColor(c.MarkerColor); err != nil {
		c.MarkerColor = def.MarkerColor
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Stroke returns the parsed polygon stroke color.
func (c *Config) Stroke() color.RGBA {
	col, err := ParseColor(c.StrokeColor)
	if err != nil {
		col, _ = ParseColor(DefaultConfig().StrokeColor)
	}
	return col
}

// Marker returns the parsed marker border color.
func (c *Config) Marker() color.RGBA {
	col, err := ParseColor(c.MarkerColor)
	if err != nil {
		col, _ = ParseColor(DefaultConfig().MarkerColor)
	}
	return col
}

// ParseColor parses a "#rrggbb" (or "#rgb") string into an opaque RGBA color.
func ParseColor(s string) (color.RGBA, error) {
	c, err := colorful.Hex(s)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("%w %q: %v", ErrInvalidColor, s, err)
	}
	r, g, b := c.Clamped().RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 0xff}, nil
}

// Selection returns the persisted capture rectangle, empty when none is set.
func (c *Config) Selection() image.Rectangle {
	if c == nil || c.SelectionW <= 0 || c.SelectionH <= 0 {
		return image.Rectangle{}
	}
	return image.Rect(c.SelectionX, c.SelectionY, c.SelectionX+c.SelectionW, c.SelectionY+c.SelectionH)
}

// SetSelection records r. An empty r clears the selection.
func (c *Config) SetSelection(r image.Rectangle) {
	if c == nil {
		return
	}
	r = r.Canon()
	if r.Empty() {
		c.SelectionX, c.SelectionY, c.SelectionW, c.SelectionH = 0, 0, 0, 0
		return
	}
	c.SelectionX, c.SelectionY = r.Min.X, r.Min.Y
	c.SelectionW, c.SelectionH = r.Dx(), r.Dy()
}

// Load attempts to read configuration from the given JSON file path. If the file does not
// exist it returns DefaultConfig(). On JSON error it returns defaults with the error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}
	defer f.Close()
	dec := json.NewDecoder(f)
	if err := dec.Decode(cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("config: decode %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Save writes the configuration to the given path in JSON format.
func (c *Config) Save(path string) error {
	_ = c.Validate()
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(c)
}
