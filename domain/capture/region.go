package capture

import (
	"image"
	"regexp"
	"strconv"
	"strings"

	"github.com/vova616/screenshot"
)

// fallbackScreen is used when the display cannot be queried.
var fallbackScreen = image.Rect(0, 0, 1920, 1080)

// ScreenBounds returns the primary display rectangle.
func ScreenBounds() image.Rectangle {
	if b, err := screenshot.ScreenRect(); err == nil && !b.Empty() {
		return b
	}
	return fallbackScreen
}

var geometryRe = regexp.MustCompile(`^(\d+)x(\d+)([+-]-?\d+)([+-]-?\d+)$`)

// ParseGeometry reads a window manager geometry string "WxH+X+Y" into the
// rectangle it covers. Negative offsets are kept as given.
func ParseGeometry(g string) (image.Rectangle, bool) {
	m := geometryRe.FindStringSubmatch(strings.TrimSpace(g))
	if m == nil {
		return image.Rectangle{}, false
	}
	w, _ := strconv.Atoi(m[1])
	h, _ := strconv.Atoi(m[2])
	x, errX := offset(m[3])
	y, errY := offset(m[4])
	if w <= 0 || h <= 0 || errX != nil || errY != nil {
		return image.Rectangle{}, false
	}
	return image.Rect(x, y, x+w, y+h), true
}

// offset parses "+N", "-N" and "+-N".
func offset(s string) (int, error) {
	s = strings.TrimPrefix(s, "+")
	return strconv.Atoi(s)
}

// ClampRegion limits r to screen. The result is empty when they do not
// overlap.
func ClampRegion(r, screen image.Rectangle) image.Rectangle {
	return r.Canon().Intersect(screen)
}
