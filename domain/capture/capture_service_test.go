package capture

import (
	"errors"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/disintegration/imaging"
	"github.com/ftrvxmtrx/tga"

	"github.com/soocke/quadscan/domain/geometry"
)

type fakeGrabber struct {
	calls atomic.Int32
	fail  atomic.Bool
}

func (g *fakeGrabber) Grab() (*image.RGBA, string, error) {
	g.calls.Add(1)
	if g.fail.Load() {
		return nil, "", errors.New("boom")
	}
	return image.NewRGBA(image.Rect(0, 0, 40, 30)), "fake", nil
}

func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("timeout waiting for %s", msg)
}

func TestCaptureService_PublishesFrames(t *testing.T) {
	g := &fakeGrabber{}
	svc := NewCaptureService(nil, g, time.Millisecond)
	svc.SetRotation(geometry.Rotate90)

	var mu sync.Mutex
	var handled []uint64
	svc.SetFrameHandler(func(f FrameSnapshot) {
		mu.Lock()
		handled = append(handled, f.Sequence)
		mu.Unlock()
	})

	svc.Start()
	defer svc.Stop()
	if !svc.Running() {
		t.Fatalf("expected running after Start")
	}
	if svc.SessionID() == "" {
		t.Fatalf("expected session id")
	}
	waitFor(t, func() bool { return svc.LatestFrame().Sequence >= 3 }, "three frames")

	snap := svc.LatestFrame()
	if snap.Width != 40 || snap.Height != 30 || snap.Rotation != geometry.Rotate90 || snap.Origin != "fake" {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
	if f := snap.Frame(); f.Width != 30 || f.Height != 40 {
		t.Fatalf("rotated frame should swap axes, got %+v", f)
	}
	mu.Lock()
	n := len(handled)
	mu.Unlock()
	if n == 0 {
		t.Fatalf("frame handler never called")
	}
	if st := svc.Stats(); st.Captures == 0 || st.SessionID != svc.SessionID() {
		t.Fatalf("unexpected stats %+v", st)
	}
}

func TestCaptureService_StopHaltsLoop(t *testing.T) {
	g := &fakeGrabber{}
	svc := NewCaptureService(nil, g, time.Millisecond)
	svc.Start()
	waitFor(t, func() bool { return g.calls.Load() > 0 }, "first grab")
	svc.Stop()
	if svc.Running() {
		t.Fatalf("expected stopped")
	}
	calls := g.calls.Load()
	time.Sleep(20 * time.Millisecond)
	if g.calls.Load() != calls {
		t.Fatalf("grabber called after Stop")
	}
	svc.Stop() // idempotent
}

func TestCaptureService_CountsFailures(t *testing.T) {
	g := &fakeGrabber{}
	g.fail.Store(true)
	svc := NewCaptureService(nil, g, time.Millisecond)
	svc.Start()
	defer svc.Stop()
	waitFor(t, func() bool { return svc.Stats().Skipped >= 2 }, "skipped frames")
	if !svc.LatestFrame().Empty() {
		t.Fatalf("failed grabs should not publish frames")
	}
}

func TestDirGrabber_CyclesInNameOrder(t *testing.T) {
	dir := t.TempDir()
	for i, name := range []string{"b.png", "a.png"} {
		img := imaging.New(10+i*10, 5, color.White)
		if err := imaging.Save(img, filepath.Join(dir, name)); err != nil {
			t.Fatalf("save: %v", err)
		}
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	g, err := NewDirGrabber(dir)
	if err != nil {
		t.Fatalf("NewDirGrabber: %v", err)
	}
	if g.Len() != 2 {
		t.Fatalf("expected 2 images, got %d", g.Len())
	}
	want := []struct {
		name  string
		width int
	}{{"a.png", 20}, {"b.png", 10}, {"a.png", 20}}
	for _, w := range want {
		img, origin, err := g.Grab()
		if err != nil {
			t.Fatalf("grab: %v", err)
		}
		if origin != w.name || img.Bounds().Dx() != w.width {
			t.Fatalf("expected %s (w=%d), got %s (w=%d)", w.name, w.width, origin, img.Bounds().Dx())
		}
	}
}

func TestDirGrabber_EmptyDir(t *testing.T) {
	if _, err := NewDirGrabber(t.TempDir()); !errors.Is(err, ErrNoFrames) {
		t.Fatalf("expected ErrNoFrames, got %v", err)
	}
}

func TestCaptureService_SetIntervalDefaults(t *testing.T) {
	s := newCaptureService(nil, &fakeGrabber{}, 0)
	if got := time.Duration(s.interval.Load()); got != defaultInterval {
		t.Fatalf("expected default interval, got %v", got)
	}
	s.SetInterval(10 * time.Millisecond)
	if got := time.Duration(s.interval.Load()); got != 10*time.Millisecond {
		t.Fatalf("expected 10ms, got %v", got)
	}
}

func saveTGA(t *testing.T, path string, img image.Image) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer f.Close()
	if err := tga.Encode(f, img); err != nil {
		t.Fatalf("tga encode: %v", err)
	}
}

func TestLoadRGBA_DecodesByExtension(t *testing.T) {
	dir := t.TempDir()
	img := imaging.New(12, 7, color.NRGBA{R: 200, G: 10, B: 10, A: 255})
	for _, name := range []string{"f.png", "f.jpg", "f.bmp", "f.tif"} {
		if err := imaging.Save(img, filepath.Join(dir, name)); err != nil {
			t.Fatalf("save %s: %v", name, err)
		}
	}
	saveTGA(t, filepath.Join(dir, "f.tga"), img)

	for _, name := range []string{"f.png", "f.jpg", "f.bmp", "f.tif", "f.tga"} {
		got, err := LoadRGBA(filepath.Join(dir, name))
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if b := got.Bounds(); b.Min != (image.Point{}) || b.Dx() != 12 || b.Dy() != 7 {
			t.Fatalf("%s: unexpected bounds %v", name, b)
		}
		if c := got.RGBAAt(5, 3); c.R < 150 || c.G > 60 {
			t.Fatalf("%s: unexpected pixel %v", name, c)
		}
	}
	if _, err := LoadRGBA(filepath.Join(dir, "f.webp")); !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestDirGrabber_BoundsCache(t *testing.T) {
	dir := t.TempDir()
	img := imaging.New(4, 4, color.White)
	for _, name := range []string{"a.png", "b.jpg", "c.tga"} {
		path := filepath.Join(dir, name)
		if filepath.Ext(name) == ".tga" {
			saveTGA(t, path, img)
			continue
		}
		if err := imaging.Save(img, path); err != nil {
			t.Fatalf("save: %v", err)
		}
	}
	g, err := NewDirGrabberCache(dir, 2)
	if err != nil {
		t.Fatalf("NewDirGrabberCache: %v", err)
	}
	for i := 0; i < 6; i++ {
		if _, _, err := g.Grab(); err != nil {
			t.Fatalf("grab %d: %v", i, err)
		}
	}
	if n := g.Cached(); n != 2 {
		t.Fatalf("expected 2 cached frames, got %d", n)
	}
}

func TestParseGeometry(t *testing.T) {
	cases := []struct {
		in   string
		want image.Rectangle
		ok   bool
	}{
		{"800x600+10+20", image.Rect(10, 20, 810, 620), true},
		{" 100x50+-5+-7 ", image.Rect(-5, -7, 95, 43), true},
		{"100x50-5-7", image.Rect(-5, -7, 95, 43), true},
		{"0x50+0+0", image.Rectangle{}, false},
		{"100x50", image.Rectangle{}, false},
		{"garbage", image.Rectangle{}, false},
	}
	for _, c := range cases {
		got, ok := ParseGeometry(c.in)
		if ok != c.ok || got != c.want {
			t.Fatalf("ParseGeometry(%q) = %v,%v; want %v,%v", c.in, got, ok, c.want, c.ok)
		}
	}
}

func TestClampRegion(t *testing.T) {
	screen := image.Rect(0, 0, 1920, 1080)
	if got := ClampRegion(image.Rect(-10, 100, 500, 1200), screen); got != image.Rect(0, 100, 500, 1080) {
		t.Fatalf("unexpected clamp %v", got)
	}
	if got := ClampRegion(image.Rect(2000, 0, 2100, 10), screen); !got.Empty() {
		t.Fatalf("expected empty region off screen, got %v", got)
	}
}
