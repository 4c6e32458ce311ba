package capture

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/ftrvxmtrx/tga"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

// ErrNoFrames is returned when a replay directory contains no decodable images.
var ErrNoFrames = errors.New("capture: no image files in directory")

// ErrUnsupportedFormat is returned by LoadRGBA for extensions without a decoder.
var ErrUnsupportedFormat = errors.New("capture: unsupported image format")

// decoders is keyed by lower-case extension. tga registers itself with an
// empty magic that matches any input, so image.Decode cannot be used.
var decoders = map[string]func(io.Reader) (image.Image, error){
	".png":  png.Decode,
	".jpg":  jpeg.Decode,
	".jpeg": jpeg.Decode,
	".gif":  gif.Decode,
	".bmp":  bmp.Decode,
	".tif":  tiff.Decode,
	".tiff": tiff.Decode,
	".tga":  tga.Decode,
}

// DefaultCacheFrames bounds how many decoded frames a DirGrabber keeps.
const DefaultCacheFrames = 32

// DirGrabber replays the images of a directory in name order, looping
// forever. The most recently decoded frames are cached; callers must treat
// them as read-only.
type DirGrabber struct {
	paths []string

	mu    sync.Mutex
	next  int
	cache *lru.Cache[string, *image.RGBA]
}

// NewDirGrabber lists dir for supported image files, caching up to
// DefaultCacheFrames decoded frames.
func NewDirGrabber(dir string) (*DirGrabber, error) {
	return NewDirGrabberCache(dir, DefaultCacheFrames)
}

// NewDirGrabberCache is NewDirGrabber with an explicit cache bound. A bound
// below 1 is treated as 1.
func NewDirGrabberCache(dir string, frames int) (*DirGrabber, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("capture: read dir %s: %w", dir, err)
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() || !supported(filepath.Ext(e.Name())) {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoFrames, dir)
	}
	sort.Strings(paths)
	cache, err := lru.New[string, *image.RGBA](max(frames, 1))
	if err != nil {
		return nil, fmt.Errorf("capture: frame cache: %w", err)
	}
	return &DirGrabber{paths: paths, cache: cache}, nil
}

func supported(ext string) bool {
	_, ok := decoders[strings.ToLower(ext)]
	return ok
}

// Len returns the number of replayable files.
func (g *DirGrabber) Len() int { return len(g.paths) }

// Paths returns the replay order.
func (g *DirGrabber) Paths() []string { return append([]string(nil), g.paths...) }

// Grab implements Grabber. A file that fails to decode is reported and
// skipped on the next call.
func (g *DirGrabber) Grab() (*image.RGBA, string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	path := g.paths[g.next]
	g.next = (g.next + 1) % len(g.paths)
	if img, ok := g.cache.Get(path); ok {
		return img, filepath.Base(path), nil
	}
	img, err := LoadRGBA(path)
	if err != nil {
		return nil, "", err
	}
	g.cache.Add(path, img)
	return img, filepath.Base(path), nil
}

// Cached reports how many decoded frames are held.
func (g *DirGrabber) Cached() int { return g.cache.Len() }

// LoadRGBA decodes an image file, picking the decoder by extension, into an
// RGBA with its origin at (0,0).
func LoadRGBA(path string) (*image.RGBA, error) {
	decode, ok := decoders[strings.ToLower(filepath.Ext(path))]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("capture: open %s: %w", path, err)
	}
	defer f.Close()
	src, err := decode(f)
	if err != nil {
		return nil, fmt.Errorf("capture: decode %s: %w", path, err)
	}
	return ToRGBA(src), nil
}

// ToRGBA converts img to an origin-anchored RGBA, returning it unchanged if
// it already is one.
func ToRGBA(img image.Image) *image.RGBA {
	if r, ok := img.(*image.RGBA); ok && r.Rect.Min == (image.Point{}) {
		return r
	}
	b := img.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), img, b.Min, draw.Src)
	return out
}
