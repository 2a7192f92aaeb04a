package trellis

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif" // register decoders for SetBackgroundImage
	_ "image/jpeg"
	_ "image/png"
	"io"

	"github.com/hajimehoshi/ebiten/v2"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// Background resize defaults, in pixels of the longest side.
const (
	DefaultBackgroundMaxSize = 4096
	DefaultBackgroundMinSize = 480
)

// ErrNoCanvas is returned when a background operation targets a nil or
// disposed canvas.
var ErrNoCanvas = errors.New("trellis: no canvas available")

// ImageSizeError reports an image too small to use as a background.
type ImageSizeError struct {
	Width, Height int
	MinSize       int
}

func (e *ImageSizeError) Error() string {
	return fmt.Sprintf("image is %dx%d pixels; the longest side must be at least %d pixels",
		e.Width, e.Height, e.MinSize)
}

// BackgroundOptions configures SetBackgroundImage. Zero fields take the
// package defaults.
type BackgroundOptions struct {
	MaxSize int
	MinSize int
}

func (o BackgroundOptions) withDefaults() BackgroundOptions {
	if o.MaxSize <= 0 {
		o.MaxSize = DefaultBackgroundMaxSize
	}
	if o.MinSize <= 0 {
		o.MinSize = DefaultBackgroundMinSize
	}
	return o
}

// backgroundImage is the decoded background plus its GPU copy, which is
// created on first draw.
type backgroundImage struct {
	src     image.Image
	img     *ebiten.Image
	filters BackgroundFilters
	// dataURL caches the encoded src for documents. src never changes
	// after creation; a new image gets a new backgroundImage.
	dataURL string
}

// encoded returns src as a PNG data URL, encoding it on first use.
func (b *backgroundImage) encoded() (string, error) {
	if b.dataURL != "" {
		return b.dataURL, nil
	}
	u, err := encodeDataURL(b.src)
	if err != nil {
		return "", err
	}
	b.dataURL = u
	return u, nil
}

func (b *backgroundImage) ebitenImage() *ebiten.Image {
	if b.img == nil {
		b.img = ebiten.NewImageFromImage(b.src)
	}
	return b.img
}

func (b *backgroundImage) size() (int, int) {
	r := b.src.Bounds()
	return r.Dx(), r.Dy()
}

// SetBackgroundImage decodes a PNG, JPEG, GIF, WebP or BMP image from r and
// places it behind every object with its top-left at the scene origin.
// Images whose longest side is under MinSize are rejected with an
// *ImageSizeError; images over MaxSize are downscaled keeping their aspect
// ratio. Existing filters are kept.
func (c *Canvas) SetBackgroundImage(ctx context.Context, r io.Reader, opts BackgroundOptions) error {
	if c == nil || c.disposed {
		return ErrNoCanvas
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	opts = opts.withDefaults()
	src, format, err := image.Decode(r)
	if err != nil {
		return fmt.Errorf("decode background image: %w", err)
	}
	b := src.Bounds()
	if max(b.Dx(), b.Dy()) < opts.MinSize {
		return &ImageSizeError{Width: b.Dx(), Height: b.Dy(), MinSize: opts.MinSize}
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if max(b.Dx(), b.Dy()) > opts.MaxSize {
		src = ResizeImage(src, opts.MaxSize)
		nb := src.Bounds()
		Logger().Debug("background downscaled",
			"format", format, "from", fmt.Sprintf("%dx%d", b.Dx(), b.Dy()),
			"to", fmt.Sprintf("%dx%d", nb.Dx(), nb.Dy()))
	}
	c.setBackground(src)
	return nil
}

// setBackground replaces the background image, keeping the filters.
func (c *Canvas) setBackground(src image.Image) {
	var filters BackgroundFilters
	if c.background != nil {
		filters = c.background.filters
		if c.background.img != nil {
			c.background.img.Deallocate()
		}
	}
	c.background = &backgroundImage{src: src, filters: filters}
}

// ResizeImage scales img down so its longest side is maxSize, keeping the
// aspect ratio, using Catmull-Rom resampling. Images already within
// maxSize are returned unchanged.
func ResizeImage(img image.Image, maxSize int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	longest := max(w, h)
	if longest <= maxSize || maxSize <= 0 {
		return img
	}
	scale := float64(maxSize) / float64(longest)
	nw := max(1, int(float64(w)*scale+0.5))
	nh := max(1, int(float64(h)*scale+0.5))
	dst := image.NewNRGBA(image.Rect(0, 0, nw, nh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

// HasBackgroundImage reports whether a background image is set.
func (c *Canvas) HasBackgroundImage() bool {
	return c.background != nil
}

// BackgroundImage returns the decoded background image, or nil.
func (c *Canvas) BackgroundImage() image.Image {
	if c.background == nil {
		return nil
	}
	return c.background.src
}

// BackgroundImageSize returns the background size in pixels, or zeros.
func (c *Canvas) BackgroundImageSize() (width, height int) {
	if c.background == nil {
		return 0, 0
	}
	return c.background.size()
}

// RemoveBackgroundImage removes the background image and its filters.
func (c *Canvas) RemoveBackgroundImage() {
	if c.background == nil {
		return
	}
	if c.background.img != nil {
		c.background.img.Deallocate()
	}
	c.background = nil
}

// SetBackgroundFilters sets the background contrast and inversion. It does
// nothing when there is no background image.
func (c *Canvas) SetBackgroundFilters(f BackgroundFilters) {
	if c.background == nil {
		return
	}
	c.background.filters = f
}

// BackgroundFilters returns the background filters and whether a
// background image is set.
func (c *Canvas) BackgroundFilters() (BackgroundFilters, bool) {
	if c.background == nil {
		return BackgroundFilters{}, false
	}
	return c.background.filters, true
}

// SetLockLightMode sets the persisted flag asking hosts to keep the light
// theme for this scene.
func (c *Canvas) SetLockLightMode(locked bool) {
	c.LockLightMode = locked
}
