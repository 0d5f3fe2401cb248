package imaging

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"path/filepath"
	"strings"

	// Decoders registered for image.Decode.
	_ "image/gif"
	_ "image/png"

	"github.com/gabriel-vasile/mimetype"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"webshop/internal/infrastructure/metrics"
	"webshop/pkg/errors"
	"webshop/pkg/logger"
)

const (
	DefaultMaxDimension = 1280
	DefaultHardCap      = 10 * 1024 * 1024
	DefaultStartQuality = 85
	DefaultQualityFloor = 10
	DefaultQualityStep  = 10
	DefaultMaxPixels    = 50_000_000
)

// ImageFile is a photo as selected by the user.
type ImageFile struct {
	Name        string
	ContentType string
	Data        []byte
}

func (f ImageFile) Size() int64 {
	return int64(len(f.Data))
}

// Compressed is the outcome of a compression run. WithinBudget is false when
// the quality floor was reached first and the best effort was accepted.
type Compressed struct {
	ImageFile
	Quality      int
	Steps        int
	Width        int
	Height       int
	WithinBudget bool
}

type Compressor struct {
	maxDimension int
	hardCap      int64
	startQuality int
	floor        int
	step         int
	maxPixels    int64
	metrics      *metrics.MetricsManager
}

type Option func(*Compressor)

func WithMaxDimension(px int) Option {
	return func(c *Compressor) {
		if px > 0 {
			c.maxDimension = px
		}
	}
}

func WithHardCap(n int64) Option {
	return func(c *Compressor) {
		if n > 0 {
			c.hardCap = n
		}
	}
}

// WithQuality sets the start quality, the floor and the decrement (1-100).
func WithQuality(start, floor, step int) Option {
	return func(c *Compressor) {
		if start > 0 && start <= 100 && floor > 0 && floor <= start && step > 0 {
			c.startQuality, c.floor, c.step = start, floor, step
		}
	}
}

// WithMaxPixels bounds width*height of an input before it is decoded, so a
// small file cannot claim a huge canvas.
func WithMaxPixels(n int64) Option {
	return func(c *Compressor) {
		if n > 0 {
			c.maxPixels = n
		}
	}
}

func WithMetrics(m *metrics.MetricsManager) Option {
	return func(c *Compressor) { c.metrics = m }
}

func NewCompressor(opts ...Option) *Compressor {
	c := &Compressor{
		maxDimension: DefaultMaxDimension,
		hardCap:      DefaultHardCap,
		startQuality: DefaultStartQuality,
		floor:        DefaultQualityFloor,
		step:         DefaultQualityStep,
		maxPixels:    DefaultMaxPixels,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *Compressor) HardCap() int64 {
	return c.hardCap
}

// CheckSize rejects an input above the hard cap without decoding it.
func (c *Compressor) CheckSize(in ImageFile) error {
	if in.Size() > c.hardCap {
		return errors.ImageTooLarge(in.Size(), c.hardCap)
	}
	return nil
}

// Compress re-encodes in as JPEG, bounded to the maximum dimension, lowering
// the quality step by step until the result fits budget or the floor is hit.
// Quality strictly decreases, so the loop runs at most
// (start-floor)/step+2 times.
func (c *Compressor) Compress(ctx context.Context, in ImageFile, budget int64) (*Compressed, error) {
	if budget <= 0 {
		return nil, errors.ValidationFailed("budget", "Image budget must be positive")
	}
	if err := c.CheckSize(in); err != nil {
		return nil, err
	}

	src, err := c.decode(in.Data)
	if err != nil {
		return nil, err
	}

	canvas := c.scale(src)
	bounds := canvas.Bounds()

	var buf bytes.Buffer
	quality := c.startQuality
	steps := 0
	for {
		if err := ctx.Err(); err != nil {
			return nil, errors.Canceled(err)
		}

		buf.Reset()
		if err := jpeg.Encode(&buf, canvas, &jpeg.Options{Quality: quality}); err != nil {
			return nil, errors.Internal("Failed to encode image", err)
		}
		steps++

		if int64(buf.Len()) <= budget || quality <= c.floor {
			break
		}
		quality -= c.step
		if quality < c.floor {
			quality = c.floor
		}
	}

	c.metrics.ObserveEncodeSteps(steps)
	out := &Compressed{
		ImageFile: ImageFile{
			Name:        jpegName(in.Name),
			ContentType: "image/jpeg",
			Data:        append([]byte(nil), buf.Bytes()...),
		},
		Quality:      quality,
		Steps:        steps,
		Width:        bounds.Dx(),
		Height:       bounds.Dy(),
		WithinBudget: int64(buf.Len()) <= budget,
	}

	logger.Debug("compressed %s from %s to %s (%dx%d, quality %d, %d steps)",
		in.Name, errors.HumanSize(in.Size()), errors.HumanSize(out.Size()), out.Width, out.Height, quality, steps)
	return out, nil
}

func (c *Compressor) decode(data []byte) (image.Image, error) {
	mtype := mimetype.Detect(data)
	if !strings.HasPrefix(mtype.String(), "image/") {
		return nil, errors.InvalidImage(nil)
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, errors.InvalidImage(err)
	}
	if pixels := int64(cfg.Width) * int64(cfg.Height); pixels > c.maxPixels {
		return nil, errors.InvalidImage(fmt.Errorf("%dx%d exceeds %d pixels", cfg.Width, cfg.Height, c.maxPixels))
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, errors.InvalidImage(err)
	}
	return img, nil
}

// scale draws src onto a white canvas no larger than maxDimension on either
// side. JPEG has no alpha, so transparent regions become white.
func (c *Compressor) scale(src image.Image) *image.RGBA {
	b := src.Bounds()
	w, h := FitWithin(b.Dx(), b.Dy(), c.maxDimension)

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)
	if w == b.Dx() && h == b.Dy() {
		draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Over)
	} else {
		draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)
	}
	return dst
}

// FitWithin scales w x h down so neither side exceeds max, keeping the aspect
// ratio. Images already within bounds are returned unchanged.
func FitWithin(w, h, max int) (int, int) {
	if w <= max && h <= max {
		return w, h
	}
	if w >= h {
		nh := h * max / w
		if nh < 1 {
			nh = 1
		}
		return max, nh
	}
	nw := w * max / h
	if nw < 1 {
		nw = 1
	}
	return nw, max
}

func jpegName(name string) string {
	if name == "" {
		return "photo.jpg"
	}
	base := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	if base == "" || base == "." {
		base = "photo"
	}
	return base + ".jpg"
}
