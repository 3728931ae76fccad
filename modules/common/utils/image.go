package utils

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // GIF decoder
	_ "image/jpeg" // JPEG decoder
	"image/png"
	"log"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // WebP decoder
)

// MaxImagePixels caps width*height before any pixel buffer is allocated.
const MaxImagePixels = 40_000_000

var (
	// ErrEmptyImage - upload carried no bytes
	ErrEmptyImage = errors.New("image: empty payload")
	// ErrImageTooLarge - header declares more than MaxImagePixels
	ErrImageTooLarge = errors.New("image: too many pixels")
)

// NormalizedImage - decoded upload, flattened to RGBA, bounded and re-encoded as PNG
type NormalizedImage struct {
	PNG      []byte
	MIMEType string
	Format   string // source format reported by the decoder
	Width    int
	Height   int
}

// NormalizeImage - decode jpeg/png/gif/webp, drop alpha/palette to a fixed RGBA
// model and downscale so the longer edge is at most maxEdge (aspect kept)
func NormalizeImage(data []byte, maxEdge int) (*NormalizedImage, error) {
	if len(data) == 0 {
		return nil, ErrEmptyImage
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("image: decode header: %w", err)
	}
	if int64(cfg.Width)*int64(cfg.Height) > MaxImagePixels {
		return nil, fmt.Errorf("%w: %dx%d", ErrImageTooLarge, cfg.Width, cfg.Height)
	}

	src, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("image: decode: %w", err)
	}

	b := src.Bounds()
	w, h := FitWithin(b.Dx(), b.Dy(), maxEdge)
	if w == 0 || h == 0 {
		return nil, fmt.Errorf("image: invalid dimensions %dx%d", b.Dx(), b.Dy())
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	// opaque white base so transparent regions do not turn black
	draw.Draw(dst, dst.Bounds(), image.White, image.Point{}, draw.Src)
	if w == b.Dx() && h == b.Dy() {
		draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Over)
	} else {
		draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, fmt.Errorf("image: encode png: %w", err)
	}

	if w != b.Dx() || h != b.Dy() {
		log.Printf("🔄 [Image] %s %dx%d downscaled to %dx%d", format, b.Dx(), b.Dy(), w, h)
	}

	return &NormalizedImage{
		PNG:      buf.Bytes(),
		MIMEType: "image/png",
		Format:   format,
		Width:    w,
		Height:   h,
	}, nil
}

// FitWithin returns width/height scaled down so neither exceeds maxEdge.
// Images already within bounds are returned unchanged; no upscaling.
func FitWithin(width, height, maxEdge int) (int, int) {
	if width <= 0 || height <= 0 {
		return 0, 0
	}
	if maxEdge <= 0 || (width <= maxEdge && height <= maxEdge) {
		return width, height
	}

	if width >= height {
		h := height * maxEdge / width
		if h < 1 {
			h = 1
		}
		return maxEdge, h
	}
	w := width * maxEdge / height
	if w < 1 {
		w = 1
	}
	return w, maxEdge
}
