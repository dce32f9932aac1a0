package storage

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif" // register GIF decoder
	"image/jpeg"
	_ "image/png" // register PNG decoder

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // register WebP decoder
)

const (
	DefaultMaxDimension = 1200
	DefaultJPEGQuality  = 80
	// MaxSourcePixels bounds the raster allocated while decoding an upload.
	MaxSourcePixels = 40_000_000
)

var ErrImageTooLarge = errors.New("image dimensions exceed the pixel budget")

// CompressImage re-encodes an image as JPEG, scaling it so that neither side exceeds maxDimension.
func CompressImage(data []byte, maxDimension, quality int) ([]byte, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to read image header (format: %s): %w", format, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || int64(cfg.Width)*int64(cfg.Height) > MaxSourcePixels {
		return nil, fmt.Errorf("%w: %dx%d", ErrImageTooLarge, cfg.Width, cfg.Height)
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image (format: %s): %w", format, err)
	}

	bounds := img.Bounds()
	newWidth, newHeight := fitWithin(bounds.Dx(), bounds.Dy(), maxDimension)

	resized := image.NewRGBA(image.Rect(0, 0, newWidth, newHeight))
	// White background for transparent PNG/GIF since JPEG has no alpha
	draw.Draw(resized, resized.Bounds(), image.White, image.Point{}, draw.Src)
	draw.CatmullRom.Scale(resized, resized.Bounds(), img, bounds, draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, resized, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return buf.Bytes(), nil
}

// fitWithin scales (w, h) down to fit a max x max box, keeping the aspect ratio.
func fitWithin(w, h, max int) (int, int) {
	if w <= max && h <= max {
		return w, h
	}
	if w >= h {
		nh := int(float64(h) * float64(max) / float64(w))
		if nh < 1 {
			nh = 1
		}
		return max, nh
	}
	nw := int(float64(w) * float64(max) / float64(h))
	if nw < 1 {
		nw = 1
	}
	return nw, max
}
