// Package imageprocessor shrinks uploaded company logos.
package imageprocessor

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"

	_ "image/gif"

	"golang.org/x/image/draw"
)

var ErrUnsupportedFormat = errors.New("unsupported image format")

// Result is an encoded image ready for storage.
type Result struct {
	Data        []byte
	ContentType string
	Extension   string
	Width       int
	Height      int
}

type Processor struct {
	quality      int // JPEG quality (1-100)
	maxDimension int
}

func NewProcessor(quality, maxDimension int) *Processor {
	if quality <= 0 || quality > 100 {
		quality = 85
	}
	if maxDimension <= 0 {
		maxDimension = 512
	}
	return &Processor{quality: quality, maxDimension: maxDimension}
}

// Logo decodes an image, scales it down to fit maxDimension on its longest
// side and re-encodes it. PNG stays PNG so transparency survives; anything
// else becomes JPEG.
func (p *Processor) Logo(reader io.Reader) (*Result, error) {
	img, format, err := image.Decode(reader)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)
	}

	resized := p.fit(img, p.maxDimension)
	bounds := resized.Bounds()

	var buf bytes.Buffer
	res := &Result{Width: bounds.Dx(), Height: bounds.Dy()}
	if format == "png" {
		if err := png.Encode(&buf, resized); err != nil {
			return nil, fmt.Errorf("failed to encode PNG: %w", err)
		}
		res.ContentType, res.Extension = "image/png", ".png"
	} else {
		if err := jpeg.Encode(&buf, resized, &jpeg.Options{Quality: p.quality}); err != nil {
			return nil, fmt.Errorf("failed to encode JPEG: %w", err)
		}
		res.ContentType, res.Extension = "image/jpeg", ".jpg"
	}
	res.Data = buf.Bytes()
	return res, nil
}

// fit scales img so neither side exceeds max, keeping the aspect ratio.
// Smaller images are returned unchanged.
func (p *Processor) fit(img image.Image, max int) image.Image {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width <= max && height <= max {
		return img
	}

	newWidth, newHeight := max, max
	if width > height {
		newHeight = height * max / width
	} else {
		newWidth = width * max / height
	}
	if newWidth < 1 {
		newWidth = 1
	}
	if newHeight < 1 {
		newHeight = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, newWidth, newHeight))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst
}
