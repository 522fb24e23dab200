// Package pdf turns uploaded documents into per-page JPEG images.
package pdf

import (
	"bytes"
	"context"
	"fmt"
	"image/jpeg"

	"github.com/gen2brain/go-fitz"
)

// DefaultJPEGQuality balances legibility of rendered text against artifact
// size; page images are re-served many times once stored.
const DefaultJPEGQuality = 85

// PageImage holds one rendered page. Pages are 1-indexed.
type PageImage struct {
	Page   int
	JPEG   []byte
	Width  int
	Height int
}

// Rasterizer renders PDF bytes into page images.
type Rasterizer struct {
	quality int
}

// NewRasterizer uses the given JPEG quality, or DefaultJPEGQuality when the
// value is out of the 1..100 range.
func NewRasterizer(quality int) *Rasterizer {
	if quality < 1 || quality > 100 {
		quality = DefaultJPEGQuality
	}
	return &Rasterizer{quality: quality}
}

// Render converts every page to JPEG. The context is checked between pages
// so an abandoned upload stops rendering promptly.
func (r *Rasterizer) Render(ctx context.Context, data []byte) ([]PageImage, error) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer doc.Close()

	count := doc.NumPage()
	if count == 0 {
		return nil, fmt.Errorf("pdf has no pages")
	}

	pages := make([]PageImage, 0, count)
	for i := 0; i < count; i++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		img, err := doc.Image(i)
		if err != nil {
			return nil, fmt.Errorf("render page %d: %w", i+1, err)
		}

		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: r.quality}); err != nil {
			return nil, fmt.Errorf("encode page %d: %w", i+1, err)
		}

		bounds := img.Bounds()
		pages = append(pages, PageImage{
			Page:   i + 1,
			JPEG:   buf.Bytes(),
			Width:  bounds.Dx(),
			Height: bounds.Dy(),
		})
	}
	return pages, nil
}
