package ingest

import (
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"os"
	"path/filepath"
	"regexp"

	"github.com/gen2brain/go-fitz"
)

const (
	minImageSide = 150
	minImageArea = 30000
	minVariance  = 100.0

	jpegQuality = 90
)

var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9]`)

func cleanFileName(name string) string {
	return nonAlphanumeric.ReplaceAllString(name, "_")
}

// renderedPage is one page image written to the processed images directory.
type renderedPage struct {
	Page int
	Path string
}

// RenderPDF renders each page of a PDF to a JPEG under outDir and returns the
// pages that pass the validity filter. Blank and near-blank renders (covers,
// dividers) are dropped.
func RenderPDF(ctx context.Context, pdfPath, label, outDir string) ([]renderedPage, error) {
	doc, err := fitz.New(pdfPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer doc.Close()

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create image directory: %w", err)
	}

	cleanLabel := cleanFileName(label)
	pages := make([]renderedPage, 0, doc.NumPage())

	for pageIdx := 0; pageIdx < doc.NumPage(); pageIdx++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		img, err := doc.Image(pageIdx)
		if err != nil {
			return nil, fmt.Errorf("failed to render page %d: %w", pageIdx+1, err)
		}
		if !isValidImage(img) {
			continue
		}

		pageNo := pageIdx + 1
		outPath := filepath.Join(outDir, fmt.Sprintf("%s_p%d_i0.jpg", cleanLabel, pageNo))
		if err := saveJPEG(outPath, img); err != nil {
			return nil, fmt.Errorf("failed to save page %d: %w", pageNo, err)
		}

		pages = append(pages, renderedPage{Page: pageNo, Path: outPath})
	}

	return pages, nil
}

func saveJPEG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := jpeg.Encode(f, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// isValidImage filters out images too small to show a design and flat renders
// with no visual content. Variance is measured on a 50x50 grayscale
// downsample, the cheapest signal that separates real photos from solid
// fills.
func isValidImage(img image.Image) bool {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w < minImageSide || h < minImageSide || w*h < minImageArea {
		return false
	}
	return grayVariance(img, 50) >= minVariance
}

func grayVariance(img image.Image, side int) float64 {
	bounds := img.Bounds()
	samples := make([]float64, 0, side*side)

	for y := 0; y < side; y++ {
		for x := 0; x < side; x++ {
			px := bounds.Min.X + x*bounds.Dx()/side
			py := bounds.Min.Y + y*bounds.Dy()/side
			r, g, b, _ := img.At(px, py).RGBA()
			// ITU-R BT.601 luma, on 16-bit channels scaled to 8-bit.
			gray := (0.299*float64(r) + 0.587*float64(g) + 0.114*float64(b)) / 257.0
			samples = append(samples, gray)
		}
	}

	var mean float64
	for _, s := range samples {
		mean += s
	}
	mean /= float64(len(samples))

	var variance float64
	for _, s := range samples {
		d := s - mean
		variance += d * d
	}
	return variance / float64(len(samples))
}
