// pkg/scan/scan.go
// Restore-side input loading: turns the files the user scanned into a
// list of page images. Accepts raster images and, for convenience, PDFs
// (each page is rasterized), so a "scan to PDF" workflow feeds straight
// into restore.
package scan

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	fitz "github.com/gen2brain/go-fitz"
	"github.com/rs/zerolog/log"
)

// rasterDPI is the resolution PDF pages are rendered at; QR modules are
// on the order of a millimetre, so 300dpi leaves ample pixels per module.
const rasterDPI = 300

// Images loads every page image from the given paths, in argument order.
func Images(paths []string) ([]image.Image, error) {
	var out []image.Image
	for _, p := range paths {
		if strings.EqualFold(filepath.Ext(p), ".pdf") {
			imgs, err := pdfPages(p)
			if err != nil {
				return nil, err
			}
			out = append(out, imgs...)
			continue
		}
		img, err := rasterFile(p)
		if err != nil {
			return nil, err
		}
		out = append(out, img)
	}
	return out, nil
}

func rasterFile(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("scan: open %s: %w", path, err)
	}
	defer f.Close()
	img, format, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("scan: decode %s: %w", path, err)
	}
	log.Debug().Str("path", path).Str("format", format).Msg("loaded page image")
	return img, nil
}

func pdfPages(path string) ([]image.Image, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, fmt.Errorf("scan: open %s: %w", path, err)
	}
	defer doc.Close()

	pages := make([]image.Image, 0, doc.NumPage())
	for i := 0; i < doc.NumPage(); i++ {
		img, err := doc.ImageDPI(i, rasterDPI)
		if err != nil {
			return nil, fmt.Errorf("scan: render %s page %d: %w", path, i+1, err)
		}
		pages = append(pages, img)
	}
	log.Debug().Str("path", path).Int("pages", len(pages)).Msg("rasterized pdf")
	return pages, nil
}
