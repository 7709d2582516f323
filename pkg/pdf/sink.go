// pkg/pdf/sink.go
// A document.PageSink that rasterizes pages and assembles the printable
// PDF with pdfcpu.
package pdf

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"
	"os"
	"path/filepath"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/dattu/paperback/pkg/document"
	"github.com/dattu/paperback/pkg/plan"
)

// HeaderInfo is the human-readable header printed above the QR grid.
// None of it is parsed on restore; the QR payloads are self-describing.
type HeaderInfo struct {
	Descriptor  string
	DocumentID  uint64
	PagesNeeded int // minimum pages to restore
	PagesExtra  int // extra recovery pages beyond the minimum
	PagesTotal  int
}

// Sink renders placed symbols onto per-page rasters and flushes them
// into a PDF at outPath.
type Sink struct {
	layout  *Layout
	header  HeaderInfo
	outPath string
	dpi     float64
	pages   []*image.RGBA
}

// NewSink creates a sink for the given layout writing to outPath.
// dpi controls raster resolution; 300 is plenty for QR modules of the
// sizes the layout produces.
func NewSink(layout *Layout, outPath string, header HeaderInfo, dpi int) *Sink {
	if dpi <= 0 {
		dpi = 300
	}
	return &Sink{layout: layout, header: header, outPath: outPath, dpi: float64(dpi)}
}

// Geometry implements document.PageSink.
func (s *Sink) Geometry() plan.Geometry { return s.layout.Geometry() }

func (s *Sink) pxPerMM() float64 { return s.dpi / 25.4 }

func (s *Sink) px(mm float64) int { return int(math.Round(mm * s.pxPerMM())) }

func (s *Sink) page(n int) *image.RGBA {
	for len(s.pages) <= n {
		img := image.NewRGBA(image.Rect(0, 0, s.px(s.layout.PageW), s.px(s.layout.PageH)))
		draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)
		s.pages = append(s.pages, img)
	}
	return s.pages[n]
}

// Place implements document.PageSink. Slot coordinates are row-major
// within the large grid; small slots run left to right along the top
// strip after the header text.
func (s *Sink) Place(page, slot int, kind document.CellKind, sym image.Image) error {
	img := s.page(page)
	var x, y, edge int
	switch kind {
	case document.CellSmall:
		if slot >= s.layout.SmallCells {
			return fmt.Errorf("pdf: small slot %d out of range", slot)
		}
		x = s.px(s.layout.MarginLeft + headerTextMM + float64(slot)*s.layout.SmallCellMM)
		y = s.px(s.layout.MarginTop)
		edge = s.px(s.layout.SmallCellMM)
	default:
		if slot >= s.layout.Cols*s.layout.Rows {
			return fmt.Errorf("pdf: large slot %d out of range", slot)
		}
		row, col := slot/s.layout.Cols, slot%s.layout.Cols
		x = s.px(s.layout.MarginLeft + float64(col)*s.layout.CellMM)
		y = s.px(s.layout.GridTopMM + float64(row)*s.layout.CellMM)
		edge = s.px(s.layout.CellMM)
	}
	dst := image.Rect(x, y, x+edge, y+edge)
	xdraw.NearestNeighbor.Scale(img, dst, sym, sym.Bounds(), draw.Src, nil)
	return nil
}

// Flush implements document.PageSink: draws the page headers, writes the
// page rasters and assembles the PDF.
func (s *Sink) Flush() error {
	if len(s.pages) == 0 {
		return fmt.Errorf("pdf: nothing to flush")
	}
	tmp, err := os.MkdirTemp("", "paperback-pages-")
	if err != nil {
		return fmt.Errorf("pdf: create staging dir: %w", err)
	}
	defer os.RemoveAll(tmp)

	files := make([]string, 0, len(s.pages))
	for i, img := range s.pages {
		s.drawHeader(img, i)
		path := filepath.Join(tmp, fmt.Sprintf("page-%04d.png", i+1))
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("pdf: stage page %d: %w", i+1, err)
		}
		if err := png.Encode(f, img); err != nil {
			f.Close()
			return fmt.Errorf("pdf: encode page %d: %w", i+1, err)
		}
		if err := f.Close(); err != nil {
			return err
		}
		files = append(files, path)
	}

	imp, err := api.Import(fmt.Sprintf("form:%s, pos:full", s.layout.Paper.form()), types.POINTS)
	if err != nil {
		return fmt.Errorf("pdf: import configuration: %w", err)
	}
	// ImportImagesFile appends to an existing PDF; we want a fresh one.
	_ = os.Remove(s.outPath)
	if err := api.ImportImagesFile(files, s.outPath, imp, nil); err != nil {
		return fmt.Errorf("pdf: assemble %s: %w", s.outPath, err)
	}
	return nil
}

// headerScale enlarges the 7x13 bitmap font to a printable size.
const headerScale = 3

func (s *Sink) drawHeader(img *image.RGBA, page int) {
	lines := []string{
		fmt.Sprintf("paperback %s", s.header.Descriptor),
		fmt.Sprintf("page %d of %d - restore needs %d pages, %d extra printed",
			page+1, s.header.PagesTotal, s.header.PagesNeeded, s.header.PagesExtra),
		fmt.Sprintf("document %016x", s.header.DocumentID),
	}
	face := basicfont.Face7x13
	lineH := face.Height + 2
	bandW := s.px(headerTextMM) / headerScale
	band := image.NewRGBA(image.Rect(0, 0, bandW, lineH*len(lines)+4))
	draw.Draw(band, band.Bounds(), image.White, image.Point{}, draw.Src)
	for i, line := range lines {
		d := &font.Drawer{
			Dst:  band,
			Src:  image.NewUniform(color.Black),
			Face: face,
			Dot:  fixed.P(2, (i+1)*lineH),
		}
		d.DrawString(line)
	}
	x, y := s.px(s.layout.MarginLeft), s.px(s.layout.MarginTop)
	dst := image.Rect(x, y, x+band.Bounds().Dx()*headerScale, y+band.Bounds().Dy()*headerScale)
	xdraw.NearestNeighbor.Scale(img, dst, band, band.Bounds(), draw.Src, nil)
}
