// pkg/pdf/layout.go
// Page layout: picks the QR version, error correction level and grid
// that maximize data per page for the configured paper, margins and
// module length.
package pdf

import (
	"fmt"

	"github.com/dattu/paperback/pkg/plan"
	"github.com/dattu/paperback/pkg/qr"
)

// PaperSize names a supported sheet format.
type PaperSize string

const (
	PaperA4     PaperSize = "a4"
	PaperLetter PaperSize = "letter"
)

// Dimensions returns the sheet size in millimetres.
func (p PaperSize) Dimensions() (w, h float64, err error) {
	switch p {
	case PaperA4:
		return 210.0, 297.0, nil
	case PaperLetter:
		return 215.9, 279.4, nil
	}
	return 0, 0, fmt.Errorf("pdf: unknown paper size %q", p)
}

// form returns the pdfcpu form name.
func (p PaperSize) form() string {
	if p == PaperLetter {
		return "Letter"
	}
	return "A4"
}

// quietModules is the quiet zone width on each side of a symbol.
const quietModules = 4

// headerTextMM is the band reserved at the left of the top strip for the
// human-readable header lines.
const headerTextMM = 80.0

// LayoutOptions are the page parameters the layout search works under.
type LayoutOptions struct {
	Paper        PaperSize
	MarginTop    float64 // millimetres
	MarginRight  float64
	MarginBottom float64
	MarginLeft   float64
	// ModuleLength is the edge of one QR module in millimetres; larger
	// values survive worse printers and cameras.
	ModuleLength float64
	// MinRows is the minimum number of large cells per row; more,
	// smaller codes beat fewer, bigger ones on damaged sheets.
	MinRows int
	// MinLevel is the minimum QR error correction level.
	MinLevel qr.ECLevel
	// MetaTextLen is the base58 character count of the metadata
	// payload, which sizes the small cells.
	MetaTextLen int
}

// Layout is the result of the search: everything the sink needs to put
// symbols on paper, plus the geometry the shard planner consumes.
type Layout struct {
	Paper          PaperSize
	PageW, PageH   float64 // millimetres
	MarginLeft     float64
	MarginTop      float64
	ModuleLength   float64
	Version        int // large cell QR version
	Level          qr.ECLevel
	Cols, Rows     int
	CellMM         float64 // large cell edge including quiet zone
	SmallVersion   int
	SmallCells     int
	SmallCellMM    float64
	TopBandMM      float64 // header strip height: text + small cells
	GridTopMM      float64 // distance from page top to the first grid row
}

// ComputeLayout searches QR versions 1..40 and levels at or above the
// configured minimum for the combination maximizing shard bytes per
// page, preferring more error correction on ties.
func ComputeLayout(opts LayoutOptions) (*Layout, error) {
	pageW, pageH, err := opts.Paper.Dimensions()
	if err != nil {
		return nil, err
	}
	availW := pageW - opts.MarginLeft - opts.MarginRight
	availH := pageH - opts.MarginTop - opts.MarginBottom
	if availW <= 0 || availH <= 0 {
		return nil, fmt.Errorf("pdf: margins leave no usable page area")
	}
	if opts.ModuleLength <= 0 {
		return nil, fmt.Errorf("pdf: module length must be positive")
	}
	minRows := opts.MinRows
	if minRows < 1 {
		minRows = 1
	}

	// The small metadata cells define the top strip height.
	smallVersion := qr.SmallestVersion(opts.MetaTextLen, opts.MinLevel)
	if smallVersion == 0 {
		return nil, fmt.Errorf("pdf: metadata of %d characters does not fit any QR version", opts.MetaTextLen)
	}
	smallCellMM := opts.ModuleLength * float64(qr.VersionWidth(smallVersion)+2*quietModules)
	smallCells := int((availW - headerTextMM) / smallCellMM)
	if smallCells < 1 {
		smallCells = 1
	}
	topBand := smallCellMM
	gridH := availH - topBand
	if gridH <= 0 {
		return nil, fmt.Errorf("pdf: page too small for the metadata strip")
	}

	best := &Layout{}
	bestScore := 0
	for v := 1; v <= 40; v++ {
		cellMM := opts.ModuleLength * float64(qr.VersionWidth(v)+2*quietModules)
		cols := int(availW / cellMM)
		rows := int(gridH / cellMM)
		if cols < minRows || rows < 1 {
			continue
		}
		for _, level := range []qr.ECLevel{qr.ECHigh, qr.ECQuartile, qr.ECMedium, qr.ECLow} {
			if level < opts.MinLevel {
				continue
			}
			shardBytes := plan.MaxShardSize(qr.AlnumCapacity(v, level))
			if shardBytes < 1 {
				continue
			}
			score := shardBytes * cols * rows
			if score > bestScore {
				bestScore = score
				*best = Layout{
					Paper:        opts.Paper,
					PageW:        pageW,
					PageH:        pageH,
					MarginLeft:   opts.MarginLeft,
					MarginTop:    opts.MarginTop,
					ModuleLength: opts.ModuleLength,
					Version:      v,
					Level:        level,
					Cols:         cols,
					Rows:         rows,
					CellMM:       cellMM,
					SmallVersion: smallVersion,
					SmallCells:   smallCells,
					SmallCellMM:  smallCellMM,
					TopBandMM:    topBand,
					GridTopMM:    opts.MarginTop + topBand,
				}
			}
		}
	}
	if bestScore == 0 {
		return nil, fmt.Errorf("pdf: no QR configuration fits; try a smaller module length or row count")
	}
	return best, nil
}

// Geometry exposes the layout to the shard planner.
func (l *Layout) Geometry() plan.Geometry {
	return plan.Geometry{
		LargeCols:     l.Cols,
		LargeRows:     l.Rows,
		SmallCells:    l.SmallCells,
		LargeCapacity: qr.AlnumCapacity(l.Version, l.Level),
	}
}
