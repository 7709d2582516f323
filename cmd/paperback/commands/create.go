package commands

import (
	"crypto/sha512"
	"encoding/binary"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/dattu/paperback/pkg/document"
	"github.com/dattu/paperback/pkg/payload"
	"github.com/dattu/paperback/pkg/pdf"
	"github.com/dattu/paperback/pkg/plan"
	"github.com/dattu/paperback/pkg/qr"
)

var (
	createModuleLength float64
	createRecovery     string
	createPaperSize    string
	createMinRows      int
	createECLevel      string
	overrideCommit     string
)

var createCmd = &cobra.Command{
	Use:   "create <input> <output.pdf>",
	Short: "Encode a file into a printable PDF of QR codes",
	Args:  cobra.ExactArgs(2),
	RunE:  runCreate,
}

func init() {
	f := createCmd.Flags()
	f.Float64VarP(&createModuleLength, "module-length", "m", 0, "QR module edge in millimetres (default from config)")
	f.StringVarP(&createRecovery, "recovery", "R", "", `extra recovery data: "25%", "2x", or an extra page count`)
	f.StringVarP(&createPaperSize, "paper-size", "p", "", "paper size: a4 or letter")
	f.IntVarP(&createMinRows, "row-count", "r", 0, "minimum QR codes per row")
	f.StringVarP(&createECLevel, "error-correction", "e", "", "minimum QR error correction level: L, M, Q or H")
	f.StringVar(&overrideCommit, "override-commit", "", "force the build descriptor, for reproducible output")
	_ = f.MarkHidden("override-commit")
}

// descriptor builds the free-form metadata string. The commit can be
// overridden so sample output stays bit-stable across builds.
func descriptor() string {
	commit := Commit
	if overrideCommit != "" {
		commit = overrideCommit
	}
	return fmt.Sprintf("paperback %s (%s)", Version, commit)
}

// documentID picks the document identity. Reproducible runs (override
// set) derive it from the content and descriptor; normal runs draw a
// random one.
func documentID(blob []byte, desc string) (uint64, error) {
	if overrideCommit == "" {
		return payload.NewDocumentID()
	}
	h := sha512.New()
	h.Write(blob)
	h.Write([]byte(desc))
	return binary.BigEndian.Uint64(h.Sum(nil)[:8]), nil
}

func runCreate(cmd *cobra.Command, args []string) error {
	inPath, outPath := args[0], args[1]
	blob, err := os.ReadFile(inPath)
	if err != nil {
		return fmt.Errorf("read %s: %w", inPath, err)
	}
	if len(blob) == 0 {
		return fmt.Errorf("%s is empty; nothing to back up", inPath)
	}

	moduleLength := cfg.Layout.ModuleLength
	if createModuleLength > 0 {
		moduleLength = createModuleLength
	}
	paper := cfg.Page.Size
	if createPaperSize != "" {
		paper = createPaperSize
	}
	minRows := cfg.Layout.MinRows
	if createMinRows > 0 {
		minRows = createMinRows
	}
	ecName := cfg.Layout.ErrorCorrection
	if createECLevel != "" {
		ecName = createECLevel
	}
	level, ok := qr.ParseECLevel(ecName)
	if !ok {
		return fmt.Errorf("unknown error correction level %q", ecName)
	}
	rfText := cfg.Recovery.Factor
	if createRecovery != "" {
		rfText = createRecovery
	}
	rf, err := plan.ParseRecoveryFactor(rfText)
	if err != nil {
		return err
	}

	desc := descriptor()
	meta := &payload.Metadata{Descriptor: desc}
	metaRaw, err := meta.Marshal()
	if err != nil {
		return err
	}

	layout, err := pdf.ComputeLayout(pdf.LayoutOptions{
		Paper:        pdf.PaperSize(paper),
		MarginTop:    cfg.Page.MarginTop,
		MarginRight:  cfg.Page.MarginRight,
		MarginBottom: cfg.Page.MarginBottom,
		MarginLeft:   cfg.Page.MarginLeft,
		ModuleLength: moduleLength,
		MinRows:      minRows,
		MinLevel:     level,
		MetaTextLen:  plan.Base58Len(len(metaRaw)),
	})
	if err != nil {
		return err
	}
	pl, err := plan.New(len(blob), layout.Geometry(), rf)
	if err != nil {
		return err
	}
	docID, err := documentID(blob, desc)
	if err != nil {
		return err
	}

	perPage := layout.Geometry().LargePerPage()
	needed := (pl.K + perPage - 1) / perPage
	sink := pdf.NewSink(layout, outPath, pdf.HeaderInfo{
		Descriptor:  desc,
		DocumentID:  docID,
		PagesNeeded: needed,
		PagesExtra:  pl.Pages - needed,
		PagesTotal:  pl.Pages,
	}, cfg.Render.DPI)
	enc := qr.NewEncoder(layout.Level, 4)

	log.Info().
		Int("k", pl.K).Int("r", pl.R).Int("shard_size", pl.ShardSize).
		Int("pages", pl.Pages).Int("qr_version", layout.Version).
		Str("ec_level", layout.Level.String()).
		Msg("encoding")

	if _, err := document.Encode(blob, enc, sink, document.EncodeOptions{
		DocumentID: docID,
		Descriptor: desc,
		Recovery:   rf,
	}); err != nil {
		return err
	}

	log.Info().Str("output", outPath).
		Str("document", fmt.Sprintf("%016x", docID)).
		Int("pages", pl.Pages).
		Msg("created")
	return nil
}
