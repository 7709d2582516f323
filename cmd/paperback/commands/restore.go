package commands

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/dattu/paperback/pkg/document"
	"github.com/dattu/paperback/pkg/qr"
	"github.com/dattu/paperback/pkg/scan"
	"github.com/dattu/paperback/pkg/session"
	"github.com/dattu/paperback/pkg/storage"
)

var (
	restoreForce   bool
	restoreSession string
)

var restoreCmd = &cobra.Command{
	Use:   "restore <output> <page-image>...",
	Short: "Reconstruct the original file from scanned pages",
	Long: `Restore reads every QR code it can find in the given images (or PDFs
of scans), collects the payloads belonging to the backup document, and
writes the reconstructed file. Pages may arrive in any order, duplicated
or partially missing; any k of the k+r shards suffice.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRestore,
}

func init() {
	restoreCmd.Flags().BoolVarP(&restoreForce, "force", "f", false, "overwrite an existing output file")
	restoreCmd.Flags().StringVar(&restoreSession, "session", "", "session file accreting payloads across runs")
}

// feed offers every QR content from the images to the collector,
// mirroring successfully parsed payloads into the session store.
func feed(coll *document.Collector, store *session.Store, paths []string) error {
	imgs, err := scan.Images(paths)
	if err != nil {
		return err
	}
	dec := qr.NewDecoder()
	for i, img := range imgs {
		texts := dec.DecodeImage(img)
		log.Debug().Int("page", i+1).Int("codes", len(texts)).Msg("scanned")
		for _, s := range texts {
			coll.AddText(s)
			if store != nil {
				if raw, ok := document.CanonicalRaw(s); ok {
					store.Add(raw)
				}
			}
		}
	}
	return nil
}

func runRestore(cmd *cobra.Command, args []string) error {
	outPath, paths := args[0], args[1:]
	if len(paths) == 0 && restoreSession == "" {
		return fmt.Errorf("no page images given (and no --session to draw from)")
	}

	coll := document.NewCollector()

	var store *session.Store
	if restoreSession != "" {
		var err error
		if store, err = session.Open(restoreSession); err != nil {
			return err
		}
		defer store.Close()
		if err := store.Each(func(raw []byte) error {
			coll.AddRaw(raw)
			return nil
		}); err != nil {
			return err
		}
	}

	if err := feed(coll, store, paths); err != nil {
		return err
	}

	rec, err := coll.Result()
	if err != nil {
		reportFailure(coll, err)
		return err
	}

	d := rec.Diags
	if len(d.Conflicts) > 0 {
		log.Warn().Uints32("indices", d.Conflicts).Msg("conflicting shard copies dropped; consider rescanning those sheets")
	}
	if d.UnrelatedShards > 0 {
		log.Warn().Int("shards", d.UnrelatedShards).Msg("payloads from unrelated documents ignored")
	}

	if err := storage.WriteOutput(outPath, rec.Blob, restoreForce); err != nil {
		return err
	}
	log.Info().
		Str("output", outPath).
		Int("bytes", len(rec.Blob)).
		Str("document", fmt.Sprintf("%016x", rec.DocumentID)).
		Int("shards_used", rec.ShardsUsed).
		Msg("restored")
	return nil
}

// reportFailure tells the user which sheets to go find.
func reportFailure(coll *document.Collector, err error) {
	d := coll.Diagnostics()
	var insufficient *document.InsufficientShardsError
	switch {
	case errors.As(err, &insufficient):
		log.Error().
			Int("have", insufficient.Have).
			Int("need", insufficient.Need).
			Msg("not enough shards; scan more pages and retry")
	case errors.Is(err, document.ErrNoMetadata):
		log.Error().
			Int("candidates", d.Candidates).
			Int("dropped", d.DroppedFraming).
			Msg("no metadata payload found; every page carries several, so rescan any sheet")
	case errors.Is(err, document.ErrInconsistentMetadata):
		log.Error().Msg("metadata copies disagree; the scans may mix two different backups")
	}
}
