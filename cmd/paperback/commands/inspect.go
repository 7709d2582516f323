package commands

import (
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dattu/paperback/pkg/document"
	"github.com/dattu/paperback/pkg/session"
)

var inspectSession string

var inspectCmd = &cobra.Command{
	Use:   "inspect <page-image>...",
	Short: "Report what the given scans contain without writing output",
	Long: `Inspect scans the given images like restore does and reports the
documents found, shards held versus needed, and any conflicts — useful
for checking a stack of sheets before committing to a restore.`,
	Args: cobra.ArbitraryArgs,
	RunE: runInspect,
}

func init() {
	inspectCmd.Flags().StringVar(&inspectSession, "session", "", "session file to include")
}

func runInspect(cmd *cobra.Command, args []string) error {
	if len(args) == 0 && inspectSession == "" {
		return fmt.Errorf("no page images given (and no --session to draw from)")
	}
	coll := document.NewCollector()
	if inspectSession != "" {
		store, err := session.Open(inspectSession)
		if err != nil {
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
	if err := feed(coll, nil, args); err != nil {
		return err
	}

	d := coll.Diagnostics()
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "codes seen\t%d\n", d.Candidates)
	fmt.Fprintf(w, "dropped (not paperback)\t%d\n", d.DroppedFraming)
	fmt.Fprintf(w, "documents\t%d\n", d.Documents)

	rec, err := coll.Result()
	switch {
	case err == nil:
		fmt.Fprintf(w, "document\t%016x\n", rec.DocumentID)
		fmt.Fprintf(w, "descriptor\t%s\n", rec.Meta.Descriptor)
		fmt.Fprintf(w, "shards\t%d of %d needed (%d printed)\n", rec.ShardsUsed, rec.Meta.K, rec.Meta.TotalShards())
		fmt.Fprintf(w, "size\t%d bytes\n", rec.Meta.BlobLen)
		fmt.Fprintf(w, "status\trecoverable\n")
	default:
		var insufficient *document.InsufficientShardsError
		switch {
		case errors.As(err, &insufficient):
			fmt.Fprintf(w, "status\tinsufficient: have %d shards, need %d\n", insufficient.Have, insufficient.Need)
		case errors.Is(err, document.ErrNoMetadata):
			fmt.Fprintf(w, "status\tno metadata payload found\n")
		default:
			fmt.Fprintf(w, "status\t%v\n", err)
		}
	}
	if len(d.Conflicts) > 0 {
		fmt.Fprintf(w, "conflicting shard indices\t%v\n", d.Conflicts)
	}
	return w.Flush()
}
