package commands

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

// history: list journaled swaps.
func historyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "List journaled swaps, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			recs, err := appCtx.Journal.ListSwaps()
			if err != nil {
				return err
			}
			if len(recs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no swaps yet")
				return nil
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "CREATED\tROUTE\tORDER\tSTATE\tSTATUS\tDISCLOSED")
			for _, r := range recs {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%d/%d\n",
					time.Unix(r.CreatedUTC, 0).UTC().Format(time.DateTime),
					r.Route, r.OrderHash, r.State, r.Status, len(r.Disclosed), len(r.SecretHashes))
			}
			return tw.Flush()
		},
	}
}
