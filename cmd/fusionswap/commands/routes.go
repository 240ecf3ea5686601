package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// routes: list the configured routes.
func routesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "routes",
		Short: "List the configured swap routes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tFROM\tTO\tDEFAULT AMOUNT")
			for _, r := range appCtx.Quotes.Routes() {
				fmt.Fprintf(tw, "%s\t%s/%s\t%s/%s\t%s\n",
					r.Name, r.SrcChainID, r.SrcToken.Hex(), r.DstChainID, r.DstToken.Hex(), r.DefaultAmount)
			}
			return tw.Flush()
		},
	}
}
