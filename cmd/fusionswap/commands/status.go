package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"fusionswap/internal/domain"
)

// status <order-hash>: show the exchange status and journal entry of an order.
func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status <order-hash>",
		Short: "Show the exchange status and journal entry of an order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash := domain.OrderHash(args[0])
			out := cmd.OutOrStdout()

			st, err := appCtx.Exchange.OrderStatus(cmd.Context(), hash)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "order     %s\n", hash)
			fmt.Fprintf(out, "status    %s\n", st)

			rec, ok, err := appCtx.Journal.LoadSwap(hash)
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(out, "journal   not found")
				return nil
			}
			fmt.Fprintf(out, "route     %s\n", rec.Route)
			fmt.Fprintf(out, "hashlock  %s\n", rec.HashLock)
			fmt.Fprintf(out, "state     %s\n", rec.State)
			fmt.Fprintf(out, "disclosed %v of %d\n", rec.Disclosed, len(rec.SecretHashes))
			if rec.Error != "" {
				fmt.Fprintf(out, "error     %s\n", rec.Error)
			}
			return nil
		},
	}
}
