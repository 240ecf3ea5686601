package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"fusionswap/internal/domain"
)

// swap <route> [amount]: place an order and drive it to a terminal status.
func swapCmd() *cobra.Command {
	var preset string
	cmd := &cobra.Command{
		Use:   "swap <route> [amount]",
		Short: "Place an order and release secrets until it completes",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !appCtx.CanSign {
				return errors.Wrap(domain.ErrInvalidConfig, "PRIVATE_KEY required to place orders")
			}
			amount := ""
			if len(args) == 2 {
				amount = args[1]
			}
			req, err := appCtx.SwapRequest(args[0], amount, domain.PresetName(preset))
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if addr := appCtx.Config.MetricsAddr; addr != "" {
				go serveMetrics(ctx, addr)
			}

			res, err := appCtx.Swaps.Execute(ctx, req)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "order     %s\n", res.OrderHash)
			fmt.Fprintf(out, "status    %s\n", res.Status)
			fmt.Fprintf(out, "secrets   %d of %d disclosed\n", len(res.Disclosed), res.SecretsCount)
			fmt.Fprintf(out, "elapsed   %s\n", res.Elapsed.Round(time.Millisecond))
			if res.Status != domain.OrderStatusExecuted {
				return errors.Errorf("order ended %s", res.Status)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&preset, "preset", "", "fast, medium, slow or custom (default: the quote's recommendation)")
	return cmd
}
