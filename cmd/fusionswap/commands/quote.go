package commands

import (
	"fmt"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"fusionswap/internal/domain"
	"fusionswap/internal/services/quote"
)

// quote <route> [amount]: price a swap without placing it.
func quoteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "quote <route> [amount]",
		Short: "Price a swap without placing it",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			route, err := appCtx.Quotes.Route(args[0])
			if err != nil {
				return err
			}
			amount := ""
			if len(args) == 2 {
				amount = args[1]
			}
			q, err := appCtx.Quotes.Quote(cmd.Context(), route, amount, appCtx.Wallet)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "quote     %s\n", q.ID)
			fmt.Fprintf(out, "route     %s\n", route)
			fmt.Fprintf(out, "you pay   %s\n", quote.FormatAmount(q.SrcAmount, route.SrcDecimals))
			fmt.Fprintf(out, "you get   %s\n", quote.FormatAmount(q.DstAmount, route.DstDecimals))
			fmt.Fprintf(out, "preset    %s (recommended)\n\n", q.RecommendedPreset)

			names := make([]string, 0, len(q.Presets))
			for name := range q.Presets {
				names = append(names, name.String())
			}
			sort.Strings(names)
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "PRESET\tSECRETS\tAUCTION\tPARTIAL FILLS")
			for _, name := range names {
				p := q.Presets[domain.PresetName(name)]
				fmt.Fprintf(tw, "%s\t%d\t%s\t%t\n", name, p.SecretsCount, p.AuctionDuration, p.AllowPartialFills)
			}
			return tw.Flush()
		},
	}
}
