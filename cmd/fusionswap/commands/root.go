package commands

import (
	"context"

	"github.com/spf13/cobra"

	"fusionswap/internal/app"
	"fusionswap/internal/logging"
)

var (
	appCtx *app.Wire

	home        string
	apiURL      string
	logLevel    string
	logFormat   string
	metricsAddr string
)

func Execute() error {
	root := &cobra.Command{
		Use:           "fusionswap",
		Short:         "Cross-chain atomic swaps through an intent-based exchange",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.Load(cmd.Context())
			if err != nil {
				return err
			}
			applyFlags(cmd, &cfg)

			log, err := logging.New(cfg.LogLevel, cfg.LogFormat)
			if err != nil {
				return err
			}
			w, err := app.NewWire(cfg, log, nil)
			if err != nil {
				return err
			}
			appCtx = w
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if appCtx != nil {
				_ = appCtx.Log.Sync()
			}
		},
	}

	root.PersistentFlags().StringVar(&home, "home", "", "journal dir (default $FUSIONSWAP_HOME or ~/.fusionswap)")
	root.PersistentFlags().StringVar(&apiURL, "api-url", "", "exchange API base URL (default $ONEINCH_API_URL)")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "debug, info, warn or error (default $LOG_LEVEL)")
	root.PersistentFlags().StringVar(&logFormat, "log-format", "", "console or json (default $LOG_FORMAT)")
	root.PersistentFlags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address during a swap")

	root.AddCommand(routesCmd(), quoteCmd(), swapCmd(), historyCmd(), statusCmd())

	err := root.ExecuteContext(context.Background())
	if err != nil {
		root.PrintErrln("Error:", err)
	}
	return err
}

// applyFlags lets explicitly set flags override the environment.
func applyFlags(cmd *cobra.Command, cfg *app.Config) {
	flags := cmd.Flags()
	if flags.Changed("home") {
		cfg.Home = home
	}
	if flags.Changed("api-url") {
		cfg.APIURL = apiURL
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = logLevel
	}
	if flags.Changed("log-format") {
		cfg.LogFormat = logFormat
	}
	if flags.Changed("metrics-addr") {
		cfg.MetricsAddr = metricsAddr
	}
}
