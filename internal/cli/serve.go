package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ppiankov/claimwatch/internal/api"
	"github.com/ppiankov/claimwatch/internal/store"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	serveAddr string
	noSeed    bool
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Serve the claimwatch HTTP API: influencers, claims, scans, analyses,
batch processing, dashboards and research configuration.

Example:
  claimwatch serve
  claimwatch serve --addr :9000 --no-seed`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from server.addr)")
	serveCmd.Flags().BoolVar(&noSeed, "no-seed", false, "start without the sample influencers")
	_ = viper.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr"))
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger()

	a, err := newApp(cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Server.SeedSamples && !noSeed {
		if err := store.Seed(ctx, a.tracker.Repo(), a.pipeline, logger); err != nil {
			return fmt.Errorf("seed sample data: %w", err)
		}
	}

	srv := api.New(api.Options{
		Tracker:      a.tracker,
		Analyzer:     a.pipeline,
		Batch:        a.batch,
		AllowOrigins: cfg.Server.AllowOrigins,
		Logger:       logger,
	})

	if verbose {
		fmt.Fprintf(os.Stderr, "AI scoring:  %s\n", aiLabel(a))
		fmt.Fprintf(os.Stderr, "Evidence:    %v\n", a.aggregator.Names())
		fmt.Fprintf(os.Stderr, "Platforms:   %v\n", a.social.Names())
	}

	return srv.ListenAndServe(ctx, cfg.Server.Addr)
}
