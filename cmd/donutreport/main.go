// donutreport — charts for a donut distribution sheet.
//
// Main CLI entrypoint using cobra command framework.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/seenimoa/donutreport/internal/app"
	"github.com/seenimoa/donutreport/internal/config"
	"github.com/seenimoa/donutreport/internal/infra"
	"github.com/seenimoa/donutreport/internal/normalize"
)

// Build-time variables (set via -ldflags).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Global config
var cfg *config.Config

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		var mce *normalize.MissingColumnError
		if errors.As(err, &mce) {
			for _, f := range mce.Fields {
				fmt.Fprintf(os.Stderr, "hint: add the sheet's header name to columns.%s in the config\n", f)
			}
		}
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "donutreport",
	Short: "donutreport — charts for a donut distribution sheet",
	Long: `donutreport reads the published donut distribution sheet (or a local CSV),
normalizes its date, dozens and total price columns, derives price per dozen,
price per donut and the running revenue total, and renders one chart per metric.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		configFile, _ := cmd.Flags().GetString("config")
		if configFile != "" {
			cfg, err = config.LoadFromFile(configFile)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		url, _ := cmd.Flags().GetString("url")
		file, _ := cmd.Flags().GetString("file")
		level, _ := cmd.Flags().GetString("log-level")
		cfg.Apply(config.Overrides{URL: url, File: file, LogLevel: level})

		logger, err := infra.NewLogger(os.Stderr, cfg.Logging.Level, cfg.Logging.Format)
		if err != nil {
			return err
		}
		slog.SetDefault(logger)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: ./config/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level override (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("url", "", "published sheet URL (overrides source.url)")
	rootCmd.PersistentFlags().String("file", "", "local CSV file (overrides source.file)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(summaryCmd)
	rootCmd.AddCommand(statusCmd)
}

// --- Version Command ---

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	// Skip config loading.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("donutreport %s\n", version)
		fmt.Printf("  commit:  %s\n", commit)
		fmt.Printf("  built:   %s\n", date)
	},
}

// --- Build Command ---

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Fetch the sheet and write the charts",
	Long: `Fetch the distribution table, normalize it and write four charts into the
output directory: dozens_over_time, daily_total_price, cumulative_total and
price_per_dozen. With --html a report.html is written alongside them.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		o := config.Overrides{}
		o.OutDir, _ = cmd.Flags().GetString("out")
		o.Format, _ = cmd.Flags().GetString("format")
		if cmd.Flags().Changed("html") {
			html, _ := cmd.Flags().GetBool("html")
			o.HTMLReport = &html
		}
		cfg.Apply(o)

		p, err := app.New(cfg)
		if err != nil {
			return err
		}
		out, err := p.Build(cmd.Context())
		if err != nil {
			return err
		}

		fmt.Printf("Wrote %d chart(s) from %d row(s)", len(out.Charts), out.Rows)
		if out.Drops > 0 {
			fmt.Printf(", %d row(s) skipped", out.Drops)
		}
		fmt.Println(":")
		for _, c := range out.Charts {
			fmt.Printf("  %s\n", c.Path)
		}
		if out.HTML != "" {
			fmt.Printf("  %s\n", out.HTML)
		}
		return nil
	},
}

func init() {
	buildCmd.Flags().String("out", "", "output directory (overrides output.dir)")
	buildCmd.Flags().String("format", "", "image format: png or svg (overrides output.format)")
	buildCmd.Flags().Bool("html", false, "also write report.html")
}

// --- Status Command ---

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		src := config.DescribeSource(cfg)

		fmt.Println("═══════════════════════════════════════")
		fmt.Println("  donutreport — Status")
		fmt.Println("═══════════════════════════════════════")
		fmt.Printf("  Version:  %s (%s)\n", version, commit)
		if src.Kind == "none" {
			fmt.Println("  Source:   ❌ not set (use --url, --file or source.url)")
		} else {
			fmt.Printf("  Source:   ✅ %s %s (from %s, format %s)\n", src.Kind, src.Value, src.Origin, src.Format)
		}
		fmt.Println()

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"Setting", "Value"})
		for _, s := range cfg.Settings() {
			t.AppendRow(table.Row{s.Key, s.Value})
		}
		t.SetStyle(table.StyleRounded)
		t.Render()

		if err := cfg.Validate(); err != nil {
			fmt.Printf("\n⚠️  %v\n", err)
		}
		return nil
	},
}
