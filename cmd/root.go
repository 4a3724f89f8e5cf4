package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"

	"mccwk.com/arcard/internal/form"
	"mccwk.com/arcard/internal/logging"
	"mccwk.com/arcard/internal/tui"
)

const VERSION = "1.0.0"

var (
	debug bool
)

var rootCmd = &cobra.Command{
	Use:   "arcard",
	Short: "Design a metadata card and upload it to Arweave",
	Long: `arcard edits an NFT-style metadata card (title, owner, links, description),
previews it, and uploads it to Arweave as a self-contained HTML artifact.

The wallet key is read from WALLET_KEYS (JSON) or WALLET_FILE. A .env file in
the config directory or the working directory is loaded first.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupLogging()
		slog.Debug(fmt.Sprintf("Version: %s", VERSION))
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return startTUI(cmd.Context())
	},
	SilenceUsage: true,
}

func Execute() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "Display debugging output")
}

func logLevel() slog.Level {
	if debug {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

func setupLogging() {
	level := logLevel()

	if os.Getenv("MODE") == "production" {
		logger := slog.New(slog.NewJSONHandler(os.Stdout,
			&slog.HandlerOptions{
				Level: level,
			}))
		slog.SetDefault(logger)
	} else {
		logger := slog.New(tint.NewHandler(os.Stderr,
			&tint.Options{
				Level: level,
			}))
		slog.SetDefault(logger)
	}
}

func startTUI(ctx context.Context) error {
	a, err := newApp(ctx)
	if err != nil {
		return err
	}

	// Logs go to the in-app panel while the alternate screen is active.
	sink := logging.NewMemorySink(logging.DefaultMaxEntries, logLevel())
	previous := slog.Default()
	slog.SetDefault(slog.New(sink))
	defer slog.SetDefault(previous)
	a.rebindLogger(slog.Default())

	state := form.New()
	model := tui.NewModel(ctx, state, tui.Deps{
		Workflow:  a.workflow,
		Fetcher:   a.fetcher,
		Renderer:  a.renderer,
		Extractor: a.extractor,
		LogSink:   sink,
		Gateway:   a.gateway,
	})
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	if _, err := p.Run(); err != nil {
		slog.Error("TUI error", "error", err)
		return err
	}
	return nil
}
