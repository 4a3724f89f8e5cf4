package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"mccwk.com/arcard/internal/upload"
)

var (
	fetchRaw   bool
	fetchWidth int
)

var fetchCmd = &cobra.Command{
	Use:   "fetch [id...]",
	Short: "Fetch uploaded cards by transaction id",
	Long: `Fetch content previously uploaded to Arweave and show it.

The card is sanitized and rendered for the terminal. With --raw the stored
HTML is printed unchanged.

Transaction ids may be provided as arguments or piped via stdin (one per line).`,
	Args: cobra.ArbitraryArgs,
	RunE: runFetch,
}

func init() {
	fetchCmd.Flags().BoolVar(&fetchRaw, "raw", false, "Print the stored HTML as is")
	fetchCmd.Flags().IntVarP(&fetchWidth, "width", "w", 80, "Wrap rendered output at this width")
	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	// Collect ids from args and stdin.
	ids := append([]string(nil), args...)
	stat, _ := os.Stdin.Stat()
	if stat != nil && stat.Mode()&os.ModeCharDevice == 0 {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line != "" && !strings.HasPrefix(line, "#") {
				ids = append(ids, line)
			}
		}
	}
	if len(ids) == 0 {
		return fmt.Errorf("no transaction ids provided: pass as arguments or pipe via stdin")
	}

	a, err := newApp(ctx)
	if err != nil {
		return err
	}

	var processed, skipped int
	multi := len(ids) > 1

	for i, id := range ids {
		if multi {
			slog.Info("fetching", "index", i+1, "total", len(ids), "id", id)
		}
		content, err := a.fetcher.Fetch(ctx, id)
		if errors.Is(err, upload.ErrAlreadyFetched) {
			slog.Info("skipping repeated id", "id", id)
			skipped++
			continue
		}
		if err != nil {
			// Already logged by the fetcher.
			skipped++
			continue
		}

		if err := printCard(a, id, content); err != nil {
			slog.Error("failed to render content", "id", id, "error", err)
			skipped++
			continue
		}
		processed++
	}

	if multi {
		slog.Info("batch complete", "processed", processed, "skipped", skipped)
	}
	if processed == 0 {
		return fmt.Errorf("nothing fetched")
	}
	return nil
}

func printCard(a *app, id, content string) error {
	if fetchRaw {
		fmt.Println(content)
		return nil
	}

	rendered, err := a.renderer.Terminal(content, fetchWidth)
	if err != nil {
		return err
	}
	fmt.Printf("== %s ==\n", id)
	fmt.Println(rendered)

	if meta, err := a.extractor.ExtractCard(content); err == nil {
		slog.Debug("card extracted", "id", id, "title", meta.Title, "links", len(meta.Links))
	}
	return nil
}
