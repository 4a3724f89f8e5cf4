package cmd

import (
	"fmt"
	"log/slog"
	"net"

	"github.com/pkg/browser"
	"github.com/spf13/cobra"

	"mccwk.com/arcard/internal/form"
	"mccwk.com/arcard/internal/web"
)

var (
	serveAddr string
	serveOpen bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the card form to a local browser",
	Long: `Serve the card editor as a web page.

The page holds one form, like the TUI: edits, uploads and the fetched-back
content are shared by every tab pointed at it. Bind it to localhost only; it
signs uploads with the configured wallet. Form posts a browser sends on
behalf of another site are rejected with 403.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx)
		if err != nil {
			return err
		}

		session := form.NewSession(form.New(), a.workflow, a.fetcher, slog.Default())
		defer session.Close()
		go session.RefreshBalance(ctx)

		if serveOpen {
			host, port, err := net.SplitHostPort(serveAddr)
			if err == nil {
				if host == "" || host == "0.0.0.0" {
					host = "127.0.0.1"
				}
				url := fmt.Sprintf("http://%s", net.JoinHostPort(host, port))
				if err := browser.OpenURL(url); err != nil {
					slog.Warn("failed to open browser", "url", url, "error", err)
				}
			}
		}

		return web.NewServer(session, a.renderer, slog.Default()).ListenAndServe(ctx, serveAddr)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "127.0.0.1:8080", "Address to listen on")
	serveCmd.Flags().BoolVar(&serveOpen, "open", false, "Open the form in the default browser")
	rootCmd.AddCommand(serveCmd)
}
