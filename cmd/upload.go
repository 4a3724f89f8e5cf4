package cmd

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"mccwk.com/arcard/internal/card"
	"mccwk.com/arcard/internal/form"
	"mccwk.com/arcard/internal/upload"
)

var (
	uploadTitle       string
	uploadOwner       string
	uploadLinks       []string
	uploadDescription string
)

var uploadCmd = &cobra.Command{
	Use:   "upload",
	Short: "Upload a card from the command line",
	Long: `Build a card from flags, upload it to Arweave, and fetch it back.

Links are given as TEXT=URL and keep the order they are passed in:

  arcard upload --title Genesis --owner alice \
    --link "Site=https://example.com" --link "Docs=https://example.com/docs" \
    --description "The first card"`,
	Args: cobra.NoArgs,
	RunE: runUpload,
}

func init() {
	uploadCmd.Flags().StringVar(&uploadTitle, "title", "", "Card title")
	uploadCmd.Flags().StringVar(&uploadOwner, "owner", "", "Card owner")
	uploadCmd.Flags().StringArrayVarP(&uploadLinks, "link", "l", nil, "Link as TEXT=URL (repeatable)")
	uploadCmd.Flags().StringVar(&uploadDescription, "description", "", "Card description")
	rootCmd.AddCommand(uploadCmd)
}

func runUpload(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	links, err := parseLinks(uploadLinks)
	if err != nil {
		return err
	}

	a, err := newApp(ctx)
	if err != nil {
		return err
	}

	state := form.New()
	if err := fillState(state, uploadTitle, uploadOwner, uploadDescription, links); err != nil {
		return err
	}
	session := form.NewSession(state, a.workflow, a.fetcher, slog.Default())
	defer session.Close()

	// --- Stage 1: Balance ---
	session.RefreshBalance(ctx)
	fmt.Printf("AR Token Balance: %s\n", state.Snapshot().Balance)

	// --- Stage 2: Upload ---
	fmt.Println("Uploading ...")
	result, err := session.Submit(ctx)
	if err != nil {
		return err
	}
	snap := state.Snapshot()
	if snap.Fee != "" {
		fmt.Printf("File Uploading Fee: %s\n", snap.Fee)
	}
	fmt.Println(snap.StatusMessage)
	if result.Status != upload.StatusSuccess {
		return result.Err()
	}

	// --- Stage 3: Fetch back ---
	fmt.Println("Fetching back ...")
	session.Wait()
	snap = state.Snapshot()
	if !snap.HasContent {
		fmt.Println("Content not retrievable yet; try `arcard fetch " + result.TransactionID + "` later.")
		return nil
	}

	ok, err := a.extractor.Verify(snap.Retrieved, snap.Metadata)
	switch {
	case err != nil:
		slog.Warn("could not verify retrieved content", "error", err)
	case ok:
		fmt.Println("Verified: retrieved content matches the upload")
	default:
		fmt.Println("Warning: retrieved content differs from the upload")
	}
	if a.gateway != "" {
		fmt.Printf("View: %s/%s\n", a.gateway, result.TransactionID)
	}
	return nil
}

func fillState(state *form.State, title, owner, description string, links []card.LinkEntry) error {
	for field, value := range map[form.Field]string{
		form.FieldTitle:       title,
		form.FieldOwner:       owner,
		form.FieldDescription: description,
	} {
		if err := state.SetField(field, value); err != nil {
			return err
		}
	}
	for i, l := range links {
		if i > 0 {
			state.AddLink()
		}
		if err := state.SetLinkField(i, form.LinkText, l.Text); err != nil {
			return err
		}
		if err := state.SetLinkField(i, form.LinkHref, l.Href); err != nil {
			return err
		}
	}
	return nil
}

// parseLinks turns TEXT=URL pairs into link entries. The URL is split at the
// first "=" so query strings survive.
func parseLinks(raw []string) ([]card.LinkEntry, error) {
	var out []card.LinkEntry
	for _, r := range raw {
		text, href, ok := strings.Cut(r, "=")
		if !ok {
			return nil, fmt.Errorf("invalid --link %q: want TEXT=URL", r)
		}
		out = append(out, card.LinkEntry{
			Text: strings.TrimSpace(text),
			Href: strings.TrimSpace(href),
		})
	}
	return out, nil
}
