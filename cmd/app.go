package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"mccwk.com/arcard/internal/card"
	"mccwk.com/arcard/internal/config"
	"mccwk.com/arcard/internal/services"
	"mccwk.com/arcard/internal/storage"
	"mccwk.com/arcard/internal/upload"
)

// app holds the services shared by every command. The storage client is
// constructed exactly once here.
type app struct {
	cfg       *config.Config
	client    storage.Client
	address   string
	gateway   string
	workflow  *upload.Workflow
	fetcher   *upload.ContentFetcher
	renderer  *services.Renderer
	extractor *services.Extractor
}

func newApp(ctx context.Context) (*app, error) {
	loadEnv()

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	var client storage.Client
	var gateway string
	switch cfg.Backend {
	case config.BackendMemory:
		client = storage.NewMemory(cfg.InitialBalance())
		slog.Warn("using in-memory storage; uploads are not persisted")
	default:
		arweave := storage.NewArweave(cfg.Gateway, card.ContentType, services.NewFetcher(cfg.FetchTimeout))
		client = arweave
		gateway = arweave.Gateway()
	}

	// An unusable key must stop startup rather than surface later as a
	// failed balance.
	addr, err := client.ResolveAddress(ctx, cfg.Credential)
	if err != nil {
		return nil, &config.Error{Field: "wallet", Err: fmt.Errorf("%w: %v", config.ErrMalformedCredential, err)}
	}
	slog.Debug("wallet loaded", "address", addr, "backend", cfg.Backend)

	a := &app{
		cfg:       cfg,
		client:    client,
		address:   addr,
		gateway:   gateway,
		renderer:  services.NewRenderer(""),
		extractor: services.NewExtractor(),
	}
	a.rebindLogger(slog.Default())
	return a, nil
}

// rebindLogger rebuilds the logging services against logger.
func (a *app) rebindLogger(logger *slog.Logger) {
	a.workflow = upload.NewWorkflow(a.client, a.cfg.Credential, logger)
	a.fetcher = upload.NewContentFetcher(a.client, logger)
}
