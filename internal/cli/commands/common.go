package commands

import (
	"context"

	"github.com/codeanytime/blogctl/internal/cli/api"
	"github.com/codeanytime/blogctl/internal/cli/blog"
	"github.com/codeanytime/blogctl/internal/cli/config"
	"github.com/codeanytime/blogctl/internal/cli/credstore"
	"github.com/codeanytime/blogctl/internal/cli/google"
	"github.com/codeanytime/blogctl/internal/cli/session"
	"github.com/codeanytime/blogctl/internal/logger"
)

// runtime wires the shared pieces every command needs: resolved config,
// the credential store, the request client, the process-wide session
// provider and the content service.
type runtime struct {
	cfg      *config.Config
	creds    credstore.Store
	client   *api.Client
	provider *session.Provider
	blog     *blog.Service
}

// newRuntime resolves configuration and bootstraps the session once.
// Every command goes through here, so there is exactly one session
// state per process.
func newRuntime(ctx context.Context) (*runtime, error) {
	cfg, err := config.Resolve()
	if err != nil {
		return nil, err
	}

	logger.Init(cfg.LogLevel, cfg.LogFormat)

	creds := credstore.NewKeyring(cfg.APIHost())
	client := api.New(cfg.APIBaseURL, creds)
	manager := session.NewManager(client, creds, google.New(cfg.GoogleClientID))
	provider := session.NewProvider(ctx, manager)

	return &runtime{
		cfg:      cfg,
		creds:    creds,
		client:   client,
		provider: provider,
		blog:     blog.NewService(client),
	}, nil
}
