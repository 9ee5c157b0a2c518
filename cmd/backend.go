package cmd

import (
	"context"
	"fmt"
	"net/http"

	"github.com/inovacc/labctl/internal/apiclient"
	"github.com/inovacc/labctl/internal/labapi"
	"github.com/inovacc/labctl/internal/log"
	"github.com/inovacc/labctl/internal/resolver"
	"github.com/inovacc/labctl/internal/securestore"
	"github.com/inovacc/labctl/internal/session"
	"github.com/inovacc/labctl/internal/token"
)

// backend bundles the components one command invocation works with.
type backend struct {
	storage  securestore.Store
	tokens   *token.Store
	resolver *resolver.Resolver
	client   *apiclient.Client
	api      *labapi.API
	session  *session.Manager
}

var (
	current *backend

	// httpClient carries every probe and API request.
	httpClient = http.DefaultClient
)

// openStorage opens secure storage and the token store without touching
// the network.
func openStorage() (*backend, error) {
	if current != nil {
		return current, nil
	}

	storage, err := securestore.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open secure storage: %w", err)
	}

	tokens := token.NewStore(storage, log.Std())

	current = &backend{
		storage:  storage,
		tokens:   tokens,
		resolver: resolver.New(cfg, storage, resolver.WithHTTPClient(httpClient), resolver.WithLogger(log.Std())),
		session:  session.New(nil, tokens, log.Std()),
	}

	return current, nil
}

// connect resolves the endpoint and returns a backend ready for API calls.
func connect(ctx context.Context) (*backend, error) {
	b, err := openStorage()
	if err != nil {
		return nil, err
	}

	if b.client != nil {
		return b, nil
	}

	b.client = apiclient.New(ctx, cfg, b.resolver, b.tokens,
		apiclient.WithHTTPClient(httpClient), apiclient.WithLogger(log.Std()))
	b.api = labapi.New(b.client)
	b.session = session.New(b.api.Auth, b.tokens, log.Std())

	log.Debug("connected", "url", b.client.BaseURL())

	return b, nil
}

func closeBackend() {
	if current == nil {
		return
	}

	if err := current.storage.Close(); err != nil {
		log.Warn("failed to close secure storage", "error", err)
	}

	current = nil
}
