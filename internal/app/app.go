package app

import (
	"context"
	"fmt"
	stdhttp "net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/guildgate/internal/bnet"
	"github.com/vovakirdan/guildgate/internal/config"
	"github.com/vovakirdan/guildgate/internal/core"
	"github.com/vovakirdan/guildgate/internal/store"
	"github.com/vovakirdan/guildgate/internal/store/sqlite"
	"github.com/vovakirdan/guildgate/internal/transport/http"
	"github.com/vovakirdan/guildgate/internal/tsquery"
)

// App wires the query link, the verification core, and the web bridge.
type App struct {
	cfg *config.Config
	log *zerolog.Logger

	emitter  *core.Emitter
	cache    *core.SessionCache
	router   *core.Router
	verifier *core.Verifier
	sync     *core.Synchronizer

	query   *tsquery.Client
	service *tsquery.Service
	store   store.ProfileStore
	server  *http.Server

	shutdownTimeout time.Duration
}

// New constructs the application with provided configuration.
func New(cfg *config.Config, logger *zerolog.Logger) (*App, error) {
	st, err := sqlite.New(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("init store: %w", err)
	}
	logger.Info().Str("db_path", cfg.DatabasePath).Msg("database initialized")

	emitter := core.NewEmitter()
	cache := core.NewSessionCache()
	router := core.NewRouter(cache, emitter, cfg.BotNickname, cfg.EvictOnDisconnect, logger)

	query := tsquery.NewClient(fmt.Sprintf("%s:%d", cfg.TSHost, cfg.TSQueryPort), logger)
	service := tsquery.NewService(query, logger)

	provider := bnet.New(bnet.Config{
		Region:       cfg.Region,
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  cfg.BaseURL + "/callback",
	}, logger)

	verifier := core.NewVerifier(provider, cfg.Realms, cfg.GuildName, emitter, logger)
	synchronizer := core.NewSynchronizer(service, emitter, logger)

	bridge := http.NewAuthBridge(provider, verifier, emitter, logger)
	events := http.NewEventsHandler(emitter, logger)
	server, err := http.NewServer(cfg, bridge, events, emitter, logger)
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("init http server: %w", err)
	}

	return &App{
		cfg:             cfg,
		log:             logger,
		emitter:         emitter,
		cache:           cache,
		router:          router,
		verifier:        verifier,
		sync:            synchronizer,
		query:           query,
		service:         service,
		store:           st,
		server:          server,
		shutdownTimeout: cfg.ShutdownTimeout,
	}, nil
}

// Run connects the query link, starts the HTTP server, and blocks until
// context cancellation or a fatal error.
func (a *App) Run(ctx context.Context) error {
	if err := a.connectQuery(ctx); err != nil {
		a.cleanup()
		return err
	}

	go a.router.Run(ctx, a.query.Notifications())
	go a.service.KeepAlive(ctx, a.cfg.KeepAliveInterval)
	go a.dispatch(ctx)

	serverErr := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil && err != stdhttp.ErrServerClosed {
			serverErr <- err
			return
		}
		serverErr <- nil
	}()

	select {
	case err := <-serverErr:
		a.cleanup()
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
		defer cancel()

		a.log.Info().Msg("shutting down http server")
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			a.cleanup()
			return err
		}

		a.cleanup()
		return <-serverErr
	}
}

// connectQuery establishes the ServerQuery link: login, virtual server
// selection, bot nickname, and notification subscriptions.
func (a *App) connectQuery(ctx context.Context) error {
	if err := a.query.Connect(ctx); err != nil {
		return err
	}
	if err := a.service.Login(ctx, a.cfg.TSUsername, a.cfg.TSPassword); err != nil {
		return err
	}
	if err := a.service.Use(ctx, a.cfg.VirtualServer); err != nil {
		return err
	}
	if err := a.service.SetNickname(ctx, a.cfg.BotNickname); err != nil {
		a.log.Warn().Err(err).Msg("could not claim bot nickname")
	}
	for _, event := range []string{"server", "textprivate"} {
		if err := a.service.Subscribe(ctx, event); err != nil {
			return err
		}
	}

	a.emitter.Publish(core.Event{Kind: core.EventQueryConnected})
	return nil
}

// cleanup closes the query link, the event emitter, and other resources.
func (a *App) cleanup() {
	if err := a.query.Close(); err != nil {
		a.log.Warn().Err(err).Msg("failed to close query link")
	}
	a.cache.Clear()
	a.emitter.Close()
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.log.Warn().Err(err).Msg("failed to close store")
		} else {
			a.log.Info().Msg("store closed")
		}
	}
}
