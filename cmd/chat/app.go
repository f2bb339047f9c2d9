package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/vonhatphuongahihi/PetZone-App-sub000/internal/config"
	"github.com/vonhatphuongahihi/PetZone-App-sub000/internal/database"
	"github.com/vonhatphuongahihi/PetZone-App-sub000/internal/domain"
	"github.com/vonhatphuongahihi/PetZone-App-sub000/internal/eventbus"
	"github.com/vonhatphuongahihi/PetZone-App-sub000/internal/logging"
	"github.com/vonhatphuongahihi/PetZone-App-sub000/internal/observability"
	"github.com/vonhatphuongahihi/PetZone-App-sub000/internal/repository"
	badgerrepo "github.com/vonhatphuongahihi/PetZone-App-sub000/internal/repository/badger"
	postgresrepo "github.com/vonhatphuongahihi/PetZone-App-sub000/internal/repository/postgres"
	"github.com/vonhatphuongahihi/PetZone-App-sub000/internal/service"
	"github.com/vonhatphuongahihi/PetZone-App-sub000/internal/transport/http/api"
	"github.com/vonhatphuongahihi/PetZone-App-sub000/internal/transport/ws"
)

// app holds every long-lived component of one CLI invocation.
type app struct {
	cfg     *config.Config
	logger  *zap.Logger
	clock   clockwork.Clock
	metrics *observability.Metrics

	tokens        repository.TokenStore
	notifications repository.NotificationStore

	api           *api.Client
	bus           *eventbus.Bus
	sockets       *ws.Manager
	auth          *service.AuthService
	conversations *service.ConversationService
	inbox         *service.InboxService

	closers []func()
}

func newApp(ctx context.Context, cfgPath string) (*app, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(cfg.LogLevel, cfg.Development)
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg:    cfg,
		logger: logger,
		clock:  clockwork.NewRealClock(),
	}
	a.closers = append(a.closers, func() { _ = logger.Sync() })

	reg := prometheus.NewRegistry()
	a.metrics = observability.NewMetrics(reg)
	if cfg.MetricsAddr != "" {
		a.serveMetrics(reg)
	}

	if err := a.openStore(ctx); err != nil {
		a.close()
		return nil, err
	}

	a.api = api.New(api.Config{
		BaseURL:       cfg.APIBaseURL,
		Tokens:        a.tokens,
		Timeout:       cfg.Chat.RequestTimeout,
		ImageMaxBytes: cfg.Chat.ImageMaxBytes,
		Logger:        logger,
		Metrics:       a.metrics,
	})
	a.bus = eventbus.New(logger, a.metrics)
	a.sockets = ws.NewManager(ws.ConnConfig{
		URL:                  cfg.SocketURL,
		Tokens:               a.tokens,
		ReconnectInterval:    cfg.Socket.ReconnectInterval,
		MaxReconnectAttempts: cfg.Socket.MaxReconnectAttempts,
		SendBuffer:           cfg.Socket.SendBuffer,
		Logger:               logger,
		Metrics:              a.metrics,
	}, a.bus, a.clock)

	a.auth = service.NewAuthService(a.tokens, a.notifications, a.sockets, a.clock, logger)
	a.conversations = service.NewConversationService(a.api, a.notifications)
	a.inbox = service.NewInboxService(a.bus, a.notifications, a.clock, logger)
	a.inbox.Start()
	a.closers = append(a.closers, a.inbox.Stop)

	return a, nil
}

// openStore selects the credential and notification backend.
func (a *app) openStore(ctx context.Context) error {
	sc := a.cfg.Store
	switch sc.Driver {
	case "postgres":
		pool, err := database.Connect(ctx, sc.DatabaseURL)
		if err != nil {
			return err
		}
		a.closers = append(a.closers, pool.Close)
		if err := database.Migrate(ctx, pool); err != nil {
			return err
		}
		a.tokens = postgresrepo.NewTokenRepo(pool, sc.Profile)
		a.notifications = postgresrepo.NewNotificationRepo(pool, sc.Profile)
		a.logger.Info("using postgres store", zap.String("profile", sc.Profile))

	case "memory":
		a.tokens = repository.NewMemoryTokenStore("")
		a.notifications = repository.NewMemoryNotificationStore()

	default:
		db, err := badgerrepo.Open(badgerrepo.Config{Path: sc.Path, Logger: a.logger})
		if err != nil {
			return err
		}
		a.closers = append(a.closers, func() {
			if err := db.Close(); err != nil {
				a.logger.Warn("closing badger", zap.Error(err))
			}
		})
		a.tokens = badgerrepo.NewTokenRepo(db)
		a.notifications = badgerrepo.NewNotificationRepo(db)
	}

	if sc.Key != "" {
		key, err := repository.DecodeKey(sc.Key)
		if err != nil {
			return err
		}
		sealed, err := repository.NewSealedTokenStore(a.tokens, key)
		if err != nil {
			return err
		}
		a.tokens = sealed
	}
	return nil
}

func (a *app) serveMetrics(reg *prometheus.Registry) {
	mux := http.NewServeMux()
	mux.Handle("GET /metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	srv := &http.Server{
		Addr:              a.cfg.MetricsAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		a.logger.Warn("metrics listener", zap.String("addr", srv.Addr), zap.Error(err))
		return
	}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Warn("metrics server stopped", zap.Error(err))
		}
	}()
	a.closers = append(a.closers, func() { _ = srv.Close() })
	a.logger.Info("serving metrics", zap.String("addr", ln.Addr().String()))
}

func (a *app) newSession(id domain.ID, p service.Presenter, picker service.ImagePicker) *service.ChatSession {
	return service.NewChatSession(id, service.ChatSessionOptions{
		API:              a.api,
		Sockets:          a.sockets,
		Bus:              a.bus,
		Presenter:        p,
		Picker:           picker,
		Clock:            a.clock,
		Logger:           a.logger,
		PageSize:         a.cfg.Chat.PageSize,
		TypingIdle:       a.cfg.Chat.TypingIdle,
		ReadReceiptDelay: a.cfg.Chat.ReadReceiptDelay,
	})
}

// close runs the closers in reverse order. The shared socket is left to
// logout; the process exit drops it.
func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
