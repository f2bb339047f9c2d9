package ws

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/vonhatphuongahihi/PetZone-App-sub000/internal/eventbus"
	"github.com/vonhatphuongahihi/PetZone-App-sub000/internal/repository"
)

// Manager owns the single shared chat connection of the process.
type Manager struct {
	cfg    ConnConfig
	bus    *eventbus.Bus
	clock  clockwork.Clock
	logger *zap.Logger

	mu        sync.Mutex
	conn      *Conn
	installed bool
}

func NewManager(cfg ConnConfig, bus *eventbus.Bus, clock clockwork.Clock) *Manager {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Manager{
		cfg:    cfg,
		bus:    bus,
		clock:  clock,
		logger: cfg.Logger.Named("ws.manager"),
	}
}

// Acquire returns the live connection, creating it when there is none or
// the previous one was closed. It does not wait for the connection to come
// up; callers should not assume Connected.
func (m *Manager) Acquire(ctx context.Context) (Socket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.conn != nil && !m.conn.Closed() {
		return m.conn, nil
	}

	if err := m.checkCredential(ctx); err != nil {
		return nil, err
	}

	conn := NewConn(m.cfg)
	m.conn = conn
	m.installed = false
	m.installRelay(conn)
	conn.Start()
	return conn, nil
}

// Release closes and forgets the shared connection. The next Acquire dials
// again with a freshly read credential.
func (m *Manager) Release() {
	m.mu.Lock()
	conn := m.conn
	m.conn = nil
	m.installed = false
	m.mu.Unlock()

	if conn != nil {
		conn.Close()
		m.logger.Info("ws: shared connection released")
	}
}

// checkCredential fails fast when there is nothing to authenticate with.
// Tokens that are not JWTs are passed through for the server to judge.
func (m *Manager) checkCredential(ctx context.Context) error {
	token, err := m.cfg.Tokens.Token(ctx)
	if errors.Is(err, repository.ErrNoCredential) || (err == nil && token == "") {
		return repository.ErrNoCredential
	}
	if err != nil {
		return fmt.Errorf("read credential: %w", err)
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil
	}
	exp, err := claims.GetExpirationTime()
	if err == nil && exp != nil && exp.Before(m.clock.Now()) {
		return ErrCredentialExpired
	}
	return nil
}

// installRelay republishes the connection level events onto the Bus. Each
// connection object gets exactly one set of relay listeners.
func (m *Manager) installRelay(conn *Conn) {
	if m.installed {
		return
	}
	m.installed = true

	logger := m.logger
	bus := m.bus

	conn.On(EventConnect, func(any) {
		bus.Publish(eventbus.Connected, eventbus.ConnectionPayload{})
	})
	conn.On(EventDisconnect, Typed(logger, EventDisconnect, func(p DisconnectPayload) {
		bus.Publish(eventbus.Disconnected, eventbus.ConnectionPayload{Reason: p.Reason})
	}))
	conn.On(EventUserOnline, Typed(logger, EventUserOnline, func(p UserPayload) {
		bus.Publish(eventbus.PeerOnline, eventbus.PresencePayload{UserID: p.UserID})
	}))
	conn.On(EventUserOffline, Typed(logger, EventUserOffline, func(p UserPayload) {
		bus.Publish(eventbus.PeerOffline, eventbus.PresencePayload{UserID: p.UserID})
	}))
	conn.On(EventTyping, Typed(logger, EventTyping, func(p UserPayload) {
		bus.Publish(eventbus.Typing, eventbus.TypingPayload{UserID: p.UserID, ConversationID: p.ConversationID})
	}))
	conn.On(EventStopTyping, Typed(logger, EventStopTyping, func(p UserPayload) {
		bus.Publish(eventbus.StopTyping, eventbus.TypingPayload{UserID: p.UserID, ConversationID: p.ConversationID})
	}))
	conn.On(EventConversationUnread, Typed(logger, EventConversationUnread, func(p eventbus.ConversationPayload) {
		bus.Publish(eventbus.ConversationUnread, p)
	}))
	conn.On(EventConversationRead, Typed(logger, EventConversationRead, func(p eventbus.ConversationPayload) {
		bus.Publish(eventbus.ConversationRead, p)
	}))
}

// RelayedEvents lists the connection events the Manager forwards to the Bus.
var RelayedEvents = []EventType{
	EventConnect, EventDisconnect,
	EventUserOnline, EventUserOffline,
	EventTyping, EventStopTyping,
	EventConversationUnread, EventConversationRead,
}
