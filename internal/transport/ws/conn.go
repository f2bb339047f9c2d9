package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/vonhatphuongahihi/PetZone-App-sub000/internal/eventbus"
	"github.com/vonhatphuongahihi/PetZone-App-sub000/internal/observability"
)

const (
	writeWait      = 10 * time.Second
	dialTimeout    = 15 * time.Second
	pingInterval   = 30 * time.Second
	maxMessageSize = 1 << 20
	sendBufSize    = 256
)

// TokenSource yields the bearer credential. It is consulted on every dial.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

type ConnConfig struct {
	URL    string
	Tokens TokenSource

	// ReconnectInterval paces dial attempts. MaxReconnectAttempts bounds
	// consecutive failed dials before the Conn gives up; zero means never.
	ReconnectInterval    time.Duration
	MaxReconnectAttempts int
	SendBuffer           int

	HTTPClient *http.Client
	Logger     *zap.Logger
	Metrics    *observability.Metrics
}

// Conn is one logical connection to the chat server. It survives transport
// drops by redialing, and raises connect / disconnect to its own listeners
// every time the underlying websocket comes and goes.
type Conn struct {
	cfg       ConnConfig
	logger    *zap.Logger
	listeners *eventbus.Emitter[EventType]
	send      chan []byte
	connected atomic.Bool

	ctx     context.Context
	cancel  context.CancelFunc
	started atomic.Bool
	done    chan struct{}
	once    sync.Once
}

func NewConn(cfg ConnConfig) *Conn {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.SendBuffer <= 0 {
		cfg.SendBuffer = sendBufSize
	}
	if cfg.ReconnectInterval <= 0 {
		cfg.ReconnectInterval = time.Second
	}
	logger := cfg.Logger.Named("ws")

	ctx, cancel := context.WithCancel(context.Background())
	return &Conn{
		cfg:       cfg,
		logger:    logger,
		listeners: eventbus.NewEmitter[EventType](logger, cfg.Metrics),
		send:      make(chan []byte, cfg.SendBuffer),
		ctx:       ctx,
		cancel:    cancel,
		done:      make(chan struct{}),
	}
}

// Start launches the dial loop. Listeners registered before Start observe
// the first connect.
func (c *Conn) Start() {
	if c.started.CompareAndSwap(false, true) {
		go c.run()
	}
}

// Close stops the Conn for good and waits for its goroutines.
func (c *Conn) Close() {
	c.once.Do(c.cancel)
	if c.started.Load() {
		<-c.done
	}
}

// Closed reports whether the Conn was closed or gave up reconnecting.
func (c *Conn) Closed() bool {
	return c.ctx.Err() != nil
}

func (c *Conn) Connected() bool {
	return c.connected.Load()
}

func (c *Conn) On(evt EventType, h eventbus.Handler) eventbus.Subscription {
	return c.listeners.Subscribe(evt, h)
}

func (c *Conn) Off(sub eventbus.Subscription) bool {
	return c.listeners.Unsubscribe(sub)
}

func (c *Conn) ListenerCount(evt EventType) int {
	return c.listeners.Len(evt)
}

// Emit queues an event for the server. Frames queued while disconnected are
// flushed after the next successful dial.
func (c *Conn) Emit(evt EventType, payload any) error {
	if c.Closed() {
		return ErrClosed
	}
	env, err := NewEnvelope(evt, payload)
	if err != nil {
		return fmt.Errorf("encode %s: %w", evt, err)
	}
	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("encode %s: %w", evt, err)
	}

	select {
	case c.send <- data:
		return nil
	default:
		return ErrSendBufferFull
	}
}

func (c *Conn) run() {
	defer close(c.done)

	limiter := rate.NewLimiter(rate.Every(c.cfg.ReconnectInterval), 1)
	failures := 0
	for {
		if err := limiter.Wait(c.ctx); err != nil {
			return
		}

		conn, err := c.dial(c.ctx)
		c.cfg.Metrics.Dial(err == nil)
		if err != nil {
			if c.ctx.Err() != nil {
				return
			}
			failures++
			c.logger.Warn("ws: dial failed", zap.Int("attempt", failures), zap.Error(err))
			if c.cfg.MaxReconnectAttempts > 0 && failures >= c.cfg.MaxReconnectAttempts {
				c.logger.Error("ws: giving up reconnecting", zap.Int("attempts", failures))
				c.once.Do(c.cancel)
				return
			}
			continue
		}
		failures = 0

		c.connected.Store(true)
		c.cfg.Metrics.Connected()
		c.logger.Info("ws: connected")
		c.raise(EventConnect, nil)

		reason := c.serve(conn)

		c.connected.Store(false)
		c.cfg.Metrics.Disconnected()
		c.logger.Info("ws: disconnected", zap.String("reason", reason))
		c.raise(EventDisconnect, DisconnectPayload{Reason: reason})

		if c.ctx.Err() != nil {
			return
		}
	}
}

// dial reads the credential fresh, so a re-issued token is honoured on the
// next reconnect.
func (c *Conn) dial(ctx context.Context) (*websocket.Conn, error) {
	token, err := c.cfg.Tokens.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("read credential: %w", err)
	}

	u, err := url.Parse(c.cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse socket url: %w", err)
	}
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()

	header := http.Header{}
	header.Set("Authorization", "Bearer "+token)

	dctx, cancel := context.WithTimeout(ctx, dialTimeout)
	defer cancel()

	conn, _, err := websocket.Dial(dctx, u.String(), &websocket.DialOptions{
		HTTPClient: c.cfg.HTTPClient,
		HTTPHeader: header,
	})
	if err != nil {
		return nil, err
	}
	conn.SetReadLimit(maxMessageSize)
	return conn, nil
}

// serve pumps frames until either direction fails or the Conn is closed,
// and returns a short reason for the disconnect.
func (c *Conn) serve(conn *websocket.Conn) string {
	ctx, cancel := context.WithCancel(c.ctx)
	defer cancel()

	writeDone := make(chan struct{})
	go func() {
		defer close(writeDone)
		defer cancel()
		if err := c.writePump(ctx, conn); err != nil && ctx.Err() == nil {
			c.logger.Warn("ws: write error", zap.Error(err))
		}
	}()

	err := c.readPump(ctx, conn)
	cancel()
	<-writeDone

	switch {
	case c.ctx.Err() != nil:
		conn.Close(websocket.StatusNormalClosure, "")
		return "client closed"
	case websocket.CloseStatus(err) != -1:
		return "server closed: " + websocket.CloseStatus(err).String()
	default:
		conn.CloseNow()
		return "transport error"
	}
}

func (c *Conn) readPump(ctx context.Context, conn *websocket.Conn) error {
	for {
		var env Envelope
		if err := wsjson.Read(ctx, conn, &env); err != nil {
			if ctx.Err() == nil && websocket.CloseStatus(err) == -1 {
				c.logger.Warn("ws: read error", zap.Error(err))
			}
			return err
		}
		c.cfg.Metrics.EventReceived(string(env.Type))
		c.listeners.Publish(env.Type, env.Payload)
	}
}

func (c *Conn) writePump(ctx context.Context, conn *websocket.Conn) error {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case message := <-c.send:
			wctx, cancel := context.WithTimeout(ctx, writeWait)
			err := conn.Write(wctx, websocket.MessageText, message)
			cancel()
			if err != nil {
				return err
			}

		case <-ticker.C:
			pctx, cancel := context.WithTimeout(ctx, writeWait)
			err := conn.Ping(pctx)
			cancel()
			if err != nil {
				return err
			}

		case <-ctx.Done():
			return nil
		}
	}
}

// raise delivers a locally generated lifecycle event to listeners using the
// same raw payload shape as server frames.
func (c *Conn) raise(evt EventType, payload any) {
	var raw json.RawMessage
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			c.logger.Error("ws: encode lifecycle event", zap.String("event", string(evt)), zap.Error(err))
			return
		}
		raw = b
	}
	c.listeners.Publish(evt, raw)
}
