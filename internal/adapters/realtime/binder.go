package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/bnema/adminkit/internal/ports"
	"github.com/coder/websocket"
	"github.com/rs/zerolog"
)

const (
	maxReadBytes = 1 << 20

	defaultReconnectAttempts = 5
	defaultReconnectDelay    = time.Second
	defaultHandshakeTimeout  = 10 * time.Second
)

var ErrNoEndpoint = errors.New("realtime endpoint is not configured")

type Config struct {
	URL                  string
	Subprotocol          string
	MaxReconnectAttempts int
	ReconnectDelay       time.Duration
	HandshakeTimeout     time.Duration
}

// Binder keeps at most one push connection, bound to the credential it was
// opened with. It knows nothing about sessions.
type Binder struct {
	cfg       Config
	logger    zerolog.Logger
	onMessage func(Envelope)

	mu     sync.Mutex
	handle *handle
}

var _ ports.RealtimeChannel = (*Binder)(nil)

type handle struct {
	credential string
	cancel     context.CancelFunc
	done       chan struct{}

	mu     sync.Mutex
	conn   *websocket.Conn
	closed bool
}

func NewBinder(cfg Config, logger zerolog.Logger, onMessage func(Envelope)) *Binder {
	if cfg.Subprotocol == "" {
		cfg.Subprotocol = DefaultSubprotocol
	}
	if cfg.MaxReconnectAttempts < 0 {
		cfg.MaxReconnectAttempts = 0
	} else if cfg.MaxReconnectAttempts == 0 {
		cfg.MaxReconnectAttempts = defaultReconnectAttempts
	}
	if cfg.ReconnectDelay <= 0 {
		cfg.ReconnectDelay = defaultReconnectDelay
	}
	if cfg.HandshakeTimeout <= 0 {
		cfg.HandshakeTimeout = defaultHandshakeTimeout
	}

	return &Binder{cfg: cfg, logger: logger, onMessage: onMessage}
}

// Open dials the endpoint and authenticates with credential. It is a no-op
// while a handle exists.
func (b *Binder) Open(ctx context.Context, credential string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.handle != nil {
		return nil
	}
	if strings.TrimSpace(b.cfg.URL) == "" {
		return ErrNoEndpoint
	}

	conn, err := b.dial(ctx, credential)
	if err != nil {
		return fmt.Errorf("dial realtime endpoint: %w", err)
	}

	loopCtx, cancel := context.WithCancel(context.Background())
	h := &handle{
		credential: credential,
		cancel:     cancel,
		done:       make(chan struct{}),
		conn:       conn,
	}
	b.handle = h

	go b.run(loopCtx, h)

	b.logger.Info().Str("url", b.cfg.URL).Msg("realtime.connected")
	return nil
}

// Close disconnects and clears the handle. Closing without a handle is a no-op.
func (b *Binder) Close() error {
	b.mu.Lock()
	h := b.handle
	b.handle = nil
	b.mu.Unlock()

	if h == nil {
		return nil
	}

	if err := h.close(); err != nil {
		b.logger.Debug().Err(err).Msg("realtime.close")
	}
	h.cancel()
	<-h.done

	b.logger.Info().Msg("realtime.disconnected")
	return nil
}

func (b *Binder) Connected() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.handle != nil
}

func (b *Binder) dial(ctx context.Context, credential string) (*websocket.Conn, error) {
	dialCtx, cancel := context.WithTimeout(ctx, b.cfg.HandshakeTimeout)
	defer cancel()

	conn, resp, err := websocket.Dial(dialCtx, b.cfg.URL, &websocket.DialOptions{
		Subprotocols: []string{b.cfg.Subprotocol},
	})
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		return nil, err
	}

	conn.SetReadLimit(maxReadBytes)

	hello, err := newEnvelope(TypeHello, HelloPayload{Token: credential})
	if err != nil {
		_ = conn.CloseNow()
		return nil, err
	}
	data, err := json.Marshal(hello)
	if err != nil {
		_ = conn.CloseNow()
		return nil, fmt.Errorf("marshal hello: %w", err)
	}
	if err := conn.Write(dialCtx, websocket.MessageText, data); err != nil {
		_ = conn.CloseNow()
		return nil, fmt.Errorf("send hello: %w", err)
	}

	return conn, nil
}

// run reads until the connection drops, then redials up to
// MaxReconnectAttempts times. A successful redial resets the attempt count.
func (b *Binder) run(ctx context.Context, h *handle) {
	defer close(h.done)

	for {
		err := b.readLoop(ctx, h.current())
		if ctx.Err() != nil || h.isClosed() {
			return
		}
		b.logger.Warn().Err(err).Msg("realtime.connection_lost")

		if !b.reconnect(ctx, h) {
			if ctx.Err() == nil {
				b.logger.Error().Int("attempts", b.cfg.MaxReconnectAttempts).Msg("realtime.reconnect_exhausted")
				b.drop(h)
			}
			return
		}
	}
}

func (b *Binder) reconnect(ctx context.Context, h *handle) bool {
	for attempt := 1; attempt <= b.cfg.MaxReconnectAttempts; attempt++ {
		timer := time.NewTimer(b.cfg.ReconnectDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return false
		case <-timer.C:
		}

		conn, err := b.dial(ctx, h.credential)
		if err != nil {
			b.logger.Warn().Err(err).Int("attempt", attempt).Msg("realtime.reconnect_failed")
			continue
		}
		if !h.replace(conn) {
			_ = conn.CloseNow()
			return false
		}

		b.logger.Info().Int("attempt", attempt).Msg("realtime.reconnected")
		return true
	}

	return false
}

func (b *Binder) readLoop(ctx context.Context, conn *websocket.Conn) error {
	for {
		typ, data, err := conn.Read(ctx)
		if err != nil {
			return err
		}
		if typ != websocket.MessageText {
			continue
		}

		var env Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			b.logger.Warn().Err(err).Msg("realtime.decode_failed")
			continue
		}
		if err := env.Validate(); err != nil {
			b.logger.Warn().Err(err).Str("type", env.Type).Msg("realtime.invalid_envelope")
			continue
		}

		if b.onMessage != nil {
			b.onMessage(env)
		}
	}
}

func (b *Binder) drop(h *handle) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.handle == h {
		b.handle = nil
	}
}

func (h *handle) current() *websocket.Conn {
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.conn
}

func (h *handle) replace(conn *websocket.Conn) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return false
	}
	h.conn = conn
	return true
}

func (h *handle) isClosed() bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.closed
}

func (h *handle) close() error {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil
	}
	h.closed = true
	conn := h.conn
	h.mu.Unlock()

	return conn.Close(websocket.StatusNormalClosure, "logout")
}
