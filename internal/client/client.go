// Package client is the player side: it keeps the configuration the server
// delivers and decides, before the host commits a position claim, whether the
// claim is allowed.
package client

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/DoyleJ11/skaters-limit/internal/channel"
	"github.com/DoyleJ11/skaters-limit/internal/config"
	"github.com/DoyleJ11/skaters-limit/internal/engine"
	"github.com/DoyleJ11/skaters-limit/internal/protocol"
	"github.com/coder/websocket"
	"go.uber.org/zap"
)

const writeTimeout = 3 * time.Second

var ErrNotConnected = errors.New("not connected")

// RosterProvider returns the host's current positions. It is called once per
// claim and the result is never kept.
type RosterProvider interface {
	Snapshot() (engine.Roster, error)
}

type IdentityProvider interface {
	LocalIdentity() string
}

// Notifier shows a message to the local player, e.g. in the chat.
type Notifier interface {
	Notify(msg string)
}

// KickedError is returned by Run when the server closed the connection
// because of a version mismatch or another policy.
type KickedError struct {
	Reason string
}

func (e *KickedError) Error() string {
	return fmt.Sprintf("kicked by server: %s", e.Reason)
}

type Options struct {
	BuildID  string
	Policy   protocol.AdoptionPolicy
	Roster   RosterProvider
	Identity IdentityProvider
	Notifier Notifier
	Logger   *zap.Logger
}

type Client struct {
	opts       Options
	proto      *protocol.Client
	dispatcher *channel.Dispatcher
	log        *zap.Logger

	mu      sync.Mutex
	conn    *websocket.Conn
	closing atomic.Bool
}

func New(opts Options) *Client {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	c := &Client{
		opts:       opts,
		dispatcher: channel.NewDispatcher(opts.Logger),
		log:        opts.Logger.Named("client"),
	}
	c.proto = protocol.NewClient(opts.BuildID, opts.Policy, c, opts.Logger)
	c.proto.Register(c.dispatcher)
	return c
}

// Connect dials the server room at url, e.g. ws://host:8080/ws?code=ABC123.
func (c *Client) Connect(ctx context.Context, url string) error {
	conn, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		return fmt.Errorf("dialing %s: %w", url, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn != nil {
		c.conn.CloseNow()
	}
	c.conn = conn
	c.closing.Store(false)
	c.log.Info("Connected", zap.String("url", url))
	return nil
}

// Run reads frames until the connection ends. The delivered configuration is
// dropped when it returns so it never carries over to another server.
func (c *Client) Run(ctx context.Context) error {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		return ErrNotConnected
	}

	defer func() {
		c.mu.Lock()
		if c.conn == conn {
			c.conn = nil
		}
		c.mu.Unlock()
		conn.CloseNow()
		c.proto.Reset()
		c.log.Info("Session ended, config reset")
	}()

	for {
		typ, data, err := conn.Read(ctx)
		if err != nil {
			if c.closing.Load() {
				return nil
			}
			var ce websocket.CloseError
			if errors.As(err, &ce) {
				switch ce.Code {
				case websocket.StatusNormalClosure, websocket.StatusGoingAway:
					return nil
				case websocket.StatusPolicyViolation:
					return &KickedError{Reason: ce.Reason}
				}
			}
			return err
		}
		if typ != websocket.MessageBinary {
			continue
		}
		// Errors are logged by the dispatcher; keep reading.
		_ = c.HandleFrame(data)
	}
}

// HandleFrame dispatches one transport frame received from the server.
func (c *Client) HandleFrame(data []byte) error {
	ch, frame, err := channel.Unwrap(data)
	if err != nil {
		c.log.Warn("Dropping frame", zap.Error(err))
		return err
	}
	return c.dispatcher.Dispatch(ch, protocol.ServerID, frame)
}

// Send implements protocol.Sender.
func (c *Client) Send(ch channel.Channel, _ string, frame []byte) error {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		return ErrNotConnected
	}

	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	return conn.Write(ctx, websocket.MessageBinary, channel.Wrap(ch, frame))
}

// Close ends the session.
func (c *Client) Close() error {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		return nil
	}
	c.closing.Store(true)
	if err := conn.Close(websocket.StatusNormalClosure, "bye"); err != nil {
		c.log.Debug("Close handshake incomplete", zap.Error(err))
	}
	return nil
}

func (c *Client) Config() config.Configuration {
	return c.proto.Config()
}

func (c *Client) Handshake() protocol.HandshakeState {
	return c.proto.Handshake()
}
