package protocol

import (
	"fmt"
	"sync/atomic"

	"github.com/DoyleJ11/skaters-limit/internal/channel"
	"github.com/DoyleJ11/skaters-limit/internal/config"
	"github.com/DoyleJ11/skaters-limit/pkg/types"
	"go.uber.org/zap"
)

// AdoptionPolicy decides what happens when a configuration arrives while one
// from the server is already in use.
type AdoptionPolicy int

const (
	// FirstWins keeps the first delivered configuration until Reset.
	FirstWins AdoptionPolicy = iota
	// LatestWins replaces the configuration on every delivery.
	LatestWins
)

type HandshakeState int32

const (
	HandshakePending HandshakeState = iota
	HandshakeAcknowledged
	HandshakeKickRequested
)

func (s HandshakeState) String() string {
	switch s {
	case HandshakePending:
		return "pending"
	case HandshakeAcknowledged:
		return "acknowledged"
	case HandshakeKickRequested:
		return "kick_requested"
	default:
		return fmt.Sprintf("handshake(%d)", int32(s))
	}
}

// Client checks the announced build id and keeps the configuration delivered
// by the server. Handlers run on the read loop; Config may be called from
// anywhere and always sees a whole configuration.
type Client struct {
	buildID string
	policy  AdoptionPolicy
	sender  Sender

	current   atomic.Pointer[config.Configuration]
	handshake atomic.Int32

	log *zap.Logger
}

func NewClient(buildID string, policy AdoptionPolicy, sender Sender, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Client{
		buildID: buildID,
		policy:  policy,
		sender:  sender,
		log:     logger.Named("protocol"),
	}
	c.Reset()
	return c
}

// Register installs the client handlers on d.
func (c *Client) Register(d *channel.Dispatcher) {
	d.Register(channel.FromServer, types.MessageVersion, c.handleVersion)
	d.Register(channel.FromServer, types.MessageConfig, c.handleConfig)
}

// Config returns the configuration in effect. Before the server delivers one
// this is config.Default, which enforces nothing.
func (c *Client) Config() config.Configuration {
	return c.current.Load().Clone()
}

func (c *Client) Handshake() HandshakeState {
	return HandshakeState(c.handshake.Load())
}

// Reset drops the server configuration so it does not carry over to the next
// session.
func (c *Client) Reset() {
	d := config.Default()
	c.current.Store(&d)
	c.handshake.Store(int32(HandshakePending))
}

func (c *Client) handleVersion(sender, payload string) error {
	if payload == c.buildID {
		c.handshake.Store(int32(HandshakeAcknowledged))
		return nil
	}

	c.log.Warn("Server runs a different version, asking to be kicked",
		zap.String("server", payload),
		zap.String("client", c.buildID))
	c.handshake.Store(int32(HandshakeKickRequested))
	return send(c.sender, channel.FromClient, sender, types.MessageKick, types.KickPayload)
}

func (c *Client) handleConfig(_ string, payload string) error {
	cfg, err := config.Deserialize(payload)
	if err != nil {
		// Keep whatever is in effect.
		return err
	}

	if c.policy == FirstWins && c.current.Load().SentByServer {
		c.log.Debug("Ignoring config, one is already in effect")
		return nil
	}

	cfg.SentByServer = true
	c.current.Store(&cfg)
	c.log.Info("Adopted server config",
		zap.Int("maxSkaters", cfg.MaxSkatersPerTeam),
		zap.Bool("teamBalancing", cfg.TeamBalancing),
		zap.Bool("teamBalancingGoalie", cfg.TeamBalancingGoalie),
		zap.Int("teamBalanceOffset", cfg.TeamBalanceOffset))
	return nil
}
