package protocol

import (
	"fmt"

	"github.com/DoyleJ11/skaters-limit/internal/channel"
	"github.com/DoyleJ11/skaters-limit/internal/config"
	"github.com/DoyleJ11/skaters-limit/pkg/types"
	"go.uber.org/zap"
)

type SessionState int

const (
	StateConnected SessionState = iota
	StateAnnounced
	StateKickRequested
	StateDisconnected
)

func (s SessionState) String() string {
	switch s {
	case StateConnected:
		return "connected"
	case StateAnnounced:
		return "announced"
	case StateKickRequested:
		return "kick_requested"
	case StateDisconnected:
		return "disconnected"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

type Session struct {
	ID    string
	State SessionState
}

// Server announces the build id and configuration to every new connection and
// disconnects clients that ask to be kicked. It is not safe for concurrent
// use; the owning loop serializes every call.
type Server struct {
	buildID   string
	payload   string
	transport Transport
	sessions  map[string]*Session
	log       *zap.Logger
}

func NewServer(buildID string, cfg config.Configuration, transport Transport, logger *zap.Logger) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	payload, err := cfg.Serialize()
	if err != nil {
		return nil, err
	}
	return &Server{
		buildID:   buildID,
		payload:   payload,
		transport: transport,
		sessions:  make(map[string]*Session),
		log:       logger.Named("protocol"),
	}, nil
}

// Register installs the server handlers on d.
func (s *Server) Register(d *channel.Dispatcher) {
	d.Register(channel.FromClient, types.MessageKick, s.handleKick)
}

// OnConnect starts a session for id and sends the version and configuration
// announcements, in that order.
func (s *Server) OnConnect(id string) {
	sess := &Session{ID: id, State: StateConnected}
	s.sessions[id] = sess

	if err := send(s.transport, channel.FromServer, id, types.MessageVersion, s.buildID); err != nil {
		s.log.Error("Failed to announce version", zap.String("connId", id), zap.Error(err))
	}
	if err := send(s.transport, channel.FromServer, id, types.MessageConfig, s.payload); err != nil {
		s.log.Error("Failed to announce config", zap.String("connId", id), zap.Error(err))
	}
	sess.State = StateAnnounced
	s.log.Info("Announced version and config", zap.String("connId", id), zap.String("version", s.buildID))
}

func (s *Server) OnDisconnect(id string) {
	delete(s.sessions, id)
}

func (s *Server) Session(id string) (Session, bool) {
	sess, has := s.sessions[id]
	if !has {
		return Session{}, false
	}
	return *sess, true
}

func (s *Server) NumSessions() int {
	return len(s.sessions)
}

func (s *Server) handleKick(sender, payload string) error {
	if payload != types.KickPayload {
		s.log.Debug("Ignoring kick request", zap.String("connId", sender), zap.String("payload", payload))
		return nil
	}

	sess, has := s.sessions[sender]
	if !has {
		s.log.Warn("Kick request from unknown connection", zap.String("connId", sender))
		return nil
	}
	if sess.State == StateKickRequested || sess.State == StateDisconnected {
		return nil
	}

	sess.State = StateKickRequested
	s.log.Info("Kicking client", zap.String("connId", sender))
	if err := s.transport.Disconnect(sender, types.KickReason); err != nil {
		return fmt.Errorf("disconnecting %s: %w", sender, err)
	}
	sess.State = StateDisconnected
	return nil
}
