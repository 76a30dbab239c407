package lobby

import (
	"context"
	"fmt"

	"github.com/DoyleJ11/skaters-limit/internal/channel"
	"github.com/DoyleJ11/skaters-limit/internal/config"
	"github.com/DoyleJ11/skaters-limit/internal/protocol"
	"go.uber.org/zap"
)

type Msg interface{ isLobbyMsg() }

// FromClient carries one transport frame read from a connection.
type FromClient struct {
	ConnID string
	Data   []byte
}

func (FromClient) isLobbyMsg() {}

type Join struct {
	ConnID string
	Outbox chan Outbound // where this connection wants to receive frames
}

func (Join) isLobbyMsg() {}

type Leave struct{ ConnID string }

func (Leave) isLobbyMsg() {}

type Shutdown struct{}

func (Shutdown) isLobbyMsg() {}

type GetState struct {
	Reply chan View
}

func (GetState) isLobbyMsg() {}

// Outbound is a frame for the connection's writer. A Close frame is the last
// one the writer will see; it should close the connection with Reason.
type Outbound struct {
	Data   []byte
	Close  bool
	Reason string
}

type SessionView struct {
	ConnID string `json:"conn_id"`
	State  string `json:"state"`
}

type View struct {
	NumClients int           `json:"num_clients"`
	Sessions   []SessionView `json:"sessions"`
}

type Options struct {
	BuildID string
	Config  config.Configuration
	Logger  *zap.Logger
}

// Lobby is one game room. Its loop goroutine is the only one that touches the
// protocol state, so handlers never need locks.
type Lobby struct {
	inbox      chan Msg
	clients    map[string]chan Outbound
	dispatcher *channel.Dispatcher
	proto      *protocol.Server
	log        *zap.Logger
	ctx        context.Context
	cancel     context.CancelFunc
}

func NewLobby(parent context.Context, opts Options) (*Lobby, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	ctx, cancel := context.WithCancel(parent)

	l := &Lobby{
		inbox:      make(chan Msg, 64), // Small buffer
		clients:    make(map[string]chan Outbound),
		dispatcher: channel.NewDispatcher(logger),
		log:        logger,
		ctx:        ctx,
		cancel:     cancel,
	}

	proto, err := protocol.NewServer(opts.BuildID, opts.Config, l, logger)
	if err != nil {
		cancel()
		return nil, err
	}
	proto.Register(l.dispatcher)
	l.proto = proto

	go l.loop()
	return l, nil
}

func (l *Lobby) loop() {
	for {
		select {
		case <-l.ctx.Done():
			l.shutdown()
			return

		case m := <-l.inbox:
			switch msg := m.(type) {
			case Join:
				l.clients[msg.ConnID] = msg.Outbox
				l.proto.OnConnect(msg.ConnID)

			case Leave:
				l.proto.OnDisconnect(msg.ConnID)
				l.drop(msg.ConnID)

			case FromClient:
				ch, frame, err := channel.Unwrap(msg.Data)
				if err != nil {
					l.log.Warn("Dropping frame", zap.String("connId", msg.ConnID), zap.Error(err))
					break
				}
				if ch != channel.FromClient {
					l.log.Warn("Client sent a frame on the server channel", zap.String("connId", msg.ConnID))
					break
				}
				// Errors are already logged by the dispatcher.
				_ = l.dispatcher.Dispatch(ch, msg.ConnID, frame)

			case GetState:
				// Snapshot for the HTTP API and tests, taken on the loop goroutine.
				v := View{NumClients: len(l.clients)}
				for id := range l.clients {
					if sess, ok := l.proto.Session(id); ok {
						v.Sessions = append(v.Sessions, SessionView{ConnID: id, State: sess.State.String()})
					}
				}
				msg.Reply <- v

			case Shutdown:
				l.shutdown()
				return
			}
		}
	}
}

func (l *Lobby) shutdown() {
	for id, ch := range l.clients {
		close(ch) // Tell writer no more frames
		delete(l.clients, id)
	}
	l.cancel()
}

func (l *Lobby) drop(id string) {
	if ch, has := l.clients[id]; has {
		close(ch)
		delete(l.clients, id)
	}
}

// Send implements protocol.Sender. It runs on the loop goroutine.
func (l *Lobby) Send(ch channel.Channel, to string, frame []byte) error {
	out, has := l.clients[to]
	if !has {
		return fmt.Errorf("no connection %s", to)
	}
	select {
	case out <- Outbound{Data: channel.Wrap(ch, frame)}:
		return nil
	default:
		// Writer is slow/full - drop it.
		l.proto.OnDisconnect(to)
		l.drop(to)
		return fmt.Errorf("outbox full for %s", to)
	}
}

// Disconnect implements protocol.Transport.
func (l *Lobby) Disconnect(to string, reason string) error {
	out, has := l.clients[to]
	if !has {
		return fmt.Errorf("no connection %s", to)
	}
	select {
	case out <- Outbound{Close: true, Reason: reason}:
	default:
	}
	close(out)
	delete(l.clients, to)
	return nil
}

// Inbox is where the WS layer and tests post messages.
func (l *Lobby) Inbox() chan<- Msg { return l.inbox }

// Done is closed once the lobby loop has stopped.
func (l *Lobby) Done() <-chan struct{} { return l.ctx.Done() }
