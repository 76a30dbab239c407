package hub

import (
	"context"

	"github.com/DoyleJ11/skaters-limit/internal/lobby"
	"go.uber.org/zap"
)

type HubMsg interface{ isHubMsg() }

type CreateLobby struct {
	Code  string
	Reply chan *lobby.Lobby
}

type GetLobby struct {
	Code  string
	Reply chan *lobby.Lobby
}

type EnsureLobby struct {
	Code  string
	Reply chan *lobby.Lobby
}

type RemoveLobby struct {
	Code string
}

// Hub owns every room of the server. All rooms share the server build id and
// configuration.
type Hub struct {
	inbox   chan HubMsg
	lobbies map[string]*lobby.Lobby
	opts    lobby.Options
	log     *zap.Logger
	ctx     context.Context
	cancel  context.CancelFunc
}

type ShutdownHub struct{}

func (CreateLobby) isHubMsg() {}
func (GetLobby) isHubMsg()    {}
func (EnsureLobby) isHubMsg() {}
func (RemoveLobby) isHubMsg() {}
func (ShutdownHub) isHubMsg() {}

func NewHub(parent context.Context, opts lobby.Options) *Hub {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(parent)
	h := &Hub{
		inbox:   make(chan HubMsg, 64),
		lobbies: make(map[string]*lobby.Lobby),
		opts:    opts,
		log:     opts.Logger.Named("hub"),
		ctx:     ctx,
		cancel:  cancel,
	}
	go h.loop()
	return h
}

func (h *Hub) Inbox() chan<- HubMsg { return h.inbox }

func (h *Hub) loop() {
	for {
		select {
		case <-h.ctx.Done():
			return

		case m := <-h.inbox:
			switch msg := m.(type) {
			case CreateLobby, EnsureLobby:
				code, reply := lobbyRequest(msg)
				if lb := h.lobbies[code]; lb != nil {
					reply <- lb
					break
				}
				reply <- h.create(code) // nil on failure

			case GetLobby:
				msg.Reply <- h.lobbies[msg.Code] // May be nil

			case RemoveLobby:
				if lb := h.lobbies[msg.Code]; lb != nil {
					lb.Inbox() <- lobby.Shutdown{}
				}
				delete(h.lobbies, msg.Code)

			case ShutdownHub:
				for _, lb := range h.lobbies {
					lb.Inbox() <- lobby.Shutdown{}
				}
				clear(h.lobbies)
				h.cancel()
			}
		}
	}
}

func lobbyRequest(m HubMsg) (string, chan *lobby.Lobby) {
	switch msg := m.(type) {
	case CreateLobby:
		return msg.Code, msg.Reply
	case EnsureLobby:
		return msg.Code, msg.Reply
	}
	return "", nil
}

func (h *Hub) create(code string) *lobby.Lobby {
	opts := h.opts
	opts.Logger = h.opts.Logger.With(zap.String("lobby", code))

	lb, err := lobby.NewLobby(h.ctx, opts)
	if err != nil {
		h.log.Error("Failed to create lobby", zap.String("code", code), zap.Error(err))
		return nil
	}
	h.lobbies[code] = lb
	h.log.Info("Created lobby", zap.String("code", code))
	return lb
}
