package ws

import (
	"context"
	"net/http"
	"time"

	"github.com/DoyleJ11/skaters-limit/internal/hub"
	"github.com/DoyleJ11/skaters-limit/internal/lobby"
	"github.com/DoyleJ11/skaters-limit/internal/logx"
	"github.com/coder/websocket"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	writeTimeout = 3 * time.Second
	maxFrameSize = 64 << 10

	// Inbound frames per second a single connection may send.
	frameRate  = 20
	frameBurst = 40
)

func Handler(h *hub.Hub, logger *zap.Logger) http.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(w http.ResponseWriter, r *http.Request) {
		code := r.URL.Query().Get("code")
		if code == "" {
			http.Error(w, "missing code", http.StatusBadRequest)
			return
		}

		reply := make(chan *lobby.Lobby, 1)
		h.Inbox() <- hub.GetLobby{Code: code, Reply: reply}
		lb := <-reply
		if lb == nil {
			http.Error(w, "lobby not found", http.StatusNotFound)
			return
		}

		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			// In dev ONLY, you can loosen origin checks:
			// OriginPatterns: []string{"http://localhost:*", "http://127.0.0.1:*"},
		})
		if err != nil {
			return
		}
		defer conn.CloseNow()
		conn.SetReadLimit(maxFrameSize)

		connID := uuid.NewString()
		ctx := logx.With(r.Context(), logger, zap.String("lobby", code), zap.String("connId", connID))
		log := logx.From(ctx)
		log.Info("Client connected")

		out := make(chan lobby.Outbound, 8)
		if !send(lb, lobby.Join{ConnID: connID, Outbox: out}) {
			conn.Close(websocket.StatusGoingAway, "lobby closed")
			return
		}
		defer send(lb, lobby.Leave{ConnID: connID})

		// Writer goroutine
		writeCtx, writeCancel := context.WithCancel(ctx)
		defer writeCancel()
		go writeLoop(writeCtx, conn, out)

		// Reader loop
		limiter := rate.NewLimiter(rate.Limit(frameRate), frameBurst)
		for {
			typ, data, err := conn.Read(ctx)
			if err != nil {
				// Treat clean close/going-away as normal:
				switch websocket.CloseStatus(err) {
				case websocket.StatusNormalClosure, websocket.StatusGoingAway:
					log.Info("Client disconnected")
				default:
					log.Debug("Read failed", zap.Error(err))
				}
				return
			}

			if typ != websocket.MessageBinary {
				log.Warn("Dropping non binary frame")
				continue
			}
			if !limiter.Allow() {
				log.Warn("Dropping frame, rate limited")
				continue
			}

			if !send(lb, lobby.FromClient{ConnID: connID, Data: data}) {
				return
			}
		}
	}
}

func writeLoop(ctx context.Context, conn *websocket.Conn, out <-chan lobby.Outbound) {
	log := logx.From(ctx)
	for o := range out {
		if o.Close {
			log.Info("Closing connection", zap.String("reason", o.Reason))
			conn.Close(websocket.StatusPolicyViolation, o.Reason)
			return
		}
		wctx, cancel := context.WithTimeout(ctx, writeTimeout)
		err := conn.Write(wctx, websocket.MessageBinary, o.Data)
		cancel()
		if err != nil {
			log.Debug("Write failed", zap.Error(err))
			return
		}
	}
	// Lobby dropped us or shut down.
	conn.Close(websocket.StatusGoingAway, "bye")
}

// send delivers m unless the lobby has stopped.
func send(lb *lobby.Lobby, m lobby.Msg) bool {
	select {
	case lb.Inbox() <- m:
		return true
	case <-lb.Done():
		return false
	}
}
