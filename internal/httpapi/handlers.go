package httpapi

import (
	"crypto/rand"
	"encoding/json"
	"math/big"
	"net/http"

	"github.com/DoyleJ11/skaters-limit/internal/config"
	"github.com/DoyleJ11/skaters-limit/internal/hub"
	"github.com/DoyleJ11/skaters-limit/internal/lobby"
	"github.com/DoyleJ11/skaters-limit/internal/types"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func GenerateCode() (string, error) {
	const charset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	code := make([]byte, 6)
	for i := 0; i < 6; i++ {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", err
		}
		code[i] = charset[num.Int64()]
	}
	return string(code), nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func CreateLobby(h *hub.Hub, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var code string
		for {
			c, err := GenerateCode()
			if err != nil {
				writeJSON(w, http.StatusInternalServerError, types.ErrorResponse{Error: "failed to generate code"})
				return
			}
			reply := make(chan *lobby.Lobby, 1)
			h.Inbox() <- hub.GetLobby{Code: c, Reply: reply}
			if <-reply == nil {
				code = c
				break
			}
			logger.Debug("Collision on code, regenerating", zap.String("code", c))
		}

		reply := make(chan *lobby.Lobby, 1)
		h.Inbox() <- hub.EnsureLobby{Code: code, Reply: reply}
		if <-reply == nil {
			writeJSON(w, http.StatusInternalServerError, types.ErrorResponse{Error: "failed to create lobby"})
			return
		}

		writeJSON(w, http.StatusCreated, types.CreateLobbyResponse{Code: code, WSURL: "/ws?code=" + code})
	}
}

func GetLobby(h *hub.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := chi.URLParam(r, "code")

		reply := make(chan *lobby.Lobby, 1)
		h.Inbox() <- hub.GetLobby{Code: code, Reply: reply}
		lb := <-reply
		if lb == nil {
			writeJSON(w, http.StatusNotFound, types.ErrorResponse{Error: "lobby not found"})
			return
		}

		views := make(chan lobby.View, 1)
		select {
		case lb.Inbox() <- lobby.GetState{Reply: views}:
		case <-lb.Done():
			writeJSON(w, http.StatusNotFound, types.ErrorResponse{Error: "lobby closed"})
			return
		}
		select {
		case v := <-views:
			writeJSON(w, http.StatusOK, types.LobbyResponse{Code: code, View: v})
		case <-lb.Done():
			writeJSON(w, http.StatusNotFound, types.ErrorResponse{Error: "lobby closed"})
		}
	}
}

// ServerConfig serves the configuration every client receives on connect.
func ServerConfig(cfg config.Configuration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, cfg)
	}
}

func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}
