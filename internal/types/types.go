package types

import "github.com/DoyleJ11/skaters-limit/internal/lobby"

type CreateLobbyResponse struct {
	Code  string `json:"code"`
	WSURL string `json:"ws_url"`
}

type LobbyResponse struct {
	Code string     `json:"code"`
	View lobby.View `json:"view"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
