package types

// Channels. Both share one websocket; every binary websocket message starts
// with a one byte channel tag (1 = from-server, 2 = from-client) followed by
// a codec frame.
const (
	ChannelFromServer = "from-server"
	ChannelFromClient = "from-client"
)

// Server -> Client (from-server)
//
// skaterslimit_version:
//   payload: server build id, e.g. "1.0.3"
//   sent first on every connect
//
// config:
//   payload: JSON object
//     MaxNumberOfSkaters: number
//     TeamBalancing: boolean
//     TeamBalanceOffset: number
//     TeamBalancingGoalie: boolean
//     LogInfo: boolean
//     SentByServer: boolean
//     AdminBypass: boolean
//     AdminSteamIds: string[] | null
//   sent right after skaterslimit_version

// Client -> Server (from-client)
//
// kick:
//   payload: "1"
//   sent when the client build id differs from the announced one; the server
//   closes the connection with KickReason (websocket status 1008)

const (
	ModName = "skaterslimit"

	MessageVersion = ModName + "_version"
	MessageConfig  = "config"
	MessageKick    = "kick"

	KickPayload = "1"
	KickReason  = "Skaters limit is out of date. Please restart your game or resubscribe in the workshop to update."
)
