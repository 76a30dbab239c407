// Package protocol runs the version handshake and configuration delivery
// between the server and each client, on top of the channel dispatcher.
//
// Server side, per connection:
//
//	Connected -> Announced -> KickRequested -> Disconnected
//
// Client side:
//
//	Pending -> Acknowledged | KickRequested
//
// The kick request always travels client -> server on the from-client channel.
package protocol

import (
	"fmt"

	"github.com/DoyleJ11/skaters-limit/internal/channel"
	"github.com/DoyleJ11/skaters-limit/internal/codec"
)

// ServerID is the sender id clients see on frames from the server.
const ServerID = "server"

// Sender delivers an encoded frame on a channel. Sends never wait for the
// peer.
type Sender interface {
	Send(ch channel.Channel, to string, frame []byte) error
}

// Transport is what the server needs from its connections.
type Transport interface {
	Sender
	Disconnect(to string, reason string) error
}

func send(s Sender, ch channel.Channel, to, name, payload string) error {
	frame, err := codec.Encode(name, payload)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", name, err)
	}
	if err := s.Send(ch, to, frame); err != nil {
		return fmt.Errorf("sending %s to %s: %w", name, to, err)
	}
	return nil
}
