package channel

import (
	"fmt"

	"github.com/DoyleJ11/skaters-limit/pkg/types"
)

// Channel is one of the two logical message streams.
type Channel uint8

const (
	FromServer Channel = iota + 1
	FromClient
)

func (c Channel) String() string {
	switch c {
	case FromServer:
		return types.ChannelFromServer
	case FromClient:
		return types.ChannelFromClient
	default:
		return fmt.Sprintf("channel(%d)", uint8(c))
	}
}

func (c Channel) valid() bool {
	return c == FromServer || c == FromClient
}

type UnknownChannelError struct {
	Tag uint8
}

func (e *UnknownChannelError) Error() string {
	return fmt.Sprintf("unknown channel tag %d", e.Tag)
}

type EmptyFrameError struct{}

func (e *EmptyFrameError) Error() string {
	return "empty transport frame"
}

// Wrap tags a codec frame with its channel so both channels can share one
// transport connection.
func Wrap(ch Channel, frame []byte) []byte {
	out := make([]byte, 1+len(frame))
	out[0] = byte(ch)
	copy(out[1:], frame)
	return out
}

// Unwrap splits a transport frame produced by Wrap.
func Unwrap(buf []byte) (Channel, []byte, error) {
	if len(buf) == 0 {
		return 0, nil, &EmptyFrameError{}
	}
	ch := Channel(buf[0])
	if !ch.valid() {
		return 0, nil, &UnknownChannelError{Tag: buf[0]}
	}
	return ch, buf[1:], nil
}
