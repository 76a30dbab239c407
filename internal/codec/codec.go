// Package codec frames a single named message for the custom message channels.
//
// A frame is laid out as
//
//	| name length (uint16, little endian) | name (UTF-8) | payload (UTF-8) |
//
// The payload runs to the end of the buffer, so a frame must be carried by a
// transport that preserves message boundaries.
package codec

import (
	"encoding/binary"
	"fmt"
	"math"
	"strings"
	"unicode/utf8"
)

const headerSize = 2

type EncodingError struct {
	Field  string
	Reason string
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("cannot encode message %s: %s", e.Field, e.Reason)
}

type DecodingError struct {
	Field       string
	MsgSize     int
	MinimumSize int
	Reason      string
}

func (e *DecodingError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("cannot decode message %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("message truncated at %s, provided %d bytes, needed at least %d", e.Field, e.MsgSize, e.MinimumSize)
}

// Encode builds a frame for name and payload.
func Encode(name, payload string) ([]byte, error) {
	if !utf8.ValidString(name) {
		return nil, &EncodingError{Field: "name", Reason: "not valid UTF-8"}
	}
	if len(name) > math.MaxUint16 {
		return nil, &EncodingError{Field: "name", Reason: fmt.Sprintf("%d bytes exceeds %d", len(name), math.MaxUint16)}
	}
	if !utf8.ValidString(payload) {
		return nil, &EncodingError{Field: "payload", Reason: "not valid UTF-8"}
	}

	buf := make([]byte, headerSize+len(name)+len(payload))
	binary.LittleEndian.PutUint16(buf[0:headerSize], uint16(len(name)))
	n := copy(buf[headerSize:], name)
	copy(buf[headerSize+n:], payload)
	return buf, nil
}

// Decode reads a frame produced by Encode. Name and payload come back with
// surrounding whitespace trimmed.
func Decode(buf []byte) (string, string, error) {
	if len(buf) < headerSize {
		return "", "", &DecodingError{Field: "name length", MsgSize: len(buf), MinimumSize: headerSize}
	}

	nameLen := int(binary.LittleEndian.Uint16(buf[0:headerSize]))
	end := headerSize + nameLen
	if len(buf) < end {
		return "", "", &DecodingError{Field: "name", MsgSize: len(buf), MinimumSize: end}
	}

	name := buf[headerSize:end]
	if !utf8.Valid(name) {
		return "", "", &DecodingError{Field: "name", Reason: "not valid UTF-8"}
	}
	payload := buf[end:]
	if !utf8.Valid(payload) {
		return "", "", &DecodingError{Field: "payload", Reason: "not valid UTF-8"}
	}

	return strings.TrimSpace(string(name)), strings.TrimSpace(string(payload)), nil
}
