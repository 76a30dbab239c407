package codec

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecode_RoundTrip(t *testing.T) {
	cases := []struct {
		name        string
		msgName     string
		payload     string
		wantName    string
		wantPayload string
	}{
		{name: "version", msgName: "skaterslimit_version", payload: "1.0.3", wantName: "skaterslimit_version", wantPayload: "1.0.3"},
		{name: "empty payload", msgName: "kick", payload: "", wantName: "kick", wantPayload: ""},
		{name: "json payload", msgName: "config", payload: `{"MaxNumberOfSkaters":5}`, wantName: "config", wantPayload: `{"MaxNumberOfSkaters":5}`},
		{name: "whitespace trimmed", msgName: "  kick\t", payload: "\n 1 \r\n", wantName: "kick", wantPayload: "1"},
		{name: "multibyte", msgName: "équipe", payload: "gardien ✓", wantName: "équipe", wantPayload: "gardien ✓"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			buf, err := Encode(tc.msgName, tc.payload)
			require.NoError(t, err)

			name, payload, err := Decode(buf)
			require.NoError(t, err)
			assert.Equal(t, tc.wantName, name)
			assert.Equal(t, tc.wantPayload, payload)
		})
	}
}

func TestEncode_RejectsInvalidUTF8(t *testing.T) {
	_, err := Encode("kick", string([]byte{0xff, 0xfe}))
	var encErr *EncodingError
	require.True(t, errors.As(err, &encErr), "want EncodingError, got %v", err)
	assert.Equal(t, "payload", encErr.Field)

	_, err = Encode(string([]byte{0xc3}), "1")
	require.True(t, errors.As(err, &encErr), "want EncodingError, got %v", err)
	assert.Equal(t, "name", encErr.Field)
}

func TestDecode_Truncated(t *testing.T) {
	full, err := Encode("config", "{}")
	require.NoError(t, err)

	cases := []struct {
		name string
		buf  []byte
	}{
		{name: "nil buffer", buf: nil},
		{name: "half a header", buf: full[:1]},
		{name: "name cut short", buf: full[:4]},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := Decode(tc.buf)
			var decErr *DecodingError
			require.True(t, errors.As(err, &decErr), "want DecodingError, got %v", err)
		})
	}
}

func TestDecode_InvalidName(t *testing.T) {
	buf := []byte{2, 0, 0xff, 0xfe, '1'}
	_, _, err := Decode(buf)
	var decErr *DecodingError
	require.True(t, errors.As(err, &decErr))
	assert.Equal(t, "name", decErr.Field)
}
