package protocol

import (
	"errors"
	"testing"

	"github.com/DoyleJ11/skaters-limit/internal/channel"
	"github.com/DoyleJ11/skaters-limit/internal/codec"
	"github.com/DoyleJ11/skaters-limit/internal/config"
	"github.com/DoyleJ11/skaters-limit/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sent struct {
	ch      channel.Channel
	to      string
	name    string
	payload string
}

type kicked struct {
	id     string
	reason string
}

// fakeTransport records everything the protocol sends.
type fakeTransport struct {
	t           *testing.T
	sent        []sent
	disconnects []kicked
	sendErr     error
}

func (f *fakeTransport) Send(ch channel.Channel, to string, frame []byte) error {
	if f.sendErr != nil {
		return f.sendErr
	}
	name, payload, err := codec.Decode(frame)
	require.NoError(f.t, err)
	f.sent = append(f.sent, sent{ch: ch, to: to, name: name, payload: payload})
	return nil
}

func (f *fakeTransport) Disconnect(to, reason string) error {
	f.disconnects = append(f.disconnects, kicked{id: to, reason: reason})
	return nil
}

func frame(t *testing.T, name, payload string) []byte {
	t.Helper()
	buf, err := codec.Encode(name, payload)
	require.NoError(t, err)
	return buf
}

func serverConfig() config.Configuration {
	c := config.Default()
	c.SentByServer = true
	c.MaxSkatersPerTeam = 4
	c.TeamBalancing = true
	c.AdminIDs = []string{"admin"}
	return c
}

func newServer(t *testing.T) (*Server, *channel.Dispatcher, *fakeTransport) {
	t.Helper()
	tr := &fakeTransport{t: t}
	s, err := NewServer("1.0.3", serverConfig(), tr, nil)
	require.NoError(t, err)
	d := channel.NewDispatcher(nil)
	s.Register(d)
	return s, d, tr
}

func TestServer_OnConnectAnnouncesVersionThenConfig(t *testing.T) {
	s, _, tr := newServer(t)

	s.OnConnect("c1")

	require.Len(t, tr.sent, 2)
	assert.Equal(t, sent{ch: channel.FromServer, to: "c1", name: types.MessageVersion, payload: "1.0.3"}, tr.sent[0])
	assert.Equal(t, channel.FromServer, tr.sent[1].ch)
	assert.Equal(t, types.MessageConfig, tr.sent[1].name)

	got, err := config.Deserialize(tr.sent[1].payload)
	require.NoError(t, err)
	assert.Equal(t, serverConfig(), got)

	sess, ok := s.Session("c1")
	require.True(t, ok)
	assert.Equal(t, StateAnnounced, sess.State)
}

func TestServer_SendFailureStillCreatesSession(t *testing.T) {
	tr := &fakeTransport{t: t, sendErr: errors.New("outbox full")}
	s, err := NewServer("1.0.3", serverConfig(), tr, nil)
	require.NoError(t, err)

	s.OnConnect("c1")

	_, ok := s.Session("c1")
	assert.True(t, ok)
}

func TestServer_KickDisconnectsOnce(t *testing.T) {
	s, d, tr := newServer(t)
	s.OnConnect("c1")
	s.OnConnect("c2")

	require.NoError(t, d.Dispatch(channel.FromClient, "c1", frame(t, types.MessageKick, "1")))
	require.NoError(t, d.Dispatch(channel.FromClient, "c1", frame(t, types.MessageKick, "1")))

	assert.Equal(t, []kicked{{id: "c1", reason: types.KickReason}}, tr.disconnects)

	sess, _ := s.Session("c1")
	assert.Equal(t, StateDisconnected, sess.State)
	other, _ := s.Session("c2")
	assert.Equal(t, StateAnnounced, other.State)
}

func TestServer_KickIgnoresOtherPayloads(t *testing.T) {
	s, d, tr := newServer(t)
	s.OnConnect("c1")

	for _, payload := range []string{"0", "true", "", "11"} {
		require.NoError(t, d.Dispatch(channel.FromClient, "c1", frame(t, types.MessageKick, payload)))
	}
	assert.Empty(t, tr.disconnects)

	// Whitespace is trimmed by the codec.
	require.NoError(t, d.Dispatch(channel.FromClient, "c1", frame(t, types.MessageKick, " 1\n")))
	assert.Len(t, tr.disconnects, 1)
}

func TestServer_KickOnServerChannelIsNotHandled(t *testing.T) {
	s, d, tr := newServer(t)
	s.OnConnect("c1")

	require.NoError(t, d.Dispatch(channel.FromServer, "c1", frame(t, types.MessageKick, "1")))
	assert.Empty(t, tr.disconnects)
}

func TestServer_KickFromUnknownConnection(t *testing.T) {
	_, d, tr := newServer(t)

	require.NoError(t, d.Dispatch(channel.FromClient, "ghost", frame(t, types.MessageKick, "1")))
	assert.Empty(t, tr.disconnects)
}

func TestServer_OnDisconnectDropsSession(t *testing.T) {
	s, _, _ := newServer(t)
	s.OnConnect("c1")
	require.Equal(t, 1, s.NumSessions())

	s.OnDisconnect("c1")
	_, ok := s.Session("c1")
	assert.False(t, ok)
	assert.Equal(t, 0, s.NumSessions())
}

func newClient(t *testing.T, policy AdoptionPolicy) (*Client, *channel.Dispatcher, *fakeTransport) {
	t.Helper()
	tr := &fakeTransport{t: t}
	c := NewClient("1.0.3", policy, tr, nil)
	d := channel.NewDispatcher(nil)
	c.Register(d)
	return c, d, tr
}

func configFrame(t *testing.T, cfg config.Configuration) []byte {
	t.Helper()
	s, err := cfg.Serialize()
	require.NoError(t, err)
	return frame(t, types.MessageConfig, s)
}

func TestClient_StartsUndelivered(t *testing.T) {
	c, _, _ := newClient(t, FirstWins)
	assert.Equal(t, config.Default(), c.Config())
	assert.Equal(t, HandshakePending, c.Handshake())
}

func TestClient_MatchingVersionAcknowledges(t *testing.T) {
	c, d, tr := newClient(t, FirstWins)

	require.NoError(t, d.Dispatch(channel.FromServer, ServerID, frame(t, types.MessageVersion, "1.0.3")))

	assert.Empty(t, tr.sent)
	assert.Equal(t, HandshakeAcknowledged, c.Handshake())
}

func TestClient_VersionMismatchRequestsKick(t *testing.T) {
	c, d, tr := newClient(t, FirstWins)

	require.NoError(t, d.Dispatch(channel.FromServer, ServerID, frame(t, types.MessageVersion, "1.0.2")))

	require.Len(t, tr.sent, 1)
	assert.Equal(t, sent{ch: channel.FromClient, to: ServerID, name: types.MessageKick, payload: "1"}, tr.sent[0])
	assert.Equal(t, HandshakeKickRequested, c.Handshake())
}

func TestClient_AdoptsDeliveredConfig(t *testing.T) {
	c, d, _ := newClient(t, FirstWins)
	delivered := serverConfig()
	delivered.SentByServer = false

	require.NoError(t, d.Dispatch(channel.FromServer, ServerID, configFrame(t, delivered)))

	got := c.Config()
	assert.True(t, got.SentByServer, "delivery marks the config as sent by server")
	assert.Equal(t, 4, got.MaxSkatersPerTeam)
	assert.Equal(t, []string{"admin"}, got.AdminIDs)
}

func TestClient_AdoptionPolicy(t *testing.T) {
	first := serverConfig()
	second := serverConfig()
	second.MaxSkatersPerTeam = 2

	cases := []struct {
		name    string
		policy  AdoptionPolicy
		wantMax int
	}{
		{name: "first wins", policy: FirstWins, wantMax: 4},
		{name: "latest wins", policy: LatestWins, wantMax: 2},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, d, _ := newClient(t, tc.policy)
			require.NoError(t, d.Dispatch(channel.FromServer, ServerID, configFrame(t, first)))
			require.NoError(t, d.Dispatch(channel.FromServer, ServerID, configFrame(t, second)))
			assert.Equal(t, tc.wantMax, c.Config().MaxSkatersPerTeam)
		})
	}
}

func TestClient_BadConfigKeepsCurrent(t *testing.T) {
	c, d, _ := newClient(t, LatestWins)
	require.NoError(t, d.Dispatch(channel.FromServer, ServerID, configFrame(t, serverConfig())))

	err := d.Dispatch(channel.FromServer, ServerID, frame(t, types.MessageConfig, "{not json"))
	var desErr *config.DeserializationError
	require.True(t, errors.As(err, &desErr))

	assert.Equal(t, 4, c.Config().MaxSkatersPerTeam)
	assert.True(t, c.Config().SentByServer)
}

func TestClient_ResetRestoresDefault(t *testing.T) {
	c, d, _ := newClient(t, FirstWins)
	require.NoError(t, d.Dispatch(channel.FromServer, ServerID, frame(t, types.MessageVersion, "1.0.3")))
	require.NoError(t, d.Dispatch(channel.FromServer, ServerID, configFrame(t, serverConfig())))

	c.Reset()
	assert.Equal(t, config.Default(), c.Config())
	assert.Equal(t, HandshakePending, c.Handshake())

	// A new session can deliver again under FirstWins.
	next := serverConfig()
	next.MaxSkatersPerTeam = 6
	require.NoError(t, d.Dispatch(channel.FromServer, ServerID, configFrame(t, next)))
	assert.Equal(t, 6, c.Config().MaxSkatersPerTeam)
}

func TestClient_ConfigReturnsCopy(t *testing.T) {
	c, d, _ := newClient(t, FirstWins)
	require.NoError(t, d.Dispatch(channel.FromServer, ServerID, configFrame(t, serverConfig())))

	got := c.Config()
	got.AdminIDs[0] = "intruder"
	assert.Equal(t, []string{"admin"}, c.Config().AdminIDs)
}
