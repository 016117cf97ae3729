package hub

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mc-hub/wire"
)

func callbackFor(t *testing.T, rec *recordEmitter, id string) *wire.MsgCallback {
	t.Helper()
	matched := make([]*wire.MsgCallback, 0)
	for _, e := range rec.byEvent(wire.MsgTypeCallback) {
		cb := e.body.(*wire.MsgCallback)
		if cb.ID == id {
			matched = append(matched, cb)
		}
	}
	require.Len(t, matched, 1, "exactly one callback per correlation id")
	return matched[0]
}

func TestRequestInvalidType(t *testing.T) {
	h, _, _, _ := newTestHub()
	sp, rec := newTestPeer(h, "guild-1", nil)

	require.NoError(t, sp.handleRequest(&wire.MsgRequest{Type: "bogus", ID: "x"}))

	cb := callbackFor(t, rec, "x")
	assert.True(t, cb.Error)
	assert.Equal(t, "Invalid request type!", cb.Message)
	assert.Equal(t, "bogus", cb.Type)
}

func TestRequestUserLookup(t *testing.T) {
	h, store, _, _ := newTestHub()
	sp, rec := newTestPeer(h, "guild-1", nil)
	linkUser(store, "guild-1", "u1", "Alice", "uuid-1")

	require.NoError(t, sp.handleRequest(&wire.MsgRequest{Type: wire.RequestUser, ID: "r1", Username: "alice"}))
	cb := callbackFor(t, rec, "r1")
	require.False(t, cb.Error)
	require.NotNil(t, cb.User)
	assert.Equal(t, "u1", cb.User.UserID)

	require.NoError(t, sp.handleRequest(&wire.MsgRequest{Type: wire.RequestUser, ID: "r2", Username: "bob"}))
	cb = callbackFor(t, rec, "r2")
	assert.True(t, cb.Error)
	assert.Equal(t, "No user found!", cb.Message)
}

func TestRequestDm(t *testing.T) {
	h, store, client, _ := newTestHub()
	sp, rec := newTestPeer(h, "guild-1", nil)
	linkUser(store, "guild-1", "u1", "Alice", "uuid-1")

	// By platform userID.
	require.NoError(t, sp.handleRequest(&wire.MsgRequest{Type: wire.RequestDm, ID: "d1", UserID: "u9", Message: "hi"}))
	cb := callbackFor(t, rec, "d1")
	assert.False(t, cb.Error)
	assert.Contains(t, client.dms, "u9")

	// By linked in-game username.
	require.NoError(t, sp.handleRequest(&wire.MsgRequest{Type: wire.RequestDm, ID: "d2", Username: "Alice", Message: "hi"}))
	cb = callbackFor(t, rec, "d2")
	assert.False(t, cb.Error)
	assert.Equal(t, "Alice", cb.Username)

	// Unknown username.
	require.NoError(t, sp.handleRequest(&wire.MsgRequest{Type: wire.RequestDm, ID: "d3", Username: "nobody", Message: "hi"}))
	cb = callbackFor(t, rec, "d3")
	assert.True(t, cb.Error)
	assert.Equal(t, "No user found!", cb.Message)

	// Neither userID nor username.
	require.NoError(t, sp.handleRequest(&wire.MsgRequest{Type: wire.RequestDm, ID: "d4", Message: "hi"}))
	cb = callbackFor(t, rec, "d4")
	assert.True(t, cb.Error)
}

func TestRequestEmbed(t *testing.T) {
	h, _, client, _ := newTestHub()
	sp, rec := newTestPeer(h, "guild-1", nil)

	embed := json.RawMessage(`{"title":"hello"}`)
	require.NoError(t, sp.handleRequest(&wire.MsgRequest{
		Type: wire.RequestEmbed, ID: "e1", ChannelID: "chan-1", Message: "look", Embed: embed,
	}))
	cb := callbackFor(t, rec, "e1")
	require.False(t, cb.Error)
	assert.Equal(t, "m1", cb.MessageID)
	assert.Equal(t, "chan-1", cb.ChannelID)
	require.NotNil(t, client.lastMessage())
	assert.JSONEq(t, `{"title":"hello"}`, string(client.lastMessage().embed))
}

func TestRequestReactAndDelete(t *testing.T) {
	h, _, client, _ := newTestHub()
	sp, rec := newTestPeer(h, "guild-1", nil)

	require.NoError(t, sp.handleRequest(&wire.MsgRequest{
		Type: wire.RequestReact, ID: "a1", ChannelID: "c", MessageID: "m", Reaction: "👍",
	}))
	assert.False(t, callbackFor(t, rec, "a1").Error)
	assert.Contains(t, client.reactions, "m:👍")

	require.NoError(t, sp.handleRequest(&wire.MsgRequest{
		Type: wire.RequestDelete, ID: "a2", ChannelID: "c", MessageID: "m",
	}))
	assert.False(t, callbackFor(t, rec, "a2").Error)
	assert.Contains(t, client.deletions, "c:m")
}

func TestRequestPlatformFailureIsGeneric(t *testing.T) {
	h, _, client, _ := newTestHub()
	sp, rec := newTestPeer(h, "guild-1", nil)
	client.failAll = true

	require.NoError(t, sp.handleRequest(&wire.MsgRequest{
		Type: wire.RequestReact, ID: "f1", ChannelID: "c", MessageID: "m", Reaction: "x",
	}))
	cb := callbackFor(t, rec, "f1")
	assert.True(t, cb.Error)
	assert.Equal(t, "Internal error!", cb.Message, "collaborator failures surface generically")
}
