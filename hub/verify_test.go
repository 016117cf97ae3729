package hub

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mc-hub/database"
	"github.com/mc-hub/wire"
)

func TestVerifyFlow(t *testing.T) {
	h, store, client, _ := newTestHub()
	sp, rec := newTestPeer(h, "guild-1", nil)
	sp.enforceNickname = true

	// Platform user issues !verify Steve.
	h.beginVerification(sp, "chan-1", "steve#1234", "u1", wire.Author{Username: "steve"}, "Steve")

	pushes := rec.byEvent(wire.MsgTypeVerify)
	require.Len(t, pushes, 1)
	push := pushes[0].body.(*wire.MsgVerifyPush)
	assert.Equal(t, "Steve", push.Username)
	assert.Equal(t, "u1", push.UserID)
	require.Len(t, push.Code, 32, "16 random bytes hex encoded")

	// The peer confirms the player is in game.
	err := sp.handleVcb(&wire.MsgVcb{
		User:      push.User,
		UserID:    push.UserID,
		ChannelID: push.ChannelID,
		UUID:      "uuid-steve",
		Code:      push.Code,
	})
	require.NoError(t, err)
	pending, err := store.FindVerification("guild-1", "uuid-steve", push.Code)
	require.NoError(t, err)
	require.NotNil(t, pending)
	require.NotNil(t, client.lastMessage())
	assert.Contains(t, client.lastMessage().text, "Verification request sent")

	// The player types the code in game.
	err = sp.handleVerifyConfirm(&wire.MsgVerifyConfirm{
		UUID:     "uuid-steve",
		Username: "Steve",
		Code:     push.Code,
	})
	require.NoError(t, err)

	linked, err := store.FindUserByUUID("guild-1", "uuid-steve")
	require.NoError(t, err)
	require.NotNil(t, linked)
	assert.Equal(t, "u1", linked.UserID)
	assert.Equal(t, "role-default", linked.RoleID)

	gone, err := store.FindVerification("guild-1", "uuid-steve", push.Code)
	require.NoError(t, err)
	assert.Nil(t, gone, "pending row consumed exactly once")

	assert.Contains(t, client.rolesAdd, "u1:role-default")
	assert.Contains(t, client.nicknames, "u1:Steve")
	assert.Contains(t, client.lastMessage().text, "now linked to player Steve")

	echoes := rec.byEvent(wire.MsgTypeVcb)
	require.Len(t, echoes, 1)
	assert.Equal(t, "uuid-steve", echoes[0].body.(*wire.MsgVcb).UUID)
}

func TestVerifyAlreadyLinkedName(t *testing.T) {
	h, store, client, _ := newTestHub()
	sp, rec := newTestPeer(h, "guild-1", nil)
	linkUser(store, "guild-1", "u1", "Steve", "uuid-steve")

	// Case-insensitive precheck.
	h.beginVerification(sp, "chan-1", "other#1", "u2", wire.Author{}, "steve")

	assert.Empty(t, rec.byEvent(wire.MsgTypeVerify))
	require.NotNil(t, client.lastMessage())
	assert.Contains(t, client.lastMessage().text, "already verified")
}

func TestVerifyIdentityNotInGame(t *testing.T) {
	h, store, client, _ := newTestHub()
	sp, _ := newTestPeer(h, "guild-1", nil)

	err := sp.handleVcb(&wire.MsgVcb{ChannelID: "chan-1", Error: true})
	require.NoError(t, err)

	pending, err := store.FindVerification("guild-1", "", "")
	require.NoError(t, err)
	assert.Nil(t, pending, "no pending row on a failed identity check")
	assert.Contains(t, client.lastMessage().text, "doesn't exist")
}

func TestVerifyRepeatedRequestReplacesPending(t *testing.T) {
	h, store, _, _ := newTestHub()
	sp, _ := newTestPeer(h, "guild-1", nil)

	require.NoError(t, sp.handleVcb(&wire.MsgVcb{UserID: "u1", ChannelID: "c", UUID: "uuid-1", Code: "code-old"}))
	require.NoError(t, sp.handleVcb(&wire.MsgVcb{UserID: "u1", ChannelID: "c", UUID: "uuid-1", Code: "code-new"}))

	old, err := store.FindVerification("guild-1", "uuid-1", "code-old")
	require.NoError(t, err)
	assert.Nil(t, old, "only the most recent code may confirm")

	fresh, err := store.FindVerification("guild-1", "uuid-1", "code-new")
	require.NoError(t, err)
	assert.NotNil(t, fresh)
}

func TestVerifyConfirmNoPending(t *testing.T) {
	h, store, _, _ := newTestHub()
	sp, _ := newTestPeer(h, "guild-1", nil)

	_, err := h.confirmVerification(sp, "uuid-x", "Steve", "bogus")
	assert.ErrorIs(t, err, ErrNoPending)

	linked, err := store.FindUserByUUID("guild-1", "uuid-x")
	require.NoError(t, err)
	assert.Nil(t, linked, "failed confirmation must not change state")
}

func TestVerifyConcurrentConfirmSingleSuccess(t *testing.T) {
	h, store, _, _ := newTestHub()
	sp, _ := newTestPeer(h, "guild-1", nil)

	require.NoError(t, store.InsertVerification(&database.Verification{
		User: "steve#1234", UserID: "u1", ServerID: "guild-1",
		ChannelID: "chan-1", UUID: "uuid-1", Code: "code-1",
	}))

	var wg sync.WaitGroup
	results := make([]*wire.MsgCallback, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = sp.requestVerify(&wire.MsgRequest{
				Type: wire.RequestVerify, ID: "r", UUID: "uuid-1", Username: "Steve", Code: "code-1",
			})
		}(i)
	}
	wg.Wait()

	successes := 0
	for _, cb := range results {
		if !cb.Error {
			successes++
		}
	}
	assert.Equal(t, 1, successes, "racing confirmations yield exactly one link")

	users, err := store.FindUsersByUsername("guild-1", "Steve")
	require.NoError(t, err)
	assert.Len(t, users, 1)
}
