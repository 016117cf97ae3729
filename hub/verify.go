package hub

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/mc-hub/database"
	"github.com/mc-hub/wire"
)

const verificationCodeBytes = 16

var (
	// ErrNoPending means no pending verification matched the submitted
	// (uuid, code) pair.
	ErrNoPending = errors.New("no user to be verified")
)

func newVerificationCode() (string, error) {
	buf := make([]byte, verificationCodeBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// beginVerification starts the workflow for a platform-issued
// `!verify <name>` command. Nothing is persisted yet; the peer answers
// with a vcb once it knows whether the named identity is in game.
func (h *Hub) beginVerification(p *ServerPeer, channelID, user, userID string, author wire.Author, username string) {
	linked, err := h.store.FindUsersByUsername(p.serverID, username)
	if err != nil {
		h.log.Error().Err(err).Msg("verify precheck failed")
		h.sendNotice(channelID, "Something went wrong, please try again later!")
		return
	}
	if len(linked) > 0 {
		h.sendNotice(channelID, "That player is already verified!")
		return
	}

	code, err := newVerificationCode()
	if err != nil {
		h.log.Error().Err(err).Msg("code generation failed")
		h.sendNotice(channelID, "Something went wrong, please try again later!")
		return
	}
	err = p.emit.Emit(wire.MsgTypeVerify, &wire.MsgVerifyPush{
		Author:    author,
		User:      user,
		UserID:    userID,
		ChannelID: channelID,
		Username:  username,
		Code:      code,
	})
	if err != nil {
		h.log.Error().Err(err).Msg("verify push failed")
		h.sendNotice(channelID, "Something went wrong, please try again later!")
	}
}

// handleVcb records the peer's answer to a verification push. A fresh
// pending row replaces any earlier one for the same in-game identity.
func (p *ServerPeer) handleVcb(m *wire.MsgVcb) error {
	if m.Error {
		p.hub.sendNotice(m.ChannelID, "That username doesn't exist or the player is not in game! "+
			"Please make sure you are logged into the server and the username matches!")
		return nil
	}

	err := p.hub.store.InsertVerification(&database.Verification{
		User:      m.User,
		UserID:    m.UserID,
		ServerID:  p.serverID,
		ChannelID: m.ChannelID,
		UUID:      m.UUID,
		Code:      m.Code,
	})
	if err != nil {
		p.log.Error().Err(err).Msg("pending verification insert failed")
		p.hub.sendNotice(m.ChannelID, "Something went wrong, please try again later!")
		return nil
	}
	p.hub.sendNotice(m.ChannelID, "Verification request sent! Please complete verification process in game!")
	return nil
}

// confirmVerification is the single terminal transition of the
// workflow, shared by the in-band verify event and the correlated
// request path. On success the account is linked, the pending row is
// consumed, the default role granted and the originating channel told.
func (h *Hub) confirmVerification(p *ServerPeer, uuid, username, code string) (*database.User, error) {
	pending, err := h.store.FindVerification(p.serverID, uuid, code)
	if err != nil {
		return nil, fmt.Errorf("pending lookup: %w", err)
	}
	if pending == nil {
		return nil, ErrNoPending
	}

	user := &database.User{
		User:     pending.User,
		UserID:   pending.UserID,
		RoleID:   p.defaultRole,
		ServerID: p.serverID,
		Username: username,
		UUID:     uuid,
	}
	// The store's conditional insert is the authority on duplicates;
	// two racing confirmations yield exactly one success here.
	if err := h.store.InsertUser(user); err != nil {
		return nil, err
	}
	if err := h.store.DeleteVerification(p.serverID, uuid); err != nil {
		p.log.Error().Err(err).Msg("pending verification delete failed")
	}
	h.invalidateUser(p.serverID, pending.UserID)

	h.sendNotice(pending.ChannelID,
		fmt.Sprintf("<@%s> Your account is now linked to player %s!", pending.UserID, username))
	if err := h.platform.AddRole(p.serverID, pending.UserID, p.defaultRole); err != nil {
		p.log.Warn().Err(err).Msg("default role grant failed")
	}
	if p.enforceNickname {
		if err := h.platform.SetNickname(p.serverID, pending.UserID, username); err != nil {
			p.log.Warn().Err(err).Msg("nickname enforcement failed")
		}
	}
	return user, nil
}

// handleVerifyConfirm is the in-band entry point: a player typed the
// code in game. Success is echoed back as a vcb so the server can
// welcome the player.
func (p *ServerPeer) handleVerifyConfirm(m *wire.MsgVerifyConfirm) error {
	user, err := p.hub.confirmVerification(p, m.UUID, m.Username, m.Code)
	if err != nil {
		if errors.Is(err, ErrNoPending) || errors.Is(err, database.ErrDuplicateUser) {
			p.log.Info().Err(err).Str("uuid", m.UUID).Msg("verification rejected")
			return nil
		}
		return fmt.Errorf("verify confirm: %w", err)
	}
	return p.emit.Emit(wire.MsgTypeVcb, &wire.MsgVcb{
		User:   user.User,
		UserID: user.UserID,
		UUID:   user.UUID,
	})
}

// sendNotice posts a plain channel message, logging delivery failures.
// Used for all user-visible workflow feedback.
func (h *Hub) sendNotice(channelID, text string) {
	if strings.TrimSpace(channelID) == "" {
		return
	}
	if _, err := h.platform.SendMessage(channelID, text, nil); err != nil {
		h.log.Warn().Err(err).Str("channel", channelID).Msg("notice delivery failed")
	}
}
