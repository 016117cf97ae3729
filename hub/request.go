package hub

import (
	"errors"

	"github.com/mc-hub/database"
	"github.com/mc-hub/wire"
)

// handleRequest is the correlated request/response layer: every inbound
// request, whatever happens inside, is answered by exactly one callback
// carrying the request's correlation id.
func (p *ServerPeer) handleRequest(m *wire.MsgRequest) error {
	cb := p.dispatchRequest(m)
	cb.ID = m.ID
	return p.emit.Emit(wire.MsgTypeCallback, cb)
}

func (p *ServerPeer) dispatchRequest(m *wire.MsgRequest) *wire.MsgCallback {
	switch m.Type {
	case wire.RequestUser:
		return p.requestUser(m)
	case wire.RequestDm:
		return p.requestDm(m)
	case wire.RequestVerify:
		return p.requestVerify(m)
	case wire.RequestEmbed:
		return p.requestEmbed(m)
	case wire.RequestReact:
		return p.requestReact(m)
	case wire.RequestDelete:
		return p.requestDelete(m)
	}
	p.log.Info().Str("type", m.Type).Str("id", m.ID).Msg("invalid request type")
	return &wire.MsgCallback{Error: true, Message: "Invalid request type!", Type: m.Type}
}

func (p *ServerPeer) requestUser(m *wire.MsgRequest) *wire.MsgCallback {
	users, err := p.hub.store.FindUsersByUsername(p.serverID, m.Username)
	if err != nil {
		return p.internalError(m, err)
	}
	if len(users) == 0 {
		return &wire.MsgCallback{Error: true, Message: "No user found!"}
	}
	linked := toLinkedUsers(users[:1])
	return &wire.MsgCallback{Message: "Success!", User: &linked[0]}
}

// requestDm resolves a DM channel either directly by platform userID or
// through a linked in-game username, then delivers the message.
func (p *ServerPeer) requestDm(m *wire.MsgRequest) *wire.MsgCallback {
	userID := m.UserID
	username := ""
	if userID == "" {
		if m.Username == "" {
			return &wire.MsgCallback{Error: true, Message: "Missing userID or username!"}
		}
		users, err := p.hub.store.FindUsersByUsername(p.serverID, m.Username)
		if err != nil {
			return p.internalError(m, err)
		}
		if len(users) == 0 {
			return &wire.MsgCallback{Error: true, Message: "No user found!"}
		}
		userID = users[0].UserID
		username = users[0].Username
	}

	channelID, err := p.hub.platform.CreateDMChannel(userID)
	if err != nil {
		return p.internalError(m, err)
	}
	if _, err := p.hub.platform.SendMessage(channelID, m.Message, m.Embed); err != nil {
		return p.internalError(m, err)
	}
	return &wire.MsgCallback{Message: "Success!", Username: username}
}

func (p *ServerPeer) requestVerify(m *wire.MsgRequest) *wire.MsgCallback {
	_, err := p.hub.confirmVerification(p, m.UUID, m.Username, m.Code)
	if err != nil {
		if errors.Is(err, ErrNoPending) {
			return &wire.MsgCallback{Error: true, Message: "No user to be verified!"}
		}
		if errors.Is(err, database.ErrDuplicateUser) {
			return &wire.MsgCallback{Error: true, Message: "User already exists!"}
		}
		return p.internalError(m, err)
	}
	return &wire.MsgCallback{Message: "Success!"}
}

func (p *ServerPeer) requestEmbed(m *wire.MsgRequest) *wire.MsgCallback {
	sent, err := p.hub.platform.SendMessage(m.ChannelID, m.Message, m.Embed)
	if err != nil {
		return p.internalError(m, err)
	}
	return &wire.MsgCallback{Message: "Success!", MessageID: sent.ID, ChannelID: sent.ChannelID}
}

func (p *ServerPeer) requestReact(m *wire.MsgRequest) *wire.MsgCallback {
	if err := p.hub.platform.AddReaction(m.ChannelID, m.MessageID, m.Reaction); err != nil {
		return p.internalError(m, err)
	}
	return &wire.MsgCallback{Message: "Success!"}
}

func (p *ServerPeer) requestDelete(m *wire.MsgRequest) *wire.MsgCallback {
	if err := p.hub.platform.DeleteMessage(m.ChannelID, m.MessageID); err != nil {
		return p.internalError(m, err)
	}
	return &wire.MsgCallback{Message: "deleted message!"}
}

// internalError logs the real failure and answers with a generic one;
// collaborator errors must never leak details or kill the session.
func (p *ServerPeer) internalError(m *wire.MsgRequest, err error) *wire.MsgCallback {
	p.log.Error().Err(err).Str("type", m.Type).Str("id", m.ID).Msg("request failed")
	return &wire.MsgCallback{Error: true, Message: "Internal error!"}
}
