package hub

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/mc-hub/database"
	"github.com/mc-hub/peer"
	"github.com/mc-hub/wire"
)

// emitter sends one typed event to the connected game server. Split out
// so session logic can be exercised without a live websocket.
type emitter interface {
	Emit(event string, body interface{}) error
}

type peerEmitter struct {
	peer *peer.Peer
}

func (e *peerEmitter) Emit(event string, body interface{}) error {
	raw, err := wire.Encode(wire.MakeMessage(event, body))
	if err != nil {
		return err
	}
	e.peer.PushMessage(raw, nil)
	return nil
}

// ServerPeer is one authenticated game-server session: the connection,
// the channel policies declared at connect time, and the dispatch of
// every inbound event. Exactly one live instance per serverID.
type ServerPeer struct {
	*peer.Peer
	hub *Hub

	serverID        string
	defaultRole     string
	enforceNickname bool
	channels        map[string]*Channel

	emit emitter
	log  zerolog.Logger
}

func newServerPeer(h *Hub, connID string, opts *wire.MsgOptions) *ServerPeer {
	sp := &ServerPeer{
		hub:             h,
		serverID:        opts.ServerID,
		defaultRole:     opts.DefaultRole,
		enforceNickname: opts.EnforceNickname,
		channels:        newChannels(opts.Channels),
		log:             h.log.With().Str("server", opts.ServerID).Str("conn", connID).Logger(),
	}
	p := peer.NewPeer(connID, &peer.Config{
		MaxMessageSize: h.config.Peer.MaxMessageSize,
		WriteWait:      time.Duration(h.config.Peer.WriteWait) * time.Second,
		PongWait:       time.Duration(h.config.Peer.PongWait) * time.Second,
		PingPeriod:     time.Duration(h.config.Peer.PingPeriod) * time.Second,
		Logger:         sp.log,
		Listeners: &peer.MessageListeners{
			OnMessage:    sp.OnMessage,
			OnDisconnect: sp.OnDisconnect,
		},
	})
	sp.Peer = p
	sp.emit = &peerEmitter{peer: p}
	return sp
}

// ConnID identifies the underlying connection, not the server identity.
func (p *ServerPeer) ConnID() string {
	if p.Peer == nil {
		return ""
	}
	return p.Peer.ID()
}

// Close closes the underlying connection.
func (p *ServerPeer) Close() {
	if p.Peer != nil {
		p.Peer.Close()
	}
}

// OnMessage dispatches one inbound frame. Handler errors are logged by
// the transport; they never tear the session down.
func (p *ServerPeer) OnMessage(raw []byte) error {
	msg, err := wire.Decode(raw)
	if err != nil {
		return err
	}

	switch msg.Event {
	case wire.MsgTypeInfo:
		return p.handleInfo(msg.Body.(*wire.MsgInfo))
	case wire.MsgTypeChat:
		return p.handleChat(msg.Body.(*wire.MsgChat))
	case wire.MsgTypeCnf:
		return p.handleCnf(msg.Body.(*wire.MsgCnf))
	case wire.MsgTypeVcb:
		return p.handleVcb(msg.Body.(*wire.MsgVcb))
	case wire.MsgTypeVerify:
		return p.handleVerifyConfirm(msg.Body.(*wire.MsgVerifyConfirm))
	case wire.MsgTypeUnlink:
		return p.handleUnlink(msg.Body.(*wire.MsgUnlink))
	case wire.MsgTypeAddRole:
		return p.handleRole(msg.Body.(*wire.MsgRole), true)
	case wire.MsgTypeRemoveRole:
		return p.handleRole(msg.Body.(*wire.MsgRole), false)
	case wire.MsgTypeGetUser:
		return p.handleGetUser(msg.Body.(*wire.MsgGetUser))
	case wire.MsgTypeRequest:
		return p.handleRequest(msg.Body.(*wire.MsgRequest))
	case wire.MsgTypeOptions:
		// Authentication already happened on this connection.
		return nil
	}
	return fmt.Errorf("unhandled event[%s]", msg.Event)
}

// OnDisconnect OnDisconnect
func (p *ServerPeer) OnDisconnect() error {
	p.hub.unregisterPeer(p)
	return nil
}

func (p *ServerPeer) handleInfo(m *wire.MsgInfo) error {
	for _, ch := range p.channels {
		if !ch.Info {
			continue
		}
		if err := p.hub.webhooks.Send(ch.WebhookID, ch.WebhookToken, consoleUsername, consoleAvatar, m.Message); err != nil {
			p.log.Warn().Err(err).Str("channel", ch.ChannelID).Msg("info relay failed")
		}
	}
	return nil
}

func (p *ServerPeer) handleChat(m *wire.MsgChat) error {
	text, err := p.hub.resolveMentions(p.serverID, m.Message)
	if err != nil {
		// Mention decoration is best effort; the line still relays.
		p.log.Warn().Err(err).Msg("mention resolution failed")
		text = m.Message
	}
	avatar := fmt.Sprintf(avatarPattern, m.UUID)
	for _, ch := range p.channels {
		if !ch.Chat {
			continue
		}
		if err := p.hub.webhooks.Send(ch.WebhookID, ch.WebhookToken, m.Username, avatar, text); err != nil {
			p.log.Warn().Err(err).Str("channel", ch.ChannelID).Msg("chat relay failed")
		}
	}
	return nil
}

func (p *ServerPeer) handleCnf(m *wire.MsgCnf) error {
	notice := fmt.Sprintf("`!%s` is not a valid command!", m.Command)
	if _, err := p.hub.platform.SendMessage(m.ChannelID, notice, nil); err != nil {
		return fmt.Errorf("cnf notice: %w", err)
	}
	return nil
}

func (p *ServerPeer) handleUnlink(m *wire.MsgUnlink) error {
	user, err := p.hub.store.FindUserByUUID(p.serverID, m.UUID)
	if err != nil {
		p.log.Error().Err(err).Msg("unlink lookup failed")
		return p.emit.Emit(wire.MsgTypeUnlinkCb, &wire.MsgUnlinkCb{UUID: m.UUID, Success: false})
	}
	deleted, err := p.hub.store.DeleteUserByUUID(p.serverID, m.UUID)
	if err != nil {
		p.log.Error().Err(err).Msg("unlink delete failed")
		return p.emit.Emit(wire.MsgTypeUnlinkCb, &wire.MsgUnlinkCb{UUID: m.UUID, Success: false})
	}
	if user != nil {
		p.hub.invalidateUser(p.serverID, user.UserID)
	}
	return p.emit.Emit(wire.MsgTypeUnlinkCb, &wire.MsgUnlinkCb{UUID: m.UUID, Success: deleted >= 1})
}

// handleRole answers addrole/removerole with a boolean outcome: false
// for unlinked uuids and for platform failures, never a dropped event.
func (p *ServerPeer) handleRole(m *wire.MsgRole, add bool) error {
	cbEvent := wire.MsgTypeRemoveRoleCb
	if add {
		cbEvent = wire.MsgTypeAddRoleCb
	}
	cb := &wire.MsgRoleCb{UUID: m.UUID, RoleID: m.RoleID}

	user, err := p.hub.store.FindUserByUUID(p.serverID, m.UUID)
	if err != nil {
		p.log.Error().Err(err).Msg("role lookup failed")
		return p.emit.Emit(cbEvent, cb)
	}
	if user == nil {
		return p.emit.Emit(cbEvent, cb)
	}
	if add {
		err = p.hub.platform.AddRole(p.serverID, user.UserID, m.RoleID)
	} else {
		err = p.hub.platform.RemoveRole(p.serverID, user.UserID, m.RoleID)
	}
	if err != nil {
		p.log.Warn().Err(err).Str("role", m.RoleID).Msg("role change failed")
		return p.emit.Emit(cbEvent, cb)
	}
	cb.Success = true
	return p.emit.Emit(cbEvent, cb)
}

func (p *ServerPeer) handleGetUser(m *wire.MsgGetUser) error {
	users, err := p.hub.store.FindUsersByUsername(p.serverID, m.Req)
	if err != nil {
		p.log.Error().Err(err).Msg("getuser lookup failed")
		users = nil
	}
	return p.emit.Emit(wire.MsgTypeUserCb, &wire.MsgUserCb{Req: m.Req, Res: toLinkedUsers(users)})
}

func toLinkedUsers(users []database.User) []wire.LinkedUser {
	out := make([]wire.LinkedUser, 0, len(users))
	for _, u := range users {
		out = append(out, wire.LinkedUser{
			User:     u.User,
			UserID:   u.UserID,
			RoleID:   u.RoleID,
			ServerID: u.ServerID,
			Username: u.Username,
			UUID:     u.UUID,
		})
	}
	return out
}
