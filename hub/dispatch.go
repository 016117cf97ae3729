package hub

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/mc-hub/wire"
)

// Platform gateway event names for reactions.
const (
	ReactionAdd    = "MESSAGE_REACTION_ADD"
	ReactionRemove = "MESSAGE_REACTION_REMOVE"
)

// PlatformMessage is one user message observed by the platform gateway.
// The gateway filters out the hub's own messages (bot and webhook
// authors) before posting here.
type PlatformMessage struct {
	GuildID   string      `json:"guildID"`
	ChannelID string      `json:"channelID"`
	MessageID string      `json:"messageID"`
	User      string      `json:"user"`
	UserID    string      `json:"userID"`
	Author    wire.Author `json:"author"`
	Content   string      `json:"content"`
}

// PlatformReaction is one reaction add/remove observed by the gateway.
// GuildID is empty for direct-message reactions.
type PlatformReaction struct {
	GuildID   string          `json:"guildID"`
	ChannelID string          `json:"channelID"`
	MessageID string          `json:"messageID"`
	UserID    string          `json:"userID"`
	Emoji     json.RawMessage `json:"emoji"`
	Type      string          `json:"type"`
}

var usernameSanitizer = regexp.MustCompile(`[^a-zA-Z0-9_]`)

// HandlePlatformMessage routes a platform message to the peer serving
// its guild: commands to the command path, everything else to chat
// relay. Messages for unknown guilds or undeclared channels are dropped.
func (h *Hub) HandlePlatformMessage(m *PlatformMessage) {
	p := h.lookupPeer(m.GuildID)
	if p == nil {
		return
	}
	ch := p.channels[m.ChannelID]
	if ch == nil {
		return
	}
	if strings.HasPrefix(m.Content, "!") {
		h.handleCommand(p, ch, m)
		return
	}
	h.relayChat(p, ch, m)
}

func (h *Hub) handleCommand(p *ServerPeer, ch *Channel, m *PlatformMessage) {
	args := strings.Split(strings.TrimPrefix(m.Content, "!"), " ")
	cmd := strings.ToLower(args[0])
	args = args[1:]

	switch cmd {
	case "verify":
		if len(args) != 1 {
			h.sendNotice(m.ChannelID, "Usage: !verify <username>")
			return
		}
		username := usernameSanitizer.ReplaceAllString(args[0], "")
		if username == "" {
			h.sendNotice(m.ChannelID, "Usage: !verify <username>")
			return
		}
		h.beginVerification(p, m.ChannelID, m.User, m.UserID, m.Author, username)
	case "unlink":
		h.handleUnlinkCommand(p, m)
	default:
		if !ch.AdminCommands {
			return
		}
		h.forwardCommand(p, m, cmd, args)
	}
}

func (h *Hub) handleUnlinkCommand(p *ServerPeer, m *PlatformMessage) {
	user, err := h.store.FindUserByUserID(p.serverID, m.UserID)
	if err != nil {
		h.log.Error().Err(err).Msg("unlink lookup failed")
		h.sendNotice(m.ChannelID, "Something went wrong, please try again later!")
		return
	}
	deleted, err := h.store.DeleteUserByUserID(p.serverID, m.UserID)
	if err != nil {
		h.log.Error().Err(err).Msg("unlink delete failed")
		h.sendNotice(m.ChannelID, "Something went wrong, please try again later!")
		return
	}
	if user != nil {
		h.invalidateUser(p.serverID, m.UserID)
	}
	if deleted >= 1 {
		h.sendNotice(m.ChannelID, "Successfully unlinked your account!")
	} else {
		h.sendNotice(m.ChannelID, "Cannot unlink account. You are not verified!")
	}
}

// forwardCommand ships a recognized admin command to the peer with the
// sender identity resolved; an unverified sender is forwarded with an
// empty in-game identity and the peer decides what to allow.
func (h *Hub) forwardCommand(p *ServerPeer, m *PlatformMessage, cmd string, args []string) {
	sender := wire.Sender{User: m.User, UserID: m.UserID}
	user, err := h.findVerifiedUser(p.serverID, m.UserID)
	if err != nil {
		h.log.Error().Err(err).Msg("command sender lookup failed")
		h.sendNotice(m.ChannelID, "Something went wrong, please try again later!")
		return
	}
	if user != nil {
		sender.Username = user.Username
		sender.UUID = user.UUID
	}
	err = p.emit.Emit(wire.MsgTypeCommand, &wire.MsgCommand{
		Sender:    sender,
		Author:    m.Author,
		Command:   cmd,
		ChannelID: m.ChannelID,
		MessageID: m.MessageID,
		Args:      args,
	})
	if err != nil {
		h.log.Warn().Err(err).Str("command", cmd).Msg("command forward failed")
	}
}

// relayChat forwards a chat line subject to the channel policy. With
// requireVerification, unlinked senders have the message deleted and get
// a warning; without it the line relays with an unresolved identity.
func (h *Hub) relayChat(p *ServerPeer, ch *Channel, m *PlatformMessage) {
	if !ch.Chat {
		return
	}

	sender := wire.Sender{User: m.User, UserID: m.UserID}
	if ch.RequireVerification {
		user, err := h.findVerifiedUser(p.serverID, m.UserID)
		if err != nil {
			h.log.Error().Err(err).Msg("chat sender lookup failed")
			h.sendNotice(m.ChannelID, "Something went wrong, please try again later!")
			return
		}
		if user == nil {
			if err := h.platform.DeleteMessage(m.ChannelID, m.MessageID); err != nil {
				h.log.Warn().Err(err).Msg("unverified message delete failed")
			}
			h.sendNotice(m.ChannelID, "You must first verify your account before you can send messages here!")
			return
		}
		sender.Username = user.Username
		sender.UUID = user.UUID
	}

	err := p.emit.Emit(wire.MsgTypeMessage, &wire.MsgMessage{
		Sender:    sender,
		Message:   m.Content,
		ChannelID: m.ChannelID,
	})
	if err != nil {
		h.log.Warn().Err(err).Msg("chat forward failed")
	}
}

// HandlePlatformReaction forwards a reaction event. Guild reactions go
// to that guild's peer with the reactor's verification state resolved;
// DM reactions fan out to every server the reactor is linked on.
func (h *Hub) HandlePlatformReaction(r *PlatformReaction) {
	if r.GuildID == "" {
		h.relayDmReaction(r)
		return
	}

	p := h.lookupPeer(r.GuildID)
	if p == nil {
		return
	}
	user, err := h.findVerifiedUser(r.GuildID, r.UserID)
	if err != nil {
		h.log.Error().Err(err).Msg("reaction sender lookup failed")
		return
	}
	reactor := wire.ReactionUser{UserID: r.UserID}
	if user != nil {
		reactor = wire.ReactionUser{
			Verified: true,
			User:     user.User,
			UserID:   user.UserID,
			Username: user.Username,
			UUID:     user.UUID,
		}
	}
	h.emitReaction(p, reactor, r)
}

func (h *Hub) relayDmReaction(r *PlatformReaction) {
	users, err := h.store.FindUsersByUserID(r.UserID)
	if err != nil {
		h.log.Error().Err(err).Msg("dm reaction lookup failed")
		return
	}
	for _, u := range users {
		p := h.lookupPeer(u.ServerID)
		if p == nil {
			continue
		}
		h.emitReaction(p, wire.ReactionUser{
			Verified: true,
			User:     u.User,
			UserID:   u.UserID,
			Username: u.Username,
			UUID:     u.UUID,
		}, r)
	}
}

func (h *Hub) emitReaction(p *ServerPeer, reactor wire.ReactionUser, r *PlatformReaction) {
	err := p.emit.Emit(wire.MsgTypeReactionEvent, &wire.MsgReactionEvent{
		User:      reactor,
		MessageID: r.MessageID,
		ChannelID: r.ChannelID,
		Emoji:     r.Emoji,
		Type:      r.Type,
	})
	if err != nil {
		h.log.Warn().Err(err).Msg("reaction forward failed")
	}
}
