package wire

import "encoding/json"

// Sender is the resolved identity of a platform user. Username and UUID
// are empty when the sender has no linked account.
type Sender struct {
	User     string `json:"user"`
	UserID   string `json:"userID"`
	Username string `json:"username"`
	UUID     string `json:"uuid,omitempty"`
}

// MsgCommand forwards a recognized admin command to the peer. The sender
// may be unverified; peers decide per command whether that matters.
type MsgCommand struct {
	Sender    Sender   `json:"sender"`
	Author    Author   `json:"author"`
	Command   string   `json:"command"`
	ChannelID string   `json:"channelID"`
	MessageID string   `json:"messageID"`
	Args      []string `json:"args"`
}

// MsgMessage relays one platform chat message to the peer.
type MsgMessage struct {
	Sender    Sender `json:"sender"`
	Message   string `json:"message"`
	ChannelID string `json:"channelID"`
}

// ReactionUser identifies who reacted, with Verified false when the
// platform user has no linked account.
type ReactionUser struct {
	Verified bool   `json:"verified"`
	User     string `json:"user,omitempty"`
	UserID   string `json:"userID"`
	Username string `json:"username,omitempty"`
	UUID     string `json:"uuid,omitempty"`
}

// MsgReactionEvent forwards a reaction add or remove. Type carries the
// raw platform event name; Emoji passes through opaquely.
type MsgReactionEvent struct {
	User      ReactionUser    `json:"user"`
	MessageID string          `json:"messageID"`
	ChannelID string          `json:"channelID"`
	Emoji     json.RawMessage `json:"emoji"`
	Type      string          `json:"type"`
}
