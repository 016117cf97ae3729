package platform

import "encoding/json"

// SentMessage identifies a message the platform accepted.
type SentMessage struct {
	ID        string `json:"id"`
	ChannelID string `json:"channel_id"`
}

// Client is the chat-platform collaborator. The hub only ever calls
// these operations; receiving platform events is the gateway's job and
// enters the hub through its HTTP ingress.
type Client interface {
	SendMessage(channelID, text string, embed json.RawMessage) (*SentMessage, error)
	CreateDMChannel(userID string) (string, error)
	AddRole(guildID, userID, roleID string) error
	RemoveRole(guildID, userID, roleID string) error
	SetNickname(guildID, userID, nick string) error
	AddReaction(channelID, messageID, emoji string) error
	DeleteMessage(channelID, messageID string) error
}

// Sender delivers relayed lines to a channel through its webhook
// endpoint, impersonating the given username and avatar.
type Sender interface {
	Send(webhookID, webhookToken, username, avatarURL, content string) error
}
