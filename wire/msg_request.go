package wire

import "encoding/json"

// Request types accepted under the "request" event.
const (
	RequestUser   = "user"
	RequestDm     = "dm"
	RequestVerify = "verify"
	RequestEmbed  = "embed"
	RequestReact  = "react"
	RequestDelete = "delete"
)

// MsgRequest is a correlated administrative request. ID is an opaque
// token chosen by the peer; exactly one MsgCallback with the same ID is
// emitted for every request, whatever the type. The payload fields used
// depend on Type. Embeds pass through opaquely; the hub does not render.
type MsgRequest struct {
	Type      string          `json:"type"`
	ID        string          `json:"id"`
	Username  string          `json:"username,omitempty"`
	UserID    string          `json:"userID,omitempty"`
	ChannelID string          `json:"channelID,omitempty"`
	MessageID string          `json:"messageID,omitempty"`
	Message   string          `json:"message,omitempty"`
	Reaction  string          `json:"reaction,omitempty"`
	UUID      string          `json:"uuid,omitempty"`
	Code      string          `json:"code,omitempty"`
	Embed     json.RawMessage `json:"embed,omitempty"`
}

// MsgCallback answers one MsgRequest.
type MsgCallback struct {
	ID        string      `json:"id"`
	Error     bool        `json:"error"`
	Message   string      `json:"message,omitempty"`
	Type      string      `json:"type,omitempty"`
	Username  string      `json:"username,omitempty"`
	User      *LinkedUser `json:"user,omitempty"`
	MessageID string      `json:"messageID,omitempty"`
	ChannelID string      `json:"channelID,omitempty"`
}
