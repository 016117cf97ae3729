package wire

// Author is the platform-side identity of a command sender.
type Author struct {
	Username      string `json:"username"`
	Discriminator string `json:"discriminator"`
}

// MsgVerifyPush asks the peer to deliver a verification code to the
// named in-game identity. Sent by the hub under the "verify" event.
type MsgVerifyPush struct {
	Author    Author `json:"author"`
	User      string `json:"user"`
	UserID    string `json:"userID"`
	ChannelID string `json:"channelID"`
	Username  string `json:"username"`
	Code      string `json:"code"`
}

// MsgVcb is the peer's answer to a MsgVerifyPush. Error set means the
// in-game identity was not found; otherwise uuid and code identify the
// pending verification to record. The hub echoes the same event back to
// the peer when a verification completes.
type MsgVcb struct {
	User      string `json:"user"`
	UserID    string `json:"userID"`
	ChannelID string `json:"channelID,omitempty"`
	UUID      string `json:"uuid"`
	Code      string `json:"code,omitempty"`
	Error     bool   `json:"error,omitempty"`
}

// MsgVerifyConfirm submits the code a player typed in game. Sent by the
// peer under the "verify" event.
type MsgVerifyConfirm struct {
	UUID     string `json:"uuid"`
	Username string `json:"username"`
	Code     string `json:"code"`
}
