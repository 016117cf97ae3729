package wire

// MsgOptions is the first frame a peer must send: credentials plus the
// full channel declaration for this connection. A reconnect always
// carries a complete set; the hub never merges with a prior session.
type MsgOptions struct {
	ServerID        string          `json:"serverID"`
	Token           string          `json:"token"`
	DefaultRole     string          `json:"defaultRole"`
	EnforceNickname bool            `json:"enforceNickname"`
	Channels        []ChannelOption `json:"channels"`
}

// ChannelOption declares one relayed channel and its event classes.
type ChannelOption struct {
	ChannelID           string `json:"channelID"`
	WebhookID           string `json:"webhookID"`
	WebhookToken        string `json:"webhookToken"`
	Chat                bool   `json:"chat"`
	Info                bool   `json:"info"`
	DeathMessages       bool   `json:"deathMessages"`
	JoinQuitMessages    bool   `json:"joinQuitMessages"`
	RequireVerification bool   `json:"requireVerification"`
	AdminCommands       bool   `json:"adminCommands"`
}
