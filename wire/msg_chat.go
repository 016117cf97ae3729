package wire

// MsgInfo is a system-origin line broadcast to every info channel.
type MsgInfo struct {
	Message string `json:"message"`
}

// MsgChat is one in-game chat line relayed to every chat channel.
type MsgChat struct {
	Username string `json:"username"`
	UUID     string `json:"uuid"`
	Message  string `json:"message"`
}

// MsgCnf reports that a forwarded command was not recognized in game.
type MsgCnf struct {
	ChannelID string `json:"channelID"`
	User      string `json:"user"`
	UserID    string `json:"userID"`
	Command   string `json:"command"`
}
