package wire

// LinkedUser is the wire view of a linked account row.
type LinkedUser struct {
	User     string `json:"user"`
	UserID   string `json:"userID"`
	RoleID   string `json:"roleID"`
	ServerID string `json:"serverID"`
	Username string `json:"username"`
	UUID     string `json:"uuid"`
}

// MsgUnlink removes the linked account for an in-game uuid.
type MsgUnlink struct {
	UUID string `json:"uuid"`
}

// MsgUnlinkCb reports the unlink outcome.
type MsgUnlinkCb struct {
	UUID    string `json:"uuid"`
	Success bool   `json:"success"`
}

// MsgRole carries an addrole or removerole invocation.
type MsgRole struct {
	UUID   string `json:"uuid"`
	RoleID string `json:"roleID"`
}

// MsgRoleCb reports a role change outcome. Success is false when the
// uuid is not linked or the platform call failed; it is never an error.
type MsgRoleCb struct {
	UUID    string `json:"uuid"`
	RoleID  string `json:"roleID"`
	Success bool   `json:"success"`
}

// MsgGetUser looks up linked accounts by in-game name.
type MsgGetUser struct {
	Req string `json:"req"`
}

// MsgUserCb answers a MsgGetUser with all matching rows.
type MsgUserCb struct {
	Req string       `json:"req"`
	Res []LinkedUser `json:"res"`
}
