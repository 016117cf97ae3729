package database

// Server is one registered game server identity. Token is issued once by
// the operator console and compared exactly on every connection attempt.
type Server struct {
	ID       int64  `xorm:"pk autoincr 'id'"`
	ServerID string `xorm:"varchar(36) notnull unique"`
	Token    string `xorm:"varchar(127) notnull"`
}

// User is a confirmed link between a platform account and an in-game
// identity. At most one row per (server_id, uuid) and per
// (server_id, user_id); both pairs carry unique indexes so a concurrent
// duplicate confirmation fails at insert time instead of racing past the
// pre-check.
type User struct {
	ID       int64  `xorm:"pk autoincr 'id'"`
	User     string `xorm:"varchar(255) notnull 'user'"`
	UserID   string `xorm:"varchar(36) notnull unique(svr_userid)"`
	RoleID   string `xorm:"varchar(36) notnull"`
	ServerID string `xorm:"varchar(36) notnull unique(svr_userid) unique(svr_uuid)"`
	Username string `xorm:"varchar(16) notnull"`
	UUID     string `xorm:"varchar(36) notnull unique(svr_uuid) 'uuid'"`
}

// Verification is one outstanding verification attempt, created when the
// peer confirms the named identity exists and deleted when a matching
// code is presented. One row per (server_id, uuid): a repeated attempt
// replaces the previous row, so only the most recent code matches.
type Verification struct {
	ID        int64  `xorm:"pk autoincr 'id'"`
	User      string `xorm:"varchar(255) notnull 'user'"`
	UserID    string `xorm:"varchar(36) notnull"`
	ServerID  string `xorm:"varchar(36) notnull unique(svr_uuid)"`
	ChannelID string `xorm:"varchar(36) notnull"`
	UUID      string `xorm:"varchar(36) notnull unique(svr_uuid) 'uuid'"`
	Code      string `xorm:"varchar(32) notnull"`
}
