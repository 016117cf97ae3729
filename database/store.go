package database

import "errors"

var (
	// ErrDuplicateUser is returned by InsertUser when the uuid or the
	// platform user is already linked on that server.
	ErrDuplicateUser = errors.New("user already linked")
	// ErrDuplicateServer is returned by RegisterServer when the serverID
	// is already registered.
	ErrDuplicateServer = errors.New("server already registered")
)

// Store is the persistent account store. Lookup methods return
// (nil, nil) when no row matches; errors are reserved for collaborator
// failures. Username comparisons are case-insensitive.
type Store interface {
	FindServer(serverID, token string) (*Server, error)
	FindServerByID(serverID string) (*Server, error)
	RegisterServer(s *Server) error

	FindUserByUUID(serverID, uuid string) (*User, error)
	FindUserByUserID(serverID, userID string) (*User, error)
	FindUsersByUserID(userID string) ([]User, error)
	FindUsersByUsername(serverID, username string) ([]User, error)
	FindUsersByUsernames(serverID string, usernames []string) ([]User, error)
	InsertUser(u *User) error
	DeleteUserByUUID(serverID, uuid string) (int, error)
	DeleteUserByUserID(serverID, userID string) (int, error)

	FindVerification(serverID, uuid, code string) (*Verification, error)
	InsertVerification(v *Verification) error
	DeleteVerification(serverID, uuid string) error
}
