package database

import (
	"strings"
	"sync"
)

// MemStore is an in-memory Store. It backs the package tests and is good
// enough for single-server setups that can re-register links on restart.
type MemStore struct {
	mu            sync.Mutex
	servers       []Server
	users         []User
	verifications []Verification
	nextID        int64
}

// NewMemStore NewMemStore
func NewMemStore() *MemStore {
	return &MemStore{}
}

// FindServer FindServer
func (s *MemStore) FindServer(serverID, token string) (*Server, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.servers {
		if s.servers[i].ServerID == serverID && s.servers[i].Token == token {
			server := s.servers[i]
			return &server, nil
		}
	}
	return nil, nil
}

// FindServerByID FindServerByID
func (s *MemStore) FindServerByID(serverID string) (*Server, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.servers {
		if s.servers[i].ServerID == serverID {
			server := s.servers[i]
			return &server, nil
		}
	}
	return nil, nil
}

// RegisterServer RegisterServer
func (s *MemStore) RegisterServer(server *Server) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.servers {
		if s.servers[i].ServerID == server.ServerID {
			return ErrDuplicateServer
		}
	}
	s.nextID++
	server.ID = s.nextID
	s.servers = append(s.servers, *server)
	return nil
}

// FindUserByUUID FindUserByUUID
func (s *MemStore) FindUserByUUID(serverID, uuid string) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.users {
		if s.users[i].ServerID == serverID && s.users[i].UUID == uuid {
			user := s.users[i]
			return &user, nil
		}
	}
	return nil, nil
}

// FindUserByUserID FindUserByUserID
func (s *MemStore) FindUserByUserID(serverID, userID string) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.users {
		if s.users[i].ServerID == serverID && s.users[i].UserID == userID {
			user := s.users[i]
			return &user, nil
		}
	}
	return nil, nil
}

// FindUsersByUserID FindUsersByUserID
func (s *MemStore) FindUsersByUserID(userID string) ([]User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	users := make([]User, 0)
	for i := range s.users {
		if s.users[i].UserID == userID {
			users = append(users, s.users[i])
		}
	}
	return users, nil
}

// FindUsersByUsername FindUsersByUsername
func (s *MemStore) FindUsersByUsername(serverID, username string) ([]User, error) {
	return s.FindUsersByUsernames(serverID, []string{username})
}

// FindUsersByUsernames FindUsersByUsernames
func (s *MemStore) FindUsersByUsernames(serverID string, usernames []string) ([]User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	wanted := make(map[string]bool, len(usernames))
	for _, name := range usernames {
		wanted[strings.ToLower(name)] = true
	}
	users := make([]User, 0)
	for i := range s.users {
		if s.users[i].ServerID == serverID && wanted[strings.ToLower(s.users[i].Username)] {
			users = append(users, s.users[i])
		}
	}
	return users, nil
}

// InsertUser InsertUser. The check and the append happen under one lock,
// matching the conditional-insert contract of the MySQL store.
func (s *MemStore) InsertUser(u *User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.users {
		if s.users[i].ServerID != u.ServerID {
			continue
		}
		if s.users[i].UUID == u.UUID || s.users[i].UserID == u.UserID {
			return ErrDuplicateUser
		}
	}
	s.nextID++
	u.ID = s.nextID
	s.users = append(s.users, *u)
	return nil
}

// DeleteUserByUUID DeleteUserByUUID
func (s *MemStore) DeleteUserByUUID(serverID, uuid string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deleteUsers(func(u *User) bool {
		return u.ServerID == serverID && u.UUID == uuid
	}), nil
}

// DeleteUserByUserID DeleteUserByUserID
func (s *MemStore) DeleteUserByUserID(serverID, userID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deleteUsers(func(u *User) bool {
		return u.ServerID == serverID && u.UserID == userID
	}), nil
}

func (s *MemStore) deleteUsers(match func(*User) bool) int {
	kept := s.users[:0]
	deleted := 0
	for i := range s.users {
		if match(&s.users[i]) {
			deleted++
			continue
		}
		kept = append(kept, s.users[i])
	}
	s.users = kept
	return deleted
}

// FindVerification FindVerification
func (s *MemStore) FindVerification(serverID, uuid, code string) (*Verification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.verifications {
		v := &s.verifications[i]
		if v.ServerID == serverID && v.UUID == uuid && v.Code == code {
			found := *v
			return &found, nil
		}
	}
	return nil, nil
}

// InsertVerification InsertVerification
func (s *MemStore) InsertVerification(v *Verification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.verifications[:0]
	for i := range s.verifications {
		if s.verifications[i].ServerID == v.ServerID && s.verifications[i].UUID == v.UUID {
			continue
		}
		kept = append(kept, s.verifications[i])
	}
	s.nextID++
	v.ID = s.nextID
	s.verifications = append(kept, *v)
	return nil
}

// DeleteVerification DeleteVerification
func (s *MemStore) DeleteVerification(serverID, uuid string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.verifications[:0]
	for i := range s.verifications {
		if s.verifications[i].ServerID == serverID && s.verifications[i].UUID == uuid {
			continue
		}
		kept = append(kept, s.verifications[i])
	}
	s.verifications = kept
	return nil
}
