package database

import (
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/go-xorm/xorm"
	"xorm.io/core"
)

const mysqlErrDuplicateEntry = 1062

// DbStore is the MySQL-backed Store.
type DbStore struct {
	engine *xorm.Engine
}

// NewDbStore new a DbStore and sync the table schema.
func NewDbStore(engine *xorm.Engine) (*DbStore, error) {
	err := engine.Sync2(new(Server), new(User), new(Verification))
	if err != nil {
		return nil, err
	}
	return &DbStore{engine: engine}, nil
}

// FindServer FindServer
func (s *DbStore) FindServer(serverID, token string) (*Server, error) {
	server := &Server{}
	has, err := s.engine.Where("server_id = ? AND token = ?", serverID, token).Get(server)
	if err != nil {
		return nil, err
	}
	if !has {
		return nil, nil
	}
	return server, nil
}

// FindServerByID FindServerByID
func (s *DbStore) FindServerByID(serverID string) (*Server, error) {
	server := &Server{}
	has, err := s.engine.Where("server_id = ?", serverID).Get(server)
	if err != nil {
		return nil, err
	}
	if !has {
		return nil, nil
	}
	return server, nil
}

// RegisterServer RegisterServer
func (s *DbStore) RegisterServer(server *Server) error {
	_, err := s.engine.Insert(server)
	return translateDuplicate(err, ErrDuplicateServer)
}

// FindUserByUUID FindUserByUUID
func (s *DbStore) FindUserByUUID(serverID, uuid string) (*User, error) {
	user := &User{}
	has, err := s.engine.Where("server_id = ? AND uuid = ?", serverID, uuid).Get(user)
	if err != nil {
		return nil, err
	}
	if !has {
		return nil, nil
	}
	return user, nil
}

// FindUserByUserID FindUserByUserID
func (s *DbStore) FindUserByUserID(serverID, userID string) (*User, error) {
	user := &User{}
	has, err := s.engine.Where("server_id = ? AND user_id = ?", serverID, userID).Get(user)
	if err != nil {
		return nil, err
	}
	if !has {
		return nil, nil
	}
	return user, nil
}

// FindUsersByUserID finds the platform user's links across all servers.
func (s *DbStore) FindUsersByUserID(userID string) ([]User, error) {
	users := make([]User, 0)
	err := s.engine.Where("user_id = ?", userID).Find(&users)
	return users, err
}

// FindUsersByUsername FindUsersByUsername
func (s *DbStore) FindUsersByUsername(serverID, username string) ([]User, error) {
	users := make([]User, 0)
	err := s.engine.Where("server_id = ? AND LOWER(username) = LOWER(?)", serverID, username).Find(&users)
	return users, err
}

// FindUsersByUsernames is the batch lookup behind mention resolution.
func (s *DbStore) FindUsersByUsernames(serverID string, usernames []string) ([]User, error) {
	users := make([]User, 0)
	if len(usernames) == 0 {
		return users, nil
	}
	args := make([]interface{}, 0, len(usernames)+1)
	args = append(args, serverID)
	marks := make([]string, len(usernames))
	for i, name := range usernames {
		marks[i] = "?"
		args = append(args, strings.ToLower(name))
	}
	cond := fmt.Sprintf("server_id = ? AND LOWER(username) IN (%s)", strings.Join(marks, ","))
	err := s.engine.Where(cond, args...).Find(&users)
	return users, err
}

// InsertUser InsertUser. The unique indexes make the duplicate check
// atomic; callers must not rely on a prior lookup alone.
func (s *DbStore) InsertUser(u *User) error {
	_, err := s.engine.Insert(u)
	return translateDuplicate(err, ErrDuplicateUser)
}

// DeleteUserByUUID DeleteUserByUUID
func (s *DbStore) DeleteUserByUUID(serverID, uuid string) (int, error) {
	aff, err := s.engine.Where("server_id = ? AND uuid = ?", serverID, uuid).Delete(&User{})
	return int(aff), err
}

// DeleteUserByUserID DeleteUserByUserID
func (s *DbStore) DeleteUserByUserID(serverID, userID string) (int, error) {
	aff, err := s.engine.Where("server_id = ? AND user_id = ?", serverID, userID).Delete(&User{})
	return int(aff), err
}

// FindVerification FindVerification
func (s *DbStore) FindVerification(serverID, uuid, code string) (*Verification, error) {
	v := &Verification{}
	has, err := s.engine.Where("server_id = ? AND uuid = ? AND code = ?", serverID, uuid, code).Get(v)
	if err != nil {
		return nil, err
	}
	if !has {
		return nil, nil
	}
	return v, nil
}

// InsertVerification replaces any pending row for the same
// (server_id, uuid) so only the most recent code can confirm.
func (s *DbStore) InsertVerification(v *Verification) error {
	sess := s.engine.NewSession()
	defer sess.Close()
	if err := sess.Begin(); err != nil {
		return err
	}
	if _, err := sess.Where("server_id = ? AND uuid = ?", v.ServerID, v.UUID).Delete(&Verification{}); err != nil {
		sess.Rollback()
		return err
	}
	if _, err := sess.Insert(v); err != nil {
		sess.Rollback()
		return err
	}
	return sess.Commit()
}

// DeleteVerification DeleteVerification
func (s *DbStore) DeleteVerification(serverID, uuid string) error {
	_, err := s.engine.Where("server_id = ? AND uuid = ?", serverID, uuid).Delete(&Verification{})
	return err
}

func translateDuplicate(err error, sentinel error) error {
	if err == nil {
		return nil
	}
	if me, ok := err.(*mysql.MySQLError); ok && me.Number == mysqlErrDuplicateEntry {
		return sentinel
	}
	return err
}

// InitMysqlDb init mysql database
func InitMysqlDb(source string) (*xorm.Engine, error) {
	url := fmt.Sprintf("%s?charset=utf8mb4&parseTime=True&loc=Local", source)
	engine, err := xorm.NewEngine("mysql", url)
	if err != nil {
		return nil, err
	}
	engine.SetColumnMapper(core.SnakeMapper{})
	return engine, nil
}
