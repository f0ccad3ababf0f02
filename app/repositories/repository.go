package repositories

import (
	"errors"
	"fmt"
	"io"

	"github.com/dgraph-io/badger/v4"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("record already exists")
)

// BadgerStore is the embedded storage backend. All entities share one
// badger database and are told apart by key prefix.
type BadgerStore struct {
	db       *badger.DB
	users    *BadgerUserRepository
	groups   *BadgerGroupRepository
	posts    *BadgerPostRepository
	comments *BadgerCommentRepository
	follows  *BadgerFollowRepository
}

// OpenBadger opens (or creates) the database at path. A nil logger keeps
// badger quiet.
func OpenBadger(path string, logger badger.Logger) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path).
		WithLogger(logger).
		WithSyncWrites(false).
		WithNumVersionsToKeep(1)
	return openBadger(opts)
}

// OpenBadgerInMemory opens a database that lives only as long as the process.
func OpenBadgerInMemory() (*BadgerStore, error) {
	opts := badger.DefaultOptions("").
		WithInMemory(true).
		WithLogger(nil)
	return openBadger(opts)
}

func openBadger(opts badger.Options) (*BadgerStore, error) {
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}
	return NewBadgerStore(db), nil
}

// NewBadgerStore wraps an already opened database.
func NewBadgerStore(db *badger.DB) *BadgerStore {
	return &BadgerStore{
		db:       db,
		users:    NewBadgerUserRepository(db),
		groups:   NewBadgerGroupRepository(db),
		posts:    NewBadgerPostRepository(db),
		comments: NewBadgerCommentRepository(db),
		follows:  NewBadgerFollowRepository(db),
	}
}

func (s *BadgerStore) DB() *badger.DB { return s.db }
func (s *BadgerStore) Users() UserRepository { return s.users }
func (s *BadgerStore) Groups() GroupRepository { return s.groups }
func (s *BadgerStore) Posts() PostRepository { return s.posts }
func (s *BadgerStore) Comments() CommentRepository { return s.comments }
func (s *BadgerStore) Follows() FollowRepository { return s.follows }

// Clear drops every key, sequences included.
func (s *BadgerStore) Clear() error {
	return s.db.DropAll()
}

// Backup writes a full snapshot of the database to w.
func (s *BadgerStore) Backup(w io.Writer) error {
	_, err := s.db.Backup(w, 0)
	return err
}

// Load restores a snapshot written by Backup.
func (s *BadgerStore) Load(r io.Reader) error {
	return s.db.Load(r, 256)
}

func (s *BadgerStore) Close() error {
	return s.db.Close()
}
