package repositories

import (
	"fmt"
	"strconv"

	"yatube/app/models"

	"github.com/dgraph-io/badger/v4"
)

// BadgerFollowRepository implements FollowRepository using BadgerDB.
// An edge lives under follow:<user>:<author>, so the key itself enforces
// at most one edge per pair.
type BadgerFollowRepository struct {
	db *badger.DB
}

// NewBadgerFollowRepository creates a new BadgerFollowRepository
func NewBadgerFollowRepository(db *badger.DB) *BadgerFollowRepository {
	return &BadgerFollowRepository{db: db}
}

// Create stores the edge unless it already exists
func (r *BadgerFollowRepository) Create(follow *models.Follow) (bool, error) {
	created := false
	err := update(r.db, func(txn *badger.Txn) error {
		created = false
		key := followKey(follow.UserID, follow.AuthorID)
		exists, err := keyExists(txn, key)
		if err != nil || exists {
			return err
		}

		id, err := getNextID(txn, FollowSeqKey)
		if err != nil {
			return err
		}
		follow.ID = id
		if err := setEntity(txn, key, follow); err != nil {
			return err
		}
		created = true
		return nil
	})
	return created, err
}

// Delete removes the edge if present
func (r *BadgerFollowRepository) Delete(userID, authorID int) (bool, error) {
	deleted := false
	err := update(r.db, func(txn *badger.Txn) error {
		deleted = false
		key := followKey(userID, authorID)
		exists, err := keyExists(txn, key)
		if err != nil || !exists {
			return err
		}
		if err := txn.Delete(key); err != nil {
			return err
		}
		deleted = true
		return nil
	})
	return deleted, err
}

// Exists reports whether userID follows authorID
func (r *BadgerFollowRepository) Exists(userID, authorID int) (bool, error) {
	var exists bool
	err := r.db.View(func(txn *badger.Txn) error {
		var err error
		exists, err = keyExists(txn, followKey(userID, authorID))
		return err
	})
	return exists, err
}

// ListAuthorIDs returns the IDs of every author userID follows
func (r *BadgerFollowRepository) ListAuthorIDs(userID int) ([]int, error) {
	var ids []int
	err := r.db.View(func(txn *badger.Txn) error {
		var err error
		ids, err = listFollowedAuthors(txn, userID)
		return err
	})
	return ids, err
}

func listFollowedAuthors(txn *badger.Txn, userID int) ([]int, error) {
	var ids []int
	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false
	it := txn.NewIterator(opts)
	defer it.Close()

	prefix := followPrefix(userID)
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		authorID, err := strconv.Atoi(string(it.Item().Key()[len(prefix):]))
		if err != nil {
			return nil, fmt.Errorf("malformed follow key %q: %w", it.Item().Key(), err)
		}
		ids = append(ids, authorID)
	}
	return ids, nil
}
