package repositories

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"yatube/app/models"

	"github.com/dgraph-io/badger/v4"
)

const (
	// Key prefixes for different entity types
	UserKeyPrefix    = "user:"
	GroupKeyPrefix   = "group:"
	PostKeyPrefix    = "post:"
	CommentKeyPrefix = "comment:"
	FollowKeyPrefix  = "follow:"

	// Secondary index prefixes
	UsernameIndexPrefix   = "idx:user:name:"
	GroupSlugIndexPrefix  = "idx:group:slug:"
	PostIndexPrefix       = "idx:post:all:"
	PostAuthorIndexPrefix = "idx:post:author:"
	PostGroupIndexPrefix  = "idx:post:group:"

	// Sequence keys for auto-incrementing IDs
	UserSeqKey    = "seq:user"
	GroupSeqKey   = "seq:group"
	PostSeqKey    = "seq:post"
	CommentSeqKey = "seq:comment"
	FollowSeqKey  = "seq:follow"
)

// maxConflictRetries bounds how often a write transaction is replayed after
// losing an optimistic concurrency race.
const maxConflictRetries = 5

// getNextID gets the next available ID for a given sequence key
func getNextID(txn *badger.Txn, seqKey string) (int, error) {
	var id int
	item, err := txn.Get([]byte(seqKey))
	if err == badger.ErrKeyNotFound {
		id = 1
	} else if err != nil {
		return 0, err
	} else {
		err = item.Value(func(val []byte) error {
			id = int(val[0])<<24 | int(val[1])<<16 | int(val[2])<<8 | int(val[3])
			return nil
		})
		if err != nil {
			return 0, err
		}
		id++
	}

	idBytes := []byte{byte(id >> 24), byte(id >> 16), byte(id >> 8), byte(id)}
	if err := txn.Set([]byte(seqKey), idBytes); err != nil {
		return 0, err
	}

	return id, nil
}

// marshalEntity marshals an entity to JSON
func marshalEntity(entity interface{}) ([]byte, error) {
	data, err := json.Marshal(entity)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal entity: %w", err)
	}
	return data, nil
}

// unmarshalEntity unmarshals JSON data into an entity
func unmarshalEntity(data []byte, entity interface{}) error {
	if err := json.Unmarshal(data, entity); err != nil {
		return fmt.Errorf("failed to unmarshal entity: %w", err)
	}
	return nil
}

// getEntity loads the JSON value stored under key, mapping a missing key to ErrNotFound.
func getEntity(txn *badger.Txn, key []byte, entity interface{}) error {
	item, err := txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	return item.Value(func(val []byte) error {
		return unmarshalEntity(val, entity)
	})
}

func setEntity(txn *badger.Txn, key []byte, entity interface{}) error {
	data, err := marshalEntity(entity)
	if err != nil {
		return err
	}
	return txn.Set(key, data)
}

func keyExists(txn *badger.Txn, key []byte) (bool, error) {
	_, err := txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// update runs fn in a read-write transaction, replaying it when the commit
// conflicts with a concurrent writer.
func update(db *badger.DB, fn func(txn *badger.Txn) error) error {
	var err error
	for attempt := 0; attempt <= maxConflictRetries; attempt++ {
		err = db.Update(fn)
		if !errors.Is(err, badger.ErrConflict) {
			return err
		}
	}
	return err
}

func entityKey(prefix string, id int) []byte {
	return []byte(fmt.Sprintf("%s%010d", prefix, id))
}

func usernameKey(username string) []byte {
	return []byte(UsernameIndexPrefix + username)
}

func groupSlugKey(slug string) []byte {
	return []byte(GroupSlugIndexPrefix + slug)
}

func commentKey(postID, id int) []byte {
	return []byte(fmt.Sprintf("%s%010d:%010d", CommentKeyPrefix, postID, id))
}

func commentPrefix(postID int) []byte {
	return []byte(fmt.Sprintf("%s%010d:", CommentKeyPrefix, postID))
}

func followKey(userID, authorID int) []byte {
	return []byte(fmt.Sprintf("%s%010d:%010d", FollowKeyPrefix, userID, authorID))
}

func followPrefix(userID int) []byte {
	return []byte(fmt.Sprintf("%s%010d:", FollowKeyPrefix, userID))
}

func postAuthorPrefix(authorID int) []byte {
	return []byte(fmt.Sprintf("%s%010d:", PostAuthorIndexPrefix, authorID))
}

func postGroupPrefix(groupID int) []byte {
	return []byte(fmt.Sprintf("%s%010d:", PostGroupIndexPrefix, groupID))
}

// postOrder is the sortable suffix of every post index key. Keys sort
// ascending, so the newest post (then the highest ID) comes first.
func postOrder(post *models.Post) string {
	nanos := post.PubDate.UnixNano()
	if nanos < 0 {
		nanos = 0
	}
	return fmt.Sprintf("%019d:%010d", math.MaxInt64-nanos, math.MaxInt32-post.ID)
}

// postIndexKeys lists every index entry that points at post.
func postIndexKeys(post *models.Post) [][]byte {
	order := postOrder(post)
	keys := [][]byte{
		[]byte(PostIndexPrefix + order),
		append(postAuthorPrefix(post.AuthorID), order...),
	}
	if post.GroupID != nil {
		keys = append(keys, append(postGroupPrefix(*post.GroupID), order...))
	}
	return keys
}
