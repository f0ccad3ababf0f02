package repositories

import (
	"testing"
	"time"

	"yatube/app/models"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *BadgerStore {
	t.Helper()
	store, err := OpenBadgerInMemory()
	require.NoError(t, err)
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

func createUser(t *testing.T, store *BadgerStore, username string) *models.User {
	t.Helper()
	user := &models.User{Username: username, PasswordHash: "x", DateJoined: time.Now()}
	require.NoError(t, store.Users().Create(user))
	return user
}

func createGroup(t *testing.T, store *BadgerStore, slug string) *models.Group {
	t.Helper()
	group := &models.Group{Title: "Группа " + slug, Slug: slug, Description: "описание"}
	require.NoError(t, store.Groups().Create(group))
	return group
}

func createPost(t *testing.T, store *BadgerStore, author *models.User, group *models.Group, pubDate time.Time) *models.Post {
	t.Helper()
	post := &models.Post{Text: "Текст поста", AuthorID: author.ID, PubDate: pubDate}
	post.SetGroup(group)
	require.NoError(t, store.Posts().Create(post))
	return post
}

func TestGetNextID(t *testing.T) {
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLogger(nil))
	require.NoError(t, err)
	defer db.Close()

	t.Run("first ID", func(t *testing.T) {
		err := db.Update(func(txn *badger.Txn) error {
			id, err := getNextID(txn, PostSeqKey)
			assert.NoError(t, err)
			assert.Equal(t, 1, id)
			return nil
		})
		assert.NoError(t, err)
	})

	t.Run("sequential IDs", func(t *testing.T) {
		err := db.Update(func(txn *badger.Txn) error {
			for i := 2; i <= 5; i++ {
				id, err := getNextID(txn, PostSeqKey)
				assert.NoError(t, err)
				assert.Equal(t, i, id)
			}
			return nil
		})
		assert.NoError(t, err)
	})

	t.Run("different sequence keys", func(t *testing.T) {
		err := db.Update(func(txn *badger.Txn) error {
			commentID, err := getNextID(txn, CommentSeqKey)
			assert.NoError(t, err)
			assert.Equal(t, 1, commentID, "comment sequence should start from 1")
			return nil
		})
		assert.NoError(t, err)
	})

	t.Run("IDs above one byte", func(t *testing.T) {
		err := db.Update(func(txn *badger.Txn) error {
			var id int
			var err error
			for i := 0; i < 300; i++ {
				id, err = getNextID(txn, UserSeqKey)
				if err != nil {
					return err
				}
			}
			assert.Equal(t, 300, id)
			return nil
		})
		assert.NoError(t, err)
	})
}

func TestGetEntity(t *testing.T) {
	store := newTestStore(t)
	user := createUser(t, store, "leo")

	err := store.DB().View(func(txn *badger.Txn) error {
		var loaded models.User
		if err := getEntity(txn, entityKey(UserKeyPrefix, user.ID), &loaded); err != nil {
			return err
		}
		assert.Equal(t, "leo", loaded.Username)

		assert.ErrorIs(t, getEntity(txn, entityKey(UserKeyPrefix, 999), &loaded), ErrNotFound)
		return nil
	})
	assert.NoError(t, err)
}

func TestPostOrder(t *testing.T) {
	now := time.Now()
	older := &models.Post{ID: 1, PubDate: now.Add(-time.Hour)}
	newer := &models.Post{ID: 2, PubDate: now}
	sameTimeHigherID := &models.Post{ID: 3, PubDate: now}

	assert.Less(t, postOrder(newer), postOrder(older))
	assert.Less(t, postOrder(sameTimeHigherID), postOrder(newer))
}

func TestPostIndexKeys(t *testing.T) {
	groupID := 4
	post := &models.Post{ID: 7, AuthorID: 2, GroupID: &groupID, PubDate: time.Now()}

	keys := postIndexKeys(post)
	require.Len(t, keys, 3)
	assert.Contains(t, string(keys[0]), PostIndexPrefix)
	assert.Contains(t, string(keys[1]), string(postAuthorPrefix(2)))
	assert.Contains(t, string(keys[2]), string(postGroupPrefix(4)))

	post.SetGroup(nil)
	assert.Len(t, postIndexKeys(post), 2)
}
