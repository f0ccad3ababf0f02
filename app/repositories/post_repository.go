package repositories

import (
	"bytes"
	"sort"

	"yatube/app/models"

	"github.com/dgraph-io/badger/v4"
)

// BadgerPostRepository implements PostRepository using BadgerDB.
//
// Besides the post record itself every post is reachable through a global
// index, an author index and, when filed under one, a group index. Index keys
// end in postOrder so a prefix scan yields newest posts first.
type BadgerPostRepository struct {
	db *badger.DB
}

// NewBadgerPostRepository creates a new BadgerPostRepository
func NewBadgerPostRepository(db *badger.DB) *BadgerPostRepository {
	return &BadgerPostRepository{db: db}
}

// Create creates a new post
func (r *BadgerPostRepository) Create(post *models.Post) error {
	return update(r.db, func(txn *badger.Txn) error {
		id, err := getNextID(txn, PostSeqKey)
		if err != nil {
			return err
		}
		post.ID = id

		key := entityKey(PostKeyPrefix, post.ID)
		if err := setEntity(txn, key, post); err != nil {
			return err
		}
		for _, indexKey := range postIndexKeys(post) {
			if err := txn.Set(indexKey, key); err != nil {
				return err
			}
		}
		return nil
	})
}

// GetByID retrieves a post by ID
func (r *BadgerPostRepository) GetByID(id int) (*models.Post, error) {
	var post models.Post
	err := r.db.View(func(txn *badger.Txn) error {
		return getEntity(txn, entityKey(PostKeyPrefix, id), &post)
	})
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// Update updates an existing post and re-files its index entries
func (r *BadgerPostRepository) Update(post *models.Post) error {
	return update(r.db, func(txn *badger.Txn) error {
		key := entityKey(PostKeyPrefix, post.ID)

		var existing models.Post
		if err := getEntity(txn, key, &existing); err != nil {
			return err
		}

		for _, indexKey := range postIndexKeys(&existing) {
			if err := txn.Delete(indexKey); err != nil {
				return err
			}
		}
		if err := setEntity(txn, key, post); err != nil {
			return err
		}
		for _, indexKey := range postIndexKeys(post) {
			if err := txn.Set(indexKey, key); err != nil {
				return err
			}
		}
		return nil
	})
}

// Count returns how many posts match filter
func (r *BadgerPostRepository) Count(filter PostFilter) (int, error) {
	total := 0
	err := r.db.View(func(txn *badger.Txn) error {
		prefixes, err := postIndexPrefixes(txn, filter)
		if err != nil {
			return err
		}

		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		for _, prefix := range prefixes {
			opts.Prefix = prefix
			it := txn.NewIterator(opts)
			for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
				total++
			}
			it.Close()
		}
		return nil
	})
	return total, err
}

type postIndexEntry struct {
	order   []byte
	postKey []byte
}

// List retrieves a page of posts matching filter, newest first
func (r *BadgerPostRepository) List(filter PostFilter, limit, offset int) ([]*models.Post, error) {
	var posts []*models.Post
	if limit <= 0 {
		return posts, nil
	}

	err := r.db.View(func(txn *badger.Txn) error {
		prefixes, err := postIndexPrefixes(txn, filter)
		if err != nil {
			return err
		}

		// The first offset+limit entries of the merged listing can only come
		// from the first offset+limit entries of each index.
		want := offset + limit
		var entries []postIndexEntry
		for _, prefix := range prefixes {
			opts := badger.DefaultIteratorOptions
			opts.Prefix = prefix
			it := txn.NewIterator(opts)
			n := 0
			for it.Seek(prefix); it.ValidForPrefix(prefix) && n < want; it.Next() {
				item := it.Item()
				postKey, err := item.ValueCopy(nil)
				if err != nil {
					it.Close()
					return err
				}
				entries = append(entries, postIndexEntry{
					order:   bytes.TrimPrefix(item.KeyCopy(nil), prefix),
					postKey: postKey,
				})
				n++
			}
			it.Close()
		}

		if len(prefixes) > 1 {
			sort.Slice(entries, func(i, j int) bool {
				return bytes.Compare(entries[i].order, entries[j].order) < 0
			})
		}
		if offset >= len(entries) {
			return nil
		}
		entries = entries[offset:]
		if len(entries) > limit {
			entries = entries[:limit]
		}

		for _, entry := range entries {
			var post models.Post
			if err := getEntity(txn, entry.postKey, &post); err != nil {
				return err
			}
			posts = append(posts, &post)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return posts, nil
}

// postIndexPrefixes resolves filter into the index prefixes to scan.
func postIndexPrefixes(txn *badger.Txn, filter PostFilter) ([][]byte, error) {
	switch {
	case filter.FollowerID != 0:
		authorIDs, err := listFollowedAuthors(txn, filter.FollowerID)
		if err != nil {
			return nil, err
		}
		prefixes := make([][]byte, 0, len(authorIDs))
		for _, authorID := range authorIDs {
			prefixes = append(prefixes, postAuthorPrefix(authorID))
		}
		return prefixes, nil
	case filter.AuthorID != 0:
		return [][]byte{postAuthorPrefix(filter.AuthorID)}, nil
	case filter.GroupID != 0:
		return [][]byte{postGroupPrefix(filter.GroupID)}, nil
	default:
		return [][]byte{[]byte(PostIndexPrefix)}, nil
	}
}
