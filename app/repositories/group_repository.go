package repositories

import (
	"yatube/app/models"

	"github.com/dgraph-io/badger/v4"
)

// BadgerGroupRepository implements GroupRepository using BadgerDB
type BadgerGroupRepository struct {
	db *badger.DB
}

// NewBadgerGroupRepository creates a new BadgerGroupRepository
func NewBadgerGroupRepository(db *badger.DB) *BadgerGroupRepository {
	return &BadgerGroupRepository{db: db}
}

// Create stores a new group, rejecting a taken slug with ErrDuplicate
func (r *BadgerGroupRepository) Create(group *models.Group) error {
	return update(r.db, func(txn *badger.Txn) error {
		taken, err := keyExists(txn, groupSlugKey(group.Slug))
		if err != nil {
			return err
		}
		if taken {
			return ErrDuplicate
		}

		id, err := getNextID(txn, GroupSeqKey)
		if err != nil {
			return err
		}
		group.ID = id

		key := entityKey(GroupKeyPrefix, group.ID)
		if err := setEntity(txn, key, group); err != nil {
			return err
		}
		return txn.Set(groupSlugKey(group.Slug), key)
	})
}

// GetByID retrieves a group by ID
func (r *BadgerGroupRepository) GetByID(id int) (*models.Group, error) {
	var group models.Group
	err := r.db.View(func(txn *badger.Txn) error {
		return getEntity(txn, entityKey(GroupKeyPrefix, id), &group)
	})
	if err != nil {
		return nil, err
	}
	return &group, nil
}

// GetBySlug retrieves a group through the slug index
func (r *BadgerGroupRepository) GetBySlug(slug string) (*models.Group, error) {
	var group models.Group
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(groupSlugKey(slug))
		if err == badger.ErrKeyNotFound {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		key, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		return getEntity(txn, key, &group)
	})
	if err != nil {
		return nil, err
	}
	return &group, nil
}

// List returns every group ordered by ID
func (r *BadgerGroupRepository) List() ([]*models.Group, error) {
	var groups []*models.Group
	err := r.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(GroupKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var group models.Group
			err := it.Item().Value(func(val []byte) error {
				return unmarshalEntity(val, &group)
			})
			if err != nil {
				return err
			}
			groups = append(groups, &group)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return groups, nil
}

// Delete removes a group. Posts filed under it survive with no group.
func (r *BadgerGroupRepository) Delete(id int) error {
	return update(r.db, func(txn *badger.Txn) error {
		key := entityKey(GroupKeyPrefix, id)

		var group models.Group
		if err := getEntity(txn, key, &group); err != nil {
			return err
		}

		var indexKeys, postKeys [][]byte
		opts := badger.DefaultIteratorOptions
		it := txn.NewIterator(opts)
		prefix := postGroupPrefix(id)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			postKey, err := it.Item().ValueCopy(nil)
			if err != nil {
				it.Close()
				return err
			}
			indexKeys = append(indexKeys, it.Item().KeyCopy(nil))
			postKeys = append(postKeys, postKey)
		}
		it.Close()

		for i, postKey := range postKeys {
			var post models.Post
			if err := getEntity(txn, postKey, &post); err != nil {
				return err
			}
			post.SetGroup(nil)
			if err := setEntity(txn, postKey, &post); err != nil {
				return err
			}
			if err := txn.Delete(indexKeys[i]); err != nil {
				return err
			}
		}

		if err := txn.Delete(groupSlugKey(group.Slug)); err != nil {
			return err
		}
		return txn.Delete(key)
	})
}
