package repositories

import (
	"yatube/app/models"

	"github.com/dgraph-io/badger/v4"
)

// BadgerUserRepository implements UserRepository using BadgerDB
type BadgerUserRepository struct {
	db *badger.DB
}

// NewBadgerUserRepository creates a new BadgerUserRepository
func NewBadgerUserRepository(db *badger.DB) *BadgerUserRepository {
	return &BadgerUserRepository{db: db}
}

// Create stores a new user, rejecting a taken username with ErrDuplicate
func (r *BadgerUserRepository) Create(user *models.User) error {
	return update(r.db, func(txn *badger.Txn) error {
		taken, err := keyExists(txn, usernameKey(user.Username))
		if err != nil {
			return err
		}
		if taken {
			return ErrDuplicate
		}

		id, err := getNextID(txn, UserSeqKey)
		if err != nil {
			return err
		}
		user.ID = id

		key := entityKey(UserKeyPrefix, user.ID)
		if err := setEntity(txn, key, user); err != nil {
			return err
		}
		return txn.Set(usernameKey(user.Username), key)
	})
}

// GetByID retrieves a user by ID
func (r *BadgerUserRepository) GetByID(id int) (*models.User, error) {
	var user models.User
	err := r.db.View(func(txn *badger.Txn) error {
		return getEntity(txn, entityKey(UserKeyPrefix, id), &user)
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByUsername retrieves a user through the username index
func (r *BadgerUserRepository) GetByUsername(username string) (*models.User, error) {
	var user models.User
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(usernameKey(username))
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
		return getEntity(txn, key, &user)
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetMany loads the users with the given IDs in one transaction
func (r *BadgerUserRepository) GetMany(ids []int) (map[int]*models.User, error) {
	users := make(map[int]*models.User, len(ids))
	err := r.db.View(func(txn *badger.Txn) error {
		for _, id := range ids {
			if _, seen := users[id]; seen {
				continue
			}
			var user models.User
			err := getEntity(txn, entityKey(UserKeyPrefix, id), &user)
			if err == ErrNotFound {
				continue
			}
			if err != nil {
				return err
			}
			users[id] = &user
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return users, nil
}

// Update saves an existing user, moving the username index on rename
func (r *BadgerUserRepository) Update(user *models.User) error {
	return update(r.db, func(txn *badger.Txn) error {
		key := entityKey(UserKeyPrefix, user.ID)

		var existing models.User
		if err := getEntity(txn, key, &existing); err != nil {
			return err
		}

		if existing.Username != user.Username {
			taken, err := keyExists(txn, usernameKey(user.Username))
			if err != nil {
				return err
			}
			if taken {
				return ErrDuplicate
			}
			if err := txn.Delete(usernameKey(existing.Username)); err != nil {
				return err
			}
			if err := txn.Set(usernameKey(user.Username), key); err != nil {
				return err
			}
		}

		return setEntity(txn, key, user)
	})
}

// List returns every user ordered by ID
func (r *BadgerUserRepository) List() ([]*models.User, error) {
	var users []*models.User
	err := r.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(UserKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var user models.User
			err := it.Item().Value(func(val []byte) error {
				return unmarshalEntity(val, &user)
			})
			if err != nil {
				return err
			}
			users = append(users, &user)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return users, nil
}
