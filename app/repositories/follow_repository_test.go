package repositories

import (
	"sync"
	"testing"
	"time"

	"yatube/app/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFollowRepository(t *testing.T) {
	store := newTestStore(t)
	repo := store.Follows()

	reader := createUser(t, store, "reader")
	leo := createUser(t, store, "leo")
	mia := createUser(t, store, "mia")

	t.Run("create is idempotent", func(t *testing.T) {
		created, err := repo.Create(&models.Follow{UserID: reader.ID, AuthorID: leo.ID, Created: time.Now()})
		require.NoError(t, err)
		assert.True(t, created)

		created, err = repo.Create(&models.Follow{UserID: reader.ID, AuthorID: leo.ID, Created: time.Now()})
		require.NoError(t, err)
		assert.False(t, created)

		exists, err := repo.Exists(reader.ID, leo.ID)
		require.NoError(t, err)
		assert.True(t, exists)

		exists, err = repo.Exists(leo.ID, reader.ID)
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("list authors", func(t *testing.T) {
		_, err := repo.Create(&models.Follow{UserID: reader.ID, AuthorID: mia.ID, Created: time.Now()})
		require.NoError(t, err)

		ids, err := repo.ListAuthorIDs(reader.ID)
		require.NoError(t, err)
		assert.Equal(t, []int{leo.ID, mia.ID}, ids)

		ids, err = repo.ListAuthorIDs(mia.ID)
		require.NoError(t, err)
		assert.Empty(t, ids)
	})

	t.Run("delete is idempotent", func(t *testing.T) {
		deleted, err := repo.Delete(reader.ID, mia.ID)
		require.NoError(t, err)
		assert.True(t, deleted)

		deleted, err = repo.Delete(reader.ID, mia.ID)
		require.NoError(t, err)
		assert.False(t, deleted)

		ids, err := repo.ListAuthorIDs(reader.ID)
		require.NoError(t, err)
		assert.Equal(t, []int{leo.ID}, ids)
	})

	t.Run("concurrent follows create one edge", func(t *testing.T) {
		fan := createUser(t, store, "fan")

		var wg sync.WaitGroup
		results := make(chan bool, 8)
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				created, err := repo.Create(&models.Follow{UserID: fan.ID, AuthorID: mia.ID, Created: time.Now()})
				assert.NoError(t, err)
				results <- created
			}()
		}
		wg.Wait()
		close(results)

		createdCount := 0
		for created := range results {
			if created {
				createdCount++
			}
		}
		assert.Equal(t, 1, createdCount)

		ids, err := repo.ListAuthorIDs(fan.ID)
		require.NoError(t, err)
		assert.Equal(t, []int{mia.ID}, ids)
	})
}
