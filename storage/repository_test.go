package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_MemoryBucketRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryBucketRepository()

	bucket := &Bucket{Name: "media", OwnerID: "user-1"}
	require.NoError(t, repo.Save(ctx, bucket))
	assert.NotEmpty(t, bucket.ID)
	assert.False(t, bucket.CreatedAt.IsZero())

	t.Run("find by id", func(t *testing.T) {
		found, err := repo.FindByID(ctx, bucket.ID)
		require.NoError(t, err)
		assert.Equal(t, "media", found.Name)
	})

	t.Run("duplicate name per owner rejected", func(t *testing.T) {
		err := repo.Save(ctx, &Bucket{Name: "media", OwnerID: "user-1"})
		assert.ErrorIs(t, err, ErrAlreadyExists)
	})

	t.Run("same name under other owner allowed", func(t *testing.T) {
		err := repo.Save(ctx, &Bucket{Name: "media", OwnerID: "user-2"})
		assert.NoError(t, err)
	})

	t.Run("list by owner", func(t *testing.T) {
		require.NoError(t, repo.Save(ctx, &Bucket{Name: "backups", OwnerID: "user-1"}))

		owned, err := repo.ListByOwner(ctx, "user-1")
		require.NoError(t, err)
		assert.Len(t, owned, 2)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, bucket.ID))

		_, err := repo.FindByID(ctx, bucket.ID)
		assert.ErrorIs(t, err, ErrNotFound)

		assert.ErrorIs(t, repo.Delete(ctx, bucket.ID), ErrNotFound)
	})
}

func Test_MemoryUserRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryUserRepository()

	user := &User{FirstName: "Ada", LastName: "Lovelace"}
	require.NoError(t, repo.Save(ctx, user))
	require.NotEmpty(t, user.ID)

	found, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ada", found.FirstName)

	_, err = repo.FindByID(ctx, "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func Test_MemoryDirectoryRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryDirectoryRepository()

	root := &Directory{BucketID: "bucket-1", Name: "photos"}
	require.NoError(t, repo.Save(ctx, root))

	nested := &Directory{BucketID: "bucket-1", ParentID: root.ID, Name: "2024"}
	require.NoError(t, repo.Save(ctx, nested))

	require.NoError(t, repo.Save(ctx, &Directory{BucketID: "bucket-2", Name: "other"}))

	inBucket, err := repo.ListByBucket(ctx, "bucket-1")
	require.NoError(t, err)
	assert.Len(t, inBucket, 2)

	require.NoError(t, repo.Delete(ctx, nested.ID))
	_, err = repo.FindByID(ctx, nested.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func Test_MemoryFileRepository_SoftDelete(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryFileRepository()

	file := &File{
		BucketID:     "bucket-1",
		OriginalName: "report.pdf",
		StoredName:   "stored-1",
		ContentType:  "application/pdf",
		Size:         1024,
	}
	require.NoError(t, repo.Save(ctx, file))

	require.NoError(t, repo.Delete(ctx, file.ID))

	// The record survives deletion, flagged.
	found, err := repo.FindByID(ctx, file.ID)
	require.NoError(t, err)
	assert.True(t, found.Deleted)
	assert.Equal(t, "report.pdf", found.OriginalName)

	assert.ErrorIs(t, repo.Delete(ctx, "nope"), ErrNotFound)
}
