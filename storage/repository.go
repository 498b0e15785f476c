package storage

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when a looked-up entity does not exist.
	ErrNotFound = errors.New("entity not found")

	// ErrAlreadyExists is returned when a uniqueness constraint is violated,
	// such as two buckets of the same name under one owner.
	ErrAlreadyExists = errors.New("entity already exists")
)

// UserRepository persists user accounts.
type UserRepository interface {
	Save(ctx context.Context, user *User) error
	FindByID(ctx context.Context, id string) (*User, error)
}

// BucketRepository persists buckets. Bucket names are unique per owner.
type BucketRepository interface {
	Save(ctx context.Context, bucket *Bucket) error
	FindByID(ctx context.Context, id string) (*Bucket, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*Bucket, error)
	Delete(ctx context.Context, id string) error
}

// DirectoryRepository persists directories within buckets.
type DirectoryRepository interface {
	Save(ctx context.Context, directory *Directory) error
	FindByID(ctx context.Context, id string) (*Directory, error)
	ListByBucket(ctx context.Context, bucketID string) ([]*Directory, error)
	Delete(ctx context.Context, id string) error
}

// FileRepository persists file metadata. Delete is a soft delete: the record
// stays, flagged, so listings can distinguish "gone" from "never existed".
type FileRepository interface {
	Save(ctx context.Context, file *File) error
	FindByID(ctx context.Context, id string) (*File, error)
	ListByBucket(ctx context.Context, bucketID string) ([]*File, error)
	Delete(ctx context.Context, id string) error
}

// NewID returns a fresh entity identifier.
func NewID() string {
	return uuid.NewString()
}

// MemoryUserRepository is a mutex-guarded in-memory UserRepository.
type MemoryUserRepository struct {
	mu    sync.RWMutex
	users map[string]User
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{users: make(map[string]User)}
}

func (r *MemoryUserRepository) Save(_ context.Context, user *User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if user.ID == "" {
		user.ID = NewID()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	r.users[user.ID] = *user
	return nil
}

func (r *MemoryUserRepository) FindByID(_ context.Context, id string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &user, nil
}

// MemoryBucketRepository is a mutex-guarded in-memory BucketRepository.
type MemoryBucketRepository struct {
	mu      sync.RWMutex
	buckets map[string]Bucket
}

func NewMemoryBucketRepository() *MemoryBucketRepository {
	return &MemoryBucketRepository{buckets: make(map[string]Bucket)}
}

func (r *MemoryBucketRepository) Save(_ context.Context, bucket *Bucket) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.buckets {
		if existing.ID != bucket.ID && existing.OwnerID == bucket.OwnerID && existing.Name == bucket.Name {
			return ErrAlreadyExists
		}
	}

	if bucket.ID == "" {
		bucket.ID = NewID()
	}
	if bucket.CreatedAt.IsZero() {
		bucket.CreatedAt = time.Now().UTC()
	}
	r.buckets[bucket.ID] = *bucket
	return nil
}

func (r *MemoryBucketRepository) FindByID(_ context.Context, id string) (*Bucket, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	bucket, ok := r.buckets[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &bucket, nil
}

func (r *MemoryBucketRepository) ListByOwner(_ context.Context, ownerID string) ([]*Bucket, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var owned []*Bucket
	for _, bucket := range r.buckets {
		if bucket.OwnerID == ownerID {
			b := bucket
			owned = append(owned, &b)
		}
	}
	return owned, nil
}

func (r *MemoryBucketRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.buckets[id]; !ok {
		return ErrNotFound
	}
	delete(r.buckets, id)
	return nil
}

// MemoryDirectoryRepository is a mutex-guarded in-memory DirectoryRepository.
type MemoryDirectoryRepository struct {
	mu          sync.RWMutex
	directories map[string]Directory
}

func NewMemoryDirectoryRepository() *MemoryDirectoryRepository {
	return &MemoryDirectoryRepository{directories: make(map[string]Directory)}
}

func (r *MemoryDirectoryRepository) Save(_ context.Context, directory *Directory) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if directory.ID == "" {
		directory.ID = NewID()
	}
	if directory.CreatedAt.IsZero() {
		directory.CreatedAt = time.Now().UTC()
	}
	r.directories[directory.ID] = *directory
	return nil
}

func (r *MemoryDirectoryRepository) FindByID(_ context.Context, id string) (*Directory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	directory, ok := r.directories[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &directory, nil
}

func (r *MemoryDirectoryRepository) ListByBucket(_ context.Context, bucketID string) ([]*Directory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var inBucket []*Directory
	for _, directory := range r.directories {
		if directory.BucketID == bucketID {
			d := directory
			inBucket = append(inBucket, &d)
		}
	}
	return inBucket, nil
}

func (r *MemoryDirectoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.directories[id]; !ok {
		return ErrNotFound
	}
	delete(r.directories, id)
	return nil
}

// MemoryFileRepository is a mutex-guarded in-memory FileRepository.
type MemoryFileRepository struct {
	mu    sync.RWMutex
	files map[string]File
}

func NewMemoryFileRepository() *MemoryFileRepository {
	return &MemoryFileRepository{files: make(map[string]File)}
}

func (r *MemoryFileRepository) Save(_ context.Context, file *File) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if file.ID == "" {
		file.ID = NewID()
	}
	if file.CreatedAt.IsZero() {
		file.CreatedAt = time.Now().UTC()
	}
	r.files[file.ID] = *file
	return nil
}

func (r *MemoryFileRepository) FindByID(_ context.Context, id string) (*File, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	file, ok := r.files[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &file, nil
}

func (r *MemoryFileRepository) ListByBucket(_ context.Context, bucketID string) ([]*File, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var inBucket []*File
	for _, file := range r.files {
		if file.BucketID == bucketID {
			f := file
			inBucket = append(inBucket, &f)
		}
	}
	return inBucket, nil
}

func (r *MemoryFileRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	file, ok := r.files[id]
	if !ok {
		return ErrNotFound
	}
	file.Deleted = true
	r.files[id] = file
	return nil
}
