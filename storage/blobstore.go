package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// BlobStore writes file payloads beneath a root directory, one subdirectory
// per bucket. Payloads are addressed by a generated stored name, never by
// the client-supplied file name, so path traversal through names is not
// possible.
type BlobStore struct {
	root string
}

// NewBlobStore builds a BlobStore rooted at root, creating it if needed.
func NewBlobStore(root string) (*BlobStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("could not create blob store root %q: %w", root, err)
	}
	return &BlobStore{root: root}, nil
}

// Put streams r into a new payload under bucketID and returns the stored
// name and payload size.
func (s *BlobStore) Put(bucketID string, r io.Reader) (string, int64, error) {
	dir := filepath.Join(s.root, bucketID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", 0, fmt.Errorf("could not create bucket directory: %w", err)
	}

	storedName := uuid.NewString()
	path := filepath.Join(dir, storedName)

	f, err := os.Create(path)
	if err != nil {
		return "", 0, fmt.Errorf("could not create payload file: %w", err)
	}

	size, err := io.Copy(f, r)
	if err != nil {
		f.Close()
		os.Remove(path)
		return "", 0, fmt.Errorf("could not write payload: %w", err)
	}

	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", 0, fmt.Errorf("could not finish payload write: %w", err)
	}

	return storedName, size, nil
}

// Open returns a reader over the payload storedName in bucketID. The caller
// closes it.
func (s *BlobStore) Open(bucketID, storedName string) (io.ReadCloser, error) {
	f, err := os.Open(filepath.Join(s.root, bucketID, storedName))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("could not open payload: %w", err)
	}
	return f, nil
}

// Remove deletes the payload storedName in bucketID. Removing a payload that
// is already gone is not an error.
func (s *BlobStore) Remove(bucketID, storedName string) error {
	err := os.Remove(filepath.Join(s.root, bucketID, storedName))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("could not remove payload: %w", err)
	}
	return nil
}
