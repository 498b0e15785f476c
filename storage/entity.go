// Package storage is the thin persistence layer beneath the storage API:
// bucket, directory, file and user entities, their repositories, and a
// disk-backed blob store for file payloads.
package storage

import "time"

// User is an account that owns buckets and presents tokens whose "sub"
// claim is its ID.
type User struct {
	ID        string    `json:"id"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	CreatedAt time.Time `json:"createdAt"`
}

// Bucket is a named container of directories and files, owned by one user.
type Bucket struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	OwnerID   string    `json:"ownerId"`
	CreatedAt time.Time `json:"createdAt"`
}

// Directory is a named node in a bucket's tree. ParentID is empty for
// directories at the bucket root.
type Directory struct {
	ID        string    `json:"id"`
	BucketID  string    `json:"bucketId"`
	ParentID  string    `json:"parentId,omitempty"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

// File is the metadata record of a stored payload. StoredName is the name
// of the payload in the blob store; OriginalName is what the client called
// it. Deleted files keep their record but lose their payload.
type File struct {
	ID           string    `json:"id"`
	BucketID     string    `json:"bucketId"`
	DirectoryID  string    `json:"directoryId,omitempty"`
	OriginalName string    `json:"originalName"`
	StoredName   string    `json:"-"`
	ContentType  string    `json:"contentType"`
	Size         int64     `json:"size"`
	Deleted      bool      `json:"deleted"`
	CreatedAt    time.Time `json:"createdAt"`
}
