package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/storagesystem/api/auth"
	"github.com/storagesystem/api/storage"
)

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type createUserRequest struct {
	FirstName string `json:"firstName" binding:"required"`
	LastName  string `json:"lastName" binding:"required"`
}

// handleCreateUser registers a user and hands back a token for it, the
// session-creation flow of the storage system.
func (s *Server) handleCreateUser(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	user := &storage.User{FirstName: req.FirstName, LastName: req.LastName}
	if err := s.users.Save(c.Request.Context(), user); err != nil {
		s.logger.Errorf("could not save user: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not create user."})
		return
	}

	token, err := s.auth.Issue(c.Request.Context(), auth.Claims{"sub": user.ID})
	if err != nil {
		s.logger.Errorf("could not issue token for user %s: %v", user.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not issue token."})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"user": user, "token": token})
}

type issueTokenRequest struct {
	UserID string `json:"userId" binding:"required"`
}

func (s *Server) handleIssueToken(c *gin.Context) {
	var req issueTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	if _, err := s.users.FindByID(c.Request.Context(), req.UserID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "User not found."})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not look up user."})
		return
	}

	token, err := s.auth.Issue(c.Request.Context(), auth.Claims{"sub": req.UserID})
	if err != nil {
		s.logger.Errorf("could not issue token for user %s: %v", req.UserID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not issue token."})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}

func (s *Server) handleCurrentUser(c *gin.Context) {
	user, err := s.users.FindByID(c.Request.Context(), SubjectFromContext(c))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "User not found."})
		return
	}
	c.JSON(http.StatusOK, user)
}

type createBucketRequest struct {
	Name string `json:"name" binding:"required"`
}

func (s *Server) handleCreateBucket(c *gin.Context) {
	var req createBucketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	bucket := &storage.Bucket{Name: req.Name, OwnerID: SubjectFromContext(c)}
	if err := s.buckets.Save(c.Request.Context(), bucket); err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			c.JSON(http.StatusConflict, gin.H{"message": "A bucket with that name already exists."})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not create bucket."})
		return
	}

	c.JSON(http.StatusCreated, bucket)
}

func (s *Server) handleListBuckets(c *gin.Context) {
	buckets, err := s.buckets.ListByOwner(c.Request.Context(), SubjectFromContext(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not list buckets."})
		return
	}
	if buckets == nil {
		buckets = []*storage.Bucket{}
	}
	c.JSON(http.StatusOK, buckets)
}

// ownedBucket loads the bucket from the path parameter and enforces that it
// belongs to the authenticated caller. Buckets of other tenants are reported
// as absent, not as forbidden.
func (s *Server) ownedBucket(c *gin.Context) (*storage.Bucket, bool) {
	bucket, err := s.buckets.FindByID(c.Request.Context(), c.Param("bucketId"))
	if err != nil || bucket.OwnerID != SubjectFromContext(c) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Bucket not found."})
		return nil, false
	}
	return bucket, true
}

func (s *Server) handleGetBucket(c *gin.Context) {
	bucket, ok := s.ownedBucket(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, bucket)
}

func (s *Server) handleDeleteBucket(c *gin.Context) {
	bucket, ok := s.ownedBucket(c)
	if !ok {
		return
	}

	if err := s.buckets.Delete(c.Request.Context(), bucket.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not delete bucket."})
		return
	}
	c.Status(http.StatusNoContent)
}

type createDirectoryRequest struct {
	Name     string `json:"name" binding:"required"`
	ParentID string `json:"parentId"`
}

func (s *Server) handleCreateDirectory(c *gin.Context) {
	bucket, ok := s.ownedBucket(c)
	if !ok {
		return
	}

	var req createDirectoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	directory := &storage.Directory{
		BucketID: bucket.ID,
		ParentID: req.ParentID,
		Name:     req.Name,
	}
	if err := s.directories.Save(c.Request.Context(), directory); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not create directory."})
		return
	}

	c.JSON(http.StatusCreated, directory)
}

func (s *Server) handleListDirectories(c *gin.Context) {
	bucket, ok := s.ownedBucket(c)
	if !ok {
		return
	}

	directories, err := s.directories.ListByBucket(c.Request.Context(), bucket.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not list directories."})
		return
	}
	if directories == nil {
		directories = []*storage.Directory{}
	}
	c.JSON(http.StatusOK, directories)
}

func (s *Server) handleDeleteDirectory(c *gin.Context) {
	bucket, ok := s.ownedBucket(c)
	if !ok {
		return
	}

	directory, err := s.directories.FindByID(c.Request.Context(), c.Param("directoryId"))
	if err != nil || directory.BucketID != bucket.ID {
		c.JSON(http.StatusNotFound, gin.H{"message": "Directory not found."})
		return
	}

	if err := s.directories.Delete(c.Request.Context(), directory.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not delete directory."})
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleUploadFile(c *gin.Context) {
	bucket, ok := s.ownedBucket(c)
	if !ok {
		return
	}

	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "A multipart \"file\" part is required."})
		return
	}

	payload, err := header.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Could not read uploaded file."})
		return
	}
	defer payload.Close()

	storedName, size, err := s.blobs.Put(bucket.ID, payload)
	if err != nil {
		s.logger.Errorf("could not store payload in bucket %s: %v", bucket.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not store file."})
		return
	}

	file := &storage.File{
		BucketID:     bucket.ID,
		DirectoryID:  c.Query("directoryId"),
		OriginalName: header.Filename,
		StoredName:   storedName,
		ContentType:  header.Header.Get("Content-Type"),
		Size:         size,
	}
	if err := s.files.Save(c.Request.Context(), file); err != nil {
		_ = s.blobs.Remove(bucket.ID, storedName)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not record file."})
		return
	}

	c.JSON(http.StatusCreated, file)
}

func (s *Server) handleListFiles(c *gin.Context) {
	bucket, ok := s.ownedBucket(c)
	if !ok {
		return
	}

	files, err := s.files.ListByBucket(c.Request.Context(), bucket.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not list files."})
		return
	}
	if files == nil {
		files = []*storage.File{}
	}
	c.JSON(http.StatusOK, files)
}

// bucketFile loads the file from the path parameter, scoped to bucket.
func (s *Server) bucketFile(c *gin.Context, bucket *storage.Bucket) (*storage.File, bool) {
	file, err := s.files.FindByID(c.Request.Context(), c.Param("fileId"))
	if err != nil || file.BucketID != bucket.ID {
		c.JSON(http.StatusNotFound, gin.H{"message": "File not found."})
		return nil, false
	}
	return file, true
}

func (s *Server) handleDownloadFile(c *gin.Context) {
	bucket, ok := s.ownedBucket(c)
	if !ok {
		return
	}

	file, ok := s.bucketFile(c, bucket)
	if !ok || file.Deleted {
		if ok {
			c.JSON(http.StatusNotFound, gin.H{"message": "File not found."})
		}
		return
	}

	payload, err := s.blobs.Open(bucket.ID, file.StoredName)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "File payload not found."})
		return
	}
	defer payload.Close()

	c.Header("Content-Disposition", `attachment; filename="`+file.OriginalName+`"`)
	c.DataFromReader(http.StatusOK, file.Size, file.ContentType, payload, nil)
}

func (s *Server) handleDeleteFile(c *gin.Context) {
	bucket, ok := s.ownedBucket(c)
	if !ok {
		return
	}

	file, ok := s.bucketFile(c, bucket)
	if !ok {
		return
	}

	if err := s.files.Delete(c.Request.Context(), file.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not delete file."})
		return
	}
	if err := s.blobs.Remove(bucket.ID, file.StoredName); err != nil {
		s.logger.Warnf("could not remove payload for file %s: %v", file.ID, err)
	}

	c.Status(http.StatusNoContent)
}

// handleReloadKeys swaps in the key pair currently on disk. Administrative;
// the caller must already hold a valid token.
func (s *Server) handleReloadKeys(c *gin.Context) {
	if err := s.auth.ReloadKeys(); err != nil {
		s.logger.Errorf("key reload failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not reload keys."})
		return
	}
	c.Status(http.StatusNoContent)
}
