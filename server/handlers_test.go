package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storagesystem/api/auth"
	"github.com/storagesystem/api/storage"
)

type testServer struct {
	router      *gin.Engine
	publicPath  string
	privatePath string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dir := t.TempDir()
	publicPath := filepath.Join(dir, "public.der")
	privatePath := filepath.Join(dir, "private.der")
	_, err := auth.GenerateAndPersist(publicPath, privatePath)
	require.NoError(t, err)

	service, err := auth.NewService(auth.Config{
		Issuer:         "StorageSystem",
		PublicKeyPath:  publicPath,
		PrivateKeyPath: privatePath,
	})
	require.NoError(t, err)

	blobs, err := storage.NewBlobStore(filepath.Join(dir, "blobs"))
	require.NoError(t, err)

	srv := New(Deps{
		Auth:        service,
		Users:       storage.NewMemoryUserRepository(),
		Buckets:     storage.NewMemoryBucketRepository(),
		Directories: storage.NewMemoryDirectoryRepository(),
		Files:       storage.NewMemoryFileRepository(),
		Blobs:       blobs,
	})

	return &testServer{
		router:      srv.Router(),
		publicPath:  publicPath,
		privatePath: privatePath,
	}
}

func (ts *testServer) doJSON(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	request := httptest.NewRequest(method, path, reader)
	request.Header.Set("Content-Type", "application/json")
	if token != "" {
		request.Header.Set("Authorization", "Bearer "+token)
	}

	recorder := httptest.NewRecorder()
	ts.router.ServeHTTP(recorder, request)
	return recorder
}

// registerUser creates a user and returns its ID and a token for it.
func (ts *testServer) registerUser(t *testing.T, firstName string) (string, string) {
	t.Helper()

	recorder := ts.doJSON(t, http.MethodPost, "/users", "", gin.H{
		"firstName": firstName,
		"lastName":  "Tester",
	})
	require.Equal(t, http.StatusCreated, recorder.Code, recorder.Body.String())

	var response struct {
		User  storage.User `json:"user"`
		Token string       `json:"token"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
	require.NotEmpty(t, response.User.ID)
	require.NotEmpty(t, response.Token)

	return response.User.ID, response.Token
}

func Test_CreateUser_ReturnsWorkingToken(t *testing.T) {
	ts := newTestServer(t)

	_, token := ts.registerUser(t, "Ada")

	recorder := ts.doJSON(t, http.MethodGet, "/users/me", token, nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	var user storage.User
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &user))
	assert.Equal(t, "Ada", user.FirstName)
}

func Test_IssueToken(t *testing.T) {
	ts := newTestServer(t)
	userID, _ := ts.registerUser(t, "Ada")

	t.Run("existing user", func(t *testing.T) {
		recorder := ts.doJSON(t, http.MethodPost, "/auth/token", "", gin.H{"userId": userID})
		require.Equal(t, http.StatusOK, recorder.Code)

		var response struct {
			Token string `json:"token"`
		}
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))

		me := ts.doJSON(t, http.MethodGet, "/users/me", response.Token, nil)
		assert.Equal(t, http.StatusOK, me.Code)
	})

	t.Run("unknown user", func(t *testing.T) {
		recorder := ts.doJSON(t, http.MethodPost, "/auth/token", "", gin.H{"userId": "nope"})
		assert.Equal(t, http.StatusNotFound, recorder.Code)
	})
}

func Test_BucketFileLifecycle(t *testing.T) {
	ts := newTestServer(t)
	_, token := ts.registerUser(t, "Ada")

	// Create a bucket.
	recorder := ts.doJSON(t, http.MethodPost, "/buckets", token, gin.H{"name": "media"})
	require.Equal(t, http.StatusCreated, recorder.Code, recorder.Body.String())

	var bucket storage.Bucket
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &bucket))
	require.NotEmpty(t, bucket.ID)

	// Duplicate bucket names conflict.
	recorder = ts.doJSON(t, http.MethodPost, "/buckets", token, gin.H{"name": "media"})
	assert.Equal(t, http.StatusConflict, recorder.Code)

	// Upload a file.
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", "report.txt")
	require.NoError(t, err)
	_, err = part.Write([]byte("file content"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	request := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/buckets/%s/files", bucket.ID), &buf)
	request.Header.Set("Content-Type", writer.FormDataContentType())
	request.Header.Set("Authorization", "Bearer "+token)
	upload := httptest.NewRecorder()
	ts.router.ServeHTTP(upload, request)
	require.Equal(t, http.StatusCreated, upload.Code, upload.Body.String())

	var file storage.File
	require.NoError(t, json.Unmarshal(upload.Body.Bytes(), &file))
	assert.Equal(t, "report.txt", file.OriginalName)
	assert.Equal(t, int64(len("file content")), file.Size)

	// Download it back.
	download := ts.doJSON(t, http.MethodGet, fmt.Sprintf("/buckets/%s/files/%s", bucket.ID, file.ID), token, nil)
	require.Equal(t, http.StatusOK, download.Code)
	assert.Equal(t, "file content", download.Body.String())
	assert.Contains(t, download.Header().Get("Content-Disposition"), "report.txt")

	// Soft-delete it.
	deleted := ts.doJSON(t, http.MethodDelete, fmt.Sprintf("/buckets/%s/files/%s", bucket.ID, file.ID), token, nil)
	require.Equal(t, http.StatusNoContent, deleted.Code)

	// Gone for downloads, still listed as deleted.
	download = ts.doJSON(t, http.MethodGet, fmt.Sprintf("/buckets/%s/files/%s", bucket.ID, file.ID), token, nil)
	assert.Equal(t, http.StatusNotFound, download.Code)

	listing := ts.doJSON(t, http.MethodGet, fmt.Sprintf("/buckets/%s/files", bucket.ID), token, nil)
	require.Equal(t, http.StatusOK, listing.Code)

	var files []*storage.File
	require.NoError(t, json.Unmarshal(listing.Body.Bytes(), &files))
	require.Len(t, files, 1)
	assert.True(t, files[0].Deleted)
}

func Test_Directories(t *testing.T) {
	ts := newTestServer(t)
	_, token := ts.registerUser(t, "Ada")

	recorder := ts.doJSON(t, http.MethodPost, "/buckets", token, gin.H{"name": "media"})
	require.Equal(t, http.StatusCreated, recorder.Code)
	var bucket storage.Bucket
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &bucket))

	recorder = ts.doJSON(t, http.MethodPost, fmt.Sprintf("/buckets/%s/directories", bucket.ID), token, gin.H{"name": "photos"})
	require.Equal(t, http.StatusCreated, recorder.Code)
	var directory storage.Directory
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &directory))

	listing := ts.doJSON(t, http.MethodGet, fmt.Sprintf("/buckets/%s/directories", bucket.ID), token, nil)
	require.Equal(t, http.StatusOK, listing.Code)
	var directories []*storage.Directory
	require.NoError(t, json.Unmarshal(listing.Body.Bytes(), &directories))
	assert.Len(t, directories, 1)

	deleted := ts.doJSON(t, http.MethodDelete, fmt.Sprintf("/buckets/%s/directories/%s", bucket.ID, directory.ID), token, nil)
	assert.Equal(t, http.StatusNoContent, deleted.Code)
}

func Test_CrossTenantBucketsAreHidden(t *testing.T) {
	ts := newTestServer(t)
	_, tokenA := ts.registerUser(t, "Ada")
	_, tokenB := ts.registerUser(t, "Grace")

	recorder := ts.doJSON(t, http.MethodPost, "/buckets", tokenA, gin.H{"name": "private"})
	require.Equal(t, http.StatusCreated, recorder.Code)
	var bucket storage.Bucket
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &bucket))

	// Another tenant sees the bucket as absent, not as forbidden.
	got := ts.doJSON(t, http.MethodGet, "/buckets/"+bucket.ID, tokenB, nil)
	assert.Equal(t, http.StatusNotFound, got.Code)

	listing := ts.doJSON(t, http.MethodGet, "/buckets", tokenB, nil)
	require.Equal(t, http.StatusOK, listing.Code)
	assert.JSONEq(t, "[]", listing.Body.String())
}

func Test_JWKSEndpoint(t *testing.T) {
	ts := newTestServer(t)

	recorder := ts.doJSON(t, http.MethodGet, "/.well-known/jwks.json", "", nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	var response struct {
		Keys []map[string]any `json:"keys"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
	require.Len(t, response.Keys, 1)
	assert.Equal(t, "RSA", response.Keys[0]["kty"])
	assert.Equal(t, "RS256", response.Keys[0]["alg"])
	assert.Equal(t, "sig", response.Keys[0]["use"])
}

func Test_ReloadKeysEndpoint(t *testing.T) {
	ts := newTestServer(t)
	_, token := ts.registerUser(t, "Ada")

	// Rotate the key files on disk, then reload through the API. The old
	// token is still valid when the reload request itself is checked.
	_, err := auth.GenerateAndPersist(ts.publicPath, ts.privatePath)
	require.NoError(t, err)

	recorder := ts.doJSON(t, http.MethodPost, "/admin/keys/reload", token, nil)
	require.Equal(t, http.StatusNoContent, recorder.Code)

	// After the rotation the retired token is rejected.
	listing := ts.doJSON(t, http.MethodGet, "/buckets", token, nil)
	assert.Equal(t, http.StatusUnauthorized, listing.Code)
}
