// Package server is the HTTP boundary of the storage API. It wires the
// authentication service and the storage repositories into gin routes and
// maps the auth package's typed errors onto transport responses.
package server

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/storagesystem/api/auth"
	"github.com/storagesystem/api/storage"
)

// Deps are the collaborators a Server is built from.
type Deps struct {
	Auth        *auth.Service
	Users       storage.UserRepository
	Buckets     storage.BucketRepository
	Directories storage.DirectoryRepository
	Files       storage.FileRepository
	Blobs       *storage.BlobStore
	Logger      auth.Logger
}

// Server handles the storage API's HTTP surface.
type Server struct {
	auth        *auth.Service
	users       storage.UserRepository
	buckets     storage.BucketRepository
	directories storage.DirectoryRepository
	files       storage.FileRepository
	blobs       *storage.BlobStore
	logger      auth.Logger
}

// New builds a Server from deps.
func New(deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = &auth.DefaultLogger{}
	}

	return &Server{
		auth:        deps.Auth,
		users:       deps.Users,
		buckets:     deps.Buckets,
		directories: deps.Directories,
		files:       deps.Files,
		blobs:       deps.Blobs,
		logger:      logger,
	}
}

// Router builds the gin engine with all routes registered.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/healthz", s.handleHealth)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/.well-known/jwks.json", s.handleJWKS)

	router.POST("/users", s.handleCreateUser)
	router.POST("/auth/token", s.handleIssueToken)

	authed := router.Group("/", AuthRequired(s.auth))
	{
		authed.GET("/users/me", s.handleCurrentUser)

		authed.POST("/buckets", s.handleCreateBucket)
		authed.GET("/buckets", s.handleListBuckets)
		authed.GET("/buckets/:bucketId", s.handleGetBucket)
		authed.DELETE("/buckets/:bucketId", s.handleDeleteBucket)

		authed.POST("/buckets/:bucketId/directories", s.handleCreateDirectory)
		authed.GET("/buckets/:bucketId/directories", s.handleListDirectories)
		authed.DELETE("/buckets/:bucketId/directories/:directoryId", s.handleDeleteDirectory)

		authed.POST("/buckets/:bucketId/files", s.handleUploadFile)
		authed.GET("/buckets/:bucketId/files", s.handleListFiles)
		authed.GET("/buckets/:bucketId/files/:fileId", s.handleDownloadFile)
		authed.DELETE("/buckets/:bucketId/files/:fileId", s.handleDeleteFile)

		authed.POST("/admin/keys/reload", s.handleReloadKeys)
	}

	return router
}
