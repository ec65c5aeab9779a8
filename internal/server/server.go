// Package server is the HTTP boundary: multipart uploads and JSON in,
// reconciliation receipts out.
package server

import (
	"log/slog"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/binarybreez/jobswipe/constants"
	"github.com/binarybreez/jobswipe/internal/common"
	"github.com/binarybreez/jobswipe/internal/export"
	"github.com/binarybreez/jobswipe/internal/pipeline"
	"github.com/binarybreez/jobswipe/internal/store"
)

// Config holds the HTTP-facing knobs.
type Config struct {
	Addr           string
	MaxUploadBytes int64
}

type Server struct {
	cfg      Config
	proc     *pipeline.Processor
	exporter *export.Service
	store    store.Gateway
	logger   *slog.Logger
	router   *gin.Engine
}

func NewServer(cfg Config, proc *pipeline.Processor, exporter *export.Service, gw store.Gateway, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 10 << 20
	}

	s := &Server{cfg: cfg, proc: proc, exporter: exporter, store: gw, logger: logger}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(s.requestLogger())

	corsCfg := cors.DefaultConfig()
	corsCfg.AllowAllOrigins = true
	corsCfg.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	r.Use(cors.New(corsCfg))

	api := r.Group("/api/v1")
	{
		api.GET("/health", s.health)

		api.POST("/resumes", s.uploadResume)
		api.POST("/jobs", s.submitJob)

		api.GET("/candidates", s.listEntities(constants.EntityCandidate))
		api.GET("/candidates/:key", s.getEntity(constants.EntityCandidate))
		api.GET("/jobs", s.listEntities(constants.EntityJobPosting))

		api.GET("/export/candidates.xlsx", s.exportCandidates)
		api.GET("/export/jobs.xlsx", s.exportJobs)
	}

	s.router = r
	return s
}

// Router exposes the handler tree for the http.Server and for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		reqID := uuid.NewString()
		c.Request = c.Request.WithContext(common.WithRequestID(c.Request.Context(), reqID))
		c.Header("X-Request-ID", reqID)
		c.Next()
		s.logger.Info("http.request",
			"request_id", reqID,
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
		)
	}
}
