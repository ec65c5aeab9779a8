package server

import (
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/binarybreez/jobswipe/constants"
	"github.com/binarybreez/jobswipe/internal/common"
	"github.com/binarybreez/jobswipe/internal/pipeline"
	"github.com/binarybreez/jobswipe/internal/reconcile"
	"github.com/binarybreez/jobswipe/internal/store"
)

func (s *Server) health(c *gin.Context) {
	if p, ok := s.store.(store.Pinger); ok {
		if err := p.Ping(c.Request.Context(), 2*time.Second); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "error": err.Error()})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// uploadResume accepts a multipart PDF under the "file" field. An optional
// "kind" field tags the document; it defaults to resume.
func (s *Server) uploadResume(c *gin.Context) {
	kind := constants.KindResume
	if tag := c.PostForm("kind"); tag != "" {
		k, ok := constants.ParseKind(tag)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown document kind " + strconv.Quote(tag)})
			return
		}
		kind = k
	}

	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing multipart field \"file\": " + err.Error()})
		return
	}
	if file.Size > s.cfg.MaxUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file exceeds upload limit"})
		return
	}

	f, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot read upload: " + err.Error()})
		return
	}
	defer func() { _ = f.Close() }()

	data, err := io.ReadAll(io.LimitReader(f, s.cfg.MaxUploadBytes))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot read upload: " + err.Error()})
		return
	}

	res, err := s.proc.ProcessPDF(c.Request.Context(), data, kind)
	if err != nil {
		s.writeFailure(c, err)
		return
	}
	c.JSON(outcomeStatus(res), res)
}

// outcomeStatus maps a reconciliation outcome to its HTTP status: a fresh
// entity is 201, merges and no-ops are 200.
func outcomeStatus(res *pipeline.Result) int {
	if res.Reconcile != nil && res.Reconcile.Outcome == reconcile.OutcomeCreated {
		return http.StatusCreated
	}
	return http.StatusOK
}

type submitJobRequest struct {
	Text string `json:"text" binding:"required"`
	Kind string `json:"kind"`
}

// submitJob accepts a job description as JSON text. An optional kind tag
// defaults to job_description.
func (s *Server) submitJob(c *gin.Context) {
	var req submitJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body: " + err.Error()})
		return
	}

	kind := constants.KindJobDescription
	if req.Kind != "" {
		k, ok := constants.ParseKind(req.Kind)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown document kind " + strconv.Quote(req.Kind)})
			return
		}
		kind = k
	}

	res, err := s.proc.ProcessText(c.Request.Context(), req.Text, kind)
	if err != nil {
		s.writeFailure(c, err)
		return
	}
	c.JSON(outcomeStatus(res), res)
}

func (s *Server) getEntity(kind constants.EntityKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.Param("key")
		e, err := s.store.FindByKey(c.Request.Context(), kind, key)
		if err != nil {
			s.writeFailure(c, err)
			return
		}
		if e == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "no entity for key"})
			return
		}
		c.JSON(http.StatusOK, e)
	}
}

func (s *Server) listEntities(kind constants.EntityKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		ents, err := s.store.List(c.Request.Context(), kind)
		if err != nil {
			s.writeFailure(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"count": len(ents), "entities": ents})
	}
}

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func (s *Server) exportCandidates(c *gin.Context) {
	data, err := s.exporter.ExportCandidatesXLSX(c.Request.Context())
	if err != nil {
		s.writeFailure(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="candidates.xlsx"`)
	c.Data(http.StatusOK, xlsxContentType, data)
}

func (s *Server) exportJobs(c *gin.Context) {
	data, err := s.exporter.ExportJobsXLSX(c.Request.Context())
	if err != nil {
		s.writeFailure(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="jobs.xlsx"`)
	c.Data(http.StatusOK, xlsxContentType, data)
}

// writeFailure maps the failure taxonomy onto HTTP statuses. Retryable kinds
// get 503 so clients back off; terminal document problems get 422.
func (s *Server) writeFailure(c *gin.Context, err error) {
	f, ok := common.AsFailure(err)
	if !ok {
		s.logger.Error("http.internal_error", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	status := http.StatusInternalServerError
	switch f.Kind {
	case common.UnreadableDocument, common.MissingNaturalKey:
		status = http.StatusUnprocessableEntity
	case common.StoreUnavailable, common.IdentityUnavailable:
		status = http.StatusServiceUnavailable
	case common.CorruptEntity:
		status = http.StatusInternalServerError
	}

	body := gin.H{"error": f.Message, "kind": string(f.Kind), "retryable": f.Retryable()}
	if f.Field != "" {
		body["field"] = f.Field
	}
	c.JSON(status, body)
}
