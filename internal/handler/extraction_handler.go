package handler

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"reqsmith/internal/domain"
	"reqsmith/internal/export"
	"reqsmith/internal/middleware"
	"reqsmith/internal/service"
)

// ExtractionHandler handles document extraction endpoints.
type ExtractionHandler struct {
	service service.ExtractionService
}

// NewExtractionHandler creates a new ExtractionHandler.
func NewExtractionHandler(svc service.ExtractionService) *ExtractionHandler {
	return &ExtractionHandler{service: svc}
}

// Submit handles POST /api/v1/extractions
//
// Accepts a multipart upload with an optional "format" hint and an optional
// "mode" field. mode=sync runs the pipeline inline and returns the batch;
// the default queues a job and returns 202.
func (h *ExtractionHandler) Submit(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "MISSING_FILE", "file field is required")
		return
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(file)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "UNREADABLE_FILE", "could not read uploaded file")
		return
	}

	hint := c.PostForm("format")
	if hint == "" {
		hint = strings.TrimPrefix(filepath.Ext(header.Filename), ".")
	}

	input := &service.SubmitInput{
		FileName:    header.Filename,
		FormatHint:  hint,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
		SubmittedBy: middleware.GetSubject(c),
		NotifyEmail: c.PostForm("notify_email"),
	}

	if c.PostForm("mode") == "sync" {
		batch, err := h.service.ExtractSync(c.Request.Context(), input)
		if err != nil {
			// A gap-fill outage still carries the extracted structure.
			var gapErr *domain.GapFillUnavailableError
			if errors.As(err, &gapErr) {
				status, code, msg := MapDomainError(err)
				c.JSON(status, APIResponse{
					Success: false,
					Data:    gapErr.Partial,
					Error:   &APIError{Code: code, Message: msg},
				})
				return
			}
			HandleError(c, err)
			return
		}
		RespondOK(c, batch)
		return
	}

	job, err := h.service.Enqueue(c.Request.Context(), input)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondAccepted(c, job)
}

// Get handles GET /api/v1/extractions/:id
func (h *ExtractionHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid extraction job id")
		return
	}

	job, err := h.service.GetJob(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, job)
}

// Export handles GET /api/v1/extractions/:id/export?format=csv|xlsx
func (h *ExtractionHandler) Export(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid extraction job id")
		return
	}

	job, err := h.service.GetJob(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}
	if job.Batch == nil {
		RespondError(c, http.StatusConflict, "NOT_READY", "extraction has not produced a result yet")
		return
	}

	format := c.DefaultQuery("format", "csv")
	switch format {
	case "csv":
		var buf bytes.Buffer
		buf.Write(export.BOM)
		w := export.NewWriter(&buf)
		if err := w.WriteBatch(job.Batch); err != nil {
			HandleError(c, err)
			return
		}
		w.Flush()
		if err := w.Error(); err != nil {
			HandleError(c, err)
			return
		}
		c.Header("Content-Disposition", `attachment; filename="`+export.BuildFilename(job.FileName, "csv")+`"`)
		c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())

	case "xlsx":
		var buf bytes.Buffer
		if err := export.WriteXLSX(&buf, job.Batch); err != nil {
			HandleError(c, err)
			return
		}
		c.Header("Content-Disposition", `attachment; filename="`+export.BuildFilename(job.FileName, "xlsx")+`"`)
		c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())

	default:
		RespondError(c, http.StatusBadRequest, "INVALID_FORMAT", "export format must be csv or xlsx")
	}
}
