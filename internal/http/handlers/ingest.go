package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/ceustudio-backend/internal/http/response"
	"github.com/yungbote/ceustudio-backend/internal/services"
)

type IngestHandler struct {
	ingestion services.IngestionService
}

func NewIngestHandler(ingestion services.IngestionService) *IngestHandler {
	return &IngestHandler{ingestion: ingestion}
}

// POST /api/ingest/pdf
// body: { "courseId", "fileName", "pdfUrl" | "fileBase64", "submittedBy"? }
func (h *IngestHandler) Submit(c *gin.Context) {
	var in services.IngestPDFInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.RespondAPIError(c, invalidBody(err))
		return
	}
	job, err := h.ingestion.Submit(c.Request.Context(), in)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"job": job})
}

// GET /api/ingest/pdf[?jobId=]
func (h *IngestHandler) Get(c *gin.Context) {
	if jobID := strings.TrimSpace(c.Query("jobId")); jobID != "" {
		job, err := h.ingestion.Get(c.Request.Context(), jobID)
		if err != nil {
			response.RespondAPIError(c, err)
			return
		}
		response.RespondOK(c, gin.H{"job": job})
		return
	}
	response.RespondOK(c, gin.H{"jobs": h.ingestion.List(c.Request.Context())})
}
