package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/ceustudio-backend/internal/http/response"
	"github.com/yungbote/ceustudio-backend/internal/services"
)

type MeHandler struct {
	learners     services.LearnerService
	certificates services.CertificateService
}

func NewMeHandler(learners services.LearnerService, certificates services.CertificateService) *MeHandler {
	return &MeHandler{learners: learners, certificates: certificates}
}

// GET /api/me
func (h *MeHandler) GetMe(c *gin.Context) {
	id, err := learnerIDFrom(c)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	me, err := h.learners.Get(c.Request.Context(), id)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"me": me})
}

// GET /api/me/completions
func (h *MeHandler) ListCompletions(c *gin.Context) {
	id, err := learnerIDFrom(c)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	completions, err := h.learners.Completions(c.Request.Context(), id)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"completions": completions})
}

// GET /api/me/certificate
func (h *MeHandler) Certificate(c *gin.Context) {
	id, err := learnerIDFrom(c)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	cert, err := h.certificates.Render(c.Request.Context(), id)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	if cert.URL != "" {
		c.Header("X-Certificate-Url", cert.URL)
	}
	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=%q", cert.FileName))
	c.Data(http.StatusOK, "image/png", cert.PNG)
}
