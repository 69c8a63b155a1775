package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/ceustudio-backend/internal/http/response"
	"github.com/yungbote/ceustudio-backend/internal/services"
)

type IntelligenceHandler struct {
	advisor services.AdvisorService
}

func NewIntelligenceHandler(advisor services.AdvisorService) *IntelligenceHandler {
	return &IntelligenceHandler{advisor: advisor}
}

// POST /api/intelligence/session
// body: { "prompt", "courseId"?, "context"?, "transcript"?, "practitionerEmail"? }
func (h *IntelligenceHandler) Session(c *gin.Context) {
	var req services.AdvisorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondAPIError(c, invalidBody(err))
		return
	}
	answer, err := h.advisor.Ask(c.Request.Context(), req)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, answer)
}
