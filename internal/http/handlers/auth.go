package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/ceustudio-backend/internal/http/response"
	"github.com/yungbote/ceustudio-backend/internal/services"
)

type AuthHandler struct {
	learners services.LearnerService
}

func NewAuthHandler(learners services.LearnerService) *AuthHandler {
	return &AuthHandler{learners: learners}
}

// POST /api/login
// body: { "name": "...", "email": "...", "aiaNumber": "..." }
func (h *AuthHandler) Login(c *gin.Context) {
	var in services.LoginInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.RespondAPIError(c, invalidBody(err))
		return
	}
	learner, token, err := h.learners.Login(c.Request.Context(), in)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"learner": learner, "token": token})
}
