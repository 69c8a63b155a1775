package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/ceustudio-backend/internal/http/response"
	"github.com/yungbote/ceustudio-backend/internal/services"
)

type WaitlistHandler struct {
	waitlist services.WaitlistService
}

func NewWaitlistHandler(waitlist services.WaitlistService) *WaitlistHandler {
	return &WaitlistHandler{waitlist: waitlist}
}

// POST /api/waitlist
// body: { "firstName", "lastName", "company", "role", "email" }
func (h *WaitlistHandler) Join(c *gin.Context) {
	var in services.WaitlistInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.RespondAPIError(c, invalidBody(err))
		return
	}
	if err := h.waitlist.Join(c.Request.Context(), in); err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"success": true})
}
