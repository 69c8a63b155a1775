package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/ceustudio-backend/internal/http/middleware"
	"github.com/yungbote/ceustudio-backend/internal/http/response"
	"github.com/yungbote/ceustudio-backend/internal/services"
)

type AdminHandler struct {
	admin        services.AdminService
	sessionTTL   int
	secureCookie bool
}

// NewAdminHandler sets the admin_session cookie with the given lifetime in
// seconds. secureCookie should only be false for plain-http local development.
func NewAdminHandler(admin services.AdminService, sessionTTLSeconds int, secureCookie bool) *AdminHandler {
	return &AdminHandler{admin: admin, sessionTTL: sessionTTLSeconds, secureCookie: secureCookie}
}

// POST /api/admin/login
// body: { "email": "...", "password": "..." }
func (h *AdminHandler) Login(c *gin.Context) {
	var in services.AdminLoginInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", errUnauthorized)
		return
	}
	session, err := h.admin.Login(c.Request.Context(), in)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.AdminSessionCookie, session, h.sessionTTL, "/", "", h.secureCookie, true)
	response.RespondOK(c, gin.H{"success": true})
}

// POST /api/admin/logout
func (h *AdminHandler) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.AdminSessionCookie, "", -1, "/", "", h.secureCookie, true)
	response.RespondOK(c, gin.H{"success": true})
}

// GET /api/admin/waitlist
func (h *AdminHandler) Waitlist(c *gin.Context) {
	list, err := h.admin.ListWaitlist(c.Request.Context())
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, list)
}
