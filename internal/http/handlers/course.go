package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/ceustudio-backend/internal/http/response"
	"github.com/yungbote/ceustudio-backend/internal/services"
)

type CourseHandler struct {
	catalog services.CatalogService
}

func NewCourseHandler(catalog services.CatalogService) *CourseHandler {
	return &CourseHandler{catalog: catalog}
}

// GET /api/courses?status=published
func (h *CourseHandler) List(c *gin.Context) {
	courses := h.catalog.List(c.Request.Context(), c.Query("status"))
	response.RespondOK(c, gin.H{"count": len(courses), "courses": courses})
}

// GET /api/courses/:id
func (h *CourseHandler) Get(c *gin.Context) {
	course, ok := h.catalog.Get(c.Request.Context(), c.Param("id"))
	if !ok {
		response.RespondError(c, http.StatusNotFound, "course_not_found", errCourseNotFound)
		return
	}
	response.RespondOK(c, gin.H{"course": course})
}

// POST /api/courses
func (h *CourseHandler) Register(c *gin.Context) {
	var in services.RegisterCourseInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.RespondAPIError(c, invalidBody(err))
		return
	}
	course, msg, err := h.catalog.Register(c.Request.Context(), in)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"message": msg, "course": course})
}
