package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/ceustudio-backend/internal/platform/apierr"
	"github.com/yungbote/ceustudio-backend/internal/platform/ctxutil"
)

func learnerIDFrom(c *gin.Context) (uuid.UUID, error) {
	ld := ctxutil.GetLearnerData(c.Request.Context())
	if ld == nil || ld.LearnerID == uuid.Nil {
		return uuid.Nil, apierr.Unauthorized("not authenticated")
	}
	return ld.LearnerID, nil
}

var (
	errUnauthorized   = apierr.Unauthorized("Unauthorized")
	errCourseNotFound = apierr.NotFound("course_not_found", "Course not found")
)

func invalidBody(err error) error {
	return apierr.BadRequest("invalid_request", "invalid request body: "+err.Error())
}
