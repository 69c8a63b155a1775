package domain

import (
	"github.com/yungbote/ceustudio-backend/internal/domain/catalog"
	"github.com/yungbote/ceustudio-backend/internal/domain/learner"
)

type Learner = learner.Learner
type CourseCompletion = learner.CourseCompletion

type Course = catalog.Course
type CourseModule = catalog.CourseModule
type CourseDocument = catalog.CourseDocument
type IngestionJob = catalog.IngestionJob

// Models lists every persisted type, in migration order.
func Models() []any {
	return []any{
		&learner.Learner{},
		&learner.CourseCompletion{},
	}
}
