package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/ceustudio-backend/internal/data/repos/learner"
	"github.com/yungbote/ceustudio-backend/internal/platform/logger"
)

type LearnerRepo = learner.LearnerRepo

func NewLearnerRepo(db *gorm.DB, baseLog *logger.Logger) LearnerRepo {
	return learner.NewLearnerRepo(db, baseLog)
}
