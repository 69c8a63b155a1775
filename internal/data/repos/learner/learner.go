package learner

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/ceustudio-backend/internal/domain"
	"github.com/yungbote/ceustudio-backend/internal/pkg/dbctx"
	"github.com/yungbote/ceustudio-backend/internal/platform/logger"
)

type LearnerRepo interface {
	Create(dbc dbctx.Context, learners []*types.Learner) ([]*types.Learner, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Learner, error)
	GetByEmail(dbc dbctx.Context, email string) (*types.Learner, error)
	UpsertByEmail(dbc dbctx.Context, in *types.Learner) (*types.Learner, error)
	AwardCourse(dbc dbctx.Context, learnerID uuid.UUID, completion *types.CourseCompletion) (*types.Learner, error)
	ListCompletions(dbc dbctx.Context, learnerID uuid.UUID) ([]*types.CourseCompletion, error)
}

type learnerRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewLearnerRepo(db *gorm.DB, baseLog *logger.Logger) LearnerRepo {
	return &learnerRepo{db: db, log: baseLog.With("repo", "LearnerRepo")}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (r *learnerRepo) Create(dbc dbctx.Context, learners []*types.Learner) ([]*types.Learner, error) {
	if len(learners) == 0 {
		return []*types.Learner{}, nil
	}
	for _, l := range learners {
		l.Email = normalizeEmail(l.Email)
	}
	if err := dbc.Conn(r.db).Create(&learners).Error; err != nil {
		return nil, err
	}
	return learners, nil
}

// GetByID returns nil, nil when no row matches.
func (r *learnerRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Learner, error) {
	var out types.Learner
	err := dbc.Conn(r.db).Where("id = ?", id).First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// GetByEmail returns nil, nil when no row matches.
func (r *learnerRepo) GetByEmail(dbc dbctx.Context, email string) (*types.Learner, error) {
	var out types.Learner
	err := dbc.Conn(r.db).Where("email = ?", normalizeEmail(email)).First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// UpsertByEmail creates the learner or refreshes name and AIA number on an
// existing row. Blank incoming fields never overwrite stored ones.
func (r *learnerRepo) UpsertByEmail(dbc dbctx.Context, in *types.Learner) (*types.Learner, error) {
	var out *types.Learner
	err := dbc.Conn(r.db).Transaction(func(tx *gorm.DB) error {
		inner := dbctx.Context{Ctx: dbc.Ctx, Tx: tx}
		existing, err := r.GetByEmail(inner, in.Email)
		if err != nil {
			return err
		}
		if existing == nil {
			created, err := r.Create(inner, []*types.Learner{in})
			if err != nil {
				return err
			}
			out = created[0]
			return nil
		}
		updates := map[string]any{}
		if name := strings.TrimSpace(in.Name); name != "" && name != existing.Name {
			updates["name"] = name
			existing.Name = name
		}
		if aia := strings.TrimSpace(in.AIANumber); aia != "" && aia != existing.AIANumber {
			updates["aia_number"] = aia
			existing.AIANumber = aia
		}
		if len(updates) > 0 {
			if err := tx.Model(&types.Learner{}).Where("id = ?", existing.ID).Updates(updates).Error; err != nil {
				return err
			}
		}
		out = existing
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// AwardCourse adds one course credit to the learner and records the
// completion, atomically. On postgres the learner row is locked for the
// read-modify-write.
func (r *learnerRepo) AwardCourse(dbc dbctx.Context, learnerID uuid.UUID, completion *types.CourseCompletion) (*types.Learner, error) {
	var out types.Learner
	err := dbc.Conn(r.db).Transaction(func(tx *gorm.DB) error {
		q := tx
		if tx.Dialector.Name() == "postgres" {
			q = q.Clauses(clause.Locking{Strength: "UPDATE"})
		}
		if err := q.Where("id = ?", learnerID).First(&out).Error; err != nil {
			return err
		}
		out.CompleteCourse(completion.CourseTitle)
		if err := tx.Model(&types.Learner{}).Where("id = ?", learnerID).Updates(map[string]any{
			"credits_earned":    out.CreditsEarned,
			"hsw_credits":       out.HSWCredits,
			"completed_courses": out.CompletedCourses,
		}).Error; err != nil {
			return err
		}
		completion.LearnerID = learnerID
		return tx.Create(completion).Error
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *learnerRepo) ListCompletions(dbc dbctx.Context, learnerID uuid.UUID) ([]*types.CourseCompletion, error) {
	var out []*types.CourseCompletion
	if err := dbc.Conn(r.db).
		Where("learner_id = ?", learnerID).
		Order("completed_at DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
