package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/ceustudio-backend/internal/data/repos"
	types "github.com/yungbote/ceustudio-backend/internal/domain"
	"github.com/yungbote/ceustudio-backend/internal/modules/studio"
	"github.com/yungbote/ceustudio-backend/internal/observability"
	"github.com/yungbote/ceustudio-backend/internal/pkg/dbctx"
	"github.com/yungbote/ceustudio-backend/internal/platform/apierr"
	"github.com/yungbote/ceustudio-backend/internal/platform/logger"
	"github.com/yungbote/ceustudio-backend/internal/realtime"
)

type LoginInput struct {
	Name      string `json:"name" validate:"required,max=200"`
	Email     string `json:"email" validate:"required,email,max=320"`
	AIANumber string `json:"aiaNumber" validate:"max=64"`
}

type LearnerService interface {
	Login(ctx context.Context, in LoginInput) (*types.Learner, string, error)
	Get(ctx context.Context, learnerID uuid.UUID) (*types.Learner, error)
	Completions(ctx context.Context, learnerID uuid.UUID) ([]*types.CourseCompletion, error)
	AwardCredit(ctx context.Context, learnerID uuid.UUID, s studio.Session) (*types.Learner, error)
}

type learnerService struct {
	log     *logger.Logger
	repo    repos.LearnerRepo
	auth    AuthService
	emitter SSEEmitter
	now     func() time.Time
}

func NewLearnerService(log *logger.Logger, repo repos.LearnerRepo, auth AuthService, emitter SSEEmitter) LearnerService {
	if emitter == nil {
		emitter = nopEmitter{}
	}
	return &learnerService{
		log:     log.With("service", "LearnerService"),
		repo:    repo,
		auth:    auth,
		emitter: emitter,
		now:     time.Now,
	}
}

// Login identifies a learner by email, creating the profile on first use,
// and returns a bearer token for the studio endpoints.
func (ls *learnerService) Login(ctx context.Context, in LoginInput) (*types.Learner, string, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.AIANumber = strings.TrimSpace(in.AIANumber)
	if err := validateInput("invalid_login", in); err != nil {
		return nil, "", err
	}
	l, err := ls.repo.UpsertByEmail(dbctx.Context{Ctx: ctx}, &types.Learner{
		Name:      in.Name,
		Email:     in.Email,
		AIANumber: in.AIANumber,
	})
	if err != nil {
		return nil, "", fmt.Errorf("upsert learner: %w", err)
	}
	tok, err := ls.auth.IssueLearnerToken(l.ID, l.Email)
	if err != nil {
		return nil, "", fmt.Errorf("issue token: %w", err)
	}
	ls.log.Info("learner signed in", "learner_id", l.ID)
	return l, tok, nil
}

func (ls *learnerService) Get(ctx context.Context, learnerID uuid.UUID) (*types.Learner, error) {
	l, err := ls.repo.GetByID(dbctx.Context{Ctx: ctx}, learnerID)
	if err != nil {
		return nil, fmt.Errorf("load learner: %w", err)
	}
	if l == nil {
		return nil, apierr.NotFound("learner_not_found", "Learner not found")
	}
	return l, nil
}

func (ls *learnerService) Completions(ctx context.Context, learnerID uuid.UUID) ([]*types.CourseCompletion, error) {
	if _, err := ls.Get(ctx, learnerID); err != nil {
		return nil, err
	}
	return ls.repo.ListCompletions(dbctx.Context{Ctx: ctx}, learnerID)
}

// AwardCredit records one finished studio run. It is invoked once per
// completing Advance; repeated runs earn repeated credit.
func (ls *learnerService) AwardCredit(ctx context.Context, learnerID uuid.UUID, s studio.Session) (*types.Learner, error) {
	l, err := ls.repo.AwardCourse(dbctx.Context{Ctx: ctx}, learnerID, &types.CourseCompletion{
		SessionID:         s.ID,
		CourseTitle:       studio.CourseTitle,
		Sector:            string(s.Sector),
		PatternFamily:     s.Design.PatternFamily,
		EngagementSeconds: s.EngagementSeconds,
		CompletedAt:       ls.now().UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("award course: %w", err)
	}
	observability.CredentialAwarded()
	ls.log.Info("credential awarded",
		"learner_id", learnerID,
		"session_id", s.ID,
		"credits_earned", l.CreditsEarned,
		"hsw_credits", l.HSWCredits,
	)
	ls.emitter.Emit(ctx, realtime.SSEMessage{
		Channel: realtime.StudioChannel(learnerID),
		Event:   realtime.SSEEventCreditAwarded,
		Data: map[string]any{
			"course":        studio.CourseTitle,
			"creditsEarned": l.CreditsEarned,
			"hswCredits":    l.HSWCredits,
		},
	})
	return l, nil
}
