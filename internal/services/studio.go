package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/google/uuid"

	types "github.com/yungbote/ceustudio-backend/internal/domain"
	"github.com/yungbote/ceustudio-backend/internal/modules/studio"
	"github.com/yungbote/ceustudio-backend/internal/observability"
	"github.com/yungbote/ceustudio-backend/internal/platform/apierr"
	"github.com/yungbote/ceustudio-backend/internal/platform/ctxutil"
	"github.com/yungbote/ceustudio-backend/internal/platform/logger"
	"github.com/yungbote/ceustudio-backend/internal/realtime"
)

// StudioState is a controller snapshot plus the values the studio chrome
// renders from it.
type StudioState struct {
	View               studio.View     `json:"view"`
	Version            uint64          `json:"version"`
	Session            *studio.Session `json:"session,omitempty"`
	ActTitle           string          `json:"actTitle,omitempty"`
	EngagementProgress float64         `json:"engagementProgress"`
	SecondsRemaining   int             `json:"secondsRemaining"`
	CanAdvance         bool            `json:"canAdvance"`
	AdvanceLabel       string          `json:"advanceLabel,omitempty"`
	JumpableActs       []int           `json:"jumpableActs,omitempty"`
}

func NewStudioState(snap studio.Snapshot) StudioState {
	st := StudioState{View: snap.View, Version: snap.Version, Session: snap.Session}
	if s := snap.Session; s != nil {
		st.ActTitle = studio.ActTitle(s.CurrentAct)
		st.EngagementProgress = studio.EngagementProgress(*s)
		st.SecondsRemaining = studio.SecondsRemaining(*s)
		st.CanAdvance = studio.CanAdvance(*s)
		st.AdvanceLabel = studio.AdvanceLabel(*s)
		for act := studio.FirstAct; act <= studio.LastAct; act++ {
			if studio.CanJumpTo(*s, act) {
				st.JumpableActs = append(st.JumpableActs, act)
			}
		}
	}
	return st
}

// NavigationResult answers advance and jump requests. A request the gates
// refused comes back with Accepted=false and the unchanged state.
type NavigationResult struct {
	State     StudioState    `json:"state"`
	Accepted  bool           `json:"accepted"`
	Completed bool           `json:"completed"`
	Learner   *types.Learner `json:"learner,omitempty"`
}

type QuizQuestion struct {
	ID        int      `json:"id"`
	Prompt    string   `json:"prompt"`
	Options   []string `json:"options"`
	Correct   *int     `json:"correct,omitempty"`
	Rationale string   `json:"rationale,omitempty"`
}

// QuizView reveals the key and rationales only after an attempt is submitted.
type QuizView struct {
	Questions  []QuizQuestion             `json:"questions"`
	Selections [studio.QuestionCount]*int `json:"selections"`
	Submitted  bool                       `json:"submitted"`
	Score      int                        `json:"score"`
	Passed     bool                       `json:"passed"`
	CanRetry   bool                       `json:"canRetry"`
}

func NewQuizView(s studio.Session) QuizView {
	qv := QuizView{
		Selections: s.Quiz.Selections,
		Submitted:  s.Quiz.Submitted,
		Score:      s.Quiz.Score,
		Passed:     s.QuizPassed,
		CanRetry:   s.Quiz.Submitted && !s.QuizPassed,
	}
	for _, q := range studio.Questions(s) {
		out := QuizQuestion{ID: q.ID, Prompt: q.Prompt, Options: q.Options}
		if s.Quiz.Submitted {
			correct := q.Correct
			out.Correct = &correct
			out.Rationale = q.Rationale
		}
		qv.Questions = append(qv.Questions, out)
	}
	return qv
}

type StudioService interface {
	Start(ctx context.Context, learnerID uuid.UUID) (StudioState, error)
	Exit(ctx context.Context, learnerID uuid.UUID) (StudioState, error)
	Resume(ctx context.Context, learnerID uuid.UUID) (StudioState, error)
	Logout(ctx context.Context, learnerID uuid.UUID) error
	State(ctx context.Context, learnerID uuid.UUID) (StudioState, error)
	CurrentSession(ctx context.Context, learnerID uuid.UUID) (*studio.Session, error)

	Advance(ctx context.Context, learnerID uuid.UUID) (NavigationResult, error)
	Retreat(ctx context.Context, learnerID uuid.UUID) (StudioState, error)
	JumpTo(ctx context.Context, learnerID uuid.UUID, act int) (NavigationResult, error)

	UpdateContext(ctx context.Context, learnerID uuid.UUID, p studio.ContextPatch) (StudioState, error)
	AcknowledgeObjectives(ctx context.Context, learnerID uuid.UUID) (StudioState, error)
	UpdatePerformance(ctx context.Context, learnerID uuid.UUID, p studio.PerformancePatch) (StudioState, error)
	UpdateDesign(ctx context.Context, learnerID uuid.UUID, p studio.DesignPatch) (StudioState, error)
	UpdateLearner(ctx context.Context, learnerID uuid.UUID, p studio.LearnerPatch) (StudioState, error)

	Quiz(ctx context.Context, learnerID uuid.UUID) (QuizView, error)
	SelectAnswer(ctx context.Context, learnerID uuid.UUID, questionID, option int) (QuizView, error)
	SubmitQuiz(ctx context.Context, learnerID uuid.UUID) (QuizView, error)
	RetryQuiz(ctx context.Context, learnerID uuid.UUID) (QuizView, error)

	SpecDocument(ctx context.Context, learnerID uuid.UUID) (string, error)

	// ActiveSessions counts learners with a live controller.
	ActiveSessions() int
	Close()
}

type studioService struct {
	log      *logger.Logger
	learners LearnerService
	emitter  SSEEmitter
	ctrlOpts []studio.Option

	mu          sync.Mutex
	controllers map[uuid.UUID]*studio.Controller
	closed      bool
}

// NewStudioService keeps one controller per learner. opts are applied to every
// controller it creates, ahead of the awarder and observer it installs itself.
func NewStudioService(log *logger.Logger, learners LearnerService, emitter SSEEmitter, opts ...studio.Option) StudioService {
	if emitter == nil {
		emitter = nopEmitter{}
	}
	return &studioService{
		log:         log.With("service", "StudioService"),
		learners:    learners,
		emitter:     emitter,
		ctrlOpts:    opts,
		controllers: make(map[uuid.UUID]*studio.Controller),
	}
}

func (ss *studioService) controller(learnerID uuid.UUID, create bool) (*studio.Controller, error) {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	if ss.closed {
		return nil, studio.ErrClosed
	}
	if c, ok := ss.controllers[learnerID]; ok {
		return c, nil
	}
	if !create {
		return nil, nil
	}
	opts := append([]studio.Option(nil), ss.ctrlOpts...)
	opts = append(opts,
		studio.WithAwarder(studio.AwarderFunc(func(ctx context.Context, s studio.Session) error {
			_, err := ss.learners.AwardCredit(ctx, learnerID, s)
			return err
		})),
		studio.WithObserver(func(snap studio.Snapshot) {
			ss.emitter.Emit(context.Background(), realtime.SSEMessage{
				Channel: realtime.StudioChannel(learnerID),
				Event:   realtime.SSEEventStudioSnapshot,
				Data:    NewStudioState(snap),
			})
		}),
	)
	c := studio.NewController(opts...)
	ss.controllers[learnerID] = c
	observability.StudioControllerOpened()
	return c, nil
}

// logFor tags entries with the request's trace ids. Calls made outside a
// request still carry the learner id.
func (ss *studioService) logFor(ctx context.Context, learnerID uuid.UUID) *logger.Logger {
	fields := ctxutil.LogFields(ctx)
	if ld := ctxutil.GetLearnerData(ctx); ld == nil || ld.LearnerID != learnerID {
		fields = append(fields, "learner_id", learnerID.String())
	}
	return ss.log.With(fields...)
}

// active returns the learner's controller or ErrNoSession.
func (ss *studioService) active(learnerID uuid.UUID) (*studio.Controller, error) {
	c, err := ss.controller(learnerID, false)
	if err != nil {
		return nil, mapStudioErr(err)
	}
	if c == nil {
		return nil, mapStudioErr(studio.ErrNoSession)
	}
	return c, nil
}

func (ss *studioService) Start(ctx context.Context, learnerID uuid.UUID) (StudioState, error) {
	l, err := ss.learners.Get(ctx, learnerID)
	if err != nil {
		return StudioState{}, err
	}
	c, err := ss.controller(learnerID, true)
	if err != nil {
		return StudioState{}, mapStudioErr(err)
	}
	snap, err := c.Start(ctx, studio.Identity{Name: l.Name, Email: l.Email, AIANumber: l.AIANumber})
	if err != nil {
		return StudioState{}, mapStudioErr(err)
	}
	observability.StudioSessionStarted()
	ss.logFor(ctx, learnerID).Info("studio session started", "session_id", snap.Session.ID)
	return NewStudioState(snap), nil
}

func (ss *studioService) Exit(ctx context.Context, learnerID uuid.UUID) (StudioState, error) {
	c, err := ss.controller(learnerID, false)
	if err != nil {
		return StudioState{}, mapStudioErr(err)
	}
	if c == nil {
		return StudioState{View: studio.ViewDashboard}, nil
	}
	snap, err := c.Exit(ctx)
	if err != nil {
		return StudioState{}, mapStudioErr(err)
	}
	return NewStudioState(snap), nil
}

func (ss *studioService) Resume(ctx context.Context, learnerID uuid.UUID) (StudioState, error) {
	c, err := ss.active(learnerID)
	if err != nil {
		return StudioState{}, err
	}
	snap, err := c.Resume(ctx)
	if err != nil {
		return StudioState{}, mapStudioErr(err)
	}
	return NewStudioState(snap), nil
}

// Logout drops the learner's session and releases its controller.
func (ss *studioService) Logout(ctx context.Context, learnerID uuid.UUID) error {
	ss.mu.Lock()
	c, ok := ss.controllers[learnerID]
	delete(ss.controllers, learnerID)
	ss.mu.Unlock()
	if !ok {
		return nil
	}
	err := c.Clear(ctx)
	c.Close()
	observability.StudioControllerClosed()
	if err != nil && !errors.Is(err, studio.ErrClosed) {
		return mapStudioErr(err)
	}
	return nil
}

func (ss *studioService) State(ctx context.Context, learnerID uuid.UUID) (StudioState, error) {
	c, err := ss.controller(learnerID, false)
	if err != nil {
		return StudioState{}, mapStudioErr(err)
	}
	if c == nil {
		return StudioState{View: studio.ViewDashboard}, nil
	}
	snap, err := c.Snapshot(ctx)
	if err != nil {
		return StudioState{}, mapStudioErr(err)
	}
	return NewStudioState(snap), nil
}

func (ss *studioService) CurrentSession(ctx context.Context, learnerID uuid.UUID) (*studio.Session, error) {
	st, err := ss.State(ctx, learnerID)
	if err != nil {
		return nil, err
	}
	if st.View != studio.ViewStudio || st.Session == nil {
		return nil, mapStudioErr(studio.ErrNoSession)
	}
	return st.Session, nil
}

func (ss *studioService) Advance(ctx context.Context, learnerID uuid.UUID) (NavigationResult, error) {
	c, err := ss.active(learnerID)
	if err != nil {
		return NavigationResult{}, err
	}
	out, err := c.Advance(ctx)
	if err != nil {
		observability.StudioAdvance(studio.LastAct, "error")
		ss.logFor(ctx, learnerID).Error("advance failed", "error", err)
		return NavigationResult{}, mapStudioErr(err)
	}
	res := NavigationResult{State: NewStudioState(out.Snapshot), Accepted: out.Accepted, Completed: out.Completed}
	switch {
	case out.Completed:
		observability.StudioAdvance(studio.LastAct, "completed")
		l, err := ss.learners.Get(ctx, learnerID)
		if err != nil {
			ss.logFor(ctx, learnerID).Warn("reload learner after award failed", "error", err)
		} else {
			res.Learner = l
		}
	case out.Accepted:
		observability.StudioAdvance(out.Snapshot.Session.CurrentAct, "moved")
	default:
		act := 0
		if out.Snapshot.Session != nil {
			act = out.Snapshot.Session.CurrentAct
		}
		observability.StudioAdvance(act, "blocked")
	}
	return res, nil
}

func (ss *studioService) Retreat(ctx context.Context, learnerID uuid.UUID) (StudioState, error) {
	c, err := ss.active(learnerID)
	if err != nil {
		return StudioState{}, err
	}
	snap, err := c.Retreat(ctx)
	if err != nil {
		return StudioState{}, mapStudioErr(err)
	}
	return NewStudioState(snap), nil
}

func (ss *studioService) JumpTo(ctx context.Context, learnerID uuid.UUID, act int) (NavigationResult, error) {
	c, err := ss.active(learnerID)
	if err != nil {
		return NavigationResult{}, err
	}
	out, err := c.JumpTo(ctx, act)
	if err != nil {
		return NavigationResult{}, mapStudioErr(err)
	}
	return NavigationResult{State: NewStudioState(out.Snapshot), Accepted: out.Accepted}, nil
}

func (ss *studioService) apply(ctx context.Context, learnerID uuid.UUID, t studio.Transform) (studio.Snapshot, error) {
	c, err := ss.active(learnerID)
	if err != nil {
		return studio.Snapshot{}, err
	}
	snap, err := c.Apply(ctx, t)
	if err != nil {
		return studio.Snapshot{}, mapStudioErr(err)
	}
	return snap, nil
}

func (ss *studioService) applyState(ctx context.Context, learnerID uuid.UUID, t studio.Transform) (StudioState, error) {
	snap, err := ss.apply(ctx, learnerID, t)
	if err != nil {
		return StudioState{}, err
	}
	return NewStudioState(snap), nil
}

func (ss *studioService) applyQuiz(ctx context.Context, learnerID uuid.UUID, t studio.Transform) (QuizView, error) {
	snap, err := ss.apply(ctx, learnerID, t)
	if err != nil {
		return QuizView{}, err
	}
	return NewQuizView(*snap.Session), nil
}

func (ss *studioService) UpdateContext(ctx context.Context, learnerID uuid.UUID, p studio.ContextPatch) (StudioState, error) {
	return ss.applyState(ctx, learnerID, func(s studio.Session) (studio.Session, error) {
		return studio.UpdateContext(s, p)
	})
}

func (ss *studioService) AcknowledgeObjectives(ctx context.Context, learnerID uuid.UUID) (StudioState, error) {
	return ss.applyState(ctx, learnerID, studio.AcknowledgeObjectives)
}

func (ss *studioService) UpdatePerformance(ctx context.Context, learnerID uuid.UUID, p studio.PerformancePatch) (StudioState, error) {
	return ss.applyState(ctx, learnerID, func(s studio.Session) (studio.Session, error) {
		return studio.UpdatePerformance(s, p)
	})
}

func (ss *studioService) UpdateDesign(ctx context.Context, learnerID uuid.UUID, p studio.DesignPatch) (StudioState, error) {
	return ss.applyState(ctx, learnerID, func(s studio.Session) (studio.Session, error) {
		return studio.UpdateDesign(s, p)
	})
}

func (ss *studioService) UpdateLearner(ctx context.Context, learnerID uuid.UUID, p studio.LearnerPatch) (StudioState, error) {
	return ss.applyState(ctx, learnerID, func(s studio.Session) (studio.Session, error) {
		return studio.UpdateLearner(s, p)
	})
}

func (ss *studioService) Quiz(ctx context.Context, learnerID uuid.UUID) (QuizView, error) {
	s, err := ss.CurrentSession(ctx, learnerID)
	if err != nil {
		return QuizView{}, err
	}
	return NewQuizView(*s), nil
}

func (ss *studioService) SelectAnswer(ctx context.Context, learnerID uuid.UUID, questionID, option int) (QuizView, error) {
	return ss.applyQuiz(ctx, learnerID, func(s studio.Session) (studio.Session, error) {
		return studio.SelectAnswer(s, questionID, option)
	})
}

func (ss *studioService) SubmitQuiz(ctx context.Context, learnerID uuid.UUID) (QuizView, error) {
	qv, err := ss.applyQuiz(ctx, learnerID, studio.SubmitQuiz)
	if err != nil {
		return QuizView{}, err
	}
	observability.QuizSubmitted(qv.Passed)
	ss.logFor(ctx, learnerID).Info("quiz submitted", "score", qv.Score, "passed", qv.Passed)
	return qv, nil
}

func (ss *studioService) RetryQuiz(ctx context.Context, learnerID uuid.UUID) (QuizView, error) {
	return ss.applyQuiz(ctx, learnerID, studio.RetryQuiz)
}

func (ss *studioService) SpecDocument(ctx context.Context, learnerID uuid.UUID) (string, error) {
	s, err := ss.CurrentSession(ctx, learnerID)
	if err != nil {
		return "", err
	}
	return studio.SpecDocument(*s), nil
}

func (ss *studioService) ActiveSessions() int {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	return len(ss.controllers)
}

// Close stops every controller. Later calls fail with ErrClosed.
func (ss *studioService) Close() {
	ss.mu.Lock()
	ss.closed = true
	ctrls := ss.controllers
	ss.controllers = make(map[uuid.UUID]*studio.Controller)
	ss.mu.Unlock()
	for _, c := range ctrls {
		c.Close()
		observability.StudioControllerClosed()
	}
}

func mapStudioErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, studio.ErrNoSession):
		return apierr.Conflict("no_active_session", "No active studio session")
	case errors.Is(err, studio.ErrActLocked):
		return apierr.Conflict("act_locked", err.Error())
	case errors.Is(err, studio.ErrQuizLocked):
		return apierr.Conflict("quiz_locked", err.Error())
	case errors.Is(err, studio.ErrQuizIncomplete):
		return apierr.BadRequest("quiz_incomplete", err.Error())
	case errors.Is(err, studio.ErrInvalidValue):
		return apierr.BadRequest("invalid_value", err.Error())
	case errors.Is(err, studio.ErrUnknownQuestion):
		return apierr.BadRequest("unknown_question", err.Error())
	case errors.Is(err, studio.ErrClosed):
		return apierr.New(http.StatusServiceUnavailable, "studio_closed", err)
	}
	var ae *apierr.Error
	if errors.As(err, &ae) {
		return err
	}
	return fmt.Errorf("studio: %w", err)
}
