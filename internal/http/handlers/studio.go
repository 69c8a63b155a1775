package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/ceustudio-backend/internal/http/response"
	"github.com/yungbote/ceustudio-backend/internal/modules/studio"
	"github.com/yungbote/ceustudio-backend/internal/services"
)

type StudioHandler struct {
	studio  services.StudioService
	advisor services.AdvisorService
}

func NewStudioHandler(studio services.StudioService, advisor services.AdvisorService) *StudioHandler {
	return &StudioHandler{studio: studio, advisor: advisor}
}

func (h *StudioHandler) withLearner(c *gin.Context, fn func(id uuid.UUID) (any, error)) {
	id, err := learnerIDFrom(c)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	out, err := fn(id)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, out)
}

// POST /api/studio/start
func (h *StudioHandler) Start(c *gin.Context) {
	h.withLearner(c, func(id uuid.UUID) (any, error) { return h.studio.Start(c.Request.Context(), id) })
}

// POST /api/studio/exit
func (h *StudioHandler) Exit(c *gin.Context) {
	h.withLearner(c, func(id uuid.UUID) (any, error) { return h.studio.Exit(c.Request.Context(), id) })
}

// POST /api/studio/resume
func (h *StudioHandler) Resume(c *gin.Context) {
	h.withLearner(c, func(id uuid.UUID) (any, error) { return h.studio.Resume(c.Request.Context(), id) })
}

// POST /api/studio/logout
func (h *StudioHandler) Logout(c *gin.Context) {
	h.withLearner(c, func(id uuid.UUID) (any, error) {
		if err := h.studio.Logout(c.Request.Context(), id); err != nil {
			return nil, err
		}
		return gin.H{"ok": true}, nil
	})
}

// GET /api/studio
func (h *StudioHandler) State(c *gin.Context) {
	h.withLearner(c, func(id uuid.UUID) (any, error) { return h.studio.State(c.Request.Context(), id) })
}

// POST /api/studio/advance
func (h *StudioHandler) Advance(c *gin.Context) {
	h.withLearner(c, func(id uuid.UUID) (any, error) { return h.studio.Advance(c.Request.Context(), id) })
}

// POST /api/studio/retreat
func (h *StudioHandler) Retreat(c *gin.Context) {
	h.withLearner(c, func(id uuid.UUID) (any, error) { return h.studio.Retreat(c.Request.Context(), id) })
}

// POST /api/studio/jump
// body: { "act": 3 }
func (h *StudioHandler) Jump(c *gin.Context) {
	var req struct {
		Act *int `json:"act" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondAPIError(c, invalidBody(err))
		return
	}
	h.withLearner(c, func(id uuid.UUID) (any, error) { return h.studio.JumpTo(c.Request.Context(), id, *req.Act) })
}

// PATCH /api/studio/context
// body: { "sector"?, "zone"?, "constructionType"?, "environment"? }
func (h *StudioHandler) UpdateContext(c *gin.Context) {
	var req struct {
		Sector           *studio.Sector           `json:"sector"`
		Zone             *studio.Zone             `json:"zone"`
		ConstructionType *studio.ConstructionType `json:"constructionType"`
		Environment      *studio.Environment      `json:"environment"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondAPIError(c, invalidBody(err))
		return
	}
	patch := studio.ContextPatch{
		Sector:           req.Sector,
		Zone:             req.Zone,
		ConstructionType: req.ConstructionType,
		Environment:      req.Environment,
	}
	h.withLearner(c, func(id uuid.UUID) (any, error) { return h.studio.UpdateContext(c.Request.Context(), id, patch) })
}

// POST /api/studio/objectives
func (h *StudioHandler) AcknowledgeObjectives(c *gin.Context) {
	h.withLearner(c, func(id uuid.UUID) (any, error) { return h.studio.AcknowledgeObjectives(c.Request.Context(), id) })
}

// PATCH /api/studio/performance
// body: any subset of the six 0..100 sliders
func (h *StudioHandler) UpdatePerformance(c *gin.Context) {
	var req struct {
		Cleanability     *int `json:"cleanability" binding:"omitempty,min=0,max=100"`
		Durability       *int `json:"durability" binding:"omitempty,min=0,max=100"`
		ImpactResistance *int `json:"impactResistance" binding:"omitempty,min=0,max=100"`
		FireSafety       *int `json:"fireSafety" binding:"omitempty,min=0,max=100"`
		Maintenance      *int `json:"maintenance" binding:"omitempty,min=0,max=100"`
		Lighting         *int `json:"lighting" binding:"omitempty,min=0,max=100"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondAPIError(c, invalidBody(err))
		return
	}
	patch := studio.PerformancePatch{
		Cleanability:     req.Cleanability,
		Durability:       req.Durability,
		ImpactResistance: req.ImpactResistance,
		FireSafety:       req.FireSafety,
		Maintenance:      req.Maintenance,
		Lighting:         req.Lighting,
	}
	h.withLearner(c, func(id uuid.UUID) (any, error) { return h.studio.UpdatePerformance(c.Request.Context(), id, patch) })
}

// PATCH /api/studio/design
func (h *StudioHandler) UpdateDesign(c *gin.Context) {
	var req struct {
		PatternFamily *string             `json:"patternFamily"`
		Scale         *float64            `json:"scale"`
		Depth         *float64            `json:"depth"`
		Orientation   *studio.Orientation `json:"orientation"`
		Density       *float64            `json:"density"`
		Backlighting  *bool               `json:"backlighting"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondAPIError(c, invalidBody(err))
		return
	}
	patch := studio.DesignPatch{
		PatternFamily: req.PatternFamily,
		Scale:         req.Scale,
		Depth:         req.Depth,
		Orientation:   req.Orientation,
		Density:       req.Density,
		Backlighting:  req.Backlighting,
	}
	h.withLearner(c, func(id uuid.UUID) (any, error) { return h.studio.UpdateDesign(c.Request.Context(), id, patch) })
}

// PATCH /api/studio/learner
// body: { "learnerName"?, "learnerEmail"?, "aiaNumber"? }
func (h *StudioHandler) UpdateLearner(c *gin.Context) {
	var req struct {
		LearnerName  *string `json:"learnerName" binding:"omitempty,max=200"`
		LearnerEmail *string `json:"learnerEmail" binding:"omitempty,max=320"`
		AIANumber    *string `json:"aiaNumber" binding:"omitempty,max=64"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondAPIError(c, invalidBody(err))
		return
	}
	patch := studio.LearnerPatch{
		LearnerName:  req.LearnerName,
		LearnerEmail: req.LearnerEmail,
		AIANumber:    req.AIANumber,
	}
	h.withLearner(c, func(id uuid.UUID) (any, error) { return h.studio.UpdateLearner(c.Request.Context(), id, patch) })
}

// GET /api/studio/quiz
func (h *StudioHandler) Quiz(c *gin.Context) {
	h.withLearner(c, func(id uuid.UUID) (any, error) { return h.studio.Quiz(c.Request.Context(), id) })
}

// POST /api/studio/quiz/answers
// body: { "questionId": 2, "option": 0 }
func (h *StudioHandler) SelectAnswer(c *gin.Context) {
	var req struct {
		QuestionID *int `json:"questionId" binding:"required"`
		Option     *int `json:"option" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondAPIError(c, invalidBody(err))
		return
	}
	h.withLearner(c, func(id uuid.UUID) (any, error) {
		return h.studio.SelectAnswer(c.Request.Context(), id, *req.QuestionID, *req.Option)
	})
}

// POST /api/studio/quiz/submit
func (h *StudioHandler) SubmitQuiz(c *gin.Context) {
	h.withLearner(c, func(id uuid.UUID) (any, error) { return h.studio.SubmitQuiz(c.Request.Context(), id) })
}

// POST /api/studio/quiz/retry
func (h *StudioHandler) RetryQuiz(c *gin.Context) {
	h.withLearner(c, func(id uuid.UUID) (any, error) { return h.studio.RetryQuiz(c.Request.Context(), id) })
}

// GET /api/studio/spec
// Plain text so the draft can be pasted straight into a spec book.
func (h *StudioHandler) SpecDocument(c *gin.Context) {
	id, err := learnerIDFrom(c)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	doc, err := h.studio.SpecDocument(c.Request.Context(), id)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	if c.Query("download") != "" {
		c.Header("Content-Disposition", `attachment; filename="06-67-00-architectural-surface-systems.txt"`)
	}
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(doc))
}

// POST /api/studio/advisor
// body: { "prompt": "..." }
func (h *StudioHandler) Advisor(c *gin.Context) {
	var req struct {
		Prompt string `json:"prompt"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondAPIError(c, invalidBody(err))
		return
	}
	h.withLearner(c, func(id uuid.UUID) (any, error) { return h.advisor.AskStudio(c.Request.Context(), id, req.Prompt) })
}
