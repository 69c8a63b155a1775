package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/ceustudio-backend/internal/observability"
	"github.com/yungbote/ceustudio-backend/internal/platform/apierr"
	"github.com/yungbote/ceustudio-backend/internal/platform/logger"
	"github.com/yungbote/ceustudio-backend/internal/platform/openai"
)

const (
	SourceGenAI    = "genai"
	SourceFallback = "fallback"

	transcriptWindow = 5

	// StudioCourseID is the catalog entry the studio walkthrough belongs to.
	StudioCourseID = "course-ceu-001"
)

const (
	answerStaged      = "Studio Intelligence is staged for Phase 2. Add OPENAI_API_KEY to enable live responses, or continue using the deterministic workflows in the dashboard."
	answerUnreachable = "Studio Intelligence is available, but the upstream model could not be reached. I logged the failure so we can retry with traceability."
	answerEmpty       = "The intelligence layer generated an empty response. Please retry in a moment."
)

var systemPreamble = []string{
	"You are MR CEU Studio's Architect Intelligence layer.",
	"Respond with high-trust, actionable guidance grounded in Health, Safety, and Welfare outcomes.",
	"If you reference performance metrics, tie them back to how the learner logged evidence inside the studio.",
	"Do not hallucinate product specs. Offer next-step experiments when information is missing.",
}

type IntelligenceTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type AdvisorRequest struct {
	Prompt            string             `json:"prompt"`
	CourseID          string             `json:"courseId,omitempty"`
	Context           map[string]any     `json:"context,omitempty"`
	Transcript        []IntelligenceTurn `json:"transcript,omitempty"`
	PractitionerEmail string             `json:"practitionerEmail,omitempty"`
}

type AdvisorAnswer struct {
	Answer   string         `json:"answer"`
	Source   string         `json:"source"`
	Metadata map[string]any `json:"metadata"`
}

type AdvisorService interface {
	Ask(ctx context.Context, req AdvisorRequest) (*AdvisorAnswer, error)
	AskStudio(ctx context.Context, learnerID uuid.UUID, prompt string) (*AdvisorAnswer, error)
}

type advisorService struct {
	log    *logger.Logger
	llm    openai.Client
	studio StudioService
	model  string
}

// NewAdvisorService takes a nil llm when no API key is configured; answers
// then use the staged fallback text.
func NewAdvisorService(log *logger.Logger, llm openai.Client, studio StudioService, model string) AdvisorService {
	if llm != nil {
		model = llm.Model()
	}
	return &advisorService{log: log.With("service", "AdvisorService"), llm: llm, studio: studio, model: model}
}

func (as *advisorService) Ask(ctx context.Context, req AdvisorRequest) (*AdvisorAnswer, error) {
	if strings.TrimSpace(req.Prompt) == "" {
		return nil, apierr.BadRequest("invalid_prompt", "prompt is required")
	}
	var courseID any
	if req.CourseID != "" {
		courseID = req.CourseID
	}
	out := &AdvisorAnswer{Metadata: map[string]any{"courseId": courseID, "model": as.model}}

	if as.llm == nil {
		out.Answer, out.Source = answerStaged, SourceFallback
		observability.AdvisorAnswered(out.Source)
		return out, nil
	}

	start := time.Now()
	text, err := as.llm.GenerateText(ctx, BuildSystemInstruction(req.CourseID, req.Context, req.Transcript), []openai.Message{
		{Role: openai.RoleUser, Content: req.Prompt},
	})
	out.Metadata["latencyMs"] = time.Since(start).Milliseconds()
	switch {
	case err != nil:
		as.log.Warn("advisor model call failed", "error", err)
		out.Answer, out.Source = answerUnreachable, SourceFallback
		out.Metadata["error"] = err.Error()
	case strings.TrimSpace(text) == "":
		out.Answer, out.Source = answerEmpty, SourceGenAI
	default:
		out.Answer, out.Source = text, SourceGenAI
	}
	observability.AdvisorAnswered(out.Source)
	return out, nil
}

// AskStudio answers with the learner's live studio decisions as context. It
// only reads the session.
func (as *advisorService) AskStudio(ctx context.Context, learnerID uuid.UUID, prompt string) (*AdvisorAnswer, error) {
	s, err := as.studio.CurrentSession(ctx, learnerID)
	if err != nil {
		return nil, err
	}
	return as.Ask(ctx, AdvisorRequest{
		Prompt:   prompt,
		CourseID: StudioCourseID,
		Context: map[string]any{
			"currentAct":       s.CurrentAct,
			"sector":           s.Sector,
			"zone":             s.Zone,
			"constructionType": s.ConstructionType,
			"environment":      s.Environment,
			"performance":      s.Performance,
			"design":           s.Design,
		},
	})
}

// BuildSystemInstruction joins the fixed preamble with whatever the caller
// knows about the learner: course, context JSON, and the last few turns.
func BuildSystemInstruction(courseID string, sessionContext map[string]any, transcript []IntelligenceTurn) string {
	var lines []string
	if courseID != "" {
		lines = append(lines, "Course Focus: "+courseID)
	}
	if sessionContext != nil {
		if raw, err := json.Marshal(sessionContext); err == nil {
			lines = append(lines, "Context JSON: "+string(raw))
		}
	}
	if len(transcript) > 0 {
		turns := transcript
		if len(turns) > transcriptWindow {
			turns = turns[len(turns)-transcriptWindow:]
		}
		rendered := make([]string, 0, len(turns))
		for _, t := range turns {
			rendered = append(rendered, fmt.Sprintf("%s: %s", strings.ToUpper(t.Role), t.Content))
		}
		lines = append(lines, "Recent Transcript:\n"+strings.Join(rendered, "\n"))
	}
	parts := append([]string(nil), systemPreamble...)
	if len(lines) > 0 {
		parts = append(parts, strings.Join(lines, "\n"))
	}
	return strings.Join(parts, "\n\n")
}
