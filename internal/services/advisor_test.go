package services

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/ceustudio-backend/internal/platform/apierr"
	"github.com/yungbote/ceustudio-backend/internal/platform/logger"
	"github.com/yungbote/ceustudio-backend/internal/platform/openai"
)

func TestAdvisorRequiresPrompt(t *testing.T) {
	svc := NewAdvisorService(logger.NewNop(), nil, nil, "gpt-4o-mini")
	_, err := svc.Ask(context.Background(), AdvisorRequest{Prompt: "  "})
	ae := apierr.As(err)
	assert.Equal(t, http.StatusBadRequest, ae.Status)
	assert.Equal(t, "prompt is required", ae.Error())
}

func TestAdvisorStagedFallbackWithoutModel(t *testing.T) {
	svc := NewAdvisorService(logger.NewNop(), nil, nil, "gpt-4o-mini")
	out, err := svc.Ask(context.Background(), AdvisorRequest{Prompt: "What is HSW?"})
	require.NoError(t, err)
	assert.Equal(t, SourceFallback, out.Source)
	assert.Equal(t, answerStaged, out.Answer)
	assert.Nil(t, out.Metadata["courseId"])
	assert.Equal(t, "gpt-4o-mini", out.Metadata["model"])
}

func TestAdvisorUpstreamFailureFallsBack(t *testing.T) {
	llm := &fakeLLM{err: errBoom}
	svc := NewAdvisorService(logger.NewNop(), llm, nil, "")
	out, err := svc.Ask(context.Background(), AdvisorRequest{Prompt: "hi", CourseID: "course-ceu-001"})
	require.NoError(t, err)
	assert.Equal(t, SourceFallback, out.Source)
	assert.Equal(t, answerUnreachable, out.Answer)
	assert.Equal(t, "boom", out.Metadata["error"])
	assert.Equal(t, "course-ceu-001", out.Metadata["courseId"])
	assert.Equal(t, "test-model", out.Metadata["model"])
}

func TestAdvisorGenAIAnswer(t *testing.T) {
	llm := &fakeLLM{answer: "Specify Class A."}
	svc := NewAdvisorService(logger.NewNop(), llm, nil, "")
	out, err := svc.Ask(context.Background(), AdvisorRequest{Prompt: "Fire rating?"})
	require.NoError(t, err)
	assert.Equal(t, SourceGenAI, out.Source)
	assert.Equal(t, "Specify Class A.", out.Answer)
	require.Len(t, llm.gotTurns, 1)
	assert.Equal(t, openai.Message{Role: openai.RoleUser, Content: "Fire rating?"}, llm.gotTurns[0])

	llm.answer = "  "
	out, err = svc.Ask(context.Background(), AdvisorRequest{Prompt: "again"})
	require.NoError(t, err)
	assert.Equal(t, SourceGenAI, out.Source)
	assert.Equal(t, answerEmpty, out.Answer)
}

func TestBuildSystemInstruction(t *testing.T) {
	var turns []IntelligenceTurn
	for i := 1; i <= 7; i++ {
		turns = append(turns, IntelligenceTurn{Role: "user", Content: fmt.Sprintf("turn %d", i)})
	}
	got := BuildSystemInstruction("course-ceu-001", map[string]any{"zone": "Lobby"}, turns)

	assert.True(t, strings.HasPrefix(got, "You are MR CEU Studio's Architect Intelligence layer.\n\n"))
	assert.Contains(t, got, "Course Focus: course-ceu-001\nContext JSON: {\"zone\":\"Lobby\"}\nRecent Transcript:\nUSER: turn 3")
	assert.NotContains(t, got, "turn 2")
	assert.True(t, strings.HasSuffix(got, "USER: turn 7"))

	bare := BuildSystemInstruction("", nil, nil)
	assert.Equal(t, strings.Join(systemPreamble, "\n\n"), bare)
}

func TestAskStudioUsesLiveSession(t *testing.T) {
	f := newStudioFixture(t)
	llm := &fakeLLM{answer: "ok"}
	svc := NewAdvisorService(logger.NewNop(), llm, f.svc, "")

	_, err := svc.AskStudio(context.Background(), f.learnerID, "help")
	assert.Equal(t, http.StatusConflict, apierr.As(err).Status)

	_, err = f.svc.Start(context.Background(), f.learnerID)
	require.NoError(t, err)
	out, err := svc.AskStudio(context.Background(), f.learnerID, "help")
	require.NoError(t, err)
	assert.Equal(t, StudioCourseID, out.Metadata["courseId"])
	assert.Contains(t, llm.gotSystem, `"sector":"Workplace"`)
	assert.Contains(t, llm.gotSystem, `"patternFamily":"Bio-Organic"`)
}
