package studio

import (
	"fmt"
	"strconv"
)

const QuestionCount = 3

// answerKey holds the correct option index per question, in question order.
var answerKey = [QuestionCount]int{0, 0, 0}

type Question struct {
	ID        int      `json:"id"`
	Prompt    string   `json:"prompt"`
	Options   []string `json:"options"`
	Correct   int      `json:"-"`
	Rationale string   `json:"-"`
}

// QuizState is the assessment screen's working state. Selections are indexed
// by question ID-1; nil means unanswered.
type QuizState struct {
	Selections [QuestionCount]*int `json:"selections"`
	Submitted  bool                `json:"submitted"`
	Score      int                 `json:"score"`
}

// Answered reports whether every question has a selection.
func (q QuizState) Answered() bool {
	for _, s := range q.Selections {
		if s == nil {
			return false
		}
	}
	return true
}

// Questions builds the assessment for s. Prompts and rationales quote the
// learner's own design decisions; correctness never depends on them.
func Questions(s Session) []Question {
	depth := formatNumber(s.Design.Depth)
	family := s.Design.PatternFamily
	return []Question{
		{
			ID:     1,
			Prompt: fmt.Sprintf("Technical Coordination: How does your selected CNC carving depth of %s in. affect substrate coordination?", depth),
			Options: []string{
				"It determines the required blocking thickness for structural support and electrical setback.",
				"It renders the fire-rating of the underlying substrate irrelevant (Class C permitted).",
				"It standardizes all field measurements, removing the need for shop drawings.",
				"It increases the acoustic NRC rating of the assembly by exactly 0.85.",
			},
			Correct:   answerKey[0],
			Rationale: fmt.Sprintf("Correct. In architectural millwork, carving depth directly impacts the 'clear zone' behind the face. A depth of %s in. requires specific coordination with substrate blocking to ensure hardware attachment and electrical safety.", depth),
		},
		{
			ID:     2,
			Prompt: fmt.Sprintf("System Geometry: Why is the 'finger-joint' interlocking strategy preferred for the %s family?", family),
			Options: []string{
				"To allow for visual pattern continuity across panels while concealing vertical expansion joints.",
				"To provide a point for high-pressure ventilation directly through the surface geometry.",
				"To reduce the overall weight of the solid-surface panel by 40%.",
				"To facilitate field-cutting of panels using standard wood-working tools.",
			},
			Correct:   answerKey[1],
			Rationale: fmt.Sprintf("Correct. High-performance surface systems like MR Walls use interlocking geometry to hide the transition between panels, ensuring that the %s design remains visually continuous without the disruption of traditional flat-edge seams.", family),
		},
		{
			ID:     3,
			Prompt: fmt.Sprintf("HSW/Welfare Compliance: Given the %s context, which maintenance protocol supports long-term occupant welfare?", s.Sector),
			Options: []string{
				"The ability to field-refinish the non-porous surface to restore original conditions without replacement.",
				"The complete elimination of cleaning requirements due to the geometric pattern self-shedding dust.",
				"The mandatory replacement of panels every 5 years to maintain the AIA HSW certification.",
				"The use of high-VOC sealants to preserve the gloss level of the carved toolpaths.",
			},
			Correct:   answerKey[2],
			Rationale: "Correct. Welfare in AIA HSW terms includes resource conservation. Solid surfaces are uniquely sustainable because they can be buffed and refinished in-situ, extending the building's lifecycle and reducing landfill waste.",
		},
	}
}

// Score counts selections matching the answer key.
func Score(selections [QuestionCount]*int) int {
	score := 0
	for i, sel := range selections {
		if sel != nil && *sel == answerKey[i] {
			score++
		}
	}
	return score
}

// SelectAnswer records option for questionID. Selections are frozen once the
// attempt has been submitted.
func SelectAnswer(s Session, questionID, option int) (Session, error) {
	if s.CurrentAct != ActKnowledgeCheck {
		return s, ErrActLocked
	}
	if s.Quiz.Submitted || s.QuizPassed {
		return s, ErrQuizLocked
	}
	if questionID < 1 || questionID > QuestionCount || option < 0 || option > 3 {
		return s, ErrUnknownQuestion
	}
	next := s.Clone()
	opt := option
	next.Quiz.Selections[questionID-1] = &opt
	return next, nil
}

// SubmitQuiz grades the current attempt. A perfect score sets QuizPassed.
func SubmitQuiz(s Session) (Session, error) {
	if s.CurrentAct != ActKnowledgeCheck {
		return s, ErrActLocked
	}
	if s.Quiz.Submitted || s.QuizPassed {
		return s, ErrQuizLocked
	}
	if !s.Quiz.Answered() {
		return s, ErrQuizIncomplete
	}
	next := s.Clone()
	next.Quiz.Submitted = true
	next.Quiz.Score = Score(next.Quiz.Selections)
	if next.Quiz.Score == QuestionCount {
		next.QuizPassed = true
	}
	return next, nil
}

// RetryQuiz clears a failed attempt. There is no retry limit.
func RetryQuiz(s Session) (Session, error) {
	if s.CurrentAct != ActKnowledgeCheck {
		return s, ErrActLocked
	}
	if !s.Quiz.Submitted || s.QuizPassed {
		return s, ErrQuizLocked
	}
	next := s.Clone()
	next.Quiz = QuizState{}
	return next, nil
}

// formatNumber renders a float the shortest way that round-trips, so 1 prints
// as "1" and 0.75 as "0.75".
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
