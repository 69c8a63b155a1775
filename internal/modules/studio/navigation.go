package studio

// AdvanceResult is the outcome of Advance. Accepted is false when a gate held
// the learner in place; Completed is set when the course was finished and the
// credential should be awarded.
type AdvanceResult struct {
	Session   Session
	Accepted  bool
	Completed bool
}

// CanAdvance is the continue-button guard. Only act 1 (objectives) and act 6
// (time-on-task unless the quiz is passed) carry a precondition.
func CanAdvance(s Session) bool {
	switch s.CurrentAct {
	case ActProjectContext:
		return s.AIAData.ObjectivesAcknowledged
	case ActKnowledgeCheck:
		if s.EngagementSeconds < MinEngagementSeconds && !s.QuizPassed {
			return false
		}
	}
	return true
}

// Advance marks the current act complete and moves one act forward. From act 6
// with a passed quiz it reports Completed instead of moving.
func Advance(s Session) AdvanceResult {
	if !CanAdvance(s) {
		return AdvanceResult{Session: s}
	}
	next := s.Clone()
	next.ActProgress = markComplete(next.ActProgress, next.CurrentAct)
	if next.CurrentAct == LastAct && next.QuizPassed {
		return AdvanceResult{Session: next, Accepted: true, Completed: true}
	}
	next.CurrentAct = clampAct(next.CurrentAct + 1)
	// the act just reached counts as unlocked
	next.ActProgress = markComplete(next.ActProgress, next.CurrentAct)
	return AdvanceResult{Session: next, Accepted: true}
}

// Retreat moves one act back. Progress is left untouched.
func Retreat(s Session) Session {
	next := s.Clone()
	next.CurrentAct = clampAct(next.CurrentAct - 1)
	return next
}

// CanJumpTo reports whether the sidebar may open act: any recorded act, or at
// most one past the furthest one.
func CanJumpTo(s Session, act int) bool {
	if act < FirstAct || act > LastAct {
		return false
	}
	return s.HasCompleted(act) || act <= s.FurthestAct()+1
}

// JumpTo opens act when allowed; otherwise the session is returned unchanged.
// Unlike Advance it records nothing in ActProgress, so a jump one past the
// furthest act never widens what the sidebar unlocks.
func JumpTo(s Session, act int) (Session, bool) {
	if !CanJumpTo(s, act) {
		return s, false
	}
	next := s.Clone()
	next.CurrentAct = act
	return next, true
}

// Tick adds one engagement second.
func Tick(s Session) Session {
	next := s.Clone()
	next.EngagementSeconds++
	return next
}

// EngagementProgress is the header bar fill, 0..100.
func EngagementProgress(s Session) float64 {
	p := float64(s.EngagementSeconds) / float64(MinEngagementSeconds) * 100
	if p > 100 {
		return 100
	}
	return p
}

// SecondsRemaining is the outstanding time-on-task, never negative.
func SecondsRemaining(s Session) int {
	if r := MinEngagementSeconds - s.EngagementSeconds; r > 0 {
		return r
	}
	return 0
}

// AdvanceLabel is the text on the continue button.
func AdvanceLabel(s Session) string {
	if s.CurrentAct != LastAct {
		return "Continue"
	}
	if s.QuizPassed {
		return "Return to Dashboard"
	}
	return "Begin Assessment"
}

func markComplete(progress []int, act int) []int {
	for _, a := range progress {
		if a == act {
			return progress
		}
	}
	return append(progress, act)
}

func clampAct(act int) int {
	if act < FirstAct {
		return FirstAct
	}
	if act > LastAct {
		return LastAct
	}
	return act
}
