package learner

import "testing"

func TestCompleteCourseAddsOneCredit(t *testing.T) {
	l := &Learner{CreditsEarned: 2, HSWCredits: 1.5}
	l.CompleteCourse("Computational Surface Systems 101")

	if l.CreditsEarned != 3 || l.HSWCredits != 2.5 {
		t.Fatalf("unexpected credits %v / %v", l.CreditsEarned, l.HSWCredits)
	}
	if len(l.CompletedCourses) != 1 || !l.HasCompleted("Computational Surface Systems 101") {
		t.Fatalf("course not recorded: %v", l.CompletedCourses)
	}
}

func TestCompleteCourseRepeats(t *testing.T) {
	l := &Learner{}
	l.CompleteCourse("A")
	l.CompleteCourse("A")
	if l.CreditsEarned != 2 || len(l.CompletedCourses) != 2 {
		t.Fatalf("expected two awards, got %v credits and %v", l.CreditsEarned, l.CompletedCourses)
	}
}
