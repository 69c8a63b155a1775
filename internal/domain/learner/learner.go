package learner

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// CreditPerCourse is what one completed studio run is worth, in both LU and HSW.
const CreditPerCourse = 1.0

type Learner struct {
	ID               uuid.UUID                   `gorm:"type:uuid;primaryKey" json:"id"`
	Name             string                      `gorm:"not null;column:name" json:"name"`
	Email            string                      `gorm:"uniqueIndex;not null;column:email" json:"email"`
	AIANumber        string                      `gorm:"column:aia_number" json:"aiaNumber"`
	CreditsEarned    float64                     `gorm:"not null;default:0;column:credits_earned" json:"creditsEarned"`
	HSWCredits       float64                     `gorm:"not null;default:0;column:hsw_credits" json:"hswCredits"`
	CompletedCourses datatypes.JSONSlice[string] `gorm:"column:completed_courses" json:"completedCourses"`
	InProgress       datatypes.JSON              `gorm:"column:in_progress_courses" json:"inProgressCourses,omitempty"`

	CreatedAt time.Time      `gorm:"not null;autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time      `gorm:"not null;autoUpdateTime" json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Learner) TableName() string { return "learner" }

func (l *Learner) BeforeCreate(*gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

// CompleteCourse applies one credential award. Repeat completions of the same
// course are recorded again.
func (l *Learner) CompleteCourse(title string) {
	l.CreditsEarned += CreditPerCourse
	l.HSWCredits += CreditPerCourse
	l.CompletedCourses = append(l.CompletedCourses, title)
}

func (l *Learner) HasCompleted(title string) bool {
	for _, c := range l.CompletedCourses {
		if c == title {
			return true
		}
	}
	return false
}

// CourseCompletion is the audit row written alongside every award.
type CourseCompletion struct {
	ID                uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	LearnerID         uuid.UUID `gorm:"type:uuid;not null;index;column:learner_id" json:"learnerId"`
	SessionID         uuid.UUID `gorm:"type:uuid;not null;column:session_id" json:"sessionId"`
	CourseTitle       string    `gorm:"not null;column:course_title" json:"courseTitle"`
	Sector            string    `gorm:"column:sector" json:"sector"`
	PatternFamily     string    `gorm:"column:pattern_family" json:"patternFamily"`
	EngagementSeconds int       `gorm:"not null;column:engagement_seconds" json:"engagementSeconds"`
	CompletedAt       time.Time `gorm:"not null;column:completed_at" json:"completedAt"`
}

func (CourseCompletion) TableName() string { return "course_completion" }

func (c *CourseCompletion) BeforeCreate(*gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
