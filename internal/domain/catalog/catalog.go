package catalog

import "time"

const (
	StatusDraft  = "draft"
	StatusPilot  = "pilot"
	StatusActive = "active"
)

type CourseModule struct {
	ID              string `yaml:"id" json:"id"`
	Title           string `yaml:"title" json:"title"`
	Objective       string `yaml:"objective" json:"objective"`
	DurationMinutes int    `yaml:"durationMinutes" json:"durationMinutes"`
	Status          string `yaml:"status" json:"status"`
	ActID           int    `yaml:"actId,omitempty" json:"actId,omitempty"`
}

type CourseDocument struct {
	ID              string `yaml:"id" json:"id"`
	Label           string `yaml:"label" json:"label"`
	Type            string `yaml:"type" json:"type"`
	URL             string `yaml:"url,omitempty" json:"url,omitempty"`
	IngestionStatus string `yaml:"ingestionStatus" json:"ingestionStatus"`
}

type Course struct {
	ID          string           `yaml:"id" json:"id"`
	Title       string           `yaml:"title" json:"title"`
	Description string           `yaml:"description" json:"description"`
	CreditHours float64          `yaml:"creditHours" json:"creditHours"`
	HSW         bool             `yaml:"hsw" json:"hsw"`
	SectorFocus []string         `yaml:"sectorFocus" json:"sectorFocus"`
	Status      string           `yaml:"status" json:"status"`
	UpdatedAt   time.Time        `yaml:"-" json:"updatedAt"`
	Modules     []CourseModule   `yaml:"modules" json:"modules"`
	Documents   []CourseDocument `yaml:"documents" json:"documents"`
}

const (
	JobQueued = "queued"
	JobReady  = "ready"
)

type IngestionJob struct {
	ID          string    `json:"id"`
	CourseID    string    `json:"courseId"`
	FileName    string    `json:"fileName"`
	Status      string    `json:"status"`
	SubmittedBy string    `json:"submittedBy,omitempty"`
	SubmittedAt time.Time `json:"submittedAt"`
	StorageKey  string    `json:"storageKey,omitempty"`
	Notes       string    `json:"notes,omitempty"`
}
