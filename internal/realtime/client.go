package realtime

import (
	"github.com/google/uuid"

	"github.com/yungbote/ceustudio-backend/internal/platform/logger"
)

type SSEEvent string

const (
	SSEEventStudioSnapshot SSEEvent = "StudioSnapshot"
	SSEEventCreditAwarded  SSEEvent = "CreditAwarded"
	SSEEventIngestionJob   SSEEvent = "IngestionJobUpdated"
)

type SSEMessage struct {
	Channel string   `json:"channel"`
	Event   SSEEvent `json:"event"`
	Data    any      `json:"data,omitempty"`
}

type SSEClient struct {
	ID        uuid.UUID
	LearnerID uuid.UUID
	Channels  map[string]bool
	Outbound  chan SSEMessage
	done      chan struct{}
	closed    bool // guarded by SSEHub.mu
	Logger    *logger.Logger
}

// StudioChannel is where one learner's session snapshots are published.
func StudioChannel(learnerID uuid.UUID) string { return "studio:" + learnerID.String() }

// IngestionChannel carries job transitions for a course.
func IngestionChannel(courseID string) string { return "ingest:" + courseID }
