package handlers

import (
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/ceustudio-backend/internal/http/response"
	"github.com/yungbote/ceustudio-backend/internal/platform/logger"
	"github.com/yungbote/ceustudio-backend/internal/realtime"
)

type RealtimeHandler struct {
	Log *logger.Logger
	Hub *realtime.SSEHub

	mu      sync.Mutex
	clients map[uuid.UUID]*realtime.SSEClient // key: learner id
}

func NewRealtimeHandler(log *logger.Logger, hub *realtime.SSEHub) *RealtimeHandler {
	return &RealtimeHandler{
		Log:     log.With("handler", "RealtimeHandler"),
		Hub:     hub,
		clients: make(map[uuid.UUID]*realtime.SSEClient),
	}
}

// GET /api/events?token=...&course=<id>
// Subscribes to the learner's studio channel plus any ingestion channels named
// by course. A new stream for the same learner replaces the previous one.
func (h *RealtimeHandler) SSEStream(c *gin.Context) {
	learnerID, err := learnerIDFrom(c)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}

	h.mu.Lock()
	if existing, ok := h.clients[learnerID]; ok {
		h.Hub.CloseClient(existing)
		delete(h.clients, learnerID)
	}
	client := h.Hub.NewSSEClient(learnerID)
	// Subscribed under h.mu so a replacing stream only ever closes a fully registered client.
	h.Hub.AddChannel(client, realtime.StudioChannel(learnerID))
	for _, courseID := range c.QueryArray("course") {
		if courseID = strings.TrimSpace(courseID); courseID != "" {
			h.Hub.AddChannel(client, realtime.IngestionChannel(courseID))
		}
	}
	h.clients[learnerID] = client
	h.mu.Unlock()

	h.Log.Debug("SSE stream open", "learner_id", learnerID.String(), "client_id", client.ID.String())

	h.Hub.ServeHTTP(c.Writer, c.Request, client)

	h.mu.Lock()
	if h.clients[learnerID] == client {
		delete(h.clients, learnerID)
		h.Hub.CloseClient(client)
	}
	h.mu.Unlock()
}
