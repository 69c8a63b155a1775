package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/ceustudio-backend/internal/platform/logger"
)

const outboundBuffer = 16

type SSEHub struct {
	mu            sync.RWMutex
	logger        *logger.Logger
	subscriptions map[string]map[*SSEClient]bool
	heartbeat     time.Duration
}

func NewSSEHub(log *logger.Logger) *SSEHub {
	return &SSEHub{
		logger:        log.With("component", "SSEHub"),
		subscriptions: make(map[string]map[*SSEClient]bool),
		heartbeat:     15 * time.Second,
	}
}

func (hub *SSEHub) NewSSEClient(learnerID uuid.UUID) *SSEClient {
	id := uuid.New()
	return &SSEClient{
		ID:        id,
		LearnerID: learnerID,
		Channels:  make(map[string]bool),
		Outbound:  make(chan SSEMessage, outboundBuffer),
		done:      make(chan struct{}),
		Logger:    hub.logger.With("client_id", id),
	}
}

func (hub *SSEHub) AddChannel(client *SSEClient, channel string) {
	channel = strings.TrimSpace(channel)
	if channel == "" {
		return
	}
	hub.mu.Lock()
	defer hub.mu.Unlock()
	if client.closed {
		return
	}

	client.Channels[channel] = true
	clients, ok := hub.subscriptions[channel]
	if !ok {
		clients = make(map[*SSEClient]bool)
		hub.subscriptions[channel] = clients
	}
	clients[client] = true
	hub.logger.Debug("SSE client subscribed", "client_id", client.ID, "channel", channel)
}

func (hub *SSEHub) RemoveChannel(client *SSEClient, channel string) {
	channel = strings.TrimSpace(channel)
	if channel == "" {
		return
	}
	hub.mu.Lock()
	defer hub.mu.Unlock()
	delete(client.Channels, channel)
	hub.unsubscribeLocked(client, channel)
}

func (hub *SSEHub) RemoveClient(client *SSEClient) {
	hub.mu.Lock()
	defer hub.mu.Unlock()
	hub.removeClientLocked(client)
}

func (hub *SSEHub) removeClientLocked(client *SSEClient) {
	for ch := range client.Channels {
		hub.unsubscribeLocked(client, ch)
	}
	client.Channels = make(map[string]bool)
}

func (hub *SSEHub) unsubscribeLocked(client *SSEClient, channel string) {
	if subs, ok := hub.subscriptions[channel]; ok {
		delete(subs, client)
		if len(subs) == 0 {
			delete(hub.subscriptions, channel)
		}
	}
}

// Subscribers reports how many clients listen on channel.
func (hub *SSEHub) Subscribers(channel string) int {
	hub.mu.RLock()
	defer hub.mu.RUnlock()
	return len(hub.subscriptions[channel])
}

// Broadcast never blocks: a client whose buffer is full misses the message.
// Snapshots are full state, so the next one repairs the gap.
func (hub *SSEHub) Broadcast(msg SSEMessage) {
	if msg.Channel == "" {
		return
	}
	hub.mu.RLock()
	defer hub.mu.RUnlock()
	for c := range hub.subscriptions[msg.Channel] {
		if c.closed {
			continue
		}
		select {
		case c.Outbound <- msg:
		default:
			hub.logger.Warn("dropping SSE message; outbound buffer full", "client_id", c.ID, "channel", msg.Channel)
		}
	}
}

// Publish satisfies Publisher for single-instance deployments.
func (hub *SSEHub) Publish(_ context.Context, msg SSEMessage) error {
	hub.Broadcast(msg)
	return nil
}

func (hub *SSEHub) ServeHTTP(w http.ResponseWriter, r *http.Request, client *SSEClient) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported!", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ctx := r.Context()
	heartbeat := time.NewTicker(hub.heartbeat)
	defer heartbeat.Stop()

	for {
		select {
		case <-ctx.Done():
			client.Logger.Debug("SSE client context done", "err", ctx.Err())
			return
		case <-client.done:
			return
		case <-heartbeat.C:
			_, _ = fmt.Fprint(w, ": ping\n\n")
			flusher.Flush()
		case msg, ok := <-client.Outbound:
			if !ok {
				return
			}
			raw, err := json.Marshal(msg)
			if err != nil {
				client.Logger.Warn("failed to marshal SSE message", "error", err)
				continue
			}
			_, _ = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", msg.Event, raw)
			flusher.Flush()
		}
	}
}

// CloseClient is idempotent. Once closed, a client is never subscribed again.
func (hub *SSEHub) CloseClient(client *SSEClient) {
	hub.mu.Lock()
	defer hub.mu.Unlock()
	if client.closed {
		return
	}
	client.closed = true
	hub.removeClientLocked(client)
	close(client.done)
	close(client.Outbound)
}

// Publisher fans a message out, either locally or through a bus.
type Publisher interface {
	Publish(ctx context.Context, msg SSEMessage) error
}
