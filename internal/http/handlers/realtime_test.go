package handlers

import (
	"bufio"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/ceustudio-backend/internal/platform/ctxutil"
	"github.com/yungbote/ceustudio-backend/internal/platform/logger"
	"github.com/yungbote/ceustudio-backend/internal/realtime"
)

func newRealtimeServer(t *testing.T, learnerID uuid.UUID) (*realtime.SSEHub, *httptest.Server) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	hub := realtime.NewSSEHub(logger.NewNop())
	h := NewRealtimeHandler(logger.NewNop(), hub)

	r := gin.New()
	r.GET("/api/events", func(c *gin.Context) {
		ctx := ctxutil.WithLearnerData(c.Request.Context(), &ctxutil.LearnerData{LearnerID: learnerID})
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}, h.SSEStream)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return hub, srv
}

func openStream(t *testing.T, ctx context.Context, url string) *http.Response {
	t.Helper()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, url+"/api/events", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET /api/events: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}
	return resp
}

func TestSSEStreamReplacementThenBroadcast(t *testing.T) {
	learnerID := uuid.New()
	hub, srv := newRealtimeServer(t, learnerID)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	first := openStream(t, ctx, srv.URL)
	defer first.Body.Close()
	second := openStream(t, ctx, srv.URL)
	defer second.Body.Close()

	ended := make(chan struct{})
	go func() {
		_, _ = io.Copy(io.Discard, first.Body)
		close(ended)
	}()
	select {
	case <-ended:
	case <-ctx.Done():
		t.Fatalf("replaced stream was not closed")
	}

	channel := realtime.StudioChannel(learnerID)
	if n := hub.Subscribers(channel); n != 1 {
		t.Fatalf("expected exactly one subscriber after replacement, got %d", n)
	}
	hub.Broadcast(realtime.SSEMessage{Channel: channel, Event: realtime.SSEEventStudioSnapshot, Data: map[string]any{"currentAct": 3}})

	sc := bufio.NewScanner(second.Body)
	for sc.Scan() {
		if line := sc.Text(); strings.HasPrefix(line, "event: ") {
			if line != "event: StudioSnapshot" {
				t.Fatalf("unexpected frame %q", line)
			}
			return
		}
	}
	t.Fatalf("no event received on the replacement stream: %v", sc.Err())
}

func TestSSEStreamConcurrentReconnectsKeepBroadcastSafe(t *testing.T) {
	learnerID := uuid.New()
	hub, srv := newRealtimeServer(t, learnerID)
	channel := realtime.StudioChannel(learnerID)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	stop := make(chan struct{})
	var broadcasts sync.WaitGroup
	broadcasts.Add(1)
	go func() {
		defer broadcasts.Done()
		for {
			select {
			case <-stop:
				return
			default:
				hub.Broadcast(realtime.SSEMessage{Channel: channel, Event: realtime.SSEEventStudioSnapshot})
			}
		}
	}()

	var streams sync.WaitGroup
	var mu sync.Mutex
	var bodies []io.ReadCloser
	for i := 0; i < 8; i++ {
		streams.Add(1)
		go func() {
			defer streams.Done()
			req, _ := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/events", nil)
			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				return
			}
			mu.Lock()
			bodies = append(bodies, resp.Body)
			mu.Unlock()
		}()
	}
	streams.Wait()
	close(stop)
	broadcasts.Wait()

	if n := hub.Subscribers(channel); n != 1 {
		t.Fatalf("expected one live subscriber, got %d", n)
	}
	for _, b := range bodies {
		_ = b.Close()
	}
}
