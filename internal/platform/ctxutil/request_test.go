package ctxutil

import (
	"context"
	"testing"

	"github.com/google/uuid"
)

func TestLogFields(t *testing.T) {
	if got := LogFields(context.Background()); len(got) != 0 {
		t.Fatalf("empty context: got %v", got)
	}

	id := uuid.New()
	ctx := WithRequestData(context.Background(), &RequestData{TraceID: "t1", RequestID: "r1"})
	ctx = WithLearnerData(ctx, &LearnerData{LearnerID: id})
	got := LogFields(ctx)
	want := []any{"trace_id", "t1", "request_id", "r1", "learner_id", id.String()}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("field %d: got %v, want %v", i, got[i], want[i])
		}
	}

	anon := WithLearnerData(context.Background(), &LearnerData{})
	if got := LogFields(anon); len(got) != 0 {
		t.Fatalf("nil learner id should be omitted, got %v", got)
	}
}
