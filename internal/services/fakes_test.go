package services

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/ceustudio-backend/internal/domain"
	"github.com/yungbote/ceustudio-backend/internal/modules/studio"
	"github.com/yungbote/ceustudio-backend/internal/pkg/dbctx"
	"github.com/yungbote/ceustudio-backend/internal/platform/airtable"
	"github.com/yungbote/ceustudio-backend/internal/platform/gcp"
	"github.com/yungbote/ceustudio-backend/internal/platform/logger"
	"github.com/yungbote/ceustudio-backend/internal/platform/openai"
	"github.com/yungbote/ceustudio-backend/internal/realtime"
)

const testSecret = "test-secret"

// fakeLearnerRepo is an in-memory LearnerRepo.
type fakeLearnerRepo struct {
	mu          sync.Mutex
	byID        map[uuid.UUID]*types.Learner
	completions []*types.CourseCompletion
	awardErr    error
}

func newFakeLearnerRepo() *fakeLearnerRepo {
	return &fakeLearnerRepo{byID: make(map[uuid.UUID]*types.Learner)}
}

func (r *fakeLearnerRepo) Create(_ dbctx.Context, learners []*types.Learner) ([]*types.Learner, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, l := range learners {
		if l.ID == uuid.Nil {
			l.ID = uuid.New()
		}
		cp := *l
		r.byID[l.ID] = &cp
	}
	return learners, nil
}

func (r *fakeLearnerRepo) GetByID(_ dbctx.Context, id uuid.UUID) (*types.Learner, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.byID[id]
	if !ok {
		return nil, nil
	}
	cp := *l
	return &cp, nil
}

func (r *fakeLearnerRepo) GetByEmail(_ dbctx.Context, email string) (*types.Learner, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, l := range r.byID {
		if l.Email == strings.ToLower(strings.TrimSpace(email)) {
			cp := *l
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeLearnerRepo) UpsertByEmail(dbc dbctx.Context, in *types.Learner) (*types.Learner, error) {
	existing, _ := r.GetByEmail(dbc, in.Email)
	if existing == nil {
		in.Email = strings.ToLower(strings.TrimSpace(in.Email))
		out, err := r.Create(dbc, []*types.Learner{in})
		if err != nil {
			return nil, err
		}
		return out[0], nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := r.byID[existing.ID]
	if in.Name != "" {
		stored.Name = in.Name
	}
	if in.AIANumber != "" {
		stored.AIANumber = in.AIANumber
	}
	cp := *stored
	return &cp, nil
}

func (r *fakeLearnerRepo) AwardCourse(_ dbctx.Context, learnerID uuid.UUID, c *types.CourseCompletion) (*types.Learner, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.awardErr != nil {
		return nil, r.awardErr
	}
	l, ok := r.byID[learnerID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	l.CompleteCourse(c.CourseTitle)
	c.LearnerID = learnerID
	r.completions = append(r.completions, c)
	cp := *l
	return &cp, nil
}

func (r *fakeLearnerRepo) ListCompletions(_ dbctx.Context, learnerID uuid.UUID) ([]*types.CourseCompletion, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*types.CourseCompletion
	for _, c := range r.completions {
		if c.LearnerID == learnerID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CompletedAt.After(out[j].CompletedAt) })
	return out, nil
}

type recordingEmitter struct {
	mu   sync.Mutex
	msgs []realtime.SSEMessage
}

func (e *recordingEmitter) Emit(_ context.Context, msg realtime.SSEMessage) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.msgs = append(e.msgs, msg)
}

func (e *recordingEmitter) events(ev realtime.SSEEvent) []realtime.SSEMessage {
	e.mu.Lock()
	defer e.mu.Unlock()
	var out []realtime.SSEMessage
	for _, m := range e.msgs {
		if m.Event == ev {
			out = append(out, m)
		}
	}
	return out
}

type fakeAirtable struct {
	mu        sync.Mutex
	existing  []airtable.Record
	listErr   error
	createErr error
	lastList  airtable.ListOptions
	created   []map[string]any
}

func (f *fakeAirtable) ListRecords(_ context.Context, opts airtable.ListOptions) (*airtable.RecordList, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastList = opts
	if f.listErr != nil {
		return nil, f.listErr
	}
	return &airtable.RecordList{Records: append([]airtable.Record(nil), f.existing...)}, nil
}

func (f *fakeAirtable) CreateRecord(_ context.Context, fields map[string]any) (*airtable.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = append(f.created, fields)
	return &airtable.Record{ID: "rec" + uuid.NewString()[:8], Fields: fields}, nil
}

type fakeLLM struct {
	answer string
	err    error

	gotSystem string
	gotTurns  []openai.Message
}

func (f *fakeLLM) Model() string { return "test-model" }

func (f *fakeLLM) GenerateText(_ context.Context, system string, turns []openai.Message) (string, error) {
	f.gotSystem = system
	f.gotTurns = turns
	return f.answer, f.err
}

type fakeBucket struct {
	mu        sync.Mutex
	enabled   map[gcp.BucketCategory]bool
	uploadErr error
	objects   map[string][]byte
}

func newFakeBucket(cats ...gcp.BucketCategory) *fakeBucket {
	b := &fakeBucket{enabled: map[gcp.BucketCategory]bool{}, objects: map[string][]byte{}}
	for _, c := range cats {
		b.enabled[c] = true
	}
	return b
}

func (b *fakeBucket) Enabled(c gcp.BucketCategory) bool { return b.enabled[c] }

func (b *fakeBucket) UploadFile(_ context.Context, c gcp.BucketCategory, key string, r io.Reader) error {
	if b.uploadErr != nil {
		return b.uploadErr
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.objects[string(c)+"/"+key] = buf.Bytes()
	return nil
}

func (b *fakeBucket) PublicURL(c gcp.BucketCategory, key string) string {
	return "https://storage.test/" + string(c) + "/" + key
}

// idleTicker never fires; studio tests drive time-independent paths only.
type idleTicker struct{}

func (idleTicker) C() <-chan time.Time { return nil }
func (idleTicker) Stop()               {}

func newIdleTicker(time.Duration) studio.Ticker { return idleTicker{} }

func newTestAuth() AuthService {
	as, err := NewAuthService(logger.NewNop(), AuthConfig{JWTSecretKey: testSecret, AccessTTL: time.Hour})
	if err != nil {
		panic(err)
	}
	return as
}

var errBoom = errors.New("boom")
