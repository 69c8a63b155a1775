package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	types "github.com/yungbote/ceustudio-backend/internal/domain"
	"github.com/yungbote/ceustudio-backend/internal/domain/catalog"
	"github.com/yungbote/ceustudio-backend/internal/observability"
	"github.com/yungbote/ceustudio-backend/internal/platform/apierr"
	"github.com/yungbote/ceustudio-backend/internal/platform/gcp"
	"github.com/yungbote/ceustudio-backend/internal/platform/logger"
	"github.com/yungbote/ceustudio-backend/internal/realtime"
)

const (
	DefaultIngestionDelay = 1500 * time.Millisecond

	ingestionReadyNote = "PDF parsed and ready for downstream intelligence layer."
)

type IngestPDFInput struct {
	CourseID    string `json:"courseId"`
	FileName    string `json:"fileName"`
	PDFURL      string `json:"pdfUrl"`
	FileBase64  string `json:"fileBase64"`
	SubmittedBy string `json:"submittedBy"`
}

type IngestionService interface {
	Submit(ctx context.Context, in IngestPDFInput) (*types.IngestionJob, error)
	Get(ctx context.Context, jobID string) (*types.IngestionJob, error)
	List(ctx context.Context) []types.IngestionJob
	Close()
}

type ingestionService struct {
	log     *logger.Logger
	bucket  gcp.BucketService
	emitter SSEEmitter
	delay   time.Duration
	now     func() time.Time

	mu     sync.Mutex
	jobs   map[string]*types.IngestionJob
	order  []string
	timers map[string]*time.Timer
	closed bool
}

// NewIngestionService keeps jobs in memory. A job moves from queued to ready
// after delay; bucket may be nil, in which case uploaded files are not stored.
func NewIngestionService(log *logger.Logger, bucket gcp.BucketService, emitter SSEEmitter, delay time.Duration) IngestionService {
	if emitter == nil {
		emitter = nopEmitter{}
	}
	if delay <= 0 {
		delay = DefaultIngestionDelay
	}
	return &ingestionService{
		log:     log.With("service", "IngestionService"),
		bucket:  bucket,
		emitter: emitter,
		delay:   delay,
		now:     time.Now,
		jobs:    make(map[string]*types.IngestionJob),
		timers:  make(map[string]*time.Timer),
	}
}

func (is *ingestionService) Submit(ctx context.Context, in IngestPDFInput) (*types.IngestionJob, error) {
	in.CourseID = strings.TrimSpace(in.CourseID)
	in.FileName = strings.TrimSpace(in.FileName)
	if in.CourseID == "" || in.FileName == "" {
		return nil, apierr.BadRequest("invalid_ingest", "courseId and fileName are required")
	}
	if strings.TrimSpace(in.PDFURL) == "" && strings.TrimSpace(in.FileBase64) == "" {
		return nil, apierr.BadRequest("invalid_ingest", "Provide either pdfUrl or fileBase64")
	}

	job := &types.IngestionJob{
		ID:          uuid.NewString(),
		CourseID:    in.CourseID,
		FileName:    in.FileName,
		Status:      catalog.JobQueued,
		SubmittedBy: strings.TrimSpace(in.SubmittedBy),
		SubmittedAt: is.now().UTC(),
	}

	if in.FileBase64 != "" && is.bucket != nil && is.bucket.Enabled(gcp.BucketCategoryCourseAsset) {
		raw, err := decodeBase64File(in.FileBase64)
		if err != nil {
			return nil, apierr.BadRequest("invalid_ingest", "fileBase64 is not valid base64")
		}
		key := path.Join("courses", job.CourseID, job.ID, path.Base(job.FileName))
		if err := is.bucket.UploadFile(ctx, gcp.BucketCategoryCourseAsset, key, bytes.NewReader(raw)); err != nil {
			is.log.Error("pdf upload failed", "course_id", job.CourseID, "job_id", job.ID, "error", err)
			return nil, apierr.New(http.StatusBadGateway, "upload_failed", fmt.Errorf("store pdf: %w", err))
		}
		job.StorageKey = key
	}

	is.mu.Lock()
	if is.closed {
		is.mu.Unlock()
		return nil, apierr.New(http.StatusServiceUnavailable, "ingestion_closed", fmt.Errorf("ingestion service closed"))
	}
	is.jobs[job.ID] = job
	is.order = append(is.order, job.ID)
	jobID := job.ID
	is.timers[jobID] = time.AfterFunc(is.delay, func() { is.resolve(jobID) })
	out := *job
	is.mu.Unlock()

	observability.IngestionJobStatus(catalog.JobQueued)
	is.log.Info("pdf ingestion queued", "course_id", out.CourseID, "job_id", out.ID)
	is.publish(out)
	return &out, nil
}

func (is *ingestionService) resolve(jobID string) {
	is.mu.Lock()
	delete(is.timers, jobID)
	job, ok := is.jobs[jobID]
	if !ok || job.Status != catalog.JobQueued || is.closed {
		is.mu.Unlock()
		return
	}
	job.Status = catalog.JobReady
	job.Notes = ingestionReadyNote
	out := *job
	is.mu.Unlock()

	observability.IngestionJobStatus(catalog.JobReady)
	is.publish(out)
}

func (is *ingestionService) publish(job types.IngestionJob) {
	is.emitter.Emit(context.Background(), realtime.SSEMessage{
		Channel: realtime.IngestionChannel(job.CourseID),
		Event:   realtime.SSEEventIngestionJob,
		Data:    job,
	})
}

func (is *ingestionService) Get(ctx context.Context, jobID string) (*types.IngestionJob, error) {
	is.mu.Lock()
	defer is.mu.Unlock()
	job, ok := is.jobs[jobID]
	if !ok {
		return nil, apierr.NotFound("job_not_found", "Job not found")
	}
	out := *job
	return &out, nil
}

// List returns every job in submission order.
func (is *ingestionService) List(ctx context.Context) []types.IngestionJob {
	is.mu.Lock()
	defer is.mu.Unlock()
	out := make([]types.IngestionJob, 0, len(is.order))
	for _, id := range is.order {
		out = append(out, *is.jobs[id])
	}
	return out
}

func (is *ingestionService) Close() {
	is.mu.Lock()
	defer is.mu.Unlock()
	is.closed = true
	for id, t := range is.timers {
		t.Stop()
		delete(is.timers, id)
	}
}

// decodeBase64File accepts raw base64 or a data: URL.
func decodeBase64File(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "data:") {
		if i := strings.Index(s, ","); i >= 0 {
			s = s[i+1:]
		}
	}
	return base64.StdEncoding.DecodeString(s)
}
