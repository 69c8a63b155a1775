package services

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	types "github.com/yungbote/ceustudio-backend/internal/domain"
	"github.com/yungbote/ceustudio-backend/internal/domain/catalog"
	"github.com/yungbote/ceustudio-backend/internal/platform/apierr"
	"github.com/yungbote/ceustudio-backend/internal/platform/logger"
)

//go:embed catalog_seed.yaml
var catalogSeedFS embed.FS

const catalogSeedFile = "catalog_seed.yaml"

const courseRegisteredMessage = "Course registered in-memory. Connect persistence before launching Phase 2."

type catalogSeed struct {
	Courses []types.Course `yaml:"courses"`
}

// RegisterCourseInput mirrors the course shell form. CreditHours is a pointer
// so a missing value can be told apart from zero, which is also rejected.
type RegisterCourseInput struct {
	Title       string                 `json:"title"`
	Description string                 `json:"description"`
	CreditHours *float64               `json:"creditHours"`
	HSW         *bool                  `json:"hsw"`
	SectorFocus StringList             `json:"sectorFocus"`
	Modules     []types.CourseModule   `json:"modules"`
	Documents   []types.CourseDocument `json:"documents"`
}

// StringList decodes either a single JSON string or an array of strings.
type StringList []string

func (l *StringList) UnmarshalJSON(b []byte) error {
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		*l = nil
		return nil
	}
	var one string
	if err := json.Unmarshal(b, &one); err == nil {
		*l = StringList{one}
		return nil
	}
	var many []string
	if err := json.Unmarshal(b, &many); err != nil {
		return err
	}
	*l = many
	return nil
}

type CatalogService interface {
	List(ctx context.Context, status string) []types.Course
	Get(ctx context.Context, id string) (*types.Course, bool)
	Register(ctx context.Context, in RegisterCourseInput) (*types.Course, string, error)
}

type catalogService struct {
	log     *logger.Logger
	mu      sync.RWMutex
	courses []types.Course
	now     func() time.Time
}

// NewCatalogService loads the seed catalog. seedPath overrides the embedded
// file when set.
func NewCatalogService(log *logger.Logger, seedPath string) (CatalogService, error) {
	raw, err := readCatalogSeed(seedPath)
	if err != nil {
		return nil, err
	}
	var seed catalogSeed
	if err := yaml.Unmarshal(raw, &seed); err != nil {
		return nil, fmt.Errorf("parse catalog seed: %w", err)
	}
	now := time.Now().UTC()
	for i := range seed.Courses {
		seed.Courses[i].UpdatedAt = now
	}
	cs := &catalogService{
		log:     log.With("service", "CatalogService"),
		courses: seed.Courses,
		now:     time.Now,
	}
	cs.log.Info("course catalog loaded", "courses", len(seed.Courses))
	return cs, nil
}

func readCatalogSeed(path string) ([]byte, error) {
	if path = strings.TrimSpace(path); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read catalog seed %s: %w", path, err)
		}
		return raw, nil
	}
	return catalogSeedFS.ReadFile(catalogSeedFile)
}

// List returns courses in registration order, filtered by status when given.
func (cs *catalogService) List(ctx context.Context, status string) []types.Course {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	out := make([]types.Course, 0, len(cs.courses))
	for _, c := range cs.courses {
		if status != "" && c.Status != status {
			continue
		}
		out = append(out, c)
	}
	return out
}

func (cs *catalogService) Get(ctx context.Context, id string) (*types.Course, bool) {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	for _, c := range cs.courses {
		if c.ID == id {
			out := c
			return &out, true
		}
	}
	return nil, false
}

// Register adds a draft course shell. Shells live only as long as the process.
func (cs *catalogService) Register(ctx context.Context, in RegisterCourseInput) (*types.Course, string, error) {
	title := strings.TrimSpace(in.Title)
	desc := strings.TrimSpace(in.Description)
	if title == "" || desc == "" || in.CreditHours == nil || *in.CreditHours == 0 {
		return nil, "", apierr.BadRequest("invalid_course", "title, description, and creditHours are required to register a course shell")
	}
	hsw := true
	if in.HSW != nil {
		hsw = *in.HSW
	}
	sectors := []string(in.SectorFocus)
	if sectors == nil {
		sectors = []string{"Workplace"}
	}
	modules := in.Modules
	if modules == nil {
		modules = []types.CourseModule{}
	}
	docs := in.Documents
	if docs == nil {
		docs = []types.CourseDocument{}
	}
	course := types.Course{
		ID:          uuid.NewString(),
		Title:       title,
		Description: desc,
		CreditHours: *in.CreditHours,
		HSW:         hsw,
		SectorFocus: sectors,
		Status:      catalog.StatusDraft,
		UpdatedAt:   cs.now().UTC(),
		Modules:     modules,
		Documents:   docs,
	}
	cs.mu.Lock()
	cs.courses = append(cs.courses, course)
	cs.mu.Unlock()
	cs.log.Info("course shell registered", "course_id", course.ID)
	return &course, courseRegisteredMessage, nil
}
