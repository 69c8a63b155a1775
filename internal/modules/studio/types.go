package studio

import (
	"time"

	"github.com/google/uuid"
)

// Act numbers, in the order the learner walks them.
const (
	ActProjectContext      = 1
	ActPerformanceDecision = 2
	ActSurfaceCustomizing  = 3
	ActSystemConstruction  = 4
	ActDocumentationSpec   = 5
	ActKnowledgeCheck      = 6
)

const (
	FirstAct = ActProjectContext
	LastAct  = ActKnowledgeCheck

	// MinEngagementSeconds is the time-on-task required before the assessment
	// act can be left without a passing quiz.
	MinEngagementSeconds = 15

	// CourseTitle is appended to the learner's completed list on credential award.
	CourseTitle = "Computational Surface Systems 101"
)

var actTitles = map[int]string{
	ActProjectContext:      "Project Context",
	ActPerformanceDecision: "Performance Studio",
	ActSurfaceCustomizing:  "Design Studio",
	ActSystemConstruction:  "Systems",
	ActDocumentationSpec:   "Documentation",
	ActKnowledgeCheck:      "Assessment",
}

// ActTitle returns the sidebar title for an act, or "" when out of range.
func ActTitle(act int) string { return actTitles[act] }

type Sector string

const (
	SectorHealthcare  Sector = "Healthcare"
	SectorHospitality Sector = "Hospitality"
	SectorWorkplace   Sector = "Workplace"
	SectorMultifamily Sector = "Multifamily"
	SectorEducation   Sector = "Education"
)

func (s Sector) Valid() bool {
	switch s {
	case SectorHealthcare, SectorHospitality, SectorWorkplace, SectorMultifamily, SectorEducation:
		return true
	}
	return false
}

type Zone string

const (
	ZoneLobby       Zone = "Lobby"
	ZoneCorridor    Zone = "Corridor"
	ZoneFeatureWall Zone = "Feature Wall"
	ZoneCeiling     Zone = "Ceiling"
	ZoneFacade      Zone = "Facade"
)

func (z Zone) Valid() bool {
	switch z {
	case ZoneLobby, ZoneCorridor, ZoneFeatureWall, ZoneCeiling, ZoneFacade:
		return true
	}
	return false
}

type ConstructionType string

const (
	ConstructionNew        ConstructionType = "New Construction"
	ConstructionRenovation ConstructionType = "Renovation"
)

func (c ConstructionType) Valid() bool {
	return c == ConstructionNew || c == ConstructionRenovation
}

type Environment string

const (
	EnvironmentInterior Environment = "Interior"
	EnvironmentExterior Environment = "Exterior"
)

func (e Environment) Valid() bool {
	return e == EnvironmentInterior || e == EnvironmentExterior
}

type Orientation string

const (
	OrientationVertical   Orientation = "Vertical"
	OrientationHorizontal Orientation = "Horizontal"
)

func (o Orientation) Valid() bool {
	return o == OrientationVertical || o == OrientationHorizontal
}

// PatternFamilies is the closed set offered by the design studio.
var PatternFamilies = []string{"Bio-Organic", "Geometric", "Tectonic", "Fluid", "Radial"}

func validPatternFamily(p string) bool {
	for _, f := range PatternFamilies {
		if f == p {
			return true
		}
	}
	return false
}

// Design bounds.
const (
	MinScale   = 0.5
	MaxScale   = 3.0
	MinDepth   = 0.1
	MaxDepth   = 1.5
	MinDensity = 0.1
	MaxDensity = 3.0
)

type Performance struct {
	Cleanability     int `json:"cleanability"`
	Durability       int `json:"durability"`
	ImpactResistance int `json:"impactResistance"`
	FireSafety       int `json:"fireSafety"`
	Maintenance      int `json:"maintenance"`
	Lighting         int `json:"lighting"`
}

type Design struct {
	PatternFamily string      `json:"patternFamily"`
	Scale         float64     `json:"scale"`
	Depth         float64     `json:"depth"`
	Orientation   Orientation `json:"orientation"`
	Density       float64     `json:"density"`
	Backlighting  bool        `json:"backlighting"`
}

type AIAData struct {
	LearnerName            string `json:"learnerName"`
	LearnerEmail           string `json:"learnerEmail"`
	AIANumber              string `json:"aiaNumber"`
	ObjectivesAcknowledged bool   `json:"objectivesAcknowledged"`
}

// Identity is what the caller supplies when a studio run starts.
type Identity struct {
	Name      string
	Email     string
	AIANumber string
}

// Session is one learner's run through the six acts. Values are treated as
// immutable snapshots; every change produces a new Session.
type Session struct {
	ID                uuid.UUID        `json:"id"`
	CurrentAct        int              `json:"currentAct"`
	ActProgress       []int            `json:"actProgress"`
	EngagementSeconds int              `json:"engagementSeconds"`
	QuizPassed        bool             `json:"quizPassed"`
	Quiz              QuizState        `json:"quiz"`
	Sector            Sector           `json:"sector"`
	Zone              Zone             `json:"zone"`
	ConstructionType  ConstructionType `json:"constructionType"`
	Environment       Environment      `json:"environment"`
	Performance       Performance      `json:"performance"`
	Design            Design           `json:"design"`
	AIAData           AIAData          `json:"aiaData"`
	StartTime         time.Time        `json:"startTime"`
}

// NewSession builds the state a learner sees when the studio starts.
func NewSession(id Identity, now time.Time) Session {
	return Session{
		ID:               uuid.New(),
		CurrentAct:       FirstAct,
		ActProgress:      []int{FirstAct},
		Sector:           SectorWorkplace,
		Zone:             ZoneLobby,
		ConstructionType: ConstructionNew,
		Environment:      EnvironmentInterior,
		Performance: Performance{
			Cleanability:     50,
			Durability:       50,
			ImpactResistance: 50,
			FireSafety:       50,
			Maintenance:      50,
			Lighting:         50,
		},
		Design: Design{
			PatternFamily: "Bio-Organic",
			Scale:         1,
			Depth:         0.5,
			Orientation:   OrientationVertical,
			Density:       1,
			Backlighting:  false,
		},
		AIAData: AIAData{
			LearnerName:  id.Name,
			LearnerEmail: id.Email,
			AIANumber:    id.AIANumber,
		},
		StartTime: now.UTC(),
	}
}

// Clone copies the slice-backed fields so transforms never share backing arrays.
func (s Session) Clone() Session {
	out := s
	out.ActProgress = append([]int(nil), s.ActProgress...)
	return out
}

// HasCompleted reports whether act is recorded in ActProgress.
func (s Session) HasCompleted(act int) bool {
	for _, a := range s.ActProgress {
		if a == act {
			return true
		}
	}
	return false
}

// FurthestAct is max(ActProgress), or FirstAct when empty.
func (s Session) FurthestAct() int {
	furthest := FirstAct
	for _, a := range s.ActProgress {
		if a > furthest {
			furthest = a
		}
	}
	return furthest
}
