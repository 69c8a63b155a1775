package studio

import "math"

// Patches carry only the fields a request wants to change.

type ContextPatch struct {
	Sector           *Sector
	Zone             *Zone
	ConstructionType *ConstructionType
	Environment      *Environment
}

type PerformancePatch struct {
	Cleanability     *int
	Durability       *int
	ImpactResistance *int
	FireSafety       *int
	Maintenance      *int
	Lighting         *int
}

type DesignPatch struct {
	PatternFamily *string
	Scale         *float64
	Depth         *float64
	Orientation   *Orientation
	Density       *float64
	Backlighting  *bool
}

type LearnerPatch struct {
	LearnerName  *string
	LearnerEmail *string
	AIANumber    *string
}

// UpdateContext edits the project context while act 1 is displayed.
func UpdateContext(s Session, p ContextPatch) (Session, error) {
	if s.CurrentAct != ActProjectContext {
		return s, ErrActLocked
	}
	if (p.Sector != nil && !p.Sector.Valid()) ||
		(p.Zone != nil && !p.Zone.Valid()) ||
		(p.ConstructionType != nil && !p.ConstructionType.Valid()) ||
		(p.Environment != nil && !p.Environment.Valid()) {
		return s, ErrInvalidValue
	}
	next := s.Clone()
	if p.Sector != nil {
		next.Sector = *p.Sector
	}
	if p.Zone != nil {
		next.Zone = *p.Zone
	}
	if p.ConstructionType != nil {
		next.ConstructionType = *p.ConstructionType
	}
	if p.Environment != nil {
		next.Environment = *p.Environment
	}
	return next, nil
}

// AcknowledgeObjectives unlocks the act 1 continue button.
func AcknowledgeObjectives(s Session) (Session, error) {
	if s.CurrentAct != ActProjectContext {
		return s, ErrActLocked
	}
	next := s.Clone()
	next.AIAData.ObjectivesAcknowledged = true
	return next, nil
}

// UpdatePerformance edits the act 2 sliders. Every value must be in 0..100.
func UpdatePerformance(s Session, p PerformancePatch) (Session, error) {
	if s.CurrentAct != ActPerformanceDecision {
		return s, ErrActLocked
	}
	in := []*int{p.Cleanability, p.Durability, p.ImpactResistance, p.FireSafety, p.Maintenance, p.Lighting}
	for _, v := range in {
		if v != nil && (*v < 0 || *v > 100) {
			return s, ErrInvalidValue
		}
	}
	next := s.Clone()
	perf := &next.Performance
	out := []*int{&perf.Cleanability, &perf.Durability, &perf.ImpactResistance, &perf.FireSafety, &perf.Maintenance, &perf.Lighting}
	for i, v := range in {
		if v != nil {
			*out[i] = *v
		}
	}
	return next, nil
}

// UpdateDesign edits the act 3 parameters within their bounds.
func UpdateDesign(s Session, p DesignPatch) (Session, error) {
	if s.CurrentAct != ActSurfaceCustomizing {
		return s, ErrActLocked
	}
	switch {
	case p.PatternFamily != nil && !validPatternFamily(*p.PatternFamily),
		p.Scale != nil && !within(*p.Scale, MinScale, MaxScale),
		p.Depth != nil && !within(*p.Depth, MinDepth, MaxDepth),
		p.Density != nil && !within(*p.Density, MinDensity, MaxDensity),
		p.Orientation != nil && !p.Orientation.Valid():
		return s, ErrInvalidValue
	}
	next := s.Clone()
	d := &next.Design
	if p.PatternFamily != nil {
		d.PatternFamily = *p.PatternFamily
	}
	if p.Scale != nil {
		d.Scale = *p.Scale
	}
	if p.Depth != nil {
		d.Depth = *p.Depth
	}
	if p.Orientation != nil {
		d.Orientation = *p.Orientation
	}
	if p.Density != nil {
		d.Density = *p.Density
	}
	if p.Backlighting != nil {
		d.Backlighting = *p.Backlighting
	}
	return next, nil
}

// UpdateLearner edits the identity printed on the certificate. It is offered
// from the assessment act only.
func UpdateLearner(s Session, p LearnerPatch) (Session, error) {
	if s.CurrentAct != ActKnowledgeCheck {
		return s, ErrActLocked
	}
	next := s.Clone()
	if p.LearnerName != nil {
		next.AIAData.LearnerName = *p.LearnerName
	}
	if p.LearnerEmail != nil {
		next.AIAData.LearnerEmail = *p.LearnerEmail
	}
	if p.AIANumber != nil {
		next.AIAData.AIANumber = *p.AIANumber
	}
	return next, nil
}

// within rejects NaN, which fails every ordered comparison.
func within(v, lo, hi float64) bool {
	return !math.IsNaN(v) && v >= lo && v <= hi
}
