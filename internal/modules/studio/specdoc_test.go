package studio

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSpecDocument(t *testing.T) {
	s := newTestSession()
	s.Zone = ZoneCorridor
	s.Sector = SectorHospitality
	s.Design.PatternFamily = "Radial"
	s.Design.Scale = 1.5
	s.Design.Depth = 0.25
	s.Design.Orientation = OrientationHorizontal
	s.Performance.ImpactResistance = 65

	doc := SpecDocument(s)
	assert.True(t, strings.HasPrefix(doc, "SECTION 06 67 00 - ARCHITECTURAL SURFACE SYSTEMS"))
	assert.True(t, strings.HasSuffix(doc, "- Fire Rating: Class A (ASTM E84)."))
	assert.Contains(t, doc, "B. Application: Corridor within Hospitality facility.")
	assert.Contains(t, doc, "A. Product Data: For specified pattern: Radial.")
	assert.Contains(t, doc, "- Scale Factor: 1.5\n")
	assert.Contains(t, doc, "- Depth Profile: 0.25 inches\n")
	assert.Contains(t, doc, "- Orientation: Horizontal\n")
	assert.Contains(t, doc, "Impact Resistance: Level 7 (ASTM D256).")
	assert.NotContains(t, doc, "Illumination")

	s.Design.Backlighting = true
	assert.Contains(t, SpecDocument(s), "- Illumination: Integrated LED cavity")
}

func TestSpecDocumentIsPure(t *testing.T) {
	s := newTestSession()
	assert.Equal(t, SpecDocument(s), SpecDocument(s))
	assert.Contains(t, SpecDocument(s), "- Scale Factor: 1\n")
}

func TestImpactLevel(t *testing.T) {
	cases := map[int]int{0: 0, 4: 0, 5: 1, 44: 4, 45: 5, 50: 5, 94: 9, 95: 10, 100: 10}
	for in, want := range cases {
		assert.Equal(t, want, ImpactLevel(in), "impact %d", in)
	}
}
