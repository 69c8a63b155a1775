package studio

import (
	"fmt"
	"math"
	"strings"
)

const specTemplate = `
SECTION 06 67 00 - ARCHITECTURAL SURFACE SYSTEMS

PART 1 - GENERAL
1.1 SUMMARY
  A. Section includes: Carved architectural solid-surface wall panels.
  B. Application: %[1]s within %[2]s facility.

1.2 SUBMITTALS
  A. Product Data: For specified pattern: %[3]s.
  B. Shop Drawings: Showing interlocking finger-joint layout.

PART 2 - PRODUCTS
2.1 BASIS OF DESIGN
  A. Manufacturer: MR Walls.
  B. Custom Geometry Profile:
     - Pattern: %[3]s
     - Scale Factor: %[4]s
     - Depth Profile: %[5]s inches
     - Orientation: %[6]s
     %[7]s

2.2 PERFORMANCE REQUIREMENTS
  - Impact Resistance: Level %[8]d (ASTM D256).
  - Fire Rating: Class A (ASTM E84).
`

// SpecDocument renders the CSI section 06 67 00 draft for the session's
// design. It has no side effects.
func SpecDocument(s Session) string {
	illumination := ""
	if s.Design.Backlighting {
		illumination = "- Illumination: Integrated LED cavity"
	}
	doc := fmt.Sprintf(specTemplate,
		s.Zone,
		s.Sector,
		s.Design.PatternFamily,
		formatNumber(s.Design.Scale),
		formatNumber(s.Design.Depth),
		s.Design.Orientation,
		illumination,
		ImpactLevel(s.Performance.ImpactResistance),
	)
	return strings.TrimSpace(doc)
}

// ImpactLevel maps the 0..100 slider to the 0..10 ASTM D256 level, halves
// rounding up.
func ImpactLevel(impactResistance int) int {
	return int(math.Floor(float64(impactResistance)/10 + 0.5))
}
