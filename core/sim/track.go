package sim

import "math"

// SeaLevelAirDensity in kg/m³ at 15 °C.
const SeaLevelAirDensity = 1.225

// scaleHeight of the isothermal density model, m.
const scaleHeight = 8500.0

// Track supplies the boundary conditions that depend on where the vehicle
// is: the road grade and the ambient air density.
type Track interface {
	// GradeAt is the slope at the given position in rad, positive uphill.
	GradeAt(position float64) float64
	// AirDensityAt is the ambient density at the given position in kg/m³.
	AirDensityAt(position float64) float64
}

// FlatTrack is a level track with constant air density.
type FlatTrack struct {
	// AirDensity in kg/m³. Zero defaults to sea level.
	AirDensity float64
}

func (t FlatTrack) GradeAt(float64) float64 { return 0 }

func (t FlatTrack) AirDensityAt(float64) float64 {
	if t.AirDensity == 0 {
		return SeaLevelAirDensity
	}
	return t.AirDensity
}

// Section is one piece of a piecewise track.
type Section struct {
	// Length along the road in m.
	Length float64
	// Grade in rad, positive uphill.
	Grade float64
	// Altitude of the section start in m, used for the density model.
	Altitude float64
}

// SectionTrack is a piecewise-constant track profile. Positions past the
// last section extend it indefinitely.
type SectionTrack struct {
	sections []Section
	ends     []float64 // cumulative end position of each section
}

// NewSectionTrack builds a track from consecutive sections.
func NewSectionTrack(sections ...Section) *SectionTrack {
	t := &SectionTrack{
		sections: sections,
		ends:     make([]float64, len(sections)),
	}
	pos := 0.0
	for i, s := range sections {
		pos += s.Length
		t.ends[i] = pos
	}
	return t
}

// Length is the total track length in m.
func (t *SectionTrack) Length() float64 {
	if len(t.ends) == 0 {
		return 0
	}
	return t.ends[len(t.ends)-1]
}

func (t *SectionTrack) sectionAt(position float64) Section {
	if len(t.sections) == 0 {
		return Section{}
	}
	for i, end := range t.ends {
		if position < end {
			return t.sections[i]
		}
	}
	return t.sections[len(t.sections)-1]
}

func (t *SectionTrack) GradeAt(position float64) float64 {
	return t.sectionAt(position).Grade
}

// AirDensityAt follows an isothermal atmosphere: density decays
// exponentially with the section altitude.
func (t *SectionTrack) AirDensityAt(position float64) float64 {
	s := t.sectionAt(position)
	return SeaLevelAirDensity * math.Exp(-s.Altitude/scaleHeight)
}
