package game

import "math"

// Participant is one seated player. Mutated only by State methods,
// which the owning session actor serializes.
type Participant struct {
	ID             string
	DisplayName    string
	ColorIndex     int
	IsHost         bool
	TerritoryCount int
	SpeedSamples   []float64
}

// Color returns the display color for this participant's seat.
func (p *Participant) Color() string { return ColorFor(p.ColorIndex) }

// AvgTypingSpeed is the arithmetic mean of all recorded samples,
// rounded to the nearest whole unit. Zero when no samples exist.
func (p *Participant) AvgTypingSpeed() float64 {
	if len(p.SpeedSamples) == 0 {
		return 0
	}
	var sum float64
	for _, s := range p.SpeedSamples {
		sum += s
	}
	return math.Round(sum / float64(len(p.SpeedSamples)))
}
