package simulator

import (
	"math"
	"time"
)

// Summary describes one simulated capacity trace
type Summary struct {
	Samples  int           `json:"samples" yaml:"samples"`
	Tick     time.Duration `json:"tick" yaml:"tick"`
	Consumed []float64     `json:"consumed" yaml:"consumed"`
	Capacity []float64     `json:"capacity" yaml:"capacity"`

	ScaleOuts       int     `json:"scaleOuts" yaml:"scaleOuts"`
	ScaleIns        int     `json:"scaleIns" yaml:"scaleIns"`
	PeakCapacity    float64 `json:"peakCapacity" yaml:"peakCapacity"`
	CapacityHours   float64 `json:"capacityHours" yaml:"capacityHours"`
	MeanUtilization float64 `json:"meanUtilization" yaml:"meanUtilization"`
	ThrottledTicks  int     `json:"throttledTicks" yaml:"throttledTicks"`
}

// Summarize simulates series under p and counts the capacity changes
func Summarize(series []float64, p Policy) (*Summary, error) {
	capacity, err := Simulate(series, p)
	if err != nil {
		return nil, err
	}

	s := &Summary{
		Samples:  len(series),
		Tick:     p.Tick,
		Consumed: series,
		Capacity: capacity,
	}
	hoursPerTick := p.Tick.Hours()
	utilSum := 0.0
	for i, c := range capacity {
		if i > 0 {
			switch {
			case c > capacity[i-1]:
				s.ScaleOuts++
			case c < capacity[i-1]:
				s.ScaleIns++
			}
		}
		s.PeakCapacity = math.Max(s.PeakCapacity, c)
		s.CapacityHours += c * hoursPerTick
		utilSum += utilization(series[i], c)
		if series[i] > c {
			s.ThrottledTicks++
		}
	}
	if len(capacity) > 0 {
		s.MeanUtilization = utilSum / float64(len(capacity))
	}
	return s, nil
}
