// Package simulator replays DynamoDB target-tracking autoscaling over a consumption series.
//
// Scale-out fires when utilization stays above target for ScaleOutWindow. Scale-in fires
// when utilization stays below target minus ScaleInMargin for ScaleInWindow, at most
// FreeScaleIns times per QuotaPeriod before ScaleInCooldown applies between scale-ins.
package simulator

import (
	"math"
	"time"

	"github.com/opscart/dynamodb-cost-optimizer/pkg/apperrors"
)

// Autoscaling rule windows, expressed in wall-clock time and converted to ticks
const (
	ScaleOutWindow  = 2 * time.Minute
	ScaleInWindow   = 15 * time.Minute
	QuotaPeriod     = 24 * time.Hour
	ScaleInCooldown = time.Hour
)

const (
	// FreeScaleIns is how many scale-ins per quota period ignore the cooldown
	FreeScaleIns = 4
	// ScaleInMargin is subtracted from the target to get the scale-in threshold
	ScaleInMargin = 0.2
	// ScaleInGain is how much larger current capacity must be than the candidate
	ScaleInGain = 1.2
)

// Policy is the autoscaling configuration for one simulation
type Policy struct {
	TargetUtilization float64
	MinCapacity       float64
	MaxCapacity       float64

	// Tick is the time one input sample represents
	Tick time.Duration
}

// DefaultPolicy mirrors the DynamoDB console defaults
func DefaultPolicy() Policy {
	return Policy{
		TargetUtilization: 0.7,
		MinCapacity:       1,
		MaxCapacity:       40000,
		Tick:              time.Minute,
	}
}

// Validate checks the policy can be simulated
func (p Policy) Validate() error {
	if p.TargetUtilization <= 0 || p.TargetUtilization > 1 {
		return apperrors.InvalidInput("target utilization must be in (0, 1], got %v", p.TargetUtilization)
	}
	if p.MinCapacity < 0 {
		return apperrors.InvalidInput("minimum capacity must be >= 0, got %v", p.MinCapacity)
	}
	if p.MaxCapacity < p.MinCapacity {
		return apperrors.InvalidInput("maximum capacity %v is below minimum capacity %v", p.MaxCapacity, p.MinCapacity)
	}
	if p.Tick <= 0 {
		return apperrors.InvalidInput("tick duration must be positive, got %v", p.Tick)
	}
	return nil
}

// Ticks converts a rule window to a whole number of samples, at least one
func (p Policy) Ticks(d time.Duration) int {
	n := int((d + p.Tick - 1) / p.Tick)
	if n < 1 {
		return 1
	}
	return n
}

// Simulate returns the provisioned capacity autoscaling would have set for each
// sample of consumed units per second. The result has the same length as series.
func Simulate(series []float64, p Policy) ([]float64, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	n := len(series)
	capacity := make([]float64, n)
	if n == 0 {
		return capacity, nil
	}

	var (
		outTicks  = p.Ticks(ScaleOutWindow)
		inTicks   = p.Ticks(ScaleInWindow)
		dayTicks  = p.Ticks(QuotaPeriod)
		coolTicks = p.Ticks(ScaleInCooldown)
	)

	capacity[0] = clamp(series[0]/p.TargetUtilization, p.MinCapacity, p.MaxCapacity)

	scaleIns := 0
	// Far enough back that the first scale-in never waits on the cooldown
	lastScaleIn := -(coolTicks + 1)

	for i := 1; i < n; i++ {
		capacity[i] = capacity[i-1]

		if i%dayTicks == 0 {
			scaleIns = 0
		}

		if i >= outTicks {
			from := i - outTicks + 1
			if allAbove(series, capacity, from, i, p.TargetUtilization) {
				needed := windowPeak(series, from, i) / p.TargetUtilization
				capacity[i] = math.Min(math.Max(needed, capacity[i]), p.MaxCapacity)
			}
		}

		if i >= inTicks {
			from := i - inTicks + 1
			threshold := p.TargetUtilization - ScaleInMargin
			if !allBelow(series, capacity, from, i, threshold) {
				continue
			}
			if scaleIns >= FreeScaleIns && i-lastScaleIn < coolTicks {
				continue
			}
			candidate := math.Max(p.MinCapacity, windowPeak(series, from, i)/p.TargetUtilization)
			if candidate*ScaleInGain < capacity[i] {
				capacity[i] = candidate
				scaleIns++
				lastScaleIn = i
			}
		}
	}

	return capacity, nil
}

func utilization(consumed, capacity float64) float64 {
	if capacity <= 0 {
		return 0
	}
	return consumed / capacity
}

func allAbove(series, capacity []float64, from, to int, target float64) bool {
	for j := from; j <= to; j++ {
		if utilization(series[j], capacity[j]) <= target {
			return false
		}
	}
	return true
}

func allBelow(series, capacity []float64, from, to int, threshold float64) bool {
	for j := from; j <= to; j++ {
		if utilization(series[j], capacity[j]) >= threshold {
			return false
		}
	}
	return true
}

func windowPeak(series []float64, from, to int) float64 {
	peak := 0.0
	for j := from; j <= to; j++ {
		peak = math.Max(peak, series[j])
	}
	return peak
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(v, hi))
}
