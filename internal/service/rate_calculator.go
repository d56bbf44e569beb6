package service

import "time"

const (
	// Any stay under 15 minutes bills as 15 minutes.
	minimumBillableHours = 0.25
	// Every hour (or fraction) after the first bills at this share of base.
	additionalHourFactor = 0.75
)

// Fee computes the charge for a stay. The first hour bills at the base rate,
// every additional hour or fraction at 0.75x base. Pure and monotonically
// non-decreasing in duration.
func Fee(durationHours, baseRatePerHour float64) float64 {
	if durationHours < minimumBillableHours {
		durationHours = minimumBillableHours
	}
	first := durationHours
	if first > 1 {
		first = 1
	}
	extra := durationHours - 1
	if extra < 0 {
		extra = 0
	}
	return first*baseRatePerHour + extra*additionalHourFactor*baseRatePerHour
}

// RateCalculator carries the facility's single shared base rate.
type RateCalculator struct {
	baseRatePerHour float64
}

func NewRateCalculator(baseRatePerHour float64) *RateCalculator {
	return &RateCalculator{baseRatePerHour: baseRatePerHour}
}

func (rc *RateCalculator) BaseRate() float64 {
	return rc.baseRatePerHour
}

func (rc *RateCalculator) SetBaseRate(rate float64) {
	rc.baseRatePerHour = rate
}

func (rc *RateCalculator) FeeForDuration(d time.Duration) float64 {
	return Fee(d.Hours(), rc.baseRatePerHour)
}
