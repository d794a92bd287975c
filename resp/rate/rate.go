// Package rate turns corrected oxygen-depletion slopes into absolute and
// mass-specific metabolic rate estimates.
package rate

import (
	"errors"
	"fmt"

	"github.com/cwbudde/algo-resp/resp/core"
)

// Errors returned by the calculator.
var (
	ErrInvalidDensity = errors.New("rate: body density must be positive")
	ErrInvalidVolume  = errors.New("rate: effective respirometer volume must be positive")
)

// MR is one metabolic-rate estimate derived from a slope record.
type MR struct {
	ChamberID    string
	Individual   string
	Phase        string
	TemperatureC float64
	Absolute     float64 // [DO unit] per hour, positive for consumption
	MassSpecific float64 // [DO unit] per hour per kilogram body mass
	Unit         string  // the slope's DO concentration unit tag
}

// Calculator converts slopes to metabolic rates using the effective water
// volume (chamber volume minus the animal's body volume).
type Calculator struct {
	// BodyDensity is the assumed animal density in g/mL, used to turn body
	// mass into displaced volume. Aquatic animals are close to water, so
	// the conventional value is 1.
	BodyDensity float64
}

// DefaultCalculator returns a calculator with the conventional body density.
func DefaultCalculator() *Calculator {
	return &Calculator{BodyDensity: 1.0}
}

// Calculate converts every slope record. The corrected slope is per second
// and negative for consumption; the result is per hour and positive.
func (c *Calculator) Calculate(slopes []core.Slope) ([]MR, error) {
	if c.BodyDensity <= 0 {
		return nil, fmt.Errorf("%w: %g", ErrInvalidDensity, c.BodyDensity)
	}

	out := make([]MR, 0, len(slopes))

	for _, s := range slopes {
		effVolumeL := (s.VolumeML - s.MassG/c.BodyDensity) / 1000
		if effVolumeL <= 0 {
			return nil, fmt.Errorf("%w: chamber %s (%g mL, %g g)", ErrInvalidVolume, s.ChamberID, s.VolumeML, s.MassG)
		}

		absolute := -s.Slope * effVolumeL * 3600

		massKg := s.MassG / 1000

		var specific float64
		if massKg > 0 {
			specific = absolute / massKg
		}

		out = append(out, MR{
			ChamberID:    s.ChamberID,
			Individual:   s.Individual,
			Phase:        s.Phase,
			TemperatureC: s.TemperatureC,
			Absolute:     absolute,
			MassSpecific: specific,
			Unit:         s.Unit,
		})
	}

	return out, nil
}
