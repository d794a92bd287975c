package rate

import (
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/algo-resp/resp/core"
)

func TestCalculate(t *testing.T) {
	slopes := []core.Slope{{
		ChamberID:    "CH1",
		Individual:   "perch1",
		Phase:        "M1",
		MassG:        12.5,
		VolumeML:     500,
		TemperatureC: 25,
		Slope:        -0.001,
		Unit:         "mg/L",
	}}

	out, err := DefaultCalculator().Calculate(slopes)
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}

	if len(out) != 1 {
		t.Fatalf("records: got %d, want 1", len(out))
	}

	mr := out[0]

	// Effective volume (500 - 12.5) mL = 0.4875 L; 0.001 mg/L/s consumed
	// over an hour gives 1.755 mg/h.
	if math.Abs(mr.Absolute-1.755) > 1e-9 {
		t.Errorf("absolute: got %g, want 1.755", mr.Absolute)
	}

	if math.Abs(mr.MassSpecific-140.4) > 1e-9 {
		t.Errorf("mass-specific: got %g, want 140.4", mr.MassSpecific)
	}

	if mr.ChamberID != "CH1" || mr.Phase != "M1" || mr.Unit != "mg/L" {
		t.Errorf("metadata: %+v", mr)
	}
}

func TestCalculate_ConsumptionIsPositive(t *testing.T) {
	slopes := []core.Slope{{ChamberID: "CH1", MassG: 10, VolumeML: 400, Slope: -0.002}}

	out, err := DefaultCalculator().Calculate(slopes)
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}

	if out[0].Absolute <= 0 {
		t.Errorf("absolute rate for depletion: got %g, want > 0", out[0].Absolute)
	}
}

func TestCalculate_BodyDensity(t *testing.T) {
	slopes := []core.Slope{{ChamberID: "CH1", MassG: 50, VolumeML: 500, Slope: -0.001}}

	// Higher density means less displaced volume and more water.
	dense := &Calculator{BodyDensity: 2.0}

	out, err := dense.Calculate(slopes)
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}

	// (500 - 50/2) mL = 0.475 L of water.
	want := 0.001 * 0.475 * 3600
	if math.Abs(out[0].Absolute-want) > 1e-9 {
		t.Errorf("absolute: got %g, want %g", out[0].Absolute, want)
	}
}

func TestCalculate_Errors(t *testing.T) {
	slopes := []core.Slope{{ChamberID: "CH1", MassG: 10, VolumeML: 400, Slope: -0.001}}

	bad := &Calculator{BodyDensity: 0}
	if _, err := bad.Calculate(slopes); !errors.Is(err, ErrInvalidDensity) {
		t.Errorf("zero density: got %v", err)
	}

	// Animal bigger than the chamber.
	overfull := []core.Slope{{ChamberID: "CH1", MassG: 600, VolumeML: 500, Slope: -0.001}}
	if _, err := DefaultCalculator().Calculate(overfull); !errors.Is(err, ErrInvalidVolume) {
		t.Errorf("negative volume: got %v", err)
	}
}
