// Package units converts dissolved-oxygen concentrations between the units
// respirometry loggers report. The analysis core treats the unit as an
// opaque tag; conversion happens before or after the pipeline.
package units

import (
	"errors"
	"fmt"
	"strings"
)

// Errors returned by conversion functions.
var ErrUnknownUnit = errors.New("units: unknown DO unit")

// Unit identifies a dissolved-oxygen concentration unit.
type Unit int

const (
	MgPerL Unit = iota // milligrams O2 per litre
	UgPerL             // micrograms O2 per litre
	MmolPerL           // millimoles O2 per litre
	UmolPerL           // micromoles O2 per litre
	MlPerL             // millilitres O2 per litre (STP)
)

// molarMassO2 is the molar mass of O2 in g/mol.
const molarMassO2 = 31.9988

// molarVolumeO2 is the molar volume of O2 at STP in L/mol.
const molarVolumeO2 = 22.392

var unitNames = map[Unit]string{
	MgPerL:   "mg/L",
	UgPerL:   "ug/L",
	MmolPerL: "mmol/L",
	UmolPerL: "umol/L",
	MlPerL:   "mL/L",
}

func (u Unit) String() string {
	if name, ok := unitNames[u]; ok {
		return name
	}

	return fmt.Sprintf("units.Unit(%d)", int(u))
}

// Parse resolves a unit name. Matching is case-insensitive and accepts the
// micro sign for the microgram and micromole forms.
func Parse(name string) (Unit, error) {
	normalized := strings.ToLower(strings.TrimSpace(name))
	normalized = strings.ReplaceAll(normalized, "µ", "u")

	for u, n := range unitNames {
		if strings.ToLower(n) == normalized {
			return u, nil
		}
	}

	return 0, fmt.Errorf("%w: %q", ErrUnknownUnit, name)
}

// toMgPerL holds the factor converting one unit to mg/L.
var toMgPerL = map[Unit]float64{
	MgPerL:   1,
	UgPerL:   1e-3,
	MmolPerL: molarMassO2,
	UmolPerL: molarMassO2 * 1e-3,
	MlPerL:   molarMassO2 / molarVolumeO2,
}

// Convert rescales a DO concentration between units.
func Convert(value float64, from, to Unit) (float64, error) {
	f, ok := toMgPerL[from]
	if !ok {
		return 0, fmt.Errorf("%w: %v", ErrUnknownUnit, from)
	}

	t, ok := toMgPerL[to]
	if !ok {
		return 0, fmt.Errorf("%w: %v", ErrUnknownUnit, to)
	}

	return value * f / t, nil
}

// ConvertSlice converts every element in place.
func ConvertSlice(values []float64, from, to Unit) error {
	f, ok := toMgPerL[from]
	if !ok {
		return fmt.Errorf("%w: %v", ErrUnknownUnit, from)
	}

	t, ok := toMgPerL[to]
	if !ok {
		return fmt.Errorf("%w: %v", ErrUnknownUnit, to)
	}

	factor := f / t
	for i := range values {
		values[i] *= factor
	}

	return nil
}
