package core

import "fmt"

// WarningCode classifies a data-quality finding that does not stop the
// pipeline.
type WarningCode int

const (
	// WarnPositiveBackground flags samples whose estimated background rate
	// is positive. Background respiration consumes oxygen, so a physically
	// plausible rate is <= 0.
	WarnPositiveBackground WarningCode = iota

	// WarnNoPhasesRetained flags a chamber whose every phase was dropped by
	// the R-squared quality filter.
	WarnNoPhasesRetained
)

// Warning is a non-fatal data-quality finding attached to a result.
type Warning struct {
	Code      WarningCode
	ChamberID string
	Phase     string // empty when the finding is chamber-wide
	Message   string
}

func (w Warning) String() string {
	if w.Phase == "" {
		return fmt.Sprintf("%s: %s", w.ChamberID, w.Message)
	}

	return fmt.Sprintf("%s %s: %s", w.ChamberID, w.Phase, w.Message)
}
