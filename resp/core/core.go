package core

import (
	"errors"
	"fmt"
	"strconv"
	"time"
)

// MaxChambers is the largest number of measurement chambers a single
// experiment can carry. Counts above this are rejected during validation.
const MaxChambers = 8

// Errors returned by core types.
var (
	ErrChamberCount  = errors.New("core: unsupported chamber count")
	ErrMalformedData = errors.New("core: column lengths do not match")
	ErrPhaseLabel    = errors.New("core: phase label has no embedded index")
)

// Chamber holds the static metadata of one measurement chamber.
type Chamber struct {
	ID         string  // chamber identifier, e.g. "CH1"
	Individual string  // identifier of the animal inside the chamber
	MassG      float64 // body mass in grams
	VolumeML   float64 // chamber volume in millilitres
	Unit       string  // DO concentration unit tag, carried through unmodified
}

// Measurement is one long-form observation: one chamber at one second of
// elapsed time within one measurement phase.
type Measurement struct {
	ChamberID    string
	Individual   string
	MassG        float64
	VolumeML     float64
	Time         time.Time
	Phase        string // phase label, e.g. "M3"
	PhaseSecond  int    // 1-based elapsed second within the phase
	PhaseStart   time.Time
	PhaseEnd     time.Time
	TemperatureC float64
	DO           float64 // raw DO concentration
	InitDO       float64 // DO at the first sample of the phase
	Background   float64 // estimated background consumption at this sample
	DOCorrected  float64 // DO minus Background
	Unit         string
}

// Slope is one fitted-regression summary for one (chamber, phase) group.
// Reduction methods that synthesize a record (mlnd, low10, low10pc) set
// Phase to a method tag and average the remaining statistics over the
// member records.
type Slope struct {
	ChamberID    string
	Individual   string
	MassG        float64
	VolumeML     float64
	PhaseEnd     time.Time
	Phase        string
	TemperatureC float64 // mean temperature over the fitted samples
	SlopeWithBG  float64 // regression of raw DO vs. time
	Slope        float64 // regression of corrected DO vs. time
	SE           float64 // standard error of the corrected slope
	R2           float64 // coefficient of determination of the corrected fit
	Unit         string
}

// Series is the wide layout a loader produces: one row per second with
// parallel per-chamber temperature and DO columns. Phase carries the phase
// label of each row; elapsed seconds within a phase are derived from
// contiguous runs of equal labels.
type Series struct {
	Time  []time.Time
	Phase []string
	Temp  [][]float64 // Temp[chamber][row]
	DO    [][]float64 // DO[chamber][row]
}

// Chambers returns the number of chamber columns in the series.
func (s *Series) Chambers() int {
	return len(s.DO)
}

// Rows returns the number of samples per chamber.
func (s *Series) Rows() int {
	return len(s.Time)
}

// Validate checks the chamber count bound and column-length consistency.
func (s *Series) Validate() error {
	n := s.Chambers()
	if n < 1 || n > MaxChambers {
		return fmt.Errorf("%w: %d", ErrChamberCount, n)
	}

	if len(s.Temp) != n {
		return fmt.Errorf("%w: %d temperature columns for %d chambers", ErrMalformedData, len(s.Temp), n)
	}

	rows := s.Rows()
	if len(s.Phase) != rows {
		return fmt.Errorf("%w: %d phase labels for %d rows", ErrMalformedData, len(s.Phase), rows)
	}

	for c := 0; c < n; c++ {
		if len(s.DO[c]) != rows || len(s.Temp[c]) != rows {
			return fmt.Errorf("%w: chamber column %d", ErrMalformedData, c+1)
		}
	}

	return nil
}

// ReferenceSeries holds one background-respiration reference test (pre-test
// or post-test) in wide layout. DeltaDO is DO minus the first DO of each
// chamber column, the quantity the background regressions consume.
type ReferenceSeries struct {
	Second  []int // elapsed seconds, 1-based
	Temp    [][]float64
	DO      [][]float64
	DeltaDO [][]float64
}

// Chambers returns the number of chamber columns in the reference test.
func (r *ReferenceSeries) Chambers() int {
	return len(r.DO)
}

// Validate checks the chamber count bound and column-length consistency.
func (r *ReferenceSeries) Validate() error {
	n := r.Chambers()
	if n < 1 || n > MaxChambers {
		return fmt.Errorf("%w: %d", ErrChamberCount, n)
	}

	rows := len(r.Second)
	for c := 0; c < n; c++ {
		if len(r.DO[c]) != rows || len(r.Temp[c]) != rows || len(r.DeltaDO[c]) != rows {
			return fmt.Errorf("%w: reference chamber column %d", ErrMalformedData, c+1)
		}
	}

	return nil
}

// PhaseIndex extracts the 1-based ordinal embedded in a phase label, e.g.
// "M3" yields 3. Any leading non-digit characters are skipped; the label
// must end in a positive integer.
func PhaseIndex(label string) (int, error) {
	start := -1
	for i, r := range label {
		if r >= '0' && r <= '9' {
			start = i
			break
		}
	}

	if start < 0 {
		return 0, fmt.Errorf("%w: %q", ErrPhaseLabel, label)
	}

	idx, err := strconv.Atoi(label[start:])
	if err != nil || idx < 1 {
		return 0, fmt.Errorf("%w: %q", ErrPhaseLabel, label)
	}

	return idx, nil
}
