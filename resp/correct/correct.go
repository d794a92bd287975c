package correct

import (
	"errors"
	"fmt"
	"strings"

	"github.com/cwbudde/algo-resp/resp/core"
)

// Errors returned by the corrector.
var (
	ErrUnknownMethod    = errors.New("correct: unknown background correction method")
	ErrUnknownChamber   = errors.New("correct: empty chamber id does not name a configured chamber")
	ErrMissingReference = errors.New("correct: method requires a reference test that was not supplied")
	ErrChamberMismatch  = errors.New("correct: chamber metadata does not match the measurement layout")
	ErrZeroPreRate      = errors.New("correct: exponential interpolation is undefined for a zero pre-test rate")
)

// Method selects how the background respiration rate is estimated.
type Method int

const (
	// MethodPreTest regresses the pre-test delta DO through the origin and
	// predicts at each sample's elapsed second.
	MethodPreTest Method = iota

	// MethodPostTest is MethodPreTest on the post-test data.
	MethodPostTest

	// MethodAverage averages pre-test and post-test delta DO index-wise
	// before the through-origin regression.
	MethodAverage

	// MethodLinear interpolates the regression coefficient linearly from
	// the pre-test estimate toward the post-test estimate across phases.
	MethodLinear

	// MethodExponential interpolates the coefficient geometrically across
	// phases.
	MethodExponential

	// MethodParallel broadcasts one designated empty chamber's depletion
	// curve as the shared background estimate for every chamber.
	MethodParallel
)

var methodNames = map[Method]string{
	MethodPreTest:     "pre.test",
	MethodPostTest:    "post.test",
	MethodAverage:     "average",
	MethodLinear:      "linear",
	MethodExponential: "exponential",
	MethodParallel:    "parallel",
}

func (m Method) String() string {
	if name, ok := methodNames[m]; ok {
		return name
	}

	return fmt.Sprintf("correct.Method(%d)", int(m))
}

// ParseMethod resolves a method name. Names are matched case-insensitively.
func ParseMethod(name string) (Method, error) {
	lower := strings.ToLower(strings.TrimSpace(name))
	for m, n := range methodNames {
		if n == lower {
			return m, nil
		}
	}

	return 0, fmt.Errorf("%w: %q", ErrUnknownMethod, name)
}

func (m Method) valid() bool {
	_, ok := methodNames[m]

	return ok
}

// needsPre reports whether the method consumes the pre-test table.
func (m Method) needsPre() bool {
	switch m {
	case MethodPreTest, MethodAverage, MethodLinear, MethodExponential:
		return true
	}

	return false
}

// needsPost reports whether the method consumes the post-test table.
func (m Method) needsPost() bool {
	switch m {
	case MethodPostTest, MethodAverage, MethodLinear, MethodExponential:
		return true
	}

	return false
}

// Corrector subtracts an estimated background respiration rate from raw
// DO measurements, chamber by chamber.
type Corrector struct {
	Chambers     []core.Chamber        // static metadata, indexed by chamber position
	Pre          *core.ReferenceSeries // pre-test, required by pre.test/average/linear/exponential
	Post         *core.ReferenceSeries // post-test, required by post.test/average/linear/exponential
	Method       Method
	EmptyChamber string // required by parallel; must name a configured chamber
}

// Result is the corrected long-form measurement table plus any data-quality
// warnings gathered along the way.
type Result struct {
	Measurements []core.Measurement
	Warnings     []core.Warning
}

// Validate checks the corrector configuration independent of any
// measurement series.
func (c *Corrector) Validate() error {
	if !c.Method.valid() {
		return fmt.Errorf("%w: %d", ErrUnknownMethod, int(c.Method))
	}

	n := len(c.Chambers)
	if n < 1 || n > core.MaxChambers {
		return fmt.Errorf("%w: %d", core.ErrChamberCount, n)
	}

	if c.Method.needsPre() && c.Pre == nil {
		return fmt.Errorf("%w: %s needs a pre-test", ErrMissingReference, c.Method)
	}

	if c.Method.needsPost() && c.Post == nil {
		return fmt.Errorf("%w: %s needs a post-test", ErrMissingReference, c.Method)
	}

	if c.Method == MethodParallel {
		if c.chamberPos(c.EmptyChamber) < 0 {
			return fmt.Errorf("%w: %q", ErrUnknownChamber, c.EmptyChamber)
		}
	}

	return nil
}

// chamberPos returns the position of the chamber with the given id, or -1.
func (c *Corrector) chamberPos(id string) int {
	for i := range c.Chambers {
		if c.Chambers[i].ID == id {
			return i
		}
	}

	return -1
}

// Correct reshapes the wide series into per-chamber long form, estimates a
// background rate for every sample according to the configured method, and
// returns the corrected table. The output is chamber-major: all rows of the
// first configured chamber, then the second, and so on.
func (c *Corrector) Correct(series *core.Series) (*Result, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	if err := series.Validate(); err != nil {
		return nil, err
	}

	n := series.Chambers()
	if n != len(c.Chambers) {
		return nil, fmt.Errorf("%w: %d chambers configured, %d columns", ErrChamberMismatch, len(c.Chambers), n)
	}

	if c.Method.needsPre() && c.Pre.Chambers() != n {
		return nil, fmt.Errorf("%w: pre-test has %d chambers, measurements %d", ErrChamberMismatch, c.Pre.Chambers(), n)
	}

	if c.Method.needsPost() && c.Post.Chambers() != n {
		return nil, fmt.Errorf("%w: post-test has %d chambers, measurements %d", ErrChamberMismatch, c.Post.Chambers(), n)
	}

	runs, err := phaseRuns(series.Phase)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Measurements: make([]core.Measurement, 0, n*series.Rows()),
	}

	for pos := 0; pos < n; pos++ {
		records := reshape(series, runs, pos, c.Chambers[pos])

		background, err := c.background(series, runs, pos, records)
		if err != nil {
			return nil, err
		}

		positive := 0

		for i := range records {
			records[i].Background = background[i]
			records[i].DOCorrected = records[i].DO - background[i]

			if background[i] > 0 {
				positive++
			}
		}

		if positive > 0 {
			result.Warnings = append(result.Warnings, core.Warning{
				Code:      core.WarnPositiveBackground,
				ChamberID: c.Chambers[pos].ID,
				Message:   fmt.Sprintf("background rate positive for %d of %d samples", positive, len(records)),
			})
		}

		result.Measurements = append(result.Measurements, records...)
	}

	return result, nil
}

// phaseRun is one contiguous block of rows sharing a phase label.
type phaseRun struct {
	label string
	index int // 1-based ordinal embedded in the label
	start int // first row (inclusive)
	end   int // last row (exclusive)
}

// phaseRuns splits the row sequence into contiguous runs of equal labels.
func phaseRuns(phase []string) ([]phaseRun, error) {
	var runs []phaseRun

	for row := 0; row < len(phase); {
		label := phase[row]

		idx, err := core.PhaseIndex(label)
		if err != nil {
			return nil, err
		}

		end := row + 1
		for end < len(phase) && phase[end] == label {
			end++
		}

		runs = append(runs, phaseRun{label: label, index: idx, start: row, end: end})
		row = end
	}

	return runs, nil
}

// distinctPhases counts the distinct phase labels across the runs.
func distinctPhases(runs []phaseRun) int {
	seen := make(map[string]struct{}, len(runs))
	for _, r := range runs {
		seen[r.label] = struct{}{}
	}

	return len(seen)
}

// reshape turns one chamber's wide columns into a long record stream,
// deriving elapsed seconds, phase boundaries, and the per-phase initial DO.
// Wide columns follow configuration order, so pos identifies both the
// chamber metadata and its column.
func reshape(series *core.Series, runs []phaseRun, pos int, chamber core.Chamber) []core.Measurement {
	records := make([]core.Measurement, 0, series.Rows())

	for _, run := range runs {
		initDO := series.DO[pos][run.start]
		phaseStart := series.Time[run.start]
		phaseEnd := series.Time[run.end-1]

		for row := run.start; row < run.end; row++ {
			records = append(records, core.Measurement{
				ChamberID:    chamber.ID,
				Individual:   chamber.Individual,
				MassG:        chamber.MassG,
				VolumeML:     chamber.VolumeML,
				Time:         series.Time[row],
				Phase:        run.label,
				PhaseSecond:  row - run.start + 1,
				PhaseStart:   phaseStart,
				PhaseEnd:     phaseEnd,
				TemperatureC: series.Temp[pos][row],
				DO:           series.DO[pos][row],
				InitDO:       initDO,
				Unit:         chamber.Unit,
			})
		}
	}

	return records
}
