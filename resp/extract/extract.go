package extract

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/cwbudde/algo-resp/resp/core"
	"github.com/cwbudde/algo-resp/stats/desc"
	"github.com/cwbudde/algo-resp/stats/mixture"
	"github.com/cwbudde/algo-resp/stats/ols"
)

// Errors returned by the extractor.
var (
	ErrUnknownMethod     = errors.New("extract: unknown slope selection method")
	ErrInvalidThreshold  = errors.New("extract: r2 threshold must be within [0, 1]")
	ErrInvalidSlopeCount = errors.New("extract: slope count must be >= 1")
	ErrInvalidPercent    = errors.New("extract: percent must be within (0, 100]")
	ErrInvalidQuantile   = errors.New("extract: quantile p must be within (0, 1)")
	ErrInvalidComponents = errors.New("extract: mixture components must be >= 1")
	ErrNoMeasurements    = errors.New("extract: empty measurement table")
	ErrTooFewSlopes      = errors.New("extract: not enough slopes for selection method")
)

// Method selects how the filtered per-phase slopes of a chamber reduce to
// the representative value(s) the caller wants.
type Method int

const (
	// MethodAll returns every filtered slope sorted ascending.
	MethodAll Method = iota

	// MethodMin returns the NSlope records with the highest (least
	// negative, lowest magnitude) corrected slope.
	MethodMin

	// MethodMax returns the NSlope records with the lowest corrected slope.
	MethodMax

	// MethodLowerTail keeps phases whose absolute corrected slope is at or
	// below the Percent-th percentile of the absolute slopes.
	MethodLowerTail

	// MethodUpperTail keeps phases whose signed corrected slope is at or
	// below the Percent-th percentile of the signed slopes. The signed
	// threshold is deliberate: it mirrors the lower.tail/upper.tail
	// asymmetry of the established R analysis this package reproduces.
	MethodUpperTail

	// MethodMLND fits a Gaussian mixture to the corrected slopes and
	// reports the mean of the highest-index component holding at least 10%
	// of the samples. With components sorted by ascending mean, that is
	// the least-negative cluster: the subpopulation of lowest metabolic
	// activity.
	MethodMLND

	// MethodQuantile returns the single record whose corrected slope is
	// closest to the negated QuantileP-quantile of the absolute slopes.
	MethodQuantile

	// MethodLow10 averages the ten lowest-magnitude corrected slopes into
	// one synthetic record.
	MethodLow10

	// MethodLow10Percent discards the five lowest-magnitude slopes as
	// outliers, then averages the lowest 10% (rounded) of the remainder.
	MethodLow10Percent
)

var methodNames = map[Method]string{
	MethodAll:          "all",
	MethodMin:          "min",
	MethodMax:          "max",
	MethodLowerTail:    "lower.tail",
	MethodUpperTail:    "upper.tail",
	MethodMLND:         "calcSMR.mlnd",
	MethodQuantile:     "calcSMR.quant",
	MethodLow10:        "calcSMR.low10",
	MethodLow10Percent: "calcSMR.low10pc",
}

func (m Method) String() string {
	if name, ok := methodNames[m]; ok {
		return name
	}

	return fmt.Sprintf("extract.Method(%d)", int(m))
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

// Extractor fits per-phase regressions on a corrected measurement table and
// reduces them to representative slopes per chamber.
type Extractor struct {
	Method Method

	// R2Min drops (chamber, phase) fits below this coefficient of
	// determination before any reduction.
	R2Min float64

	// LengthCutoff restricts each fit to samples with elapsed second
	// <= cutoff. Zero or negative means unbounded.
	LengthCutoff int

	NSlope            int     // min/max: number of records to keep
	Percent           float64 // lower.tail/upper.tail: percentile threshold
	QuantileP         float64 // calcSMR.quant: quantile of absolute slopes
	MixtureComponents int     // calcSMR.mlnd: candidate component cap

	// TreatMissingAsZero reproduces the legacy behavior of zero-filling
	// NaN DO and temperature readings before fitting. Off by default:
	// missing samples are dropped from the fit instead, since a sensor
	// dropout is not a zero oxygen reading.
	TreatMissingAsZero bool
}

// DefaultExtractor returns an extractor with the conventional defaults for
// the given method.
func DefaultExtractor(method Method) *Extractor {
	return &Extractor{
		Method:            method,
		R2Min:             0.95,
		NSlope:            3,
		Percent:           10,
		QuantileP:         0.2,
		MixtureComponents: 4,
	}
}

// Result is the reduced slope table plus per-chamber mixture diagnostics
// (calcSMR.mlnd only) and data-quality warnings.
type Result struct {
	Slopes []core.Slope

	// Mixtures exposes the full fitted mixture per chamber so the
	// component-selection rule can be audited, keyed by chamber id.
	Mixtures map[string]mixture.Model

	Warnings []core.Warning
}

// Validate checks the extractor configuration.
func (e *Extractor) Validate() error {
	if !e.Method.valid() {
		return fmt.Errorf("%w: %d", ErrUnknownMethod, int(e.Method))
	}

	if e.R2Min < 0 || e.R2Min > 1 {
		return fmt.Errorf("%w: %g", ErrInvalidThreshold, e.R2Min)
	}

	switch e.Method {
	case MethodMin, MethodMax:
		if e.NSlope < 1 {
			return fmt.Errorf("%w: %d", ErrInvalidSlopeCount, e.NSlope)
		}
	case MethodLowerTail, MethodUpperTail:
		if e.Percent <= 0 || e.Percent > 100 {
			return fmt.Errorf("%w: %g", ErrInvalidPercent, e.Percent)
		}
	case MethodQuantile:
		if e.QuantileP <= 0 || e.QuantileP >= 1 {
			return fmt.Errorf("%w: %g", ErrInvalidQuantile, e.QuantileP)
		}
	case MethodMLND:
		if e.MixtureComponents < 1 {
			return fmt.Errorf("%w: %d", ErrInvalidComponents, e.MixtureComponents)
		}
	}

	return nil
}

// phaseGroup collects the samples of one (chamber, phase) combination.
type phaseGroup struct {
	chamberID string
	phase     string
	records   []core.Measurement
}

// Extract runs the three stages: per-(chamber, phase) regression, quality
// filtering, and per-chamber reduction. Chambers appear in the output in
// the order they first appear in the input.
func (e *Extractor) Extract(measurements []core.Measurement) (*Result, error) {
	if err := e.Validate(); err != nil {
		return nil, err
	}

	if len(measurements) == 0 {
		return nil, ErrNoMeasurements
	}

	groups, chamberOrder := groupByChamberPhase(measurements)

	// Step A: fit every group.
	fitted := make(map[string][]core.Slope, len(chamberOrder))

	for _, g := range groups {
		rec, err := e.fitGroup(g)
		if err != nil {
			return nil, err
		}

		fitted[g.chamberID] = append(fitted[g.chamberID], rec)
	}

	result := &Result{}

	for _, id := range chamberOrder {
		slopes := fitted[id]

		// Step B: quality filter.
		kept := slopes[:0:0]
		for _, s := range slopes {
			if s.R2 >= e.R2Min {
				kept = append(kept, s)
			}
		}

		if len(kept) == 0 {
			result.Warnings = append(result.Warnings, core.Warning{
				Code:      core.WarnNoPhasesRetained,
				ChamberID: id,
				Message:   fmt.Sprintf("all %d phases fell below r2 threshold %g", len(slopes), e.R2Min),
			})

			continue
		}

		// Step C: reduction.
		reduced, err := e.reduce(id, kept, result)
		if err != nil {
			return nil, err
		}

		result.Slopes = append(result.Slopes, reduced...)
	}

	return result, nil
}

// groupByChamberPhase splits the long table into (chamber, phase) groups,
// preserving first-seen order of both chambers and phases.
func groupByChamberPhase(measurements []core.Measurement) ([]*phaseGroup, []string) {
	var (
		groups       []*phaseGroup
		chamberOrder []string
	)

	index := make(map[string]*phaseGroup)
	seenChamber := make(map[string]bool)

	for _, rec := range measurements {
		key := rec.ChamberID + "\x00" + rec.Phase

		g, ok := index[key]
		if !ok {
			g = &phaseGroup{chamberID: rec.ChamberID, phase: rec.Phase}
			index[key] = g
			groups = append(groups, g)
		}

		g.records = append(g.records, rec)

		if !seenChamber[rec.ChamberID] {
			seenChamber[rec.ChamberID] = true
			chamberOrder = append(chamberOrder, rec.ChamberID)
		}
	}

	return groups, chamberOrder
}

// fitGroup runs the raw and corrected regressions for one group and
// assembles its slope record.
func (e *Extractor) fitGroup(g *phaseGroup) (core.Slope, error) {
	var (
		x     []float64
		raw   []float64
		corr  []float64
		temps []float64
	)

	for _, rec := range g.records {
		if e.LengthCutoff > 0 && rec.PhaseSecond > e.LengthCutoff {
			continue
		}

		doRaw, doCorr, temp := rec.DO, rec.DOCorrected, rec.TemperatureC

		if hasNaN(doRaw, doCorr, temp) {
			if !e.TreatMissingAsZero {
				continue
			}

			doRaw = zeroIfNaN(doRaw)
			doCorr = zeroIfNaN(doCorr)
			temp = zeroIfNaN(temp)
		}

		x = append(x, float64(rec.PhaseSecond))
		raw = append(raw, doRaw)
		corr = append(corr, doCorr)
		temps = append(temps, temp)
	}

	rawFit, err := ols.Regress(x, raw)
	if err != nil {
		return core.Slope{}, fmt.Errorf("extract: chamber %s phase %s: %w", g.chamberID, g.phase, err)
	}

	corrFit, err := ols.Regress(x, corr)
	if err != nil {
		return core.Slope{}, fmt.Errorf("extract: chamber %s phase %s: %w", g.chamberID, g.phase, err)
	}

	first := g.records[0]

	return core.Slope{
		ChamberID:    first.ChamberID,
		Individual:   first.Individual,
		MassG:        first.MassG,
		VolumeML:     first.VolumeML,
		PhaseEnd:     first.PhaseEnd,
		Phase:        first.Phase,
		TemperatureC: desc.Mean(temps),
		SlopeWithBG:  rawFit.Slope,
		Slope:        corrFit.Slope,
		SE:           corrFit.SE,
		R2:           corrFit.R2,
		Unit:         first.Unit,
	}, nil
}

func hasNaN(values ...float64) bool {
	for _, v := range values {
		if math.IsNaN(v) {
			return true
		}
	}

	return false
}

func zeroIfNaN(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}

	return v
}
