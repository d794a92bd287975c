package extract

import (
	"fmt"
	"math"
	"sort"

	"github.com/cwbudde/algo-resp/resp/core"
	"github.com/cwbudde/algo-resp/stats/desc"
	"github.com/cwbudde/algo-resp/stats/mixture"
)

// reduce applies the configured selection method to one chamber's filtered
// slope records.
func (e *Extractor) reduce(chamberID string, slopes []core.Slope, result *Result) ([]core.Slope, error) {
	switch e.Method {
	case MethodAll:
		out := sortedAsc(slopes)

		return out, nil

	case MethodMin:
		out := sortedDesc(slopes)

		return head(out, e.NSlope), nil

	case MethodMax:
		out := sortedAsc(slopes)

		return head(out, e.NSlope), nil

	case MethodLowerTail:
		threshold := desc.Percentile(absSlopes(slopes), e.Percent)

		var kept []core.Slope
		for _, s := range slopes {
			if math.Abs(s.Slope) <= threshold {
				kept = append(kept, s)
			}
		}

		return kept, nil

	case MethodUpperTail:
		// Signed values here, absolute in lower.tail: the asymmetry is
		// intentional and preserved.
		threshold := desc.Percentile(slopeValues(slopes), e.Percent)

		var kept []core.Slope
		for _, s := range slopes {
			if s.Slope <= threshold {
				kept = append(kept, s)
			}
		}

		return kept, nil

	case MethodMLND:
		return e.reduceMLND(chamberID, slopes, result)

	case MethodQuantile:
		target := -desc.Quantile(absSlopes(slopes), e.QuantileP)

		best := 0
		for i := 1; i < len(slopes); i++ {
			if math.Abs(slopes[i].Slope-target) < math.Abs(slopes[best].Slope-target) {
				best = i
			}
		}

		return []core.Slope{slopes[best]}, nil

	case MethodLow10:
		sorted := sortedDesc(slopes)
		members := head(sorted, 10)

		return []core.Slope{synthesize(members, "LOW10")}, nil

	case MethodLow10Percent:
		if len(slopes) <= 5 {
			return nil, fmt.Errorf("%w: chamber %s has %d slopes, calcSMR.low10pc needs more than 5", ErrTooFewSlopes, chamberID, len(slopes))
		}

		// Drop the five lowest-magnitude slopes as outliers, then average
		// the lowest 10% (rounded, at least one) of the remainder.
		sorted := sortedDesc(slopes)
		remainder := sorted[5:]

		k := int(math.Round(0.10 * float64(len(remainder))))
		if k < 1 {
			k = 1
		}

		return []core.Slope{synthesize(remainder[:k], "LOW10PC")}, nil
	}

	return nil, fmt.Errorf("%w: %d", ErrUnknownMethod, int(e.Method))
}

// reduceMLND fits the mixture model, selects the highest-index component
// with at least 10% of the samples, and reports its mean as one synthetic
// record. The full model is stored on the result for audit.
func (e *Extractor) reduceMLND(chamberID string, slopes []core.Slope, result *Result) ([]core.Slope, error) {
	values := slopeValues(slopes)

	cfg := mixture.DefaultConfig()
	cfg.MaxComponents = e.MixtureComponents

	model, err := mixture.Fit(values, cfg)
	if err != nil {
		return nil, fmt.Errorf("extract: chamber %s: %w", chamberID, err)
	}

	if result.Mixtures == nil {
		result.Mixtures = make(map[string]mixture.Model)
	}

	result.Mixtures[chamberID] = model

	support := 0.1 * float64(len(values))
	chosen := -1

	for j, comp := range model.Components {
		if float64(comp.N) >= support {
			chosen = j
		}
	}

	// The support threshold cannot disqualify every component for sane
	// component counts, but guard by falling back to the best-supported one.
	if chosen < 0 {
		for j, comp := range model.Components {
			if chosen < 0 || comp.N > model.Components[chosen].N {
				chosen = j
			}
		}
	}

	var members []core.Slope
	for i, j := range model.Assignments {
		if j == chosen {
			members = append(members, slopes[i])
		}
	}

	synth := synthesize(members, "MLND")
	synth.Slope = model.Components[chosen].Mean

	return []core.Slope{synth}, nil
}

// synthesize builds one record representing the members: identity fields
// from the first member, statistics averaged, phase label replaced by the
// method tag, phase end set to the latest member's.
func synthesize(members []core.Slope, tag string) core.Slope {
	out := members[0]
	out.Phase = tag

	var bg, slope, se, r2, temp float64

	for _, m := range members {
		bg += m.SlopeWithBG
		slope += m.Slope
		se += m.SE
		r2 += m.R2
		temp += m.TemperatureC

		if m.PhaseEnd.After(out.PhaseEnd) {
			out.PhaseEnd = m.PhaseEnd
		}
	}

	n := float64(len(members))
	out.SlopeWithBG = bg / n
	out.Slope = slope / n
	out.SE = se / n
	out.R2 = r2 / n
	out.TemperatureC = temp / n

	return out
}

// sortedAsc returns a copy sorted ascending by corrected slope.
func sortedAsc(slopes []core.Slope) []core.Slope {
	out := make([]core.Slope, len(slopes))
	copy(out, slopes)

	sort.SliceStable(out, func(a, b int) bool {
		return out[a].Slope < out[b].Slope
	})

	return out
}

// sortedDesc returns a copy sorted descending by corrected slope.
func sortedDesc(slopes []core.Slope) []core.Slope {
	out := make([]core.Slope, len(slopes))
	copy(out, slopes)

	sort.SliceStable(out, func(a, b int) bool {
		return out[a].Slope > out[b].Slope
	})

	return out
}

func head(slopes []core.Slope, n int) []core.Slope {
	if n > len(slopes) {
		n = len(slopes)
	}

	return slopes[:n]
}

func slopeValues(slopes []core.Slope) []float64 {
	out := make([]float64, len(slopes))
	for i, s := range slopes {
		out[i] = s.Slope
	}

	return out
}

func absSlopes(slopes []core.Slope) []float64 {
	out := make([]float64, len(slopes))
	for i, s := range slopes {
		out[i] = math.Abs(s.Slope)
	}

	return out
}
