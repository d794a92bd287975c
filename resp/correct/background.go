package correct

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-resp/resp/core"
	"github.com/cwbudde/algo-resp/stats/ols"
)

// background computes the per-sample background rate for the chamber at the
// given position. records is the reshaped long stream for that chamber; the
// returned slice is aligned with it.
func (c *Corrector) background(series *core.Series, runs []phaseRun, pos int, records []core.Measurement) ([]float64, error) {
	id := c.Chambers[pos].ID

	switch c.Method {
	case MethodPreTest:
		coef, err := referenceRate(c.Pre, pos)
		if err != nil {
			return nil, fmt.Errorf("correct: chamber %s pre-test fit: %w", id, err)
		}

		return predictPerSecond(records, coef), nil

	case MethodPostTest:
		coef, err := referenceRate(c.Post, pos)
		if err != nil {
			return nil, fmt.Errorf("correct: chamber %s post-test fit: %w", id, err)
		}

		return predictPerSecond(records, coef), nil

	case MethodAverage:
		coef, err := averagedRate(c.Pre, c.Post, pos)
		if err != nil {
			return nil, fmt.Errorf("correct: chamber %s averaged reference fit: %w", id, err)
		}

		return predictPerSecond(records, coef), nil

	case MethodLinear, MethodExponential:
		return c.interpolated(runs, pos, records)

	case MethodParallel:
		return c.parallel(series, runs), nil
	}

	return nil, fmt.Errorf("%w: %d", ErrUnknownMethod, int(c.Method))
}

// referenceRate fits delta DO against elapsed seconds through the origin
// for one chamber column of a reference test.
func referenceRate(ref *core.ReferenceSeries, pos int) (float64, error) {
	x := secondsAsFloat(ref.Second)

	return ols.RegressOrigin(x, ref.DeltaDO[pos])
}

// averagedRate fits the through-origin regression on the index-wise average
// of pre-test and post-test delta DO. When the tests differ in length the
// overlapping prefix is used.
func averagedRate(pre, post *core.ReferenceSeries, pos int) (float64, error) {
	m := len(pre.Second)
	if len(post.Second) < m {
		m = len(post.Second)
	}

	x := secondsAsFloat(pre.Second[:m])
	y := make([]float64, m)

	for i := 0; i < m; i++ {
		y[i] = (pre.DeltaDO[pos][i] + post.DeltaDO[pos][i]) / 2
	}

	return ols.RegressOrigin(x, y)
}

// interpolated drifts the background coefficient from the pre-test estimate
// toward the post-test estimate across phases. For phase ordinal i out of M
// distinct phases:
//
//	linear:      c_i = (1 - i/(M+1))*c_pre + (i/(M+1))*c_post
//	exponential: c_i = c_pre * r^i,  r = sign(q)*|q|^(1/(M+1)),  q = c_post/c_pre
func (c *Corrector) interpolated(runs []phaseRun, pos int, records []core.Measurement) ([]float64, error) {
	id := c.Chambers[pos].ID

	coefPre, err := referenceRate(c.Pre, pos)
	if err != nil {
		return nil, fmt.Errorf("correct: chamber %s pre-test fit: %w", id, err)
	}

	coefPost, err := referenceRate(c.Post, pos)
	if err != nil {
		return nil, fmt.Errorf("correct: chamber %s post-test fit: %w", id, err)
	}

	m := float64(distinctPhases(runs) + 1)

	var ratioRoot float64

	if c.Method == MethodExponential {
		if coefPre == 0 {
			return nil, fmt.Errorf("%w: chamber %s", ErrZeroPreRate, id)
		}

		ratio := coefPost / coefPre
		ratioRoot = math.Copysign(math.Pow(math.Abs(ratio), 1/m), ratio)
	}

	// The reshape step emits runs in order, so records align row-for-row
	// with the concatenated runs.
	background := make([]float64, len(records))
	row := 0

	for _, run := range runs {
		w := float64(run.index) / m

		var coef float64
		if c.Method == MethodLinear {
			coef = (1-w)*coefPre + w*coefPost
		} else {
			coef = coefPre * math.Pow(ratioRoot, float64(run.index))
		}

		for r := run.start; r < run.end; r++ {
			background[row] = coef * float64(records[row].PhaseSecond)
			row++
		}
	}

	return background, nil
}

// parallel broadcasts the designated empty chamber's depletion relative to
// its per-phase initial DO. Every chamber, the empty one included, receives
// the same estimate at each row index.
func (c *Corrector) parallel(series *core.Series, runs []phaseRun) []float64 {
	empty := c.chamberPos(c.EmptyChamber)
	background := make([]float64, 0, series.Rows())

	for _, run := range runs {
		initDO := series.DO[empty][run.start]
		for row := run.start; row < run.end; row++ {
			background = append(background, series.DO[empty][row]-initDO)
		}
	}

	return background
}

// predictPerSecond evaluates a per-second rate at each record's elapsed
// second within its phase.
func predictPerSecond(records []core.Measurement, coef float64) []float64 {
	out := make([]float64, len(records))
	for i, rec := range records {
		out[i] = coef * float64(rec.PhaseSecond)
	}

	return out
}

func secondsAsFloat(seconds []int) []float64 {
	out := make([]float64, len(seconds))
	for i, s := range seconds {
		out[i] = float64(s)
	}

	return out
}
