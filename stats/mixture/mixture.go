// Package mixture fits univariate Gaussian mixture models by
// expectation-maximization with BIC model selection.
//
// The fit is deterministic: components are initialized from contiguous
// chunks of the sorted data rather than random seeds, and the returned
// components are sorted by ascending mean. Callers that select a component
// by index therefore see a stable, reproducible ordering.
package mixture

import (
	"errors"
	"math"
	"sort"
)

// Errors returned by Fit.
var (
	ErrInsufficientData  = errors.New("mixture: need at least two samples")
	ErrInvalidComponents = errors.New("mixture: max components must be >= 1")
	ErrNoConvergence     = errors.New("mixture: no candidate model converged")
)

// Component describes one Gaussian component of a fitted model.
type Component struct {
	Mean     float64
	Variance float64
	Weight   float64
	N        int // samples hard-assigned to this component
}

// Model is a fitted univariate Gaussian mixture.
type Model struct {
	Components    []Component
	Assignments   []int // per-sample component index (hard assignment)
	LogLikelihood float64
	BIC           float64
}

// Config controls the fit.
type Config struct {
	MaxComponents int     // candidate component counts 1..MaxComponents
	MaxIter       int     // EM iteration cap per candidate
	Tol           float64 // relative log-likelihood convergence tolerance
}

// DefaultConfig returns the defaults used by the slope extractor.
func DefaultConfig() Config {
	return Config{
		MaxComponents: 4,
		MaxIter:       200,
		Tol:           1e-8,
	}
}

// Fit fits mixtures with 1..cfg.MaxComponents components and returns the
// candidate with the lowest BIC (-2*logL + params*ln(n), params = 3k-1).
// Candidates that fail to converge or collapse are skipped.
func Fit(data []float64, cfg Config) (Model, error) {
	if cfg.MaxComponents < 1 {
		return Model{}, ErrInvalidComponents
	}

	n := len(data)
	if n < 2 {
		return Model{}, ErrInsufficientData
	}

	if cfg.MaxIter <= 0 {
		cfg.MaxIter = DefaultConfig().MaxIter
	}

	if cfg.Tol <= 0 {
		cfg.Tol = DefaultConfig().Tol
	}

	// Degenerate data: every value identical. A single zero-variance
	// component describes it exactly.
	if allEqual(data) {
		return Model{
			Components:    []Component{{Mean: data[0], Variance: 0, Weight: 1, N: n}},
			Assignments:   make([]int, n),
			LogLikelihood: math.Inf(1),
			BIC:           math.Inf(-1),
		}, nil
	}

	maxK := cfg.MaxComponents
	if maxK > n {
		maxK = n
	}

	best := Model{BIC: math.Inf(1)}
	found := false

	for k := 1; k <= maxK; k++ {
		m, ok := fitK(data, k, cfg.MaxIter, cfg.Tol)
		if !ok {
			continue
		}

		if m.BIC < best.BIC {
			best = m
			found = true
		}
	}

	if !found {
		return Model{}, ErrNoConvergence
	}

	return best, nil
}

func allEqual(data []float64) bool {
	for _, v := range data[1:] {
		if v != data[0] {
			return false
		}
	}

	return true
}

// fitK runs EM for a fixed component count. Returns ok=false when the fit
// produces non-finite parameters or loses a component entirely.
func fitK(data []float64, k, maxIter int, tol float64) (Model, bool) {
	n := len(data)
	nf := float64(n)

	means, variances, weights := initChunks(data, k)

	// Variance floor keeps components from collapsing onto a single point.
	floor := varianceFloor(data)

	resp := make([][]float64, n)
	for i := range resp {
		resp[i] = make([]float64, k)
	}

	prevLL := math.Inf(-1)
	ll := 0.0

	for iter := 0; iter < maxIter; iter++ {
		// E step.
		ll = 0

		for i, x := range data {
			var total float64
			for j := 0; j < k; j++ {
				p := weights[j] * normPDF(x, means[j], variances[j])
				resp[i][j] = p
				total += p
			}

			if total <= 0 || math.IsNaN(total) {
				return Model{}, false
			}

			for j := 0; j < k; j++ {
				resp[i][j] /= total
			}

			ll += math.Log(total)
		}

		// M step.
		for j := 0; j < k; j++ {
			var nj, sum float64
			for i, x := range data {
				nj += resp[i][j]
				sum += resp[i][j] * x
			}

			if nj <= 0 {
				return Model{}, false
			}

			mean := sum / nj

			var ss float64
			for i, x := range data {
				d := x - mean
				ss += resp[i][j] * d * d
			}

			variance := ss / nj
			if variance < floor {
				variance = floor
			}

			means[j] = mean
			variances[j] = variance
			weights[j] = nj / nf
		}

		if math.Abs(ll-prevLL) < tol*(1+math.Abs(ll)) {
			break
		}

		prevLL = ll
	}

	if math.IsNaN(ll) || math.IsInf(ll, 0) {
		return Model{}, false
	}

	// Hard assignments by maximum responsibility.
	assign := make([]int, n)
	counts := make([]int, k)

	for i := range data {
		bestJ := 0
		for j := 1; j < k; j++ {
			if resp[i][j] > resp[i][bestJ] {
				bestJ = j
			}
		}

		assign[i] = bestJ
		counts[bestJ]++
	}

	comps := make([]Component, k)
	for j := 0; j < k; j++ {
		comps[j] = Component{Mean: means[j], Variance: variances[j], Weight: weights[j], N: counts[j]}
	}

	sortByMean(comps, assign)

	params := float64(3*k - 1)

	return Model{
		Components:    comps,
		Assignments:   assign,
		LogLikelihood: ll,
		BIC:           -2*ll + params*math.Log(nf),
	}, true
}

// initChunks seeds k components from contiguous chunks of the sorted data.
func initChunks(data []float64, k int) (means, variances, weights []float64) {
	n := len(data)
	sorted := make([]float64, n)
	copy(sorted, data)
	sort.Float64s(sorted)

	means = make([]float64, k)
	variances = make([]float64, k)
	weights = make([]float64, k)

	floor := varianceFloor(data)

	for j := 0; j < k; j++ {
		lo := j * n / k
		hi := (j + 1) * n / k
		if hi <= lo {
			hi = lo + 1
		}

		chunk := sorted[lo:hi]

		var sum float64
		for _, v := range chunk {
			sum += v
		}

		mean := sum / float64(len(chunk))

		var ss float64
		for _, v := range chunk {
			d := v - mean
			ss += d * d
		}

		variance := ss / float64(len(chunk))
		if variance < floor {
			variance = floor
		}

		means[j] = mean
		variances[j] = variance
		weights[j] = float64(len(chunk)) / float64(n)
	}

	return means, variances, weights
}

// varianceFloor is a small fraction of the overall data variance.
func varianceFloor(data []float64) float64 {
	var mean float64
	for _, v := range data {
		mean += v
	}
	mean /= float64(len(data))

	var ss float64
	for _, v := range data {
		d := v - mean
		ss += d * d
	}

	total := ss / float64(len(data))
	if total <= 0 {
		return 1e-12
	}

	return 1e-6 * total
}

func normPDF(x, mean, variance float64) float64 {
	d := x - mean

	return math.Exp(-d*d/(2*variance)) / math.Sqrt(2*math.Pi*variance)
}

// sortByMean orders components ascending by mean and remaps the hard
// assignments accordingly.
func sortByMean(comps []Component, assign []int) {
	k := len(comps)
	order := make([]int, k)
	for j := range order {
		order[j] = j
	}

	sort.Slice(order, func(a, b int) bool {
		return comps[order[a]].Mean < comps[order[b]].Mean
	})

	remap := make([]int, k)
	sorted := make([]Component, k)

	for newIdx, oldIdx := range order {
		remap[oldIdx] = newIdx
		sorted[newIdx] = comps[oldIdx]
	}

	copy(comps, sorted)

	for i, j := range assign {
		assign[i] = remap[j]
	}
}
