// Package extract fits oxygen-depletion slopes per chamber and phase and
// reduces them to the representative values a metabolic-rate analysis
// needs.
//
// Extraction runs in three stages:
//
//  1. For every (chamber, phase) combination, ordinary least squares fits
//     of raw and corrected DO against elapsed seconds give the slope, its
//     standard error, and R-squared. A length cutoff can truncate each
//     phase before fitting.
//  2. Fits below the R-squared threshold are dropped. A chamber losing all
//     of its phases is reported as a warning, not an error.
//  3. One of nine selection methods reduces each chamber's surviving
//     slopes: pass-through orderings (all, min, max), percentile filters
//     (lower.tail, upper.tail), and the standard-metabolic-rate estimators
//     (calcSMR.mlnd, calcSMR.quant, calcSMR.low10, calcSMR.low10pc).
//
// # Usage
//
//	e := extract.DefaultExtractor(extract.MethodAll)
//	res, err := e.Extract(corrected.Measurements)
//
// Corrected slopes are negative for oxygen consumption, so "lowest
// metabolic activity" means the least negative values. The mlnd method
// exposes its fitted mixture on Result.Mixtures; the selection rule
// (highest-index sufficiently supported component, components ordered by
// ascending mean) is documented on MethodMLND.
package extract
