// Package correct estimates and subtracts background (microbial)
// respiration from intermittent-flow respirometry measurements.
//
// Raw DO readings mix the animal's oxygen consumption with the background
// consumption of the water and chamber walls. The corrector reshapes a wide
// multi-chamber series into per-chamber long form, estimates a background
// rate for every sample, and emits a corrected table ready for slope
// extraction.
//
// # Methods
//
// Six estimation methods are supported. Four regress a reference test's
// delta DO through the origin and differ in which tests they consume and
// how the coefficient evolves over the experiment:
//
//   - pre.test / post.test: a single coefficient from one reference test
//   - average: one coefficient from the index-wise mean of both tests
//   - linear / exponential: a per-phase coefficient interpolated (linearly
//     or geometrically) from the pre-test estimate toward the post-test
//     estimate
//
// The sixth, parallel, uses no regression at all: one designated empty
// chamber's depletion curve is broadcast as the background estimate for
// every chamber, itself included.
//
// # Usage
//
//	c := &correct.Corrector{
//	    Chambers: chambers,
//	    Pre:      preTest,
//	    Method:   correct.MethodPreTest,
//	}
//	res, err := c.Correct(series)
//
// A physically plausible background rate is <= 0 (oxygen is consumed, not
// produced). Samples with a positive estimate are reported through
// Result.Warnings rather than failing the run.
package correct
