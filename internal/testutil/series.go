package testutil

import (
	"fmt"
	"time"

	"github.com/cwbudde/algo-resp/resp/core"
)

// Start is the fixed timestamp synthetic series begin at.
var Start = time.Date(2020, time.March, 1, 9, 0, 0, 0, time.UTC)

// LinearDecay returns DO(t) = start + slope*t for t = 1..n. A negative
// slope models oxygen consumption.
func LinearDecay(start, slope float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = start + slope*float64(i+1)
	}

	return out
}

// Constant returns a slice of n copies of value.
func Constant(value float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = value
	}

	return out
}

// Chambers returns n chamber descriptors CH1..CHn with uniform metadata.
func Chambers(n int) []core.Chamber {
	out := make([]core.Chamber, n)
	for i := range out {
		out[i] = core.Chamber{
			ID:         fmt.Sprintf("CH%d", i+1),
			Individual: fmt.Sprintf("fish%d", i+1),
			MassG:      12.5,
			VolumeML:   500,
			Unit:       "mg/L",
		}
	}

	return out
}

// Series builds a wide measurement series: phases labelled M1..Mp, each
// seconds samples long, one row per second, temperature held at 25 degrees.
// The DO trace of chamber c in phase p decays linearly from startDO at the
// rate slope(c, p) per second (both arguments 0-based).
func Series(chambers, phases, seconds int, startDO float64, slope func(chamber, phase int) float64) *core.Series {
	rows := phases * seconds

	s := &core.Series{
		Time:  make([]time.Time, rows),
		Phase: make([]string, rows),
		Temp:  make([][]float64, chambers),
		DO:    make([][]float64, chambers),
	}

	for c := 0; c < chambers; c++ {
		s.Temp[c] = Constant(25, rows)
		s.DO[c] = make([]float64, rows)
	}

	row := 0

	for p := 0; p < phases; p++ {
		label := fmt.Sprintf("M%d", p+1)

		for t := 1; t <= seconds; t++ {
			s.Time[row] = Start.Add(time.Duration(row) * time.Second)
			s.Phase[row] = label

			for c := 0; c < chambers; c++ {
				s.DO[c][row] = startDO + slope(c, p)*float64(t)
			}

			row++
		}
	}

	return s
}

// Reference builds a reference test whose delta DO falls at rate per second
// in every chamber. A zero rate models a clean system with no background
// respiration.
func Reference(chambers, seconds int, startDO, rate float64) *core.ReferenceSeries {
	ref := &core.ReferenceSeries{
		Second:  make([]int, seconds),
		Temp:    make([][]float64, chambers),
		DO:      make([][]float64, chambers),
		DeltaDO: make([][]float64, chambers),
	}

	for i := range ref.Second {
		ref.Second[i] = i + 1
	}

	for c := 0; c < chambers; c++ {
		ref.Temp[c] = Constant(25, seconds)
		ref.DO[c] = make([]float64, seconds)
		ref.DeltaDO[c] = make([]float64, seconds)

		for i := 0; i < seconds; i++ {
			delta := rate * float64(i+1)
			ref.DO[c][i] = startDO + delta
			ref.DeltaDO[c][i] = delta
		}
	}

	return ref
}
