package core

import (
	"errors"
	"testing"
	"time"
)

func TestPhaseIndex(t *testing.T) {
	cases := []struct {
		label string
		want  int
	}{
		{"M1", 1},
		{"M3", 3},
		{"M12", 12},
		{"F10", 10},
		{"phase7", 7},
	}

	for _, tc := range cases {
		got, err := PhaseIndex(tc.label)
		if err != nil {
			t.Errorf("PhaseIndex(%q): %v", tc.label, err)
			continue
		}

		if got != tc.want {
			t.Errorf("PhaseIndex(%q): got %d, want %d", tc.label, got, tc.want)
		}
	}
}

func TestPhaseIndex_Malformed(t *testing.T) {
	for _, label := range []string{"", "M", "flush", "M0"} {
		if _, err := PhaseIndex(label); !errors.Is(err, ErrPhaseLabel) {
			t.Errorf("PhaseIndex(%q): got %v, want ErrPhaseLabel", label, err)
		}
	}
}

func makeSeries(chambers, rows int) *Series {
	s := &Series{
		Time:  make([]time.Time, rows),
		Phase: make([]string, rows),
		Temp:  make([][]float64, chambers),
		DO:    make([][]float64, chambers),
	}

	for c := 0; c < chambers; c++ {
		s.Temp[c] = make([]float64, rows)
		s.DO[c] = make([]float64, rows)
	}

	for i := range s.Phase {
		s.Phase[i] = "M1"
	}

	return s
}

func TestSeriesValidate(t *testing.T) {
	if err := makeSeries(4, 10).Validate(); err != nil {
		t.Errorf("valid series: %v", err)
	}

	if err := makeSeries(0, 10).Validate(); !errors.Is(err, ErrChamberCount) {
		t.Errorf("zero chambers: got %v", err)
	}

	if err := makeSeries(MaxChambers+1, 10).Validate(); !errors.Is(err, ErrChamberCount) {
		t.Errorf("too many chambers: got %v", err)
	}

	s := makeSeries(2, 10)
	s.DO[1] = s.DO[1][:5]

	if err := s.Validate(); !errors.Is(err, ErrMalformedData) {
		t.Errorf("ragged columns: got %v", err)
	}

	s = makeSeries(2, 10)
	s.Phase = s.Phase[:4]

	if err := s.Validate(); !errors.Is(err, ErrMalformedData) {
		t.Errorf("short phase column: got %v", err)
	}
}

func TestReferenceSeriesValidate(t *testing.T) {
	ref := &ReferenceSeries{
		Second:  []int{1, 2, 3},
		Temp:    [][]float64{{25, 25, 25}},
		DO:      [][]float64{{8, 7.9, 7.8}},
		DeltaDO: [][]float64{{0, -0.1, -0.2}},
	}

	if err := ref.Validate(); err != nil {
		t.Errorf("valid reference: %v", err)
	}

	ref.DeltaDO[0] = ref.DeltaDO[0][:2]

	if err := ref.Validate(); !errors.Is(err, ErrMalformedData) {
		t.Errorf("ragged delta column: got %v", err)
	}
}
