package load

import (
	"errors"
	"math"
	"strings"
	"testing"
	"time"
)

const seriesCSV = `Date.Time,Phase,Temp.1,Ox.1,Temp.2,Ox.2
01/03/2020 09:00:01,M1,25.0,7.95,25.1,8.02
01/03/2020 09:00:02,M1,25.0,7.94,25.1,8.01
01/03/2020 09:00:03,M1,25.0,NA,25.1,8.00
`

func TestReadSeries(t *testing.T) {
	series, err := ReadSeries(strings.NewReader(seriesCSV))
	if err != nil {
		t.Fatalf("ReadSeries: %v", err)
	}

	if series.Chambers() != 2 || series.Rows() != 3 {
		t.Fatalf("shape: %d chambers, %d rows", series.Chambers(), series.Rows())
	}

	want := time.Date(2020, time.March, 1, 9, 0, 1, 0, time.UTC)
	if !series.Time[0].Equal(want) {
		t.Errorf("time[0]: got %v, want %v", series.Time[0], want)
	}

	if series.Phase[2] != "M1" {
		t.Errorf("phase[2]: got %q", series.Phase[2])
	}

	if series.DO[1][0] != 8.02 || series.Temp[0][1] != 25.0 {
		t.Errorf("cells: DO[1][0]=%g Temp[0][1]=%g", series.DO[1][0], series.Temp[0][1])
	}

	// NA reads as NaN, not as an error.
	if !math.IsNaN(series.DO[0][2]) {
		t.Errorf("NA cell: got %g, want NaN", series.DO[0][2])
	}
}

func TestReadSeries_DateOrders(t *testing.T) {
	cases := []struct {
		order string
		cell  string
	}{
		{"DMY", "01/03/2020 09:00:01"},
		{"MDY", "03/01/2020 09:00:01"},
		{"YMD", "2020/03/01 09:00:01"},
	}

	want := time.Date(2020, time.March, 1, 9, 0, 1, 0, time.UTC)

	for _, tc := range cases {
		csv := "Date.Time,Phase,Temp.1,Ox.1\n" + tc.cell + ",M1,25.0,8.0\n"

		series, err := ReadSeries(strings.NewReader(csv), WithDateOrder(tc.order))
		if err != nil {
			t.Errorf("%s: %v", tc.order, err)
			continue
		}

		if !series.Time[0].Equal(want) {
			t.Errorf("%s: got %v, want %v", tc.order, series.Time[0], want)
		}
	}
}

func TestReadSeries_SeparatorNormalization(t *testing.T) {
	// Dotted and dashed date separators parse the same as slashes.
	csv := "Date.Time,Phase,Temp.1,Ox.1\n01.03.2020 09:00:01,M1,25.0,8.0\n"

	series, err := ReadSeries(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("ReadSeries: %v", err)
	}

	want := time.Date(2020, time.March, 1, 9, 0, 1, 0, time.UTC)
	if !series.Time[0].Equal(want) {
		t.Errorf("got %v, want %v", series.Time[0], want)
	}
}

func TestReadSeries_Semicolon(t *testing.T) {
	csv := "Date.Time;Phase;Temp.1;Ox.1\n01/03/2020 09:00:01;M1;25.0;8.0\n"

	series, err := ReadSeries(strings.NewReader(csv), WithComma(';'))
	if err != nil {
		t.Fatalf("ReadSeries: %v", err)
	}

	if series.DO[0][0] != 8.0 {
		t.Errorf("DO[0][0]: got %g", series.DO[0][0])
	}
}

func TestReadSeries_Errors(t *testing.T) {
	cases := []struct {
		name string
		csv  string
		opts []Option
		want error
	}{
		{"header only", "Date.Time,Phase,Temp.1,Ox.1\n", nil, ErrEmptyFile},
		{"odd columns", "Date.Time,Phase,Temp.1,Ox.1,Temp.2\n01/03/2020 09:00:01,M1,25,8,25\n", nil, ErrColumnLayout},
		{"too narrow", "Date.Time,Phase\n01/03/2020 09:00:01,M1\n", nil, ErrColumnLayout},
		{"bad order", "Date.Time,Phase,Temp.1,Ox.1\n01/03/2020 09:00:01,M1,25,8\n", []Option{WithDateOrder("XYZ")}, ErrUnknownOrder},
		{"bad time", "Date.Time,Phase,Temp.1,Ox.1\nyesterday,M1,25,8\n", nil, ErrMalformedCell},
		{"bad float", "Date.Time,Phase,Temp.1,Ox.1\n01/03/2020 09:00:01,M1,warm,8\n", nil, ErrMalformedCell},
	}

	for _, tc := range cases {
		if _, err := ReadSeries(strings.NewReader(tc.csv), tc.opts...); !errors.Is(err, tc.want) {
			t.Errorf("%s: got %v, want %v", tc.name, err, tc.want)
		}
	}
}

func TestReadReference(t *testing.T) {
	csv := `Date.Time,Phase,Temp.1,Ox.1
01/03/2020 08:00:01,P1,25.0,8.00
01/03/2020 08:00:02,P1,25.0,7.98
01/03/2020 08:00:03,P1,25.0,7.95
`

	ref, err := ReadReference(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("ReadReference: %v", err)
	}

	if ref.Chambers() != 1 {
		t.Fatalf("chambers: got %d", ref.Chambers())
	}

	for i, want := range []int{1, 2, 3} {
		if ref.Second[i] != want {
			t.Errorf("second[%d]: got %d, want %d", i, ref.Second[i], want)
		}
	}

	wantDelta := []float64{0, -0.02, -0.05}
	for i, want := range wantDelta {
		if math.Abs(ref.DeltaDO[0][i]-want) > 1e-12 {
			t.Errorf("delta[%d]: got %g, want %g", i, ref.DeltaDO[0][i], want)
		}
	}
}

func TestReadChambers(t *testing.T) {
	csv := `Chamber,Individual,Mass,Volume,Unit
CH1,perch1,12.5,500,mg/L
CH2,perch2,14.0,500,mg/L
`

	chambers, err := ReadChambers(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("ReadChambers: %v", err)
	}

	if len(chambers) != 2 {
		t.Fatalf("chambers: got %d, want 2", len(chambers))
	}

	first := chambers[0]
	if first.ID != "CH1" || first.Individual != "perch1" || first.MassG != 12.5 || first.VolumeML != 500 || first.Unit != "mg/L" {
		t.Errorf("chamber 0: %+v", first)
	}
}

func TestReadChambers_Errors(t *testing.T) {
	cases := []struct {
		name string
		csv  string
		want error
	}{
		{"header only", "Chamber,Individual,Mass,Volume,Unit\n", ErrEmptyFile},
		{"wrong width", "Chamber,Individual,Mass,Volume\nCH1,perch1,12.5,500\n", ErrColumnLayout},
		{"bad mass", "Chamber,Individual,Mass,Volume,Unit\nCH1,perch1,heavy,500,mg/L\n", ErrMalformedCell},
	}

	for _, tc := range cases {
		if _, err := ReadChambers(strings.NewReader(tc.csv)); !errors.Is(err, tc.want) {
			t.Errorf("%s: got %v, want %v", tc.name, err, tc.want)
		}
	}
}
