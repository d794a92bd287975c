package correct_test

import (
	"fmt"
	"time"

	"github.com/cwbudde/algo-resp/resp/core"
	"github.com/cwbudde/algo-resp/resp/correct"
)

func ExampleCorrector_Correct() {
	start := time.Date(2020, time.March, 1, 9, 0, 0, 0, time.UTC)

	series := &core.Series{
		Time:  []time.Time{start, start.Add(time.Second), start.Add(2 * time.Second)},
		Phase: []string{"M1", "M1", "M1"},
		Temp:  [][]float64{{25, 25, 25}},
		DO:    [][]float64{{7.9, 7.8, 7.7}},
	}

	// Background respiration measured in the empty system: 0.02 mg/L lost
	// per second.
	pre := &core.ReferenceSeries{
		Second:  []int{1, 2, 3, 4},
		Temp:    [][]float64{{25, 25, 25, 25}},
		DO:      [][]float64{{7.98, 7.96, 7.94, 7.92}},
		DeltaDO: [][]float64{{-0.02, -0.04, -0.06, -0.08}},
	}

	c := &correct.Corrector{
		Chambers: []core.Chamber{{ID: "CH1", Individual: "perch1", MassG: 12.5, VolumeML: 500, Unit: "mg/L"}},
		Pre:      pre,
		Method:   correct.MethodPreTest,
	}

	res, err := c.Correct(series)
	if err != nil {
		fmt.Println(err)
		return
	}

	for _, rec := range res.Measurements {
		fmt.Printf("t=%d do=%.2f corrected=%.2f\n", rec.PhaseSecond, rec.DO, rec.DOCorrected)
	}

	// Output:
	// t=1 do=7.90 corrected=7.92
	// t=2 do=7.80 corrected=7.84
	// t=3 do=7.70 corrected=7.76
}
