// Command respinfo runs the background correction and slope extraction
// pipeline over standardized respirometry CSV files and prints the
// resulting slope table.
//
// Usage:
//
//	respinfo -info chambers.csv -meas measurements.csv [flags]
//
// Examples:
//
//	respinfo -info info.csv -meas meas.csv -pre pre.csv -method pre.test
//	respinfo -info info.csv -meas meas.csv -pre pre.csv -post post.csv -method linear -select min -nslope 2
//	respinfo -info info.csv -meas meas.csv -method parallel -empty CH4 -select calcSMR.mlnd
package main

import (
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/cwbudde/algo-resp/resp/core"
	"github.com/cwbudde/algo-resp/resp/correct"
	"github.com/cwbudde/algo-resp/resp/extract"
	"github.com/cwbudde/algo-resp/resp/load"
	"github.com/cwbudde/algo-resp/resp/rate"
)

func main() {
	infoPath := flag.String("info", "", "chamber metadata CSV (id, individual, mass g, volume mL, DO unit)")
	measPath := flag.String("meas", "", "measurement CSV in the standardized wide layout")
	prePath := flag.String("pre", "", "pre-test CSV (optional, method dependent)")
	postPath := flag.String("post", "", "post-test CSV (optional, method dependent)")
	method := flag.String("method", "pre.test", "background correction method")
	empty := flag.String("empty", "", "empty chamber id for the parallel method")
	sel := flag.String("select", "all", "slope selection method")
	r2 := flag.Float64("r2", 0.95, "minimum r-squared for a phase to be retained")
	cutoff := flag.Int("cutoff", 0, "restrict fits to the first N seconds of each phase (0 = all)")
	nSlope := flag.Int("nslope", 3, "record count for the min/max methods")
	percent := flag.Float64("percent", 10, "percentile for the tail methods")
	quantileP := flag.Float64("p", 0.2, "quantile for calcSMR.quant")
	components := flag.Int("components", 4, "mixture component cap for calcSMR.mlnd")
	dateOrder := flag.String("date", "DMY", "timestamp field order: DMY, MDY, or YMD")
	zeroFill := flag.Bool("zero-fill", false, "treat missing readings as zero instead of dropping them")
	showMR := flag.Bool("mr", false, "append metabolic rate columns")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: respinfo -info FILE -meas FILE [flags]\n\n")
		fmt.Fprintf(os.Stderr, "Runs background correction and slope extraction over respirometry CSVs.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if *infoPath == "" || *measPath == "" {
		flag.Usage()
		os.Exit(2)
	}

	corrMethod, err := correct.ParseMethod(*method)
	if err != nil {
		fail(err)
	}

	selMethod, err := extract.ParseMethod(*sel)
	if err != nil {
		fail(err)
	}

	opts := []load.Option{load.WithDateOrder(*dateOrder)}

	chambers, err := readChambers(*infoPath, opts)
	if err != nil {
		fail(err)
	}

	series, err := readSeries(*measPath, opts)
	if err != nil {
		fail(err)
	}

	corrector := &correct.Corrector{
		Chambers:     chambers,
		Method:       corrMethod,
		EmptyChamber: *empty,
	}

	if *prePath != "" {
		if corrector.Pre, err = readReference(*prePath, opts); err != nil {
			fail(err)
		}
	}

	if *postPath != "" {
		if corrector.Post, err = readReference(*postPath, opts); err != nil {
			fail(err)
		}
	}

	corrected, err := corrector.Correct(series)
	if err != nil {
		fail(err)
	}

	extractor := &extract.Extractor{
		Method:             selMethod,
		R2Min:              *r2,
		LengthCutoff:       *cutoff,
		NSlope:             *nSlope,
		Percent:            *percent,
		QuantileP:          *quantileP,
		MixtureComponents:  *components,
		TreatMissingAsZero: *zeroFill,
	}

	result, err := extractor.Extract(corrected.Measurements)
	if err != nil {
		fail(err)
	}

	for _, w := range corrected.Warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w)
	}

	for _, w := range result.Warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w)
	}

	var rates []rate.MR
	if *showMR {
		if rates, err = rate.DefaultCalculator().Calculate(result.Slopes); err != nil {
			fail(err)
		}
	}

	printSlopes(result.Slopes, rates)
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}

func readChambers(path string, opts []load.Option) ([]core.Chamber, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return load.ReadChambers(f, opts...)
}

func readSeries(path string, opts []load.Option) (*core.Series, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return load.ReadSeries(f, opts...)
}

func readReference(path string, opts []load.Option) (*core.ReferenceSeries, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return load.ReadReference(f, opts...)
}

func printSlopes(slopes []core.Slope, rates []rate.MR) {
	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)

	header := "Chamber\tIndividual\tPhase\tTemp [C]\tSlope w/ BG\tSlope\tSE\tR2"
	if rates != nil {
		header += "\tMR abs [/h]\tMR mass [/h/kg]"
	}

	fmt.Fprintln(tw, header)

	for i, s := range slopes {
		row := fmt.Sprintf("%s\t%s\t%s\t%.2f\t%.6g\t%.6g\t%.3g\t%.4f",
			s.ChamberID, s.Individual, s.Phase, s.TemperatureC, s.SlopeWithBG, s.Slope, s.SE, s.R2)

		if rates != nil {
			row += fmt.Sprintf("\t%.6g\t%.6g", rates[i].Absolute, rates[i].MassSpecific)
		}

		fmt.Fprintln(tw, row)
	}

	if err := tw.Flush(); err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to flush output: %v\n", err)
	}
}
