package main

import (
	"errors"
	"fmt"

	"github.com/alecthomas/kingpin/v2"
	"github.com/apex/log"
	"github.com/fatih/color"
	mstats "github.com/montanaflynn/stats"
	"github.com/nazwana/latensi/latency"
	"github.com/nazwana/latensi/stats"
	"github.com/nazwana/latensi/timestamps"
)

var (
	compareCmd        = app.Command("compare", "Test whether two timestamp logs draw latency from different distributions.")
	compareControl    = compareCmd.Arg("control", "Path to the control timestamp log.").Required().String()
	compareCandidate  = compareCmd.Arg("candidate", "Path to the candidate timestamp log.").Required().String()
	comparePercentile = compareCmd.Flag("percentile", "Significance percentile, overriding the configured one.").String()
)

func init() {
	compareCmd.Action(func(_ *kingpin.ParseContext) error {
		conf, err := loadConfig()
		if err != nil {
			return err
		}

		name := *conf.Compare.Percentile
		if *comparePercentile != "" {
			name = *comparePercentile
		}
		percentile, err := stats.ParsePercentile(name)
		if err != nil {
			return err
		}

		schema := schemaFromConfig(conf, "", "")
		control, err := readLatencies(*compareControl, schema)
		if err != nil {
			return err
		}
		candidate, err := readLatencies(*compareCandidate, schema)
		if err != nil {
			return err
		}
		if len(control) == 0 || len(candidate) == 0 {
			return errors.New("cannot compare: both logs must contain at least one row")
		}

		result := stats.KolmogorovSmirnovTest(control, candidate, percentile)
		log.Debugf("test statistic %.4f vs critical value %.4f", result.TestStatistic, result.CriticalValue)

		controlMean, _ := mstats.Mean(control)
		candidateMean, _ := mstats.Mean(candidate)

		verdict := color.GreenString("same distribution")
		if result.Rejected {
			verdict = color.RedString("different distributions")
		}
		fmt.Printf("%s at %s (control mean %.3fs over %d rows, candidate mean %.3fs over %d rows)\n",
			verdict, name, controlMean, len(control), candidateMean, len(candidate))
		return nil
	})
}

// readLatencies derives per-row latencies from a timestamp log, reporting
// failures with the same messages the converter uses.
func readLatencies(path string, schema timestamps.Schema) ([]float64, error) {
	readings, err := timestamps.ReadFile(path, schema)
	if err != nil {
		return nil, convertFailure(path, err)
	}
	return latency.Seconds(latency.FromReadings(readings)), nil
}
