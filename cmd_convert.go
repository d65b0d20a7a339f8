package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/alecthomas/kingpin/v2"
	"github.com/apex/log"
	"github.com/fatih/color"
	"github.com/nazwana/latensi/convert"
	"github.com/nazwana/latensi/timestamps"
)

var (
	convertCmd     = app.Command("convert", "Convert a timestamp log into a tab-separated per-minute latency file.")
	convertInput   = convertCmd.Arg("input", "Path to the timestamp CSV log.").Required().String()
	convertOutput  = convertCmd.Arg("output", "Path the tab-separated file is written to.").Required().String()
	convertCapture = convertCmd.Flag("capture-column", "Override the capture timestamp column name.").String()
	convertDevice  = convertCmd.Flag("device-column", "Override the device timestamp column name.").String()
)

func init() {
	convertCmd.Action(func(_ *kingpin.ParseContext) error {
		conf, err := loadConfig()
		if err != nil {
			return err
		}
		metrics, err := newSink(conf)
		if err != nil {
			return err
		}
		defer metrics.Close()

		result, err := convert.Run(&convert.Options{
			InputPath:  *convertInput,
			OutputPath: *convertOutput,
			Schema:     schemaFromConfig(conf, *convertCapture, *convertDevice),
		}, metrics)
		if err != nil {
			return convertFailure(*convertInput, err)
		}

		log.Debugf("run summary: mean %s, p50 %s, p95 %s",
			result.Aggregation.Mean, result.Aggregation.P50, result.Aggregation.P95)
		fmt.Printf("%s %s (%d minutes from %d rows)\n",
			color.GreenString("wrote"), result.OutputPath, result.Minutes, result.Rows)
		return nil
	})
}

// convertFailure maps a failed run onto the closed set of user-facing
// messages: missing input, invalid schema, or the underlying detail.
func convertFailure(input string, err error) error {
	var missing *timestamps.MissingColumnsError
	switch {
	case errors.Is(err, os.ErrNotExist):
		return fmt.Errorf("input file not found: %s", input)
	case errors.As(err, &missing):
		return fmt.Errorf("cannot convert %s: %s", input, missing.Error())
	default:
		return fmt.Errorf("conversion failed: %v", err)
	}
}
