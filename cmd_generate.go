package main

import (
	"fmt"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/nazwana/latensi/generate"
	"github.com/nazwana/latensi/timestamps"
)

var (
	generateCmd    = app.Command("generate", "Write a synthetic timestamp log for pipeline testing.")
	generateOutput = generateCmd.Arg("output", "Path of the CSV log to write.").Required().String()
	generateRows   = generateCmd.Flag("rows", "Number of readings, overriding the configured default.").Int()
	generateStart  = generateCmd.Flag("start", "First capture timestamp, e.g. \"2024-10-03 10:00:00\". Defaults to now.").String()
	generateSeed   = generateCmd.Flag("seed", "Seed for reproducible output. Zero seeds from the current time.").Uint64()
)

func init() {
	generateCmd.Action(func(_ *kingpin.ParseContext) error {
		conf, err := loadConfig()
		if err != nil {
			return err
		}

		var start time.Time
		if *generateStart != "" {
			start, err = timestamps.ParseTimestamp(*generateStart)
			if err != nil {
				return fmt.Errorf("cannot parse --start: %v", err)
			}
		}
		rows := *conf.Generate.Rows
		if *generateRows > 0 {
			rows = *generateRows
		}

		count, err := generate.Run(&generate.Options{
			OutputPath:   *generateOutput,
			Schema:       schemaFromConfig(conf, "", ""),
			Rows:         rows,
			Start:        start,
			Interval:     time.Duration(*conf.Generate.Interval * float64(time.Second)),
			OffsetMean:   *conf.Generate.Offset.Mean,
			OffsetStddev: *conf.Generate.Offset.Stddev,
			OffsetMin:    *conf.Generate.Offset.Min,
			OffsetMax:    *conf.Generate.Offset.Max,
			Seed:         *generateSeed,
		})
		if err != nil {
			return fmt.Errorf("generate failed: %v", err)
		}

		fmt.Printf("wrote %d readings to %s\n", count, *generateOutput)
		return nil
	})
}
