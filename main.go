package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kingpin/v2"
	"github.com/apex/log"
	"github.com/apex/log/handlers/cli"
	"github.com/nazwana/latensi/config"
	"github.com/nazwana/latensi/sink"
	"github.com/nazwana/latensi/timestamps"
)

const version = "0.2.0"

var (
	app        = kingpin.New("latensi", "Capture and analysis toolkit for device clock latency telemetry.")
	configPath = app.Flag("config", "Path to a YAML configuration file.").Short('c').String()
	verbose    = app.Flag("verbose", "Enable debug logging.").Short('v').Bool()
)

func main() {
	log.SetHandler(cli.Default)

	app.Version(version)
	app.HelpFlag.Short('h')
	app.PreAction(func(_ *kingpin.ParseContext) error {
		if *verbose {
			log.SetLevel(log.DebugLevel)
		}
		return nil
	})

	if _, err := app.Parse(os.Args[1:]); err != nil {
		log.Errorf("%v", err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	return config.ReadConfig(*configPath)
}

// newSink builds the metrics sink named by the configured driver.
func newSink(conf *config.Config) (sink.Sink, error) {
	switch *conf.Sink.Driver {
	case "noop":
		return sink.NewNoopSink(), nil
	case "stdout":
		return sink.NewStdoutSink(), nil
	case "influxdb":
		return sink.NewInfluxDBSink(
			*conf.Sink.InfluxDB.Host,
			*conf.Sink.InfluxDB.Token,
			*conf.Sink.InfluxDB.Org,
			*conf.Sink.InfluxDB.Bucket,
		), nil
	default:
		return nil, fmt.Errorf("expected sink.driver to be one of {noop, stdout, influxdb}; got %s", *conf.Sink.Driver)
	}
}

// schemaFromConfig resolves the timestamp column names, letting command
// flags override the configured ones.
func schemaFromConfig(conf *config.Config, captureOverride, deviceOverride string) timestamps.Schema {
	schema := timestamps.Schema{
		CaptureColumn: *conf.Columns.Capture,
		DeviceColumn:  *conf.Columns.Device,
	}
	if captureOverride != "" {
		schema.CaptureColumn = captureOverride
	}
	if deviceOverride != "" {
		schema.DeviceColumn = deviceOverride
	}
	return schema
}
