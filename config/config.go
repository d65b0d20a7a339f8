package config

import (
	"errors"
	"fmt"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
	"strings"
)

type Config struct {
	Columns  Columns  `mapstructure:"columns" validate:"required"`
	Sink     Sink     `mapstructure:"sink" validate:"required"`
	Capture  Capture  `mapstructure:"capture" validate:"required"`
	Generate Generate `mapstructure:"generate" validate:"required"`
	Compare  Compare  `mapstructure:"compare" validate:"required"`
}

// Columns names the two required timestamp columns of the CSV log. Exports
// from other telemetry platforms use different header names.
type Columns struct {
	Capture *string `mapstructure:"capture" validate:"required"`
	Device  *string `mapstructure:"device" validate:"required"`
}

type Sink struct {
	Driver   *string   `mapstructure:"driver" validate:"oneof=noop stdout influxdb"`
	InfluxDB *InfluxDB `mapstructure:"influxdb" validate:"required_if=Driver influxdb"`
}

type InfluxDB struct {
	Host   *string `mapstructure:"host" validate:"required"`
	Token  *string `mapstructure:"token" validate:"required"`
	Org    *string `mapstructure:"org" validate:"required"`
	Bucket *string `mapstructure:"bucket" validate:"required"`
}

type Capture struct {
	ListenAddr *string `mapstructure:"listenAddr" validate:"required"`
	LogPath    *string `mapstructure:"logPath" validate:"required"`
	// FlushInterval is the period in seconds between buffer flushes and
	// window aggregations.
	FlushInterval *int `mapstructure:"flushInterval" validate:"required,min=1"`
	// Window is the number of recent readings aggregates are calculated over.
	Window *int `mapstructure:"window" validate:"required,min=1"`
	// MaxSkew is the largest capture-device offset in seconds a reading may
	// carry before it is dropped. Devices report epoch timestamps until
	// their clock syncs; those readings would poison the minute means.
	MaxSkew *float64 `mapstructure:"maxSkew" validate:"required"`
	Buffer  *string  `mapstructure:"buffer" validate:"oneof=memory redis"`
	Redis   *Redis   `mapstructure:"redis" validate:"required_if=Buffer redis"`
}

type Redis struct {
	Addr     *string `mapstructure:"addr" validate:"required"`
	Password *string `mapstructure:"password" validate:"required"`
	QueueDB  *int    `mapstructure:"queueDB" validate:"required"`
	Queue    *string `mapstructure:"queue" validate:"required"`
}

type Generate struct {
	// Interval is the capture cadence in seconds.
	Interval *float64 `mapstructure:"interval" validate:"required"`
	Rows     *int     `mapstructure:"rows" validate:"required,min=1"`
	Offset   *Offset  `mapstructure:"offset" validate:"required"`
}

// Offset parameterises the truncated normal distribution device clock
// offsets are drawn from, in seconds.
type Offset struct {
	Mean   *float64 `mapstructure:"mean" validate:"required"`
	Stddev *float64 `mapstructure:"stddev" validate:"required"`
	Min    *float64 `mapstructure:"min" validate:"required"`
	Max    *float64 `mapstructure:"max" validate:"required"`
}

type Compare struct {
	Percentile *string `mapstructure:"percentile" validate:"oneof=p90 p95 p97.5 p99 p99.5 p99.9"`
}

func setDefaults() {
	viper.SetDefault("Columns.Capture", "Timestamp")
	viper.SetDefault("Columns.Device", "Timestamp (ESP32)")

	viper.SetDefault("Sink.Driver", "noop")

	viper.SetDefault("Capture.ListenAddr", ":8070")
	viper.SetDefault("Capture.LogPath", "timestamps.csv")
	viper.SetDefault("Capture.FlushInterval", 5)
	viper.SetDefault("Capture.Window", 120)
	viper.SetDefault("Capture.MaxSkew", 3600)
	viper.SetDefault("Capture.Buffer", "memory")
	viper.SetDefault("Capture.Redis.Addr", "localhost:6379")
	viper.SetDefault("Capture.Redis.Password", "")
	viper.SetDefault("Capture.Redis.QueueDB", 2)
	viper.SetDefault("Capture.Redis.Queue", "readings")

	viper.SetDefault("Generate.Interval", 2)
	viper.SetDefault("Generate.Rows", 300)
	viper.SetDefault("Generate.Offset.Mean", 0.5)
	viper.SetDefault("Generate.Offset.Stddev", 0.2)
	viper.SetDefault("Generate.Offset.Min", -1)
	viper.SetDefault("Generate.Offset.Max", 2)

	viper.SetDefault("Compare.Percentile", "p95")
}

// ReadConfig loads configuration from the YAML file at path, or from
// latensi.yaml in the working directory when path is empty. Every command
// must run with zero setup, so a missing config file falls back to
// defaults; an explicitly given path must exist.
func ReadConfig(path string) (*Config, error) {
	viper.AutomaticEnv()
	setDefaults()

	if path != "" {
		viper.SetConfigFile(path)
		if err := viper.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("ReadConfig() got err when reading config file at %s: %w", path, err)
		}
	} else {
		viper.SetConfigType("yaml")
		viper.SetConfigName("latensi")
		viper.AddConfigPath(".")
		if err := viper.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("ReadConfig() got err when reading latensi.yaml: %w", err)
			}
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("ReadConfig() got err when unmarshalling configuration: %w", err)
	}

	validate := validator.New()
	if err := validate.Struct(&config); err != nil {
		if _, ok := err.(*validator.InvalidValidationError); ok {
			return nil, fmt.Errorf("ReadConfig() unable to validate config: %w", err)
		}

		var b strings.Builder
		b.WriteString("encountered validation errors:")
		for _, err := range err.(validator.ValidationErrors) {
			b.WriteString(fmt.Sprintf("\n\t%s", err.Error()))
		}
		return nil, errors.New(b.String())
	}

	return &config, nil
}
