package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "latensi.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writeConfigFile() could not write fixture: %v", err)
	}
	return path
}

func TestReadConfigDefaults(t *testing.T) {
	viper.Reset()

	conf, err := ReadConfig("")
	assert.NoError(t, err)

	assert.Equal(t, "Timestamp", *conf.Columns.Capture)
	assert.Equal(t, "Timestamp (ESP32)", *conf.Columns.Device)
	assert.Equal(t, "noop", *conf.Sink.Driver)
	assert.Equal(t, ":8070", *conf.Capture.ListenAddr)
	assert.Equal(t, "timestamps.csv", *conf.Capture.LogPath)
	assert.Equal(t, 5, *conf.Capture.FlushInterval)
	assert.Equal(t, 120, *conf.Capture.Window)
	assert.Equal(t, 3600.0, *conf.Capture.MaxSkew)
	assert.Equal(t, "memory", *conf.Capture.Buffer)
	assert.Equal(t, 300, *conf.Generate.Rows)
	assert.Equal(t, 0.5, *conf.Generate.Offset.Mean)
	assert.Equal(t, "p95", *conf.Compare.Percentile)
}

func TestReadConfigOverridesFromFile(t *testing.T) {
	viper.Reset()
	path := writeConfigFile(t, `
columns:
  capture: waktu_host
  device: waktu_sensor
capture:
  listenAddr: ":9000"
  maxSkew: 60
sink:
  driver: influxdb
  influxdb:
    host: http://localhost:8086
    token: secret
    org: lab
    bucket: telemetry
`)

	conf, err := ReadConfig(path)
	assert.NoError(t, err)

	assert.Equal(t, "waktu_host", *conf.Columns.Capture)
	assert.Equal(t, "waktu_sensor", *conf.Columns.Device)
	assert.Equal(t, ":9000", *conf.Capture.ListenAddr)
	assert.Equal(t, 60.0, *conf.Capture.MaxSkew)
	assert.Equal(t, "influxdb", *conf.Sink.Driver)
	assert.Equal(t, "http://localhost:8086", *conf.Sink.InfluxDB.Host)
	assert.Equal(t, "secret", *conf.Sink.InfluxDB.Token)

	// Keys the file does not mention keep their defaults.
	assert.Equal(t, 5, *conf.Capture.FlushInterval)
	assert.Equal(t, "memory", *conf.Capture.Buffer)
}

func TestReadConfigRejectsAnUnknownSinkDriver(t *testing.T) {
	viper.Reset()
	path := writeConfigFile(t, `
sink:
  driver: mqtt
`)

	_, err := ReadConfig(path)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "validation errors")
}

func TestReadConfigRequiresInfluxDBSettingsForTheDriver(t *testing.T) {
	viper.Reset()
	path := writeConfigFile(t, `
sink:
  driver: influxdb
`)

	_, err := ReadConfig(path)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "validation errors")
}

func TestReadConfigRejectsAnUnknownBuffer(t *testing.T) {
	viper.Reset()
	path := writeConfigFile(t, `
capture:
  buffer: kafka
`)

	_, err := ReadConfig(path)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "validation errors")
}

func TestReadConfigExplicitPathMustExist(t *testing.T) {
	viper.Reset()

	_, err := ReadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
