package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/apex/log"
	"github.com/nazwana/latensi/capture"
	"github.com/nazwana/latensi/config"
	"github.com/nazwana/latensi/latency"
	"github.com/nazwana/latensi/queue"
	"github.com/nazwana/latensi/timestamps"
)

var (
	captureCmd    = app.Command("capture", "Run the HTTP ingest server devices post telemetry to.")
	captureListen = captureCmd.Flag("listen", "Listen address, overriding the configured one.").String()
	captureLog    = captureCmd.Flag("log", "Timestamp log path, overriding the configured one.").String()
)

func init() {
	captureCmd.Action(func(_ *kingpin.ParseContext) error {
		conf, err := loadConfig()
		if err != nil {
			return err
		}
		metrics, err := newSink(conf)
		if err != nil {
			return err
		}
		defer metrics.Close()

		listenAddr := *conf.Capture.ListenAddr
		if *captureListen != "" {
			listenAddr = *captureListen
		}
		logPath := *conf.Capture.LogPath
		if *captureLog != "" {
			logPath = *captureLog
		}

		buffer, err := newBuffer(conf, logPath)
		if err != nil {
			return err
		}

		server := capture.NewServer(&capture.ServerOptions{
			ListenAddr:    listenAddr,
			Buffer:        buffer,
			Collector:     latency.NewTachymeterCollector(*conf.Capture.Window),
			Sink:          metrics,
			Clock:         capture.NewRealtimeClock(),
			MaxSkew:       time.Duration(*conf.Capture.MaxSkew * float64(time.Second)),
			FlushInterval: time.Duration(*conf.Capture.FlushInterval) * time.Second,
		})
		if err := server.Start(); err != nil {
			return fmt.Errorf("could not start capture server: %v", err)
		}
		log.Infof("capture listening on %s, logging to %s", listenAddr, logPath)

		stop := make(chan os.Signal, 1)
		signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
		<-stop

		log.Info("shutting down")
		if err := server.Stop(); err != nil {
			return fmt.Errorf("shutdown failed: %v", err)
		}
		return nil
	})
}

// newBuffer builds the buffer named by the configured driver.
func newBuffer(conf *config.Config, logPath string) (capture.Buffer, error) {
	switch *conf.Capture.Buffer {
	case "memory":
		l, err := timestamps.OpenLog(logPath, schemaFromConfig(conf, "", ""), timestamps.SensorColumns)
		if err != nil {
			return nil, err
		}
		return capture.NewMemoryBuffer(l), nil
	case "redis":
		publisher, err := queue.NewPublisher(queueOptions(conf))
		if err != nil {
			return nil, err
		}
		return capture.NewQueueBuffer(publisher), nil
	default:
		return nil, fmt.Errorf("expected capture.buffer to be one of {memory, redis}; got %s", *conf.Capture.Buffer)
	}
}

func queueOptions(conf *config.Config) *queue.Options {
	return &queue.Options{
		Addr:     *conf.Capture.Redis.Addr,
		Password: *conf.Capture.Redis.Password,
		DB:       *conf.Capture.Redis.QueueDB,
		Queue:    *conf.Capture.Redis.Queue,
	}
}
