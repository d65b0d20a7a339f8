package main

import (
	"fmt"

	"github.com/alecthomas/kingpin/v2"
	"github.com/nazwana/latensi/queue"
	"github.com/nazwana/latensi/timestamps"
)

var (
	drainCmd    = app.Command("drain", "Drain queued readings from Redis into a timestamp log.")
	drainOutput = drainCmd.Arg("output", "Path of the timestamp log to append to.").Required().String()
	drainIdle   = drainCmd.Flag("idle-timeout", "Stop once the queue has been idle this long.").Default("5s").Duration()
)

func init() {
	drainCmd.Action(func(_ *kingpin.ParseContext) error {
		conf, err := loadConfig()
		if err != nil {
			return err
		}

		l, err := timestamps.OpenLog(*drainOutput, schemaFromConfig(conf, "", ""), timestamps.SensorColumns)
		if err != nil {
			return err
		}

		count, err := queue.Drain(queueOptions(conf), l, *drainIdle)
		if err != nil {
			l.Close()
			return fmt.Errorf("drain failed: %v", err)
		}
		if err := l.Close(); err != nil {
			return err
		}

		fmt.Printf("drained %d readings into %s\n", count, *drainOutput)
		return nil
	})
}
