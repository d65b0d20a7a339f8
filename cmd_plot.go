package main

import (
	"fmt"

	"github.com/alecthomas/kingpin/v2"
	"github.com/nazwana/latensi/chart"
)

var (
	plotCmd    = app.Command("plot", "Render a converted file as a PNG line chart.")
	plotInput  = plotCmd.Arg("input", "Path to the tab-separated file convert wrote.").Required().String()
	plotOutput = plotCmd.Arg("output", "Path of the PNG to write.").Required().String()
)

func init() {
	plotCmd.Action(func(_ *kingpin.ParseContext) error {
		rows, err := chart.Render(*plotInput, *plotOutput)
		if err != nil {
			return fmt.Errorf("plot failed: %v", err)
		}
		fmt.Printf("plotted %d minutes to %s\n", rows, *plotOutput)
		return nil
	})
}
