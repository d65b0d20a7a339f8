package main

import (
	"fmt"

	"github.com/alecthomas/kingpin/v2"
)

var versionCmd = app.Command("version", "Print the latensi version.")

func init() {
	versionCmd.Action(func(_ *kingpin.ParseContext) error {
		fmt.Println(version)
		return nil
	})
}
