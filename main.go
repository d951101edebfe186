package main

import (
	"os"

	"github.com/minebase/yggdrasil/cmd"
)

// set via ldflags on release builds
var version = "dev"

func main() {
	if err := cmd.Execute(version); err != nil {
		os.Exit(1)
	}
}
