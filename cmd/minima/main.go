package main

import (
	"log"

	"github.com/minimaproject/minima/cmd/minima/cmd"
	"github.com/minimaproject/minima/internal/common"
)

func main() {
	common.ConfigureCommandLineLogging()
	root := cmd.RootCmd()
	if err := root.Execute(); err != nil {
		log.Fatal(err)
	}
}
