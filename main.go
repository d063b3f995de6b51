package main

import (
	"os"

	"github.com/ovms-community/ovms-bridge/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
