package main

import (
	"os"

	"github.com/i2i-labs/tobi-backend/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
