package main

import (
	"os"

	"github.com/edusurvey/edusurvey/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
