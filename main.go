package main

import (
	"os"

	"github.com/anaqatech/brand-landing/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
