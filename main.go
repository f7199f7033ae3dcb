package main

import (
	"os"

	"github.com/divya16-bit/ApplyBee/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
