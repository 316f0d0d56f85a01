package main

import (
	"os"

	"github.com/shuhei10/whquiz/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
