package main

import (
	"os"

	"github.com/maxkimambo/cbci/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
