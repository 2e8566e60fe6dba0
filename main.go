package main

import (
	"os"

	"github.com/dsagrinders/dsagrinders/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
