package main

import (
	"os"

	"github.com/bnema/adminkit/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
