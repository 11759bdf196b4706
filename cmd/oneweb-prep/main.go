package main

import (
	"fmt"
	"os"

	"github.com/mfenderov/oneweb-prep/cmd/oneweb-prep/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
