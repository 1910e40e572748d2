package main

import (
	"fmt"
	"os"

	"github.com/bnema/keyviz/cmd"
	"github.com/bnema/keyviz/internal/errkind"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(errkind.ExitCode(err))
	}
}
