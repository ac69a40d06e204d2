package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/obhq/obbuild/internal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		// A debug session's exit status passes through unchanged.
		var exitErr *cmd.ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
