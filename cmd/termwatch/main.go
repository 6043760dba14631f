package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/Iron-Ham/termwatch/internal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		var exit *cmd.ExitCodeError
		if errors.As(err, &exit) {
			os.Exit(exit.Code)
		}
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
