package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/wifibear/wifiaudit/cmd"
)

var version = "dev"

func main() {
	if err := cmd.Execute(version); err != nil {
		var exitErr *cmd.ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
