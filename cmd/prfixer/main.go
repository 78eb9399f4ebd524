package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/alanmeadows/prfixer/internal/cli"
)

func main() {
	err := cli.Execute()
	if err == nil {
		return
	}
	var exitErr *cli.ExitError
	if !errors.As(err, &exitErr) {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	os.Exit(cli.ExitCode(err))
}
