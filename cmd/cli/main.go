package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		if strings.Contains(err.Error(), "unknown command") {
			fmt.Fprintf(os.Stderr, "%s %s\n\nRun 'docchat --help' for usage.\n", color.RedString("✗"), err)
		}
		os.Exit(1)
	}
}
