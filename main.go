package main

import (
	"fmt"
	"os"

	"github.com/johnmillerATcodemag-com/AI-Assisted-Brownfield-Development/cmd"
)

func main() {
	if err := cmd.Execute(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
