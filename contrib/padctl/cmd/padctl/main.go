package main

import (
	"fmt"
	"os"

	"github.com/padws/pad.go/contrib/padctl"
)

func main() {
	if err := padctl.NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
