package main

import (
	"os"

	"github.com/Cyriloo7/Interviewer/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
