package main

import (
	"os"

	"pushfile/internal/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
