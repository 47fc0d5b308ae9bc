package main

import (
	"os"

	"github.com/ariel-frischer/bumpchanges/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
