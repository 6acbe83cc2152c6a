package main

import (
	"os"

	"github.com/druedada/projecte-final/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
