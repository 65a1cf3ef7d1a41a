package main

import (
	"os"

	"github.com/idilsaglam/grocery/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
