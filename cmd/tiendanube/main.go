package main

import (
	"os"

	"github.com/Innovate-group/tiendanubecli/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
