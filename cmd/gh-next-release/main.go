package main

import (
	"os"

	"github.com/ryo246912/gh-next-release/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
