// gh-next-release is a gh CLI extension. Installing it with
// "gh extension install" builds this package.
package main

import (
	"os"

	"github.com/ryo246912/gh-next-release/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
