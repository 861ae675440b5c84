// logweave - Log Merging and Filtering Tool
//
// logweave reads log files from many sources, recognizes their timestamps and
// weaves them into one deduplicated, sorted and filtered stream.
package main

import (
	"os"

	"github.com/ccollicutt/logweave/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
