// Command linescan-bench runs the line-splitting kernel benchmark and
// prints its fixed throughput table to stdout.
package main

import (
	"fmt"
	"os"

	linesplit "github.com/larry-the-table-guy/linesplit-bench"
)

func main() {
	if err := linesplit.Run(os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "linescan-bench:", err)
		os.Exit(1)
	}
}
