// Command dupes finds files with identical content and deletes a chosen subset.
package main

import (
	"fmt"
	"os"

	"github.com/idelchi/dupes/internal/cli"
)

// version is set at build time.
var version = "unknown - unofficial & generated by unknown"

func main() {
	if err := cli.New(version).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
