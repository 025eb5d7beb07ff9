// Command confql resolves typed values from a hierarchical document tree.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/confql/internal/cli"
)

func main() {
	err := cli.NewRootCommand().Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
	os.Exit(cli.GetExitCode(err))
}
