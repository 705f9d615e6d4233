// Command genealogy runs and checks virus strain genealogy scenarios.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/genealogy/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		if !cli.Reported(err) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(cli.GetExitCode(err))
	}
}
