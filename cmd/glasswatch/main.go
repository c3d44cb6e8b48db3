// Command glasswatch is the operator CLI for the hazard report core.
package main

import (
	"os"

	"github.com/glasswatch/glasswatch/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		os.Exit(cli.GetExitCode(err))
	}
}
