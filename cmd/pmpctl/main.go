// pmpctl is the command-line interface to the PMP/ePMP rule-table engine.
package main

import (
	"context"
	"os"

	"riscvpmp/internal/cli"
	"riscvpmp/internal/cli/cmd"
)

var commands = []cli.Command{
	cmd.Decide(),
	cmd.Dump(),
	cmd.Reset(),
	cmd.Scenario(),
}

func main() {
	result :=
		cli.New(context.Background()).
			WithLogger(os.Stderr).
			WithCommands(commands).
			WithHelp(cmd.Help(commands)).
			Execute(os.Args[1:])

	os.Exit(result)
}
