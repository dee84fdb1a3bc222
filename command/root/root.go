package root

import (
	"fmt"
	"os"

	"github.com/Analog-Labs/evm-interpreter/command/probe"
	"github.com/Analog-Labs/evm-interpreter/command/run"
	"github.com/Analog-Labs/evm-interpreter/command/version"
	"github.com/spf13/cobra"
)

type RootCommand struct {
	baseCmd *cobra.Command
}

func NewRootCommand() *RootCommand {
	rootCommand := &RootCommand{
		baseCmd: &cobra.Command{
			Use:   "evm-interpreter",
			Short: "A sandboxed stack-machine bytecode interpreter over a borrowed key/value store",
		},
	}

	rootCommand.registerSubCommands()

	return rootCommand
}

func (rc *RootCommand) registerSubCommands() {
	rc.baseCmd.AddCommand(
		version.GetCommand(),
		run.GetCommand(),
		probe.GetCommand(),
	)
}

func (rc *RootCommand) Execute() {
	if err := rc.baseCmd.Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)

		os.Exit(1)
	}
}
