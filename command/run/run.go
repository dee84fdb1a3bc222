package run

import (
	"errors"
	"fmt"

	"github.com/Analog-Labs/evm-interpreter/command/helper"
	"github.com/Analog-Labs/evm-interpreter/sandbox"
	"github.com/spf13/cobra"
)

var params = &runParams{}

func GetCommand() *cobra.Command {
	runCmd := &cobra.Command{
		Use:     "run",
		Short:   "Executes a bytecode program inside the sandbox",
		Args:    cobra.NoArgs,
		PreRunE: runPreRun,
		RunE:    runCommand,
	}

	setFlags(runCmd)

	return runCmd
}

func setFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(
		&params.programPath,
		programFlag,
		"",
		"the file holding the hex form of the program to execute",
	)

	cmd.Flags().BoolVar(
		&params.static,
		staticFlag,
		false,
		"execute the program in read-only mode",
	)

	cmd.Flags().Uint64Var(
		&params.gasLimit,
		gasFlag,
		sandbox.DefaultGasLimit,
		"the gas budget of the invocation",
	)

	cmd.Flags().StringVar(
		&params.backend,
		backendFlag,
		helper.BackendMemory,
		fmt.Sprintf(
			"the persistent store backend (%s, %s or %s)",
			helper.BackendMemory, helper.BackendLevelDB, helper.BackendBoltDB,
		),
	)

	cmd.Flags().StringVar(
		&params.dataDir,
		dataDirFlag,
		"",
		"the path of the persistent store",
	)

	cmd.Flags().BoolVar(
		&params.transient,
		transientFlag,
		false,
		"equip the host with the transient storage capability",
	)

	cmd.Flags().StringVar(
		&params.logLevel,
		logLevelFlag,
		"INFO",
		"the log level of the command output",
	)
}

func runPreRun(_ *cobra.Command, _ []string) error {
	return params.validateFlags()
}

func runCommand(_ *cobra.Command, _ []string) error {
	code, err := helper.ReadProgramFile(params.programPath)
	if err != nil {
		return err
	}

	logger := helper.NewCLILogger(params.logLevel)

	store, err := helper.SetupStorage(params.backend, params.dataDir, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	box := sandbox.NewSandbox(logger, store, &sandbox.Config{
		GasLimit:  params.gasLimit,
		Transient: params.transient,
	})
	defer box.CloseScope()

	var ret []byte
	if params.static {
		ret, err = box.StaticCall(code)
	} else {
		ret, err = box.DelegatedCall(code)
	}

	result := newRunResult(ret, box.GasUsed(), box.Logs(), err)

	fmt.Println(result.GetOutput())

	// a reverted or aborted program is a valid command outcome
	var revertErr *sandbox.RevertError
	if err != nil && !errors.As(err, &revertErr) {
		return err
	}

	return nil
}
