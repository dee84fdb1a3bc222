package probe

import (
	"errors"
	"fmt"

	"github.com/Analog-Labs/evm-interpreter/command/helper"
	"github.com/Analog-Labs/evm-interpreter/sandbox"
	"github.com/Analog-Labs/evm-interpreter/state/runtime"
	"github.com/spf13/cobra"
)

const (
	gasFlag       = "gas"
	transientFlag = "transient"
	logLevelFlag  = "log-level"
)

var params = &probeParams{}

type probeParams struct {
	gasLimit  uint64
	transient bool
	logLevel  string
}

func GetCommand() *cobra.Command {
	probeCmd := &cobra.Command{
		Use:   "probe",
		Short: "Reports whether the host carries the transient storage capability",
		Args:  cobra.NoArgs,
		RunE:  runCommand,
	}

	setFlags(probeCmd)

	return probeCmd
}

func setFlags(cmd *cobra.Command) {
	cmd.Flags().Uint64Var(
		&params.gasLimit,
		gasFlag,
		sandbox.DefaultGasLimit,
		"the gas budget of the probe",
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

func runCommand(_ *cobra.Command, _ []string) error {
	logger := helper.NewCLILogger(params.logLevel)

	store, err := helper.SetupStorage(helper.BackendMemory, "", logger)
	if err != nil {
		return err
	}
	defer store.Close()

	box := sandbox.NewSandbox(logger, store, &sandbox.Config{
		GasLimit:  params.gasLimit,
		Transient: params.transient,
	})

	support, err := box.ProbeTransientStorage()

	result := &ProbeResult{Support: support.String()}
	if err != nil {
		result.Reason = err.Error()
	}

	fmt.Println(result.GetOutput())

	// an indeterminate probe on a low budget is a valid command outcome
	if err != nil && !errors.Is(err, runtime.ErrInsufficientProbeBudget) {
		return err
	}

	return nil
}
