package sandbox

import (
	"errors"

	"github.com/Analog-Labs/evm-interpreter/state/runtime"
)

// TransientSupport is the tri-state outcome of the capability probe
type TransientSupport int

const (
	// TransientSupported means the host recognized the transient load
	TransientSupported TransientSupport = iota

	// TransientUnsupported means the host rejected the transient load
	// as an unsupported instruction
	TransientUnsupported

	// TransientIndeterminate means the budget was too low to
	// distinguish "unsupported" from "out of gas"
	TransientIndeterminate
)

func (ts TransientSupport) String() string {
	switch ts {
	case TransientSupported:
		return "supported"
	case TransientUnsupported:
		return "unsupported"
	default:
		return "indeterminate"
	}
}

// ProbeTransientStorage reports whether the host carries the transient
// storage capability by running a two-instruction micro-program (push a
// zero key, load it transiently) under a bounded budget. The probe first
// verifies the budget covers the worst case: without that check an
// out-of-gas abort would be indistinguishable from a missing capability.
func (s *Sandbox) ProbeTransientStorage() (TransientSupport, error) {
	if s.config.GasLimit < probeGas {
		return TransientIndeterminate, runtime.ErrInsufficientProbeBudget
	}

	program := runtime.NewProgram(probeProgram(), probeGas, runtime.ModeReadOnly)

	res := s.txn.Apply(program)

	switch {
	case res.Succeeded():
		return TransientSupported, nil

	case errors.Is(res.Err, runtime.ErrCapabilityUnsupported):
		return TransientUnsupported, nil

	case errors.Is(res.Err, runtime.ErrOutOfGas):
		return TransientIndeterminate, runtime.ErrInsufficientProbeBudget

	default:
		return TransientIndeterminate, res.Err
	}
}
