package run

import (
	"errors"

	"github.com/Analog-Labs/evm-interpreter/command/helper"
)

const (
	programFlag   = "program"
	staticFlag    = "static"
	gasFlag       = "gas"
	backendFlag   = "backend"
	dataDirFlag   = "data-dir"
	transientFlag = "transient"
	logLevelFlag  = "log-level"
)

var (
	errNoProgram = errors.New("a program file must be supplied")
	errNoDataDir = errors.New("the selected backend requires a data directory")
)

type runParams struct {
	programPath string
	static      bool
	gasLimit    uint64
	backend     string
	dataDir     string
	transient   bool
	logLevel    string
}

func (p *runParams) validateFlags() error {
	if p.programPath == "" {
		return errNoProgram
	}

	if p.backend != helper.BackendMemory && p.dataDir == "" {
		return errNoDataDir
	}

	return nil
}
