package run

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/Analog-Labs/evm-interpreter/command/helper"
	"github.com/Analog-Labs/evm-interpreter/helper/hex"
	"github.com/Analog-Labs/evm-interpreter/sandbox"
	"github.com/Analog-Labs/evm-interpreter/state"
)

type RunResult struct {
	Output  string   `json:"output"`
	GasUsed uint64   `json:"gasUsed"`
	Status  string   `json:"status"`
	Reason  string   `json:"reason,omitempty"`
	Logs    []LogRow `json:"logs,omitempty"`
}

type LogRow struct {
	Address string   `json:"address"`
	Topics  []string `json:"topics"`
	Data    string   `json:"data"`
}

func newRunResult(ret []byte, gasUsed uint64, logs []*state.Log, err error) *RunResult {
	result := &RunResult{
		Output:  hex.EncodeToHex(ret),
		GasUsed: gasUsed,
		Status:  "success",
	}

	var revertErr *sandbox.RevertError

	switch {
	case err == nil:
	case errors.As(err, &revertErr):
		result.Status = "reverted"
		result.Reason = hex.EncodeToHex(revertErr.Reason)
	default:
		result.Status = "aborted"
		result.Reason = err.Error()
	}

	for _, log := range logs {
		row := LogRow{
			Address: hex.EncodeToHex(log.Address.Bytes()),
			Data:    hex.EncodeToHex(log.Data),
		}

		for _, topic := range log.Topics {
			row.Topics = append(row.Topics, hex.EncodeToHex(topic.Bytes()))
		}

		result.Logs = append(result.Logs, row)
	}

	return result
}

func (r *RunResult) GetOutput() string {
	var buffer bytes.Buffer

	buffer.WriteString("\n[EXECUTION RESULT]\n")

	rows := []string{
		fmt.Sprintf("Status|%s", r.Status),
		fmt.Sprintf("Gas used|%d", r.GasUsed),
		fmt.Sprintf("Output|%s", r.Output),
	}

	if r.Reason != "" {
		rows = append(rows, fmt.Sprintf("Reason|%s", r.Reason))
	}

	buffer.WriteString(helper.FormatKV(rows))

	if len(r.Logs) > 0 {
		buffer.WriteString("\n\n[LOGS]\n")

		for i, log := range r.Logs {
			buffer.WriteString(helper.FormatKV([]string{
				fmt.Sprintf("Log|%d", i),
				fmt.Sprintf("Address|%s", log.Address),
				fmt.Sprintf("Topics|%v", log.Topics),
				fmt.Sprintf("Data|%s", log.Data),
			}))
			buffer.WriteString("\n")
		}
	}

	return buffer.String()
}
