package probe

import (
	"bytes"
	"fmt"

	"github.com/Analog-Labs/evm-interpreter/command/helper"
)

type ProbeResult struct {
	Support string `json:"support"`
	Reason  string `json:"reason,omitempty"`
}

func (r *ProbeResult) GetOutput() string {
	var buffer bytes.Buffer

	buffer.WriteString("\n[CAPABILITY PROBE]\n")

	rows := []string{
		fmt.Sprintf("Transient storage|%s", r.Support),
	}

	if r.Reason != "" {
		rows = append(rows, fmt.Sprintf("Reason|%s", r.Reason))
	}

	buffer.WriteString(helper.FormatKV(rows))

	return buffer.String()
}
