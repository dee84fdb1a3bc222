package main

import (
	"github.com/Analog-Labs/evm-interpreter/command/root"
)

func main() {
	root.NewRootCommand().Execute()
}
