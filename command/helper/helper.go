package helper

import (
	"fmt"
	"os"
	"strings"

	"github.com/Analog-Labs/evm-interpreter/helper/hex"
	"github.com/Analog-Labs/evm-interpreter/storage"
	"github.com/Analog-Labs/evm-interpreter/storage/boltdb"
	"github.com/Analog-Labs/evm-interpreter/storage/leveldb"
	"github.com/Analog-Labs/evm-interpreter/storage/memory"
	"github.com/hashicorp/go-hclog"
	"github.com/ryanuber/columnize"
)

// Supported storage backend names
const (
	BackendMemory  = "memory"
	BackendLevelDB = "leveldb"
	BackendBoltDB  = "boltdb"
)

// SetupStorage opens the persistent store selected by the backend flag.
// The memory backend ignores the path.
func SetupStorage(backend, path string, logger hclog.Logger) (*storage.Storage, error) {
	switch backend {
	case BackendMemory:
		return memory.NewMemoryStorage(logger)
	case BackendLevelDB:
		return leveldb.NewLevelDBStorage(path, logger)
	case BackendBoltDB:
		return boltdb.NewBoltDBStorage(path, logger)
	default:
		return nil, fmt.Errorf("unknown storage backend: %s", backend)
	}
}

// ReadProgramFile reads a bytecode program from a file holding its hex form
func ReadProgramFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	return hex.DecodeHex(strings.TrimSpace(string(data)))
}

// NewCLILogger creates the logger the CLI commands hand to the sandbox
func NewCLILogger(level string) hclog.Logger {
	return hclog.New(&hclog.LoggerOptions{
		Name:  "evm-interpreter",
		Level: hclog.LevelFromString(level),
	})
}

// FormatKV formats key value pairs:
//
// Key = Value
//
// Key = <none>
func FormatKV(in []string) string {
	columnConf := columnize.DefaultConfig()
	columnConf.Empty = "<none>"
	columnConf.Glue = " = "

	return columnize.Format(in, columnConf)
}
