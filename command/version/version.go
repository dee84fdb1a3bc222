package version

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	// Version is the main version at the moment
	Version = "0.1.0"

	// Commit is the git commit that was compiled
	Commit string

	// BuildTime is the time of the build
	BuildTime string
)

func GetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Returns the current version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			result := &VersionResult{
				Version:   Version,
				Commit:    Commit,
				BuildTime: BuildTime,
			}

			fmt.Println(result.GetOutput())
		},
	}
}
