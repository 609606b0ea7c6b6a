package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the groundwork version",
	RunE: func(cmd *cobra.Command, args []string) error {
		if IsJSONOutput() {
			return WriteOutput(os.Stdout, struct {
				Version string `json:"version"`
			}{Version})
		}
		fmt.Printf("groundwork %s\n", Version)
		return nil
	},
}
