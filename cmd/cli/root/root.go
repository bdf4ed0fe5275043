package root

import (
	"github.com/spf13/cobra"
)

// New returns the landlab root command with its persistent flags. Feature
// packages attach their commands to it.
func New() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "landlab",
		Short:         "Landscape Lab CLI",
		Long:          "Command line interface for interacting with the Landscape Lab API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().Bool("json", false, "print raw JSON instead of tables")
	return cmd
}
