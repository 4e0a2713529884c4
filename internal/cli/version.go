package cli

import (
	"github.com/spf13/cobra"

	"github.com/dshills/booksearch-mcp/internal/storage"
)

func newVersionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Args:  cobra.NoArgs,
		// Version needs neither config nor storage
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("booksearch version %s\n", a.version)
			cmd.Printf("Build Time: %s\n", a.buildTime)
			cmd.Printf("Build Mode: %s\n", storage.BuildMode)
			cmd.Printf("SQLite Driver: %s\n", storage.DriverName)
		},
	}
}
