package cli

import (
	"github.com/spf13/cobra"
)

// NewRootCommand builds the kid-relay command tree. Running it without a
// subcommand starts the relay server.
func NewRootCommand() *cobra.Command {
	var envFile string

	root := &cobra.Command{
		Use:   "kid-relay",
		Short: "Relay for the k-ID game API",
		Long: `kid-relay forwards a fixed set of k-ID API calls from game clients,
attaching the server side API key so it never reaches the client.

Configuration is read from the environment (and an optional .env file):
  KID_KEY       upstream API key (required)
  PORT          listen port (default 8080)
  KID_API_URL   upstream base URL`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), envFile)
		},
	}

	root.PersistentFlags().StringVar(&envFile, "env-file", "", "Load environment from this file instead of .env")
	root.CompletionOptions.DisableDefaultCmd = true

	root.AddCommand(newServeCommand(&envFile))
	root.AddCommand(newRoutesCommand())

	return root
}
