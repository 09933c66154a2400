// Command nikactl holds operator tools: dumping the active plan table and replaying signed payment
// notifications against a running server.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var Version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:           "nikactl",
		Short:         "Operator tools for nika.id",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(plansCmd())
	rootCmd.AddCommand(simulateWebhookCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
