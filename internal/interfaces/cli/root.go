// Package cli is the command line front end for browsing the supply catalog.
package cli

import (
	"github.com/spf13/cobra"
)

// NewRoot builds the browse command tree
func NewRoot() *cobra.Command {
	var flags globalFlags
	cmd := &cobra.Command{
		Use:           "browse",
		Short:         "Browse excursions from the supply API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&flags.currency, "currency", "", "ISO 4217 currency (default from config)")
	cmd.PersistentFlags().StringVar(&flags.language, "language", "", "BCP 47 language tag (default from config)")
	cmd.PersistentFlags().DurationVar(&flags.timeout, "timeout", defaultTimeout, "overall command timeout")

	cmd.AddCommand(newSearchCmd(&flags))
	cmd.AddCommand(newProductCmd(&flags))
	cmd.AddCommand(newDestinationsCmd(&flags))
	return cmd
}
