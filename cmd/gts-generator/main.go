// Package main provides the CLI entrypoint for gts-generator.
//
// gts-generator is a schema codegen tool that:
//   - Scans Go packages for structs annotated with gts:schema directives
//   - Validates declarations and their inheritance chains
//   - Composes JSON Schema artifacts with chained GTS identifiers
//   - Writes artifacts atomically under a guarded output root
package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var verbosity int

	cmd := &cobra.Command{
		Use:   "gts-generator",
		Short: "JSON Schema generator for GTS-typed entities",
		Long: `gts-generator scans Go source trees for structs annotated with
gts:schema directives and emits JSON Schema artifacts carrying
globally unique, chained type identifiers.

Identifiers follow the form

    gts.<vendor>.<package>.<namespace>.<type>.v<major>[.<minor>]~

and inherited types append one segment per level of the chain.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogging(verbosity)
		},
	}

	cmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v",
		"increase log verbosity (repeat for more)")

	cmd.AddCommand(
		generateCmd(),
		validateIDCmd(),
		parseIDCmd(),
		matchIDCmd(),
		uuidCmd(),
		composeInstanceIDCmd(),
	)

	return cmd
}

// newLogger builds the process logger writing to stderr so command output
// on stdout stays machine-readable.
func newLogger() zerolog.Logger {
	return zerolog.New(os.Stderr).With().Timestamp().Logger()
}

func setupLogging(verbosity int) {
	switch verbosity {
	case 0:
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case 1:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
}
