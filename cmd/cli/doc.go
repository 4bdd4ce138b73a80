// Package cli constructs the prflow command-line interface: the Cobra root command, configuration
// loading, logger setup, and the open-pr, squash, and review subcommands.
package cli
