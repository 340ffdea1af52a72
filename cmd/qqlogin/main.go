// Package main provides the CLI entry point for the QQ login client.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

// Version is set at build time via ldflags.
var Version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:     "qqlogin",
		Short:   "qqlogin - QQ mobile login wire client",
		Version: Version,
	}

	rootCmd.AddCommand(loginCmd())
	rootCmd.AddCommand(decodeCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
