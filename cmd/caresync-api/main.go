package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "caresync-api",
	Short: "CareSync API - Care rostering and shift documentation",
	Long:  `A production-ready Go API for coordinating care teams, scheduling shifts and documenting care work.`,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
