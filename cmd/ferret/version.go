package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/ferret"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of ferret",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("ferret version %s\n", strings.TrimSpace(ferret.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
