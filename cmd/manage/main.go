package main

import (
	"fmt"
	"os"

	"github.com/emonotate/emonotate/internal/bootstrap"
	"github.com/samber/do"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "manage",
	Short: "emonotate management commands",
	Long: `Administrative tasks for an emonotate deployment.

Configuration is read the same way as the server: .env, config.yaml and
the environment.`,
	SilenceUsage: true,
}

var inj *do.Injector

// container builds the DI container on first use so --help works offline.
func container() *do.Injector {
	if inj == nil {
		inj = bootstrap.BuildContainer()
	}
	return inj
}

func init() {
	rootCmd.AddCommand(prepareCmd, createSuperuserCmd, createResearcherCmd, seedCmd, mailRelayCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
