package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// exitError encerra com código próprio sem chamar os.Exit dentro do RunE.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err != nil {
		return e.err.Error()
	}
	return fmt.Sprintf("exit status %d", e.code)
}

func (e *exitError) Unwrap() error { return e.err }

func newRootCmd() *cobra.Command {
	var envFile string

	root := &cobra.Command{
		Use:           "warehousenow",
		Short:         "Warehouse search API and container tooling",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&envFile, "env-file", ".env", "optional dotenv file read before the environment")

	root.AddCommand(
		newServeCmd(&envFile),
		newHealthcheckCmd(&envFile),
		newImageCmd(),
	)
	return root
}
