package main

import (
	"fmt"

	"warehousenow/image"

	"github.com/spf13/cobra"
)

func newImageCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "image",
		Short: "Container image tooling",
	}
	cmd.AddCommand(newImageCheckCmd())
	return cmd
}

func newImageCheckCmd() *cobra.Command {
	exp := image.DefaultExpectations()
	cmd := &cobra.Command{
		Use:   "check [Dockerfile]",
		Short: "Validate the Dockerfile against the runtime contract",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "Dockerfile"
			if len(args) == 1 {
				path = args[0]
			}
			c, err := image.ParseFile(path)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			violations := c.Validate(exp)
			if len(violations) == 0 {
				fmt.Fprintf(out, "%s: ok (port %d, user %s)\n", path, exp.Port, c.User)
				return nil
			}
			for _, v := range violations {
				fmt.Fprintf(out, "%s: %s\n", path, v)
			}
			return &exitError{code: 1, err: fmt.Errorf("%s: %d contract violation(s)", path, len(violations))}
		},
	}
	cmd.Flags().IntVar(&exp.Port, "port", exp.Port, "port the image must expose")
	cmd.Flags().DurationVar(&exp.Policy.Interval, "interval", exp.Policy.Interval, "expected HEALTHCHECK --interval")
	cmd.Flags().DurationVar(&exp.Policy.Timeout, "timeout", exp.Policy.Timeout, "expected HEALTHCHECK --timeout")
	cmd.Flags().DurationVar(&exp.Policy.StartPeriod, "start-period", exp.Policy.StartPeriod, "expected HEALTHCHECK --start-period")
	cmd.Flags().IntVar(&exp.Policy.Retries, "retries", exp.Policy.Retries, "expected HEALTHCHECK --retries")
	return cmd
}
