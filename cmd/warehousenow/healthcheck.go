package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"warehousenow/health"

	"github.com/spf13/cobra"
)

func newHealthcheckCmd(envFile *string) *cobra.Command {
	var (
		url    string
		watch  bool
		policy = health.DefaultPolicy()
	)
	cmd := &cobra.Command{
		Use:   "healthcheck",
		Short: "Probe the health endpoint (exit 0 healthy, 1 unhealthy)",
		Long: `Probe the health endpoint once, as the image HEALTHCHECK does.

With --watch, keep probing on the policy interval with Docker semantics:
failures inside the start period do not count, and --retries consecutive
failures mark the service unhealthy and exit 1.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !cmd.Flags().Changed("url") {
				v, err := newViper(*envFile)
				if err != nil {
					return err
				}
				url = v.GetString("health_url")
			}
			prober := health.HTTPProber{URL: url, Timeout: policy.Timeout}

			if !watch {
				if err := prober.Probe(cmd.Context()); err != nil {
					return &exitError{code: 1, err: err}
				}
				fmt.Fprintln(cmd.OutOrStdout(), "healthy")
				return nil
			}

			logger, err := newLogger(cmd.ErrOrStderr(), "info", "text")
			if err != nil {
				return err
			}
			logger = logger.WithPrefix("healthcheck")

			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			mon := health.NewMonitor(policy, time.Now())
			logger.Info("watching", "url", url, "interval", policy.Interval, "retries", policy.Retries)
			err = mon.Run(ctx, prober, func(s health.Status, perr error) {
				if perr != nil {
					logger.Warn("status changed", "status", s, "err", perr)
					return
				}
				logger.Info("status changed", "status", s)
			})
			switch {
			case errors.Is(err, health.ErrUnhealthy):
				return &exitError{code: 1, err: err}
			case errors.Is(err, context.Canceled):
				return nil
			default:
				return err
			}
		},
	}
	cmd.Flags().StringVar(&url, "url", health.DefaultURL, "health endpoint (env HEALTH_URL)")
	cmd.Flags().BoolVar(&watch, "watch", false, "keep probing and exit once unhealthy")
	cmd.Flags().DurationVar(&policy.Interval, "interval", policy.Interval, "time between probes in watch mode")
	cmd.Flags().DurationVar(&policy.Timeout, "timeout", policy.Timeout, "per-probe timeout")
	cmd.Flags().DurationVar(&policy.StartPeriod, "start-period", policy.StartPeriod, "grace period in which failures do not count")
	cmd.Flags().IntVar(&policy.Retries, "retries", policy.Retries, "consecutive failures before unhealthy")
	return cmd
}

