package main

import (
	"context"
	"fmt"
	"time"

	goGate "github.com/MrEthical07/goGate"
	"github.com/spf13/cobra"
)

func parseSeverity(s string) (goGate.LintSeverity, error) {
	switch s {
	case "info":
		return goGate.LintInfo, nil
	case "warn":
		return goGate.LintWarn, nil
	case "high":
		return goGate.LintHigh, nil
	default:
		return 0, fmt.Errorf("unknown severity %q (info, warn, high)", s)
	}
}

func newCheckCmd(st *cliState) *cobra.Command {
	var (
		failOn string
		ping   bool
	)

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate and lint the configuration",
		Long: `Loads the configuration, prints lint warnings and exits non-zero when a
warning at or above --fail-on is found. With --ping the Redis registry is
contacted as well.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			threshold, err := parseSeverity(failOn)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			ws := st.config.Lint()
			for _, w := range ws {
				fmt.Fprintf(out, "%-4s %s: %s\n", w.Severity, w.Code, w.Message)
			}

			if ping {
				g, err := goGate.New().WithConfig(st.config).WithLogger(st.logger).Build()
				if err != nil {
					return err
				}
				defer g.Close()
				if g.Sessions() == nil {
					return fmt.Errorf("--ping needs Redis (set redis.addr or REDIS_ADDR)")
				}
				ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
				defer cancel()
				latency, err := g.Sessions().Ping(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "redis ok (%s)\n", latency.Round(time.Microsecond))
			}

			if err := ws.AsError(threshold); err != nil {
				return err
			}
			fmt.Fprintln(out, "config ok")
			return nil
		},
	}

	cmd.Flags().StringVar(&failOn, "fail-on", "high", "Lowest lint severity that fails the check (info, warn, high)")
	cmd.Flags().BoolVar(&ping, "ping", false, "Also ping the Redis session registry")
	return cmd
}
