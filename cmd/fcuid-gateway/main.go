// Command fcuid-gateway runs the FCUID Identifier Security Gateway from the
// command line: one-shot validation, rate-limit checks, security reports,
// and a long-lived HTTP service mode.
package main

import (
	"errors"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	fcuid "github.com/fluxsignal/fcuid-gateway"
	"github.com/fluxsignal/fcuid-gateway/instrumentation"
)

// version is set at build time via -ldflags
var version = "dev"

// errCommandFailed signals a contract-significant non-zero exit after the
// command has already printed its structured output
var errCommandFailed = errors.New("command failed")

var (
	flagQuota   int
	flagWindow  time.Duration
	flagAudit   bool
	flagVerbose bool
	flagMetrics bool
)

var rootCmd = &cobra.Command{
	Use:   "fcuid-gateway",
	Short: "FCUID identifier security gateway",
	Long: `fcuid-gateway validates FCUID identifiers, enforces per-requester
rate quotas, flags synthetic identifiers and automated request bursts, and
reports on lookup activity.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	Args:          cobra.ArbitraryArgs,
	RunE:          runRoot,
}

// runRoot handles invocations that name no valid subcommand. Usage goes to
// stderr and the process exits 1; help requested explicitly (--help, help)
// still prints to stdout and exits 0.
func runRoot(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		cmd.PrintErrf("Error: unknown command %q for %q\n", args[0], cmd.CommandPath())
	}
	cmd.PrintErr(cmd.UsageString())
	return errCommandFailed
}

func init() {
	rootCmd.PersistentFlags().IntVar(&flagQuota, "quota", fcuid.DefaultRateLimitQuota,
		"requests allowed per window per requester")
	rootCmd.PersistentFlags().DurationVar(&flagWindow, "window", fcuid.DefaultRateLimitWindow,
		"fixed rate-limit window duration")
	rootCmd.PersistentFlags().BoolVar(&flagAudit, "audit", false,
		"enable security audit logging")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false,
		"enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&flagMetrics, "metrics", false,
		"enable OpenTelemetry instrumentation")

	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(checkRateLimitCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(serveCmd)
}

// newGateway builds a gateway from the persistent flags
func newGateway() (*fcuid.Gateway, error) {
	level := slog.LevelInfo
	if flagVerbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	cfg := fcuid.Config{
		RateLimit: fcuid.RateLimitConfig{
			Quota:  flagQuota,
			Window: flagWindow,
		},
		Audit:  fcuid.AuditConfig{Enabled: flagAudit},
		Logger: logger,
	}

	if flagMetrics {
		inst, err := instrumentation.New(instrumentation.Config{
			ServiceName:    "fcuid-gateway",
			ServiceVersion: version,
			Enabled:        true,
		})
		if err != nil {
			return nil, err
		}
		cfg.Instrumentation = inst
	}

	return fcuid.New(cfg)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errCommandFailed) {
			rootCmd.PrintErrln("Error:", err)
		}
		os.Exit(1)
	}
}
