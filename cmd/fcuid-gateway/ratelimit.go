package main

import (
	"github.com/spf13/cobra"

	fcuid "github.com/fluxsignal/fcuid-gateway"
)

var checkRateLimitCmd = &cobra.Command{
	Use:   "check-rate-limit <requesterId>",
	Short: "Check the lookup rate limit for a requester",
	Long: `Runs only the rate limiter for the lookup operation against the given
requester identity, consuming one request from its window, and prints the
decision as JSON. The exit code is informational.`,
	Args: cobra.ExactArgs(1),
	RunE: runCheckRateLimit,
}

func runCheckRateLimit(cmd *cobra.Command, args []string) error {
	gateway, err := newGateway()
	if err != nil {
		return err
	}
	defer gateway.Close()

	decision := gateway.CheckRateLimit(cmd.Context(), args[0], fcuid.OperationLookup)
	return printJSON(decision)
}
