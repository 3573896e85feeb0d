package main

import "github.com/spf13/cobra"

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print a security report of lookup activity",
	Long: `Summarizes the current-window request counts of all tracked lookup
rate-limit entries and prints the report as JSON.`,
	Args: cobra.NoArgs,
	RunE: runReport,
}

func runReport(cmd *cobra.Command, args []string) error {
	gateway, err := newGateway()
	if err != nil {
		return err
	}
	defer gateway.Close()

	return printJSON(gateway.GenerateReport(cmd.Context()))
}
