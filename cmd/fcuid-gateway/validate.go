package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	fcuid "github.com/fluxsignal/fcuid-gateway"
)

var validateCmd = &cobra.Command{
	Use:   "validate <identifier>",
	Short: "Validate an FCUID identifier",
	Long: `Runs the full validation pipeline against a candidate identifier:
format check, rate limit, and the advisory pattern and timing heuristics.
Prints the result as JSON. Exits 0 when the identifier is valid, 1 otherwise.`,
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

func runValidate(cmd *cobra.Command, args []string) error {
	gateway, err := newGateway()
	if err != nil {
		return err
	}
	defer gateway.Close()

	// The local CLI caller is the operator; treat it as authenticated.
	requester := fcuid.Requester{ID: "local", Authenticated: true}
	result := gateway.Validate(cmd.Context(), args[0], requester)

	if err := printJSON(result); err != nil {
		return err
	}
	if !result.Valid {
		return errCommandFailed
	}
	return nil
}

// printJSON writes v to stdout as indented JSON
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
