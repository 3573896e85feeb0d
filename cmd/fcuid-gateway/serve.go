package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/fluxsignal/fcuid-gateway/server"
)

var (
	flagAddr       string
	flagTrustProxy bool
	flagProxyCount int
	flagAPIKeyHash string
	flagFloodRate  int
	flagFloodBurst int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the gateway as an HTTP service",
	Long: `Serves identifier validation, rate-limit checks, and security reports
over HTTP until interrupted. Requester identities default to the client IP;
callers presenting the configured API key are treated as authenticated.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagAddr, "addr", server.DefaultAddr,
		"listen address")
	serveCmd.Flags().BoolVar(&flagTrustProxy, "trust-proxy", false,
		"trust X-Forwarded-For / X-Real-IP headers (only behind a trusted proxy)")
	serveCmd.Flags().IntVar(&flagProxyCount, "trusted-proxy-count", 0,
		"number of trusted proxies in the X-Forwarded-For chain")
	serveCmd.Flags().StringVar(&flagAPIKeyHash, "api-key-hash", "",
		"bcrypt hash of the pre-shared API key (empty disables authentication)")
	serveCmd.Flags().IntVar(&flagFloodRate, "flood-rate", server.DefaultFloodRate,
		"transport-level requests per second per client IP (negative disables)")
	serveCmd.Flags().IntVar(&flagFloodBurst, "flood-burst", server.DefaultFloodBurst,
		"transport-level burst per client IP")
}

func runServe(cmd *cobra.Command, args []string) error {
	gateway, err := newGateway()
	if err != nil {
		return err
	}
	defer gateway.Close()

	srv, err := server.New(gateway, server.Config{
		Addr:              flagAddr,
		TrustProxy:        flagTrustProxy,
		TrustedProxyCount: flagProxyCount,
		APIKeyHash:        flagAPIKeyHash,
		FloodRate:         flagFloodRate,
		FloodBurst:        flagFloodBurst,
	})
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case <-stop:
	}

	ctx, cancel := context.WithTimeout(context.Background(), server.DefaultShutdownTimeout)
	defer cancel()
	return srv.Shutdown(ctx)
}
