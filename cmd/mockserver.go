package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	mockServerOpenAPI string
	mockServerAddr    string
)

// mockServerCmd serves a stateful mock of the documented API.
var mockServerCmd = &cobra.Command{
	Use:   "mock-server",
	Short: "Serve a mock of the API described by an OpenAPI document",
	Long: `Starts an HTTP server that answers every documented operation with sample
data. POST stores the request body under a generated id so later GET, PUT,
PATCH and DELETE calls on the resource see it. Operations that require
authentication check the configured auth header, and the special tokens
"expired-token", "invalid-token" and "readonly-token" trigger 401 and 403
responses.

The server also exposes /healthz and Prometheus metrics on /metrics. It runs
until interrupted.`,
	Args: cobra.NoArgs,
	RunE: runMockServer,
}

func init() {
	rootCmd.AddCommand(mockServerCmd)

	mockServerCmd.Flags().StringVar(&mockServerOpenAPI, "openapi", "", "OpenAPI document (.yaml, .yml or .json)")
	mockServerCmd.Flags().StringVar(&mockServerAddr, "addr", "", "Listen address (defaults to the configured mock address)")
	_ = mockServerCmd.MarkFlagRequired("openapi")
}

func runMockServer(cmd *cobra.Command, args []string) error {
	if err := requireFile("OpenAPI file", mockServerOpenAPI); err != nil {
		return err
	}
	application, err := newApplication(cmd, "")
	if err != nil {
		return err
	}

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	addr := mockServerAddr
	if addr == "" {
		addr = application.Settings().Mock.Addr
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Serving mock API on http://%s (Ctrl+C to stop)\n", addr)
	return application.ServeMock(ctx, mockServerOpenAPI, addr)
}
