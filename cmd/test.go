package cmd

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/s0up4200/deskctl/desk"
)

// testCmd checks connectivity and credentials
var testCmd = &cobra.Command{
	Use:   "test",
	Short: "Test the connection to desk",
	RunE:  runTest,
}

func runTest(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	page, ok, err := desk.Execute[desk.Page[desk.Group]](ctx, client, desk.NewRequest(http.MethodGet, "groups"), "")
	if err != nil {
		var apiErr *desk.APIError
		if errors.As(err, &apiErr) && apiErr.IsUnauthorized() {
			return fmt.Errorf("desk rejected the credentials: %w", err)
		}
		return fmt.Errorf("connection test failed: %w", err)
	}
	if !ok {
		return fmt.Errorf("connection test failed: desk refused the request")
	}

	fmt.Fprintf(out, "✓ Connected to %s\n", client.BaseURL())
	fmt.Fprintf(out, "  Groups: %d\n", page.TotalEntries)
	printRateLimit(out, client.RateLimit())
	return nil
}
