package cmd

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/s0up4200/deskctl/desk"
)

var (
	threshold     int
	watchInterval time.Duration
)

// limitsCmd reports the API rate limit
var limitsCmd = &cobra.Command{
	Use:   "limits",
	Short: "Show how much of the API rate limit is left",
	Long: `Show the rate limit desk reported for the last call. When nothing has been
observed yet a cheap probe call is made first.

With --watch the check repeats until interrupted, which is useful together
with the metrics endpoint.`,
	RunE: runLimits,
}

func init() {
	limitsCmd.Flags().IntVarP(&threshold, "threshold", "t", 0, "nearing threshold in percent (default from config)")
	limitsCmd.Flags().DurationVarP(&watchInterval, "watch", "w", 0, "repeat the check at this interval")
}

func runLimits(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	for {
		exceeding, err := client.IsExceedingAPILimits(ctx)
		if err != nil {
			return err
		}
		nearing, err := client.IsNearingAPILimits(ctx, threshold)
		if err != nil {
			return err
		}

		printRateLimit(out, client.RateLimit())
		switch {
		case exceeding:
			fmt.Fprintln(out, "✗ Exceeding API limits")
		case nearing:
			fmt.Fprintln(out, "! Nearing API limits")
		default:
			fmt.Fprintln(out, "✓ Within API limits")
		}

		if watchInterval <= 0 {
			return nil
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(watchInterval):
		}

		// Refresh the state with a real call
		if _, err := client.Call(ctx, cfg.Desk.ProbeResource, http.MethodGet); err != nil {
			return err
		}
	}
}

func printRateLimit(w io.Writer, state desk.RateLimitState) {
	if !state.Observed() {
		fmt.Fprintln(w, "  Rate limit: not reported")
		return
	}
	fmt.Fprintf(w, "  Rate limit: %d/%d remaining, resets in %s\n",
		state.Remaining, state.Limit, state.ResetWindow())
}
