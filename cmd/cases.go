package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/s0up4200/deskctl/desk"
	"github.com/s0up4200/deskctl/filter"
)

const maxConcurrentFetches = 4

var (
	caseFile string
	perPage  int
)

// casesCmd groups the case commands
var casesCmd = &cobra.Command{
	Use:   "cases",
	Short: "Read and create cases",
}

var casesGetCmd = &cobra.Command{
	Use:   "get ID...",
	Short: "Show one or more cases",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runCasesGet,
}

var casesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the first page of cases, optionally filtered",
	Long: `List the first page of cases. The filter is an expr expression evaluated
against each case, for example:

  deskctl cases list --filter 'Status == "open" and hasLabel("vip")'
  deskctl cases list --preset urgent`,
	RunE: runCasesList,
}

var casesCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a case from a JSON file",
	RunE:  runCasesCreate,
}

func init() {
	casesListCmd.Flags().StringVarP(&filterExpr, "filter", "f", "", "filter expression")
	casesListCmd.Flags().StringVarP(&preset, "preset", "p", "", "use a preset filter from config")
	casesListCmd.Flags().IntVar(&perPage, "per-page", 50, "number of cases to request")

	casesCreateCmd.Flags().StringVar(&caseFile, "file", "", "JSON file describing the case")
	_ = casesCreateCmd.MarkFlagRequired("file")

	casesCmd.AddCommand(casesGetCmd, casesListCmd, casesCreateCmd)
}

func runCasesGet(cmd *cobra.Command, args []string) error {
	ids, err := parseIDs(args)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentFetches)

	var mu sync.Mutex
	found := make([]desk.Case, 0, len(ids))
	var missing []int

	for _, id := range ids {
		g.Go(func() error {
			req := desk.NewRequest(http.MethodGet, "cases/"+strconv.Itoa(id))
			c, ok, err := desk.Execute[desk.Case](ctx, client, req, "")
			if err != nil {
				var apiErr *desk.APIError
				if errors.As(err, &apiErr) && apiErr.IsNotFound() {
					ok = false
				} else {
					return fmt.Errorf("case %d: %w", id, err)
				}
			}

			mu.Lock()
			defer mu.Unlock()
			if ok {
				found = append(found, c)
			} else {
				missing = append(missing, id)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	sortCases(found)
	printCases(cmd.OutOrStdout(), found)
	for _, id := range missing {
		logger.Warn().Int("case_id", id).Msg("Case not found")
	}
	return nil
}

func runCasesList(cmd *cobra.Command, args []string) error {
	presets := make(map[string]string, len(cfg.Filter.Presets))
	for name := range cfg.Filter.Presets {
		expr, _ := cfg.Preset(name)
		presets[name] = expr
	}

	expr, ok := filter.Resolve(filterExpr, strings.ToLower(preset), presets, cfg.Filter.DefaultExpression)
	if !ok {
		return fmt.Errorf("unknown filter preset: %s", preset)
	}

	var match filter.Filter
	if expr != "" {
		compiled, err := filter.NewExprCompiler().Compile(expr)
		if err != nil {
			return fmt.Errorf("invalid filter expression: %w", err)
		}
		match = compiled
		logger.Info().Str("filter", expr).Msg("Filtering cases")
	}

	resource := "cases"
	if perPage > 0 {
		resource += "?per_page=" + strconv.Itoa(perPage)
	}

	page, ok, err := desk.Execute[desk.Page[desk.Case]](cmd.Context(), client, desk.NewRequest(http.MethodGet, resource), "")
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("desk refused to list cases")
	}

	cases := page.Entries()
	if match != nil {
		if cases, err = filter.Apply(match, cases); err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	if len(cases) == 0 {
		fmt.Fprintln(out, "No cases found matching the filter criteria.")
		return nil
	}

	fmt.Fprintf(out, "Showing %d of %d cases:\n", len(cases), page.TotalEntries)
	printCases(out, cases)
	return nil
}

func runCasesCreate(cmd *cobra.Command, args []string) error {
	raw, err := os.ReadFile(caseFile)
	if err != nil {
		return fmt.Errorf("failed to read case file: %w", err)
	}

	c, err := loadCase(raw)
	if err != nil {
		return err
	}

	body, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode case: %w", err)
	}

	created, ok, err := desk.Execute[desk.Case](cmd.Context(), client, desk.NewRequest(http.MethodPost, "cases"), string(body))
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("case %q: %w", c.Subject, desk.ErrValidationRejected)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✓ Created case %d: %s\n", created.ID, created.Subject)
	return nil
}

// loadCase decodes a case file on top of desk's defaults
func loadCase(raw []byte) (*desk.Case, error) {
	c := desk.NewCase("")
	c.Message = desk.NewMessage("", "", "", "")
	if err := json.Unmarshal(raw, c); err != nil {
		return nil, fmt.Errorf("invalid case file: %w", err)
	}
	if c.Subject == "" {
		return nil, fmt.Errorf("invalid case file: subject is required")
	}
	if m := c.Message; m != nil && m.Body == "" && m.Subject == "" && m.From == "" {
		c.Message = nil
	}
	return c, nil
}

func parseIDs(args []string) ([]int, error) {
	ids := make([]int, 0, len(args))
	seen := make(map[int]bool, len(args))
	for _, arg := range args {
		id, err := strconv.Atoi(arg)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("invalid case ID: %s", arg)
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	return ids, nil
}
