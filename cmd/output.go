package cmd

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/s0up4200/deskctl/desk"
)

func sortCases(cases []desk.Case) {
	slices.SortFunc(cases, func(a, b desk.Case) int {
		return a.ID - b.ID
	})
}

func printCases(w io.Writer, cases []desk.Case) {
	fmt.Fprintln(w, strings.Repeat("━", 85))
	fmt.Fprintf(w, "%-8s %-10s %-4s %-40s %s\n", "ID", "STATUS", "PRI", "SUBJECT", "CUSTOMER")
	fmt.Fprintln(w, strings.Repeat("━", 85))

	for _, c := range cases {
		subject := c.Subject
		if len(subject) > 38 {
			subject = subject[:35] + "..."
		}
		customer := "-"
		if c.Customer != nil {
			customer = c.Customer.DisplayName()
		}
		fmt.Fprintf(w, "%-8d %-10s %-4d %-40s %s\n", c.ID, c.Status, c.Priority, subject, customer)
		if len(c.Labels) > 0 {
			fmt.Fprintf(w, "         Labels: %s\n", strings.Join(c.Labels, ", "))
		}
	}
	fmt.Fprintln(w, strings.Repeat("━", 85))
}
