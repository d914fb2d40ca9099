package cmd

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/spf13/cobra"

	"github.com/s0up4200/deskctl/desk"
)

var noteBody string

// notesCmd groups the note commands
var notesCmd = &cobra.Command{
	Use:   "notes",
	Short: "Manage internal notes on cases",
}

var notesAddCmd = &cobra.Command{
	Use:   "add CASE_ID",
	Short: "Add an internal note to a case",
	Args:  cobra.ExactArgs(1),
	RunE:  runNotesAdd,
}

func init() {
	notesAddCmd.Flags().StringVarP(&noteBody, "body", "b", "", "note text")
	_ = notesAddCmd.MarkFlagRequired("body")

	notesCmd.AddCommand(notesAddCmd)
}

func runNotesAdd(cmd *cobra.Command, args []string) error {
	ids, err := parseIDs(args)
	if err != nil {
		return err
	}
	if strings.TrimSpace(noteBody) == "" {
		return fmt.Errorf("note body cannot be empty")
	}

	body, err := json.Marshal(desk.NewNote(noteBody))
	if err != nil {
		return fmt.Errorf("failed to encode note: %w", err)
	}

	resource := fmt.Sprintf("cases/%d/notes", ids[0])
	note, ok, err := desk.Execute[desk.Note](cmd.Context(), client, desk.NewRequest(http.MethodPost, resource), string(body))
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("note on case %d: %w", ids[0], desk.ErrValidationRejected)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✓ Added note %d to case %d\n", note.ID, ids[0])
	return nil
}
