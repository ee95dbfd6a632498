package commands

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/tally/internal/prompt"
	"github.com/cleared-dev/tally/internal/store"
	"github.com/cleared-dev/tally/internal/validate"
)

func newUpdateCommand(a *app) *cobra.Command {
	var description, amount, category, date string
	var notes, payment, location string
	var recurring bool

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change fields of an expense",
		Long:  "Change fields of an expense. Only the flags given are changed; invalid values are reported and the field keeps its value.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			var c store.Changes
			flags := cmd.Flags()
			if flags.Changed("description") {
				c.Description = &description
			}
			if flags.Changed("amount") {
				d, err := parseAmount(amount)
				if err != nil {
					return err
				}
				c.Amount = &d
			}
			if flags.Changed("category") {
				c.Category = &category
			}
			if flags.Changed("date") {
				if !validate.IsValidDate(date) {
					return fmt.Errorf("invalid date %q: want YYYY-MM-DD", date)
				}
				c.Date = &date
			}
			if flags.Changed("notes") {
				c.Notes = &notes
			}
			if flags.Changed("payment") {
				c.PaymentMethod = &payment
			}
			if flags.Changed("location") {
				c.Location = &location
			}
			if flags.Changed("recurring") {
				c.Recurring = &recurring
			}
			if c == (store.Changes{}) {
				return errors.New("nothing to update: give at least one field flag")
			}

			res, err := a.open().Update(id, c)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(res.Applied) > 0 {
				fmt.Fprintf(out, "Updated %s of expense %d\n", strings.Join(res.Applied, ", "), id)
			}
			if err := a.saved(); err != nil {
				return err
			}
			if len(res.Rejected) > 0 {
				return fmt.Errorf("rejected invalid %s", strings.Join(res.Rejected, ", "))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&description, "description", "d", "", "new description")
	cmd.Flags().StringVarP(&amount, "amount", "a", "", "new amount")
	cmd.Flags().StringVarP(&category, "category", "c", "", "new category")
	cmd.Flags().StringVar(&date, "date", "", "new date as YYYY-MM-DD")
	cmd.Flags().StringVar(&notes, "notes", "", "new notes (empty clears)")
	cmd.Flags().StringVar(&payment, "payment", "", "new payment method (empty means Cash)")
	cmd.Flags().StringVar(&location, "location", "", "new location (empty clears)")
	cmd.Flags().BoolVar(&recurring, "recurring", false, "recurring flag")

	return cmd
}

func newDeleteCommand(a *app) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an expense after confirmation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			pending, err := a.open().StageDelete(id)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if !yes {
				a.output(cmd).details(pending.Expense())
				ok, err := prompt.New(cmd.InOrStdin(), out).Bool("Delete this expense?")
				if err != nil && !errors.Is(err, prompt.ErrClosed) {
					return err
				}
				if !ok {
					pending.Cancel()
					fmt.Fprintln(out, "Deletion cancelled.")
					return nil
				}
			}
			if err := pending.Confirm(); err != nil {
				return err
			}
			fmt.Fprintf(out, "Deleted expense %d\n", id)
			return a.saved()
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")

	return cmd
}

func newDuplicateCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "duplicate <id>",
		Short: "Copy an expense to a new one dated today",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			dup, err := a.open().Duplicate(id)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added expense %d: %s\n", dup.ID(), dup)
			return a.saved()
		},
	}
}

func newClearCommand(a *app) *cobra.Command {
	var confirm string

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove every expense",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := a.open()
			out := cmd.OutOrStdout()
			if s.Len() == 0 {
				fmt.Fprintln(out, "No expenses found.")
				return nil
			}

			if !cmd.Flags().Changed("confirm") {
				label := fmt.Sprintf("This removes all %d expense(s). Type '%s' to confirm: ", s.Len(), ClearPhrase)
				var err error
				confirm, err = prompt.New(cmd.InOrStdin(), out).Line(label)
				if err != nil && !errors.Is(err, prompt.ErrClosed) {
					return err
				}
			}
			if confirm != ClearPhrase {
				fmt.Fprintln(out, "Clear cancelled.")
				return nil
			}

			n := s.Len()
			s.Clear()
			fmt.Fprintf(out, "Removed %d expense(s)\n", n)
			return a.saved()
		},
	}

	cmd.Flags().StringVar(&confirm, "confirm", "", fmt.Sprintf("skip the prompt by passing %q", ClearPhrase))

	return cmd
}
