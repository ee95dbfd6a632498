package commands

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/cleared-dev/tally/internal/model"
	"github.com/cleared-dev/tally/internal/validate"
)

func newAddCommand(a *app) *cobra.Command {
	var f model.Fields
	var amount string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record an expense",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := parseAmount(amount)
			if err != nil {
				return err
			}
			f.Amount = d
			if err := checkStorable(f.Description, f.Category, f.Notes, f.PaymentMethod, f.Location); err != nil {
				return err
			}

			s := a.open()
			e, err := s.Add(f)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added expense %d: %s\n", e.ID(), e)
			return a.saved()
		},
	}

	cmd.Flags().StringVarP(&f.Description, "description", "d", "", "what the money was spent on (required)")
	cmd.Flags().StringVarP(&amount, "amount", "a", "", "amount, e.g. 12.50 (required)")
	cmd.Flags().StringVarP(&f.Category, "category", "c", "", "category (required)")
	cmd.Flags().StringVar(&f.Date, "date", "", "date as YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&f.Notes, "notes", "", "free-form notes")
	cmd.Flags().BoolVar(&f.Recurring, "recurring", false, "mark as a monthly recurring expense")
	cmd.Flags().StringVar(&f.PaymentMethod, "payment", model.DefaultPaymentMethod, "payment method")
	cmd.Flags().StringVar(&f.Location, "location", "", "where the expense happened")
	_ = cmd.MarkFlagRequired("description")
	_ = cmd.MarkFlagRequired("amount")
	_ = cmd.MarkFlagRequired("category")

	return cmd
}

func newQuickAddCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "quick-add <description> <amount> [category]",
		Short: "Record an expense dated today, defaulting to the most used category",
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := parseAmount(args[1])
			if err != nil {
				return err
			}
			var category string
			if len(args) == 3 {
				category = args[2]
			}
			if err := checkStorable(args[0], category); err != nil {
				return err
			}

			e, err := a.open().QuickAdd(args[0], d, category)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added expense %d: %s\n", e.ID(), e)
			return a.saved()
		},
	}
}

func parseAmount(s string) (decimal.Decimal, error) {
	d, ok := validate.ParseAmount(s)
	if !ok {
		return decimal.Zero, fmt.Errorf("invalid amount %q: want a positive number with at most two decimals", s)
	}
	return d, nil
}

// checkStorable refuses text the data file cannot hold.
func checkStorable(values ...string) error {
	for _, v := range values {
		if !validate.Storable(v) {
			return fmt.Errorf("invalid value %q: must not contain %q or line breaks", v, validate.Delimiter)
		}
	}
	return nil
}
