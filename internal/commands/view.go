package commands

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/cleared-dev/tally/internal/store"
	"github.com/cleared-dev/tally/internal/validate"
)

func (a *app) output(cmd *cobra.Command) printer {
	return printer{out: cmd.OutOrStdout(), currency: a.cfg.Currency}
}

func newListCommand(a *app) *cobra.Command {
	var sortBy string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all expenses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := parseSortKey(sortBy)
			if err != nil {
				return err
			}
			a.output(cmd).table(a.open().Sorted(key))
			return nil
		},
	}

	cmd.Flags().StringVarP(&sortBy, "sort", "s", string(store.SortByID), "sort order: date, amount, category or id")

	return cmd
}

func newShowCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show every field of one expense",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			e, ok := a.open().FindByID(id)
			if !ok {
				return fmt.Errorf("%w: %d", store.ErrNotFound, id)
			}
			a.output(cmd).details(e)
			return nil
		},
	}
}

func newCategoriesCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List categories with their usage counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := a.open()
			a.output(cmd).categories(s.Categories(), s.CategoryCounts())
			return nil
		},
	}
}

func newRecurringCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "recurring",
		Short: "List recurring expenses with the annual projection",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a.output(cmd).recurring(a.open().Recurring())
			return nil
		},
	}
}

func newSummaryCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Show totals and breakdowns",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a.output(cmd).summary(a.open().Summary())
			return nil
		},
	}
}

func newSearchCommand(a *app) *cobra.Command {
	var c store.Criteria
	var minAmount, maxAmount string
	var sortBy string

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Find expenses matching every given filter",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if c.MinAmount, err = optionalAmount(minAmount); err != nil {
				return err
			}
			if c.MaxAmount, err = optionalAmount(maxAmount); err != nil {
				return err
			}
			for _, d := range []string{c.StartDate, c.EndDate} {
				if d != "" && !validate.IsValidDate(d) {
					return fmt.Errorf("invalid date %q: want YYYY-MM-DD", d)
				}
			}
			if c.Empty() {
				return errors.New("give at least one filter")
			}
			key, err := parseSortKey(sortBy)
			if err != nil {
				return err
			}
			a.output(cmd).table(store.SortExpenses(a.open().Search(c), key))
			return nil
		},
	}

	cmd.Flags().StringVarP(&c.Description, "description", "d", "", "description contains (case-insensitive)")
	cmd.Flags().StringVarP(&c.Category, "category", "c", "", "category (case-insensitive)")
	cmd.Flags().StringVar(&c.PaymentMethod, "payment", "", "payment method (case-insensitive)")
	cmd.Flags().StringVar(&minAmount, "min", "", "minimum amount, inclusive")
	cmd.Flags().StringVar(&maxAmount, "max", "", "maximum amount, inclusive")
	cmd.Flags().StringVar(&c.StartDate, "from", "", "first date, inclusive")
	cmd.Flags().StringVar(&c.EndDate, "to", "", "last date, inclusive")
	cmd.Flags().StringVarP(&sortBy, "sort", "s", string(store.SortByID), "sort order: date, amount, category or id")

	return cmd
}

func parseSortKey(s string) (store.SortKey, error) {
	for _, k := range store.SortKeys {
		if strings.EqualFold(s, string(k)) {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown sort order %q", s)
}

func parseID(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid expense id %q", s)
	}
	return id, nil
}

func optionalAmount(s string) (*decimal.Decimal, error) {
	if s == "" {
		return nil, nil
	}
	d, err := parseAmount(s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
