package commands

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/tally/internal/model"
	"github.com/cleared-dev/tally/internal/store"
	"github.com/cleared-dev/tally/internal/validate"
)

const descriptionWidth = 28

// printer renders expenses and reports as plain text.
type printer struct {
	out      io.Writer
	currency string
}

func (p printer) money(d decimal.Decimal) string {
	return validate.FormatCurrency(p.currency, d)
}

// table prints one row per expense followed by count and total.
func (p printer) table(list []model.Expense) {
	if len(list) == 0 {
		fmt.Fprintln(p.out, "No expenses found.")
		return
	}
	tw := tabwriter.NewWriter(p.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDATE\tDESCRIPTION\tCATEGORY\tAMOUNT\tPAYMENT\tREC")
	for _, e := range list {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			e.ID(), e.Date(), truncate(e.Description(), descriptionWidth), e.Category(),
			p.money(e.Amount()), e.PaymentMethod(), yesNo(e.Recurring(), "Y", ""))
	}
	tw.Flush()
	fmt.Fprintf(p.out, "\n%d expense(s), total %s\n", len(list), p.money(store.Total(list)))
}

// details prints every field of one expense.
func (p printer) details(e model.Expense) {
	tw := tabwriter.NewWriter(p.out, 0, 0, 1, ' ', 0)
	fmt.Fprintf(tw, "ID:\t%d\n", e.ID())
	fmt.Fprintf(tw, "Description:\t%s\n", e.Description())
	fmt.Fprintf(tw, "Amount:\t%s\n", p.money(e.Amount()))
	fmt.Fprintf(tw, "Category:\t%s\n", e.Category())
	fmt.Fprintf(tw, "Date:\t%s\n", e.Date())
	fmt.Fprintf(tw, "Payment method:\t%s\n", e.PaymentMethod())
	fmt.Fprintf(tw, "Recurring:\t%s\n", yesNo(e.Recurring(), "Yes", "No"))
	if e.Location() != "" {
		fmt.Fprintf(tw, "Location:\t%s\n", e.Location())
	}
	if e.Notes() != "" {
		fmt.Fprintf(tw, "Notes:\t%s\n", e.Notes())
	}
	tw.Flush()
}

// groups prints a breakdown table under a heading.
func (p printer) groups(title string, groups []store.Group) {
	fmt.Fprintf(p.out, "\n%s\n", title)
	if len(groups) == 0 {
		fmt.Fprintln(p.out, "  (none)")
		return
	}
	tw := tabwriter.NewWriter(p.out, 0, 0, 2, ' ', tabwriter.AlignRight)
	for _, g := range groups {
		fmt.Fprintf(tw, "  %s\t%d\t%s\t%s%%\t\n", g.Key, g.Count, p.money(g.Total), g.Share.StringFixed(1))
	}
	tw.Flush()
}

// summary prints the analytics report.
func (p printer) summary(s store.Summary) {
	if s.Count == 0 {
		fmt.Fprintln(p.out, "No expenses to summarize.")
		return
	}
	fmt.Fprintln(p.out, "=== Summary ===")
	fmt.Fprintf(p.out, "Expenses:  %d\n", s.Count)
	fmt.Fprintf(p.out, "Total:     %s\n", p.money(s.Total))
	fmt.Fprintf(p.out, "Average:   %s\n", p.money(s.Average))
	fmt.Fprintf(p.out, "Highest:   %s (#%d %s)\n", p.money(s.Highest.Amount()), s.Highest.ID(), s.Highest.Description())
	fmt.Fprintf(p.out, "Lowest:    %s (#%d %s)\n", p.money(s.Lowest.Amount()), s.Lowest.ID(), s.Lowest.Description())

	p.groups("By category:", s.ByCategory)
	p.groups("By payment method:", s.ByPaymentMethod)
	p.groups("By month:", s.ByMonth)

	fmt.Fprintln(p.out)
	p.recurringTotals(s.Recurring)
}

// recurring prints the recurring subset and its projection.
func (p printer) recurring(r store.RecurringReport) {
	if r.Count == 0 {
		fmt.Fprintln(p.out, "No recurring expenses.")
		return
	}
	p.table(r.Expenses)
	p.recurringTotals(r)
}

func (p printer) recurringTotals(r store.RecurringReport) {
	fmt.Fprintf(p.out, "Recurring: %d expense(s), %s per month, %s projected per year\n",
		r.Count, p.money(r.Total), p.money(r.AnnualProjection))
}

// categories prints each category with its usage count.
func (p printer) categories(names []string, counts map[string]int) {
	if len(names) == 0 {
		fmt.Fprintln(p.out, "No categories yet.")
		return
	}
	tw := tabwriter.NewWriter(p.out, 0, 0, 2, ' ', 0)
	for _, c := range names {
		fmt.Fprintf(tw, "%s\t%d\n", c, counts[c])
	}
	tw.Flush()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return strings.TrimSpace(string(r[:n-3])) + "..."
}

func yesNo(b bool, yes, no string) string {
	if b {
		return yes
	}
	return no
}
