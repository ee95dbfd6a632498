package store

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/tally/internal/model"
)

var hundred = decimal.NewFromInt(100)

// monthsPerYear turns a monthly recurring total into an annual projection.
var monthsPerYear = decimal.NewFromInt(12)

// Group is the aggregate for one key of a grouping.
type Group struct {
	Key     string
	Count   int
	Total   decimal.Decimal
	Average decimal.Decimal
	Share   decimal.Decimal // percent of the grand total
}

// RecurringReport summarizes the recurring subset.
type RecurringReport struct {
	Expenses         []model.Expense
	Count            int
	Total            decimal.Decimal
	AnnualProjection decimal.Decimal
}

// Summary is the full analytics report.
type Summary struct {
	Count           int
	Total           decimal.Decimal
	Average         decimal.Decimal
	Highest         model.Expense
	Lowest          model.Expense
	ByCategory      []Group
	ByPaymentMethod []Group
	ByMonth         []Group
	Recurring       RecurringReport
}

// Total sums every amount.
func (s *Store) Total() decimal.Decimal { return Total(s.expenses) }

// Average is the mean amount, zero for an empty store.
func (s *Store) Average() decimal.Decimal { return Average(s.expenses) }

// Max returns the largest expense; the first one wins ties.
func (s *Store) Max() (model.Expense, bool) { return Max(s.expenses) }

// Min returns the smallest expense; the first one wins ties.
func (s *Store) Min() (model.Expense, bool) { return Min(s.expenses) }

// ByCategory groups totals by category.
func (s *Store) ByCategory() []Group { return GroupBy(s.expenses, model.Expense.Category) }

// ByPaymentMethod groups totals by payment method.
func (s *Store) ByPaymentMethod() []Group { return GroupBy(s.expenses, model.Expense.PaymentMethod) }

// ByMonth groups totals by YYYY-MM.
func (s *Store) ByMonth() []Group { return GroupBy(s.expenses, model.Expense.Month) }

// Recurring reports the recurring expenses.
func (s *Store) Recurring() RecurringReport { return Recurring(s.expenses) }

// Summary builds the complete report.
func (s *Store) Summary() Summary {
	sum := Summary{
		Count:           len(s.expenses),
		Total:           s.Total(),
		Average:         s.Average(),
		ByCategory:      s.ByCategory(),
		ByPaymentMethod: s.ByPaymentMethod(),
		ByMonth:         s.ByMonth(),
		Recurring:       s.Recurring(),
	}
	sum.Highest, _ = s.Max()
	sum.Lowest, _ = s.Min()
	return sum
}

func Total(list []model.Expense) decimal.Decimal {
	total := decimal.Zero
	for _, e := range list {
		total = total.Add(e.Amount())
	}
	return total
}

func Average(list []model.Expense) decimal.Decimal {
	if len(list) == 0 {
		return decimal.Zero
	}
	return Total(list).Div(decimal.NewFromInt(int64(len(list))))
}

func Max(list []model.Expense) (model.Expense, bool) {
	return pick(list, func(a, b decimal.Decimal) bool { return a.GreaterThan(b) })
}

func Min(list []model.Expense) (model.Expense, bool) {
	return pick(list, func(a, b decimal.Decimal) bool { return a.LessThan(b) })
}

func pick(list []model.Expense, better func(a, b decimal.Decimal) bool) (model.Expense, bool) {
	if len(list) == 0 {
		return model.Expense{}, false
	}
	best := list[0]
	for _, e := range list[1:] {
		if better(e.Amount(), best.Amount()) {
			best = e
		}
	}
	return best, true
}

// GroupBy aggregates list by key, sorted by key.
func GroupBy(list []model.Expense, key func(model.Expense) string) []Group {
	grand := Total(list)
	idx := make(map[string]int)
	var groups []Group
	for _, e := range list {
		k := key(e)
		i, ok := idx[k]
		if !ok {
			i = len(groups)
			idx[k] = i
			groups = append(groups, Group{Key: k, Total: decimal.Zero})
		}
		groups[i].Count++
		groups[i].Total = groups[i].Total.Add(e.Amount())
	}
	for i := range groups {
		g := &groups[i]
		g.Average = g.Total.Div(decimal.NewFromInt(int64(g.Count)))
		if grand.IsPositive() {
			g.Share = g.Total.Mul(hundred).Div(grand)
		}
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Key < groups[j].Key })
	return groups
}

func Recurring(list []model.Expense) RecurringReport {
	r := RecurringReport{Total: decimal.Zero}
	for _, e := range list {
		if e.Recurring() {
			r.Expenses = append(r.Expenses, e)
			r.Total = r.Total.Add(e.Amount())
		}
	}
	r.Count = len(r.Expenses)
	r.AnnualProjection = r.Total.Mul(monthsPerYear)
	return r
}
