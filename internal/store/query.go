package store

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/tally/internal/model"
	"github.com/cleared-dev/tally/internal/validate"
)

// SortKey selects the ordering used by Sorted.
type SortKey string

const (
	SortByDate     SortKey = "date"     // newest first
	SortByAmount   SortKey = "amount"   // largest first
	SortByCategory SortKey = "category" // alphabetical
	SortByID       SortKey = "id"       // ascending
)

// SortKeys lists the accepted keys in menu order.
var SortKeys = []SortKey{SortByDate, SortByAmount, SortByCategory, SortByID}

// Sorted returns a sorted copy of the collection. Equal keys keep their
// insertion order.
func (s *Store) Sorted(key SortKey) []model.Expense {
	return SortExpenses(s.All(), key)
}

// SortExpenses sorts list in place and returns it.
func SortExpenses(list []model.Expense, key SortKey) []model.Expense {
	var less func(a, b model.Expense) bool
	switch key {
	case SortByDate:
		less = func(a, b model.Expense) bool { return a.Date() > b.Date() }
	case SortByAmount:
		less = func(a, b model.Expense) bool { return a.Amount().GreaterThan(b.Amount()) }
	case SortByCategory:
		less = func(a, b model.Expense) bool { return a.Category() < b.Category() }
	default:
		less = func(a, b model.Expense) bool { return a.ID() < b.ID() }
	}
	sort.SliceStable(list, func(i, j int) bool { return less(list[i], list[j]) })
	return list
}

// Criteria is an AND-combination of optional filters. Zero values disable a
// filter. Reversed ranges are swapped.
type Criteria struct {
	Description   string // substring, case-insensitive
	Category      string // exact, case-insensitive
	PaymentMethod string // exact, case-insensitive
	MinAmount     *decimal.Decimal
	MaxAmount     *decimal.Decimal
	StartDate     string
	EndDate       string
}

// Empty reports whether no filter is set.
func (c Criteria) Empty() bool {
	return c.Description == "" && c.Category == "" && c.PaymentMethod == "" &&
		c.MinAmount == nil && c.MaxAmount == nil && c.StartDate == "" && c.EndDate == ""
}

func (c Criteria) normalized() Criteria {
	c.Description = validate.Normalize(c.Description)
	c.Category = validate.Normalize(c.Category)
	c.PaymentMethod = validate.Normalize(c.PaymentMethod)
	if c.MinAmount != nil && c.MaxAmount != nil && c.MinAmount.GreaterThan(*c.MaxAmount) {
		c.MinAmount, c.MaxAmount = c.MaxAmount, c.MinAmount
	}
	if c.StartDate != "" && c.EndDate != "" && c.StartDate > c.EndDate {
		c.StartDate, c.EndDate = c.EndDate, c.StartDate
	}
	return c
}

// Match reports whether e satisfies every set filter.
func (c Criteria) Match(e model.Expense) bool {
	if c.Description != "" && !validate.ContainsFold(e.Description(), c.Description) {
		return false
	}
	if c.Category != "" && !validate.EqualFold(e.Category(), c.Category) {
		return false
	}
	if c.PaymentMethod != "" && !validate.EqualFold(e.PaymentMethod(), c.PaymentMethod) {
		return false
	}
	if c.MinAmount != nil && e.Amount().LessThan(*c.MinAmount) {
		return false
	}
	if c.MaxAmount != nil && e.Amount().GreaterThan(*c.MaxAmount) {
		return false
	}
	if c.StartDate != "" && e.Date() < c.StartDate {
		return false
	}
	if c.EndDate != "" && e.Date() > c.EndDate {
		return false
	}
	return true
}

// Search returns the expenses matching every filter in c, in insertion order.
func (s *Store) Search(c Criteria) []model.Expense {
	return Filter(s.expenses, c)
}

// Filter returns a new slice of the expenses matching c.
func Filter(list []model.Expense, c Criteria) []model.Expense {
	c = c.normalized()
	var out []model.Expense
	for _, e := range list {
		if c.Match(e) {
			out = append(out, e)
		}
	}
	return out
}

// FilterDescription matches a case-insensitive substring of the description.
func (s *Store) FilterDescription(term string) []model.Expense {
	return s.Search(Criteria{Description: term})
}

// FilterCategory matches the category exactly, ignoring case.
func (s *Store) FilterCategory(category string) []model.Expense {
	return s.Search(Criteria{Category: category})
}

// FilterPaymentMethod matches the payment method exactly, ignoring case.
func (s *Store) FilterPaymentMethod(method string) []model.Expense {
	return s.Search(Criteria{PaymentMethod: method})
}

// FilterDateRange returns expenses dated within [start, end].
func (s *Store) FilterDateRange(start, end string) []model.Expense {
	return s.Search(Criteria{StartDate: start, EndDate: end})
}

// FilterAmountRange returns expenses with min <= amount <= max.
func (s *Store) FilterAmountRange(lo, hi decimal.Decimal) []model.Expense {
	return s.Search(Criteria{MinAmount: &lo, MaxAmount: &hi})
}
