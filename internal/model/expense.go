package model

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/tally/internal/validate"
)

// DefaultPaymentMethod is used when none is given.
const DefaultPaymentMethod = "Cash"

// CopySuffix marks the description of a duplicated expense.
const CopySuffix = " (Copy)"

// ErrInvalidExpense is wrapped by every construction failure.
var ErrInvalidExpense = errors.New("invalid expense")

// Fields holds the user-editable attributes of an expense.
type Fields struct {
	Description   string
	Amount        decimal.Decimal
	Category      string
	Date          string // YYYY-MM-DD
	Notes         string
	Recurring     bool
	PaymentMethod string // "Cash" when empty
	Location      string
}

// Expense is a single spending record. Its identity is ID; every other
// attribute is changed through a validating setter so that amount > 0 and a
// valid date hold for the whole lifetime of the value.
type Expense struct {
	id            int
	description   string
	amount        decimal.Decimal
	category      string
	date          string
	notes         string
	recurring     bool
	paymentMethod string
	location      string
}

// New builds an expense with the given id after validating f.
func New(id int, f Fields) (Expense, error) {
	if id <= 0 {
		return Expense{}, fmt.Errorf("%w: id %d must be positive", ErrInvalidExpense, id)
	}

	e := Expense{id: id}
	if !e.SetDescription(f.Description) {
		return Expense{}, fmt.Errorf("%w: description %q", ErrInvalidExpense, f.Description)
	}
	if !e.SetAmount(f.Amount) {
		return Expense{}, fmt.Errorf("%w: amount %s must be positive", ErrInvalidExpense, f.Amount)
	}
	if !e.SetCategory(f.Category) {
		return Expense{}, fmt.Errorf("%w: category %q", ErrInvalidExpense, f.Category)
	}
	if !e.SetDate(f.Date) {
		return Expense{}, fmt.Errorf("%w: date %q", ErrInvalidExpense, f.Date)
	}
	if !e.SetNotes(f.Notes) {
		return Expense{}, fmt.Errorf("%w: notes %q", ErrInvalidExpense, f.Notes)
	}
	if !e.SetPaymentMethod(f.PaymentMethod) {
		return Expense{}, fmt.Errorf("%w: payment method %q", ErrInvalidExpense, f.PaymentMethod)
	}
	if !e.SetLocation(f.Location) {
		return Expense{}, fmt.Errorf("%w: location %q", ErrInvalidExpense, f.Location)
	}
	e.recurring = f.Recurring
	return e, nil
}

func (e Expense) ID() int                 { return e.id }
func (e Expense) Description() string     { return e.description }
func (e Expense) Amount() decimal.Decimal { return e.amount }
func (e Expense) Category() string        { return e.category }
func (e Expense) Date() string            { return e.date }
func (e Expense) Notes() string           { return e.notes }
func (e Expense) Recurring() bool         { return e.recurring }
func (e Expense) PaymentMethod() string   { return e.paymentMethod }
func (e Expense) Location() string        { return e.location }

// Month returns the YYYY-MM prefix of the date.
func (e Expense) Month() string {
	if len(e.date) < 7 {
		return e.date
	}
	return e.date[:7]
}

// Fields returns the editable attributes.
func (e Expense) Fields() Fields {
	return Fields{
		Description:   e.description,
		Amount:        e.amount,
		Category:      e.category,
		Date:          e.date,
		Notes:         e.notes,
		Recurring:     e.recurring,
		PaymentMethod: e.paymentMethod,
		Location:      e.location,
	}
}

// SetDescription rejects values that are empty once trimmed.
func (e *Expense) SetDescription(s string) bool {
	return setRequired(&e.description, s)
}

// SetCategory rejects values that are empty once trimmed.
func (e *Expense) SetCategory(s string) bool {
	return setRequired(&e.category, s)
}

// SetAmount rejects zero and negative amounts. Amounts are kept in cents.
func (e *Expense) SetAmount(d decimal.Decimal) bool {
	d = d.Round(2)
	if !d.IsPositive() {
		return false
	}
	e.amount = d
	return true
}

// SetDate rejects anything that is not a real YYYY-MM-DD date.
func (e *Expense) SetDate(s string) bool {
	s = validate.Normalize(s)
	if !validate.IsValidDate(s) {
		return false
	}
	e.date = s
	return true
}

func (e *Expense) SetNotes(s string) bool {
	return setOptional(&e.notes, s)
}

// SetPaymentMethod falls back to DefaultPaymentMethod for blank input.
func (e *Expense) SetPaymentMethod(s string) bool {
	if validate.Normalize(s) == "" {
		e.paymentMethod = DefaultPaymentMethod
		return true
	}
	return setOptional(&e.paymentMethod, s)
}

func (e *Expense) SetLocation(s string) bool {
	return setOptional(&e.location, s)
}

func (e *Expense) SetRecurring(b bool) {
	e.recurring = b
}

// Copy returns a duplicate carrying a new id and date. The description is
// suffixed with CopySuffix; all other attributes are kept.
func (e Expense) Copy(id int, date string) Expense {
	c := e
	c.id = id
	c.description = e.description + CopySuffix
	if validate.IsValidDate(date) {
		c.date = date
	}
	return c
}

// Equal compares every attribute, amounts by value.
func (e Expense) Equal(o Expense) bool {
	return e.id == o.id &&
		e.description == o.description &&
		e.amount.Equal(o.amount) &&
		e.category == o.category &&
		e.date == o.date &&
		e.notes == o.notes &&
		e.recurring == o.recurring &&
		e.paymentMethod == o.paymentMethod &&
		e.location == o.location
}

func (e Expense) String() string {
	return fmt.Sprintf("#%d %s %s [%s] %s", e.id, e.date, e.amount.StringFixed(2), e.category, e.description)
}

func setRequired(dst *string, s string) bool {
	s = validate.Normalize(s)
	if s == "" || !validate.Storable(s) {
		return false
	}
	*dst = s
	return true
}

func setOptional(dst *string, s string) bool {
	s = validate.Normalize(s)
	if !validate.Storable(s) {
		return false
	}
	*dst = s
	return true
}
