// Package prompt reads typed values from a line-oriented input, re-asking
// until the answer is valid.
package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/tally/internal/validate"
)

// ErrClosed is returned once the input has no more lines.
var ErrClosed = errors.New("input closed")

// Prompter asks questions on out and reads answers from in.
type Prompter struct {
	in  *bufio.Reader
	out io.Writer
}

// New creates a Prompter.
func New(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: bufio.NewReader(in), out: out}
}

// Line prints label and returns the next trimmed line.
func (p *Prompter) Line(label string) (string, error) {
	fmt.Fprint(p.out, label)
	line, err := p.in.ReadString('\n')
	switch {
	case err == nil:
	case errors.Is(err, io.EOF) && line != "":
		// last line without a newline
	case errors.Is(err, io.EOF):
		fmt.Fprintln(p.out)
		return "", ErrClosed
	default:
		return "", fmt.Errorf("reading input: %w", err)
	}
	return validate.Normalize(line), nil
}

// String asks until a non-empty answer is given, unless allowEmpty is set.
// Answers that cannot be stored are refused.
func (p *Prompter) String(label string, allowEmpty bool) (string, error) {
	for {
		s, err := p.Line(label)
		if err != nil {
			return "", err
		}
		switch {
		case !validate.Storable(s):
			p.errorf("Input cannot contain '%s'. Please try again.", validate.Delimiter)
		case s == "" && !allowEmpty:
			p.errorf("Input cannot be empty. Please try again.")
		default:
			return s, nil
		}
	}
}

// Amount asks for a positive amount with at most two decimals.
func (p *Prompter) Amount(label string) (decimal.Decimal, error) {
	for {
		s, err := p.Line(label)
		if err != nil {
			return decimal.Zero, err
		}
		if d, ok := validate.ParseAmount(s); ok {
			return d, nil
		}
		p.errorf("Please enter a valid positive amount (e.g., 10.50).")
	}
}

// OptionalAmount is Amount but accepts an empty answer as nil.
func (p *Prompter) OptionalAmount(label string) (*decimal.Decimal, error) {
	for {
		s, err := p.Line(label)
		if err != nil || s == "" {
			return nil, err
		}
		if d, ok := validate.ParseAmount(s); ok {
			return &d, nil
		}
		p.errorf("Please enter a valid positive amount or leave empty.")
	}
}

// Date asks for a YYYY-MM-DD date; an empty answer yields today.
func (p *Prompter) Date(label, today string) (string, error) {
	for {
		s, err := p.Line(label + " (YYYY-MM-DD) or press Enter for today: ")
		if err != nil {
			return "", err
		}
		if s == "" {
			return today, nil
		}
		if validate.IsValidDate(s) {
			return s, nil
		}
		p.errorf("Please enter a real date in YYYY-MM-DD format.")
	}
}

// OptionalDate asks for a date and accepts an empty answer as "".
func (p *Prompter) OptionalDate(label string) (string, error) {
	for {
		s, err := p.Line(label + " (YYYY-MM-DD or empty): ")
		if err != nil || s == "" {
			return "", err
		}
		if validate.IsValidDate(s) {
			return s, nil
		}
		p.errorf("Please enter a real date in YYYY-MM-DD format or leave empty.")
	}
}

// Int asks for an integer within [lo, hi].
func (p *Prompter) Int(label string, lo, hi int) (int, error) {
	for {
		s, err := p.Line(label)
		if err != nil {
			return 0, err
		}
		n, convErr := strconv.Atoi(s)
		switch {
		case convErr != nil:
			p.errorf("Please enter a valid number.")
		case n < lo || n > hi:
			p.errorf("Please enter a number between %d and %d.", lo, hi)
		default:
			return n, nil
		}
	}
}

// Bool asks a yes/no question.
func (p *Prompter) Bool(label string) (bool, error) {
	for {
		s, err := p.Line(label + " (y/n): ")
		if err != nil {
			return false, err
		}
		switch strings.ToLower(s) {
		case "y", "yes", "1":
			return true, nil
		case "n", "no", "0":
			return false, nil
		}
		p.errorf("Please enter 'y' for yes or 'n' for no.")
	}
}

// Phrase reports whether the user typed exactly want.
func (p *Prompter) Phrase(label, want string) (bool, error) {
	s, err := p.Line(label)
	if err != nil {
		return false, err
	}
	return s == want, nil
}

func (p *Prompter) errorf(format string, args ...any) {
	fmt.Fprintf(p.out, "Error: "+format+"\n", args...)
}
