package store

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/tally/internal/model"
	"github.com/cleared-dev/tally/internal/validate"
)

// ErrCorruptLine is returned for storage lines that cannot become an Expense.
var ErrCorruptLine = errors.New("corrupt line")

const (
	numFields       = 9
	numLegacyFields = 5
	colID           = 0
	colDesc         = 1
	colAmount       = 2
	colCategory     = 3
	colDate         = 4
	colNotes        = 5
	colRecurring    = 6
	colPayment      = 7
	colLocation     = 8
)

// LoadResult summarizes a read of the storage file.
type LoadResult struct {
	Loaded  int
	Skipped int
	MaxID   int
}

func (r LoadResult) String() string {
	if r.Skipped == 0 {
		return fmt.Sprintf("%d loaded", r.Loaded)
	}
	return fmt.Sprintf("%d loaded, %d skipped", r.Loaded, r.Skipped)
}

// MarshalLine renders an expense as one storage line without the newline.
func MarshalLine(e model.Expense) string {
	row := make([]string, numFields)
	row[colID] = strconv.Itoa(e.ID())
	row[colDesc] = e.Description()
	row[colAmount] = e.Amount().StringFixed(2)
	row[colCategory] = e.Category()
	row[colDate] = e.Date()
	row[colNotes] = e.Notes()
	row[colRecurring] = "0"
	if e.Recurring() {
		row[colRecurring] = "1"
	}
	row[colPayment] = e.PaymentMethod()
	row[colLocation] = e.Location()
	return strings.Join(row, validate.Delimiter)
}

// UnmarshalLine parses a storage line. Lines with 5 to 8 fields use the
// legacy shape (id, description, amount, category, date) and take defaults
// for everything else.
func UnmarshalLine(line string) (model.Expense, error) {
	record := strings.Split(line, validate.Delimiter)
	if len(record) < numLegacyFields {
		return model.Expense{}, fmt.Errorf("%w: expected at least %d fields, got %d", ErrCorruptLine, numLegacyFields, len(record))
	}

	id, err := strconv.Atoi(strings.TrimSpace(record[colID]))
	if err != nil {
		return model.Expense{}, fmt.Errorf("%w: parsing id %q: %w", ErrCorruptLine, record[colID], err)
	}

	amount, err := decimal.NewFromString(strings.TrimSpace(record[colAmount]))
	if err != nil {
		return model.Expense{}, fmt.Errorf("%w: parsing amount %q: %w", ErrCorruptLine, record[colAmount], err)
	}

	f := model.Fields{
		Description: record[colDesc],
		Amount:      amount,
		Category:    record[colCategory],
		Date:        record[colDate],
	}
	if len(record) >= numFields {
		f.Notes = record[colNotes]
		f.Recurring = record[colRecurring] == "1"
		f.PaymentMethod = record[colPayment]
		f.Location = record[colLocation]
	}

	e, err := model.New(id, f)
	if err != nil {
		return model.Expense{}, fmt.Errorf("%w: %w", ErrCorruptLine, err)
	}
	return e, nil
}

// ReadLines reads every well-formed expense from r. Blank lines are ignored;
// corrupt lines and repeated ids are skipped and counted. Lines have no
// length limit, so an oversized line is skipped like any other corrupt one.
func ReadLines(r io.Reader) ([]model.Expense, LoadResult, error) {
	var (
		expenses []model.Expense
		res      LoadResult
		seen     = make(map[int]bool)
	)

	br := bufio.NewReader(r)
	for {
		line, err := br.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return expenses, res, fmt.Errorf("reading expenses: %w", err)
		}
		line = strings.TrimRight(line, "\r\n")
		if strings.TrimSpace(line) != "" {
			e, lineErr := UnmarshalLine(line)
			if lineErr != nil || seen[e.ID()] {
				res.Skipped++
			} else {
				seen[e.ID()] = true
				expenses = append(expenses, e)
				res.Loaded++
				if e.ID() > res.MaxID {
					res.MaxID = e.ID()
				}
			}
		}
		if err != nil {
			return expenses, res, nil
		}
	}
}

// WriteLines writes one newline-terminated line per expense.
func WriteLines(w io.Writer, expenses []model.Expense) error {
	bw := bufio.NewWriter(w)
	for i, e := range expenses {
		if _, err := bw.WriteString(MarshalLine(e) + "\n"); err != nil {
			return fmt.Errorf("writing line %d: %w", i+1, err)
		}
	}
	return bw.Flush()
}
