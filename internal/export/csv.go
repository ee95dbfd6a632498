// Package export writes expense data to files other than the primary store:
// spreadsheet-friendly CSV and timestamped backups.
package export

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/cleared-dev/tally/internal/model"
)

// Header is the first row of every CSV export.
const Header = "ID,Description,Amount,Category,Date,Notes,Recurring,PaymentMethod,Location"

// MarshalRow renders one expense as a CSV row without the trailing newline.
// Text columns are always quoted.
func MarshalRow(e model.Expense) string {
	recurring := "No"
	if e.Recurring() {
		recurring = "Yes"
	}
	row := []string{
		strconv.Itoa(e.ID()),
		quote(e.Description()),
		e.Amount().StringFixed(2),
		quote(e.Category()),
		e.Date(),
		quote(e.Notes()),
		recurring,
		quote(e.PaymentMethod()),
		quote(e.Location()),
	}
	return strings.Join(row, ",")
}

// WriteCSV writes the header and one row per expense.
func WriteCSV(w io.Writer, expenses []model.Expense) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(Header + "\n"); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, e := range expenses {
		if _, err := bw.WriteString(MarshalRow(e) + "\n"); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	return bw.Flush()
}

// ExportCSV writes expenses to path, adding a .csv extension when missing.
// It returns the path written.
func ExportCSV(path string, expenses []model.Expense) (string, error) {
	if !strings.EqualFold(filepath.Ext(path), ".csv") {
		path += ".csv"
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("creating export dir: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating export file: %w", err)
	}
	defer f.Close()

	if err := WriteCSV(f, expenses); err != nil {
		return "", fmt.Errorf("exporting %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("closing export file: %w", err)
	}
	return path, nil
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
