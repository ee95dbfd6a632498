package commands

import (
	"errors"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/tally/internal/export"
	"github.com/cleared-dev/tally/internal/model"
	"github.com/cleared-dev/tally/internal/prompt"
	"github.com/cleared-dev/tally/internal/store"
)

// ClearPhrase must be typed verbatim before every expense is removed.
const ClearPhrase = "DELETE ALL"

const mainMenu = `
========================================
              TALLY
========================================
  EXPENSES
   1. Add expense
   2. Quick add
   3. View all
   4. View details
   5. View by category
   6. View recurring

   7. Search

  EDIT
   8. Update expense
   9. Delete expense
  10. Duplicate expense
  11. Undo
  12. Redo

  REPORTS
  13. Summary
  14. Export to CSV

  UTILITIES
  15. Backup data
  16. Clear all data

   0. Exit
========================================
`

const searchMenu = `
Search by:
  1. Description
  2. Category
  3. Date range
  4. Amount range
  5. Payment method
  6. Advanced (multiple criteria)
  0. Back
`

const updateMenu = `
Field to update:
  1. Description
  2. Amount
  3. Category
  4. Date
  5. Notes
  6. Payment method
  7. Location
  8. Recurring
  9. All fields
  0. Cancel
`

// shell is the interactive menu loop.
type shell struct {
	app   *app
	store *store.Store
	in    *prompt.Prompter
	out   io.Writer
	print printer
}

func newShell(a *app, in io.Reader, out io.Writer) *shell {
	return &shell{
		app:   a,
		store: a.open(),
		in:    prompt.New(in, out),
		out:   out,
		print: printer{out: out, currency: a.cfg.Currency},
	}
}

// run shows the menu until the user exits or input ends.
func (sh *shell) run() error {
	if res := sh.store.LoadResult(); res.Skipped > 0 {
		fmt.Fprintf(sh.out, "Warning: %d corrupt line(s) in %s were skipped.\n", res.Skipped, sh.store.Path())
	}

	actions := []func() error{
		1:  sh.add,
		2:  sh.quickAdd,
		3:  sh.viewAll,
		4:  sh.viewDetails,
		5:  sh.viewByCategory,
		6:  sh.viewRecurring,
		7:  sh.search,
		8:  sh.update,
		9:  sh.delete,
		10: sh.duplicate,
		11: sh.undo,
		12: sh.redo,
		13: sh.summary,
		14: sh.exportCSV,
		15: sh.backup,
		16: sh.clear,
	}

	for {
		fmt.Fprint(sh.out, mainMenu)
		choice, err := sh.in.Int(fmt.Sprintf("Enter your choice (0-%d): ", len(actions)-1), 0, len(actions)-1)
		if err != nil {
			return sh.finish(err)
		}
		if choice == 0 {
			return sh.finish(nil)
		}
		fmt.Fprintln(sh.out)
		if err := actions[choice](); err != nil {
			return sh.finish(err)
		}
	}
}

func (sh *shell) finish(err error) error {
	if err != nil && !errors.Is(err, prompt.ErrClosed) {
		return err
	}
	if saveErr := sh.store.SaveErr(); saveErr != nil {
		fmt.Fprintf(sh.out, "Goodbye! Warning: the last change was not saved to %s: %v\n", sh.store.Path(), saveErr)
		return nil
	}
	fmt.Fprintln(sh.out, "Goodbye! Your data has been saved automatically.")
	return nil
}

// reportSave warns when the last change only exists in memory.
func (sh *shell) reportSave() {
	if err := sh.store.SaveErr(); err != nil {
		fmt.Fprintf(sh.out, "Warning: could not save to %s: %v\n", sh.store.Path(), err)
	}
}

func (sh *shell) empty() bool {
	if sh.store.Len() == 0 {
		fmt.Fprintln(sh.out, "No expenses found.")
		return true
	}
	return false
}

// askID reads an id and looks it up.
func (sh *shell) askID(label string) (model.Expense, bool, error) {
	id, err := sh.in.Int(label, 1, math.MaxInt)
	if err != nil {
		return model.Expense{}, false, err
	}
	e, ok := sh.store.FindByID(id)
	if !ok {
		fmt.Fprintf(sh.out, "Expense with ID %d not found.\n", id)
	}
	return e, ok, nil
}

func (sh *shell) add() error {
	fmt.Fprintln(sh.out, "=== Add Expense ===")
	var f model.Fields
	var err error
	if f.Description, err = sh.in.String("Description: ", false); err != nil {
		return err
	}
	if f.Amount, err = sh.in.Amount("Amount: "); err != nil {
		return err
	}
	if cats := sh.store.Categories(); len(cats) > 0 {
		fmt.Fprintf(sh.out, "Existing categories: %s\n", strings.Join(cats, ", "))
	}
	if f.Category, err = sh.in.String("Category: ", false); err != nil {
		return err
	}
	if f.Date, err = sh.in.Date("Date", sh.store.Today()); err != nil {
		return err
	}
	if f.Notes, err = sh.in.String("Notes (optional): ", true); err != nil {
		return err
	}
	if f.PaymentMethod, err = sh.in.String("Payment method (Enter for Cash): ", true); err != nil {
		return err
	}
	if f.Location, err = sh.in.String("Location (optional): ", true); err != nil {
		return err
	}
	if f.Recurring, err = sh.in.Bool("Recurring?"); err != nil {
		return err
	}

	e, err := sh.store.Add(f)
	if err != nil {
		fmt.Fprintf(sh.out, "Error: %v\n", err)
		return nil
	}
	fmt.Fprintf(sh.out, "Expense added. ID: %d\n", e.ID())
	sh.reportSave()
	return nil
}

func (sh *shell) quickAdd() error {
	fmt.Fprintln(sh.out, "=== Quick Add ===")
	description, err := sh.in.String("Description: ", false)
	if err != nil {
		return err
	}
	amount, err := sh.in.Amount("Amount: ")
	if err != nil {
		return err
	}
	category, err := sh.in.String(fmt.Sprintf("Category (Enter for %s): ", sh.store.DefaultCategory()), true)
	if err != nil {
		return err
	}

	e, err := sh.store.QuickAdd(description, amount, category)
	if err != nil {
		fmt.Fprintf(sh.out, "Error: %v\n", err)
		return nil
	}
	fmt.Fprintf(sh.out, "Quick expense added. ID: %d (%s, %s)\n", e.ID(), e.Category(), e.Date())
	sh.reportSave()
	return nil
}

func (sh *shell) viewAll() error {
	fmt.Fprintln(sh.out, "=== All Expenses ===")
	if sh.empty() {
		return nil
	}
	fmt.Fprintln(sh.out, "Sort by: 1) Date  2) Amount  3) Category  4) ID")
	n, err := sh.in.Int("Choose sort option (1-4): ", 1, len(store.SortKeys))
	if err != nil {
		return err
	}
	sh.print.table(sh.store.Sorted(store.SortKeys[n-1]))
	return nil
}

func (sh *shell) viewDetails() error {
	fmt.Fprintln(sh.out, "=== Expense Details ===")
	if sh.empty() {
		return nil
	}
	e, ok, err := sh.askID("Expense ID: ")
	if err != nil || !ok {
		return err
	}
	sh.print.details(e)
	return nil
}

func (sh *shell) viewByCategory() error {
	fmt.Fprintln(sh.out, "=== Expenses by Category ===")
	if sh.empty() {
		return nil
	}
	sh.print.categories(sh.store.Categories(), sh.store.CategoryCounts())
	category, err := sh.in.String("Category: ", false)
	if err != nil {
		return err
	}
	sh.print.table(sh.store.FilterCategory(category))
	return nil
}

func (sh *shell) viewRecurring() error {
	fmt.Fprintln(sh.out, "=== Recurring Expenses ===")
	sh.print.recurring(sh.store.Recurring())
	return nil
}

func (sh *shell) search() error {
	fmt.Fprintln(sh.out, "=== Search ===")
	if sh.empty() {
		return nil
	}
	fmt.Fprint(sh.out, searchMenu)
	choice, err := sh.in.Int("Choice (0-6): ", 0, 6)
	if err != nil || choice == 0 {
		return err
	}

	var c store.Criteria
	switch choice {
	case 1:
		c.Description, err = sh.in.String("Description contains: ", false)
	case 2:
		fmt.Fprintf(sh.out, "Categories: %s\n", strings.Join(sh.store.Categories(), ", "))
		c.Category, err = sh.in.String("Category: ", false)
	case 3:
		if c.StartDate, err = sh.in.Date("Start date", sh.store.Today()); err == nil {
			c.EndDate, err = sh.in.Date("End date", sh.store.Today())
		}
	case 4:
		var lo, hi decimal.Decimal
		if lo, err = sh.in.Amount("Minimum amount: "); err == nil {
			hi, err = sh.in.Amount("Maximum amount: ")
		}
		c.MinAmount, c.MaxAmount = &lo, &hi
	case 5:
		fmt.Fprintf(sh.out, "Payment methods: %s\n", strings.Join(sh.store.PaymentMethods(), ", "))
		c.PaymentMethod, err = sh.in.String("Payment method: ", false)
	case 6:
		c, err = sh.advancedCriteria()
	}
	if err != nil {
		return err
	}

	if c.Empty() {
		fmt.Fprintln(sh.out, "No criteria given.")
		return nil
	}
	sh.print.table(sh.store.Search(c))
	return nil
}

// advancedCriteria asks for every filter; empty answers leave one unset.
func (sh *shell) advancedCriteria() (store.Criteria, error) {
	fmt.Fprintln(sh.out, "Leave any field empty to skip it.")
	var c store.Criteria
	var err error
	if c.Description, err = sh.in.String("Description contains: ", true); err != nil {
		return c, err
	}
	if c.Category, err = sh.in.String("Category: ", true); err != nil {
		return c, err
	}
	if c.PaymentMethod, err = sh.in.String("Payment method: ", true); err != nil {
		return c, err
	}
	if c.MinAmount, err = sh.in.OptionalAmount("Minimum amount: "); err != nil {
		return c, err
	}
	if c.MaxAmount, err = sh.in.OptionalAmount("Maximum amount: "); err != nil {
		return c, err
	}
	if c.StartDate, err = sh.in.OptionalDate("Start date"); err != nil {
		return c, err
	}
	c.EndDate, err = sh.in.OptionalDate("End date")
	return c, err
}

func (sh *shell) update() error {
	fmt.Fprintln(sh.out, "=== Update Expense ===")
	if sh.empty() {
		return nil
	}
	e, ok, err := sh.askID("Expense ID to update: ")
	if err != nil || !ok {
		return err
	}
	sh.print.details(e)
	fmt.Fprint(sh.out, updateMenu)
	choice, err := sh.in.Int("Choice (0-9): ", 0, 9)
	if err != nil || choice == 0 {
		return err
	}

	var c store.Changes
	if choice == 9 {
		c, err = sh.allChanges(e)
	} else {
		c, err = sh.fieldChange(choice)
	}
	if err != nil {
		return err
	}

	res, err := sh.store.Update(e.ID(), c)
	if err != nil {
		fmt.Fprintf(sh.out, "Error: %v\n", err)
		return nil
	}
	if len(res.Rejected) > 0 {
		fmt.Fprintf(sh.out, "Invalid value for: %s (kept previous value)\n", strings.Join(res.Rejected, ", "))
	}
	if len(res.Applied) > 0 {
		fmt.Fprintf(sh.out, "Updated: %s\n", strings.Join(res.Applied, ", "))
	}
	sh.reportSave()
	return nil
}

// fieldChange asks for the new value of a single field.
func (sh *shell) fieldChange(choice int) (store.Changes, error) {
	var c store.Changes
	switch choice {
	case 1, 3, 5, 6, 7:
		optional := choice >= 5
		v, err := sh.in.String("New value: ", optional)
		if err != nil {
			return c, err
		}
		switch choice {
		case 1:
			c.Description = &v
		case 3:
			c.Category = &v
		case 5:
			c.Notes = &v
		case 6:
			c.PaymentMethod = &v
		case 7:
			c.Location = &v
		}
	case 2:
		d, err := sh.in.Amount("New amount: ")
		if err != nil {
			return c, err
		}
		c.Amount = &d
	case 4:
		d, err := sh.in.Date("New date", sh.store.Today())
		if err != nil {
			return c, err
		}
		c.Date = &d
	case 8:
		b, err := sh.in.Bool("Recurring?")
		if err != nil {
			return c, err
		}
		c.Recurring = &b
	}
	return c, nil
}

// allChanges walks every field; an empty answer keeps the current value.
func (sh *shell) allChanges(e model.Expense) (store.Changes, error) {
	var c store.Changes
	keep := func(label, current string) (*string, error) {
		v, err := sh.in.String(fmt.Sprintf("%s [%s]: ", label, current), true)
		if err != nil || v == "" {
			return nil, err
		}
		return &v, nil
	}

	var err error
	if c.Description, err = keep("Description", e.Description()); err != nil {
		return c, err
	}
	if c.Amount, err = sh.in.OptionalAmount(fmt.Sprintf("Amount [%s]: ", e.Amount().StringFixed(2))); err != nil {
		return c, err
	}
	if c.Category, err = keep("Category", e.Category()); err != nil {
		return c, err
	}
	date, err := sh.in.OptionalDate(fmt.Sprintf("Date [%s]", e.Date()))
	if err != nil {
		return c, err
	}
	if date != "" {
		c.Date = &date
	}
	if c.Notes, err = keep("Notes", e.Notes()); err != nil {
		return c, err
	}
	if c.PaymentMethod, err = keep("Payment method", e.PaymentMethod()); err != nil {
		return c, err
	}
	if c.Location, err = keep("Location", e.Location()); err != nil {
		return c, err
	}
	recurring, err := sh.in.Bool("Recurring?")
	if err != nil {
		return c, err
	}
	c.Recurring = &recurring
	return c, nil
}

func (sh *shell) delete() error {
	fmt.Fprintln(sh.out, "=== Delete Expense ===")
	if sh.empty() {
		return nil
	}
	id, err := sh.in.Int("Expense ID to delete: ", 1, math.MaxInt)
	if err != nil {
		return err
	}
	pending, err := sh.store.StageDelete(id)
	if err != nil {
		fmt.Fprintf(sh.out, "Expense with ID %d not found.\n", id)
		return nil
	}
	sh.print.details(pending.Expense())

	ok, err := sh.in.Bool("Delete this expense?")
	if err != nil {
		return err
	}
	if !ok {
		pending.Cancel()
		fmt.Fprintln(sh.out, "Deletion cancelled.")
		return nil
	}
	if err := pending.Confirm(); err != nil {
		return err
	}
	fmt.Fprintln(sh.out, "Expense deleted.")
	sh.reportSave()
	return nil
}

func (sh *shell) duplicate() error {
	fmt.Fprintln(sh.out, "=== Duplicate Expense ===")
	if sh.empty() {
		return nil
	}
	e, ok, err := sh.askID("Expense ID to duplicate: ")
	if err != nil || !ok {
		return err
	}
	dup, err := sh.store.Duplicate(e.ID())
	if err != nil {
		return err
	}
	fmt.Fprintf(sh.out, "Expense duplicated. New ID: %d\n", dup.ID())
	sh.reportSave()
	return nil
}

func (sh *shell) undo() error {
	if err := sh.store.Undo(); err != nil {
		fmt.Fprintln(sh.out, "Nothing to undo.")
		return nil
	}
	fmt.Fprintln(sh.out, "Last operation undone.")
	sh.reportSave()
	return nil
}

func (sh *shell) redo() error {
	if err := sh.store.Redo(); err != nil {
		fmt.Fprintln(sh.out, "Nothing to redo.")
		return nil
	}
	fmt.Fprintln(sh.out, "Operation redone.")
	sh.reportSave()
	return nil
}

func (sh *shell) summary() error {
	sh.print.summary(sh.store.Summary())
	return nil
}

func (sh *shell) exportCSV() error {
	fmt.Fprintln(sh.out, "=== Export to CSV ===")
	if sh.empty() {
		return nil
	}
	name, err := sh.in.String("CSV file name (without .csv): ", false)
	if err != nil {
		return err
	}
	path, err := export.ExportCSV(filepath.Join(sh.app.cfg.ExportDir, name), sh.store.All())
	if err != nil {
		fmt.Fprintf(sh.out, "Error: %v\n", err)
		return nil
	}
	fmt.Fprintf(sh.out, "Exported %d expense(s) to %s\n", sh.store.Len(), path)
	return nil
}

func (sh *shell) backup() error {
	path, err := export.Backup(sh.app.cfg.BackupDir, sh.store.Path(), sh.store.All(), sh.store.Now())
	if err != nil {
		fmt.Fprintf(sh.out, "Error: %v\n", err)
		return nil
	}
	fmt.Fprintf(sh.out, "Data backed up to: %s\n", path)
	return nil
}

func (sh *shell) clear() error {
	fmt.Fprintln(sh.out, "=== Clear All Data ===")
	if sh.empty() {
		return nil
	}
	fmt.Fprintf(sh.out, "This removes all %d expense(s).\n", sh.store.Len())
	ok, err := sh.in.Phrase(fmt.Sprintf("Type '%s' to confirm: ", ClearPhrase), ClearPhrase)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(sh.out, "Clear cancelled.")
		return nil
	}
	sh.store.Clear()
	fmt.Fprintln(sh.out, "All expenses cleared. Use undo to restore them.")
	sh.reportSave()
	return nil
}
