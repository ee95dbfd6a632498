// Package store keeps the expense collection in memory, persists it to a
// delimited text file after every change and provides undo/redo plus the
// query and aggregation operations used by the command layer.
package store

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/avast/retry-go"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/cleared-dev/tally/internal/model"
	"github.com/cleared-dev/tally/internal/validate"
)

// DefaultFile is the conventional storage file name.
const DefaultFile = "expenses.txt"

// FallbackCategory is suggested when no expense has been recorded yet.
const FallbackCategory = "General"

var (
	ErrNotFound      = errors.New("expense not found")
	ErrNothingToUndo = errors.New("nothing to undo")
	ErrNothingToRedo = errors.New("nothing to redo")

	// ErrPartialLoad blocks saving over a data file that could not be read
	// to the end, since the rewrite would drop the unread records.
	ErrPartialLoad = errors.New("data file was only partly read")
)

// defaultFileMode applies when the data file does not exist yet.
const defaultFileMode os.FileMode = 0o644

// Store owns the expense collection for the lifetime of a process. It is not
// safe for concurrent use.
type Store struct {
	path     string
	logger   zerolog.Logger
	now      func() time.Time
	expenses []model.Expense
	nextID   int

	undo *history
	redo *history

	categories     []string
	categoryCounts map[string]int

	loadResult LoadResult
	loadErr    error
	saveErr    error
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// WithClock replaces time.Now, which decides "today" for new records.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// Open creates a Store backed by path and loads it. A missing or unreadable
// file yields an empty store; corrupt lines are skipped.
func Open(path string, opts ...Option) *Store {
	s := &Store{
		path:   path,
		logger: zerolog.Nop(),
		now:    time.Now,
		nextID: 1,
		undo:   newHistory(MaxHistory),
		redo:   newHistory(MaxHistory),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.load()
	s.refreshStats()
	return s
}

func (s *Store) load() {
	f, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.logger.Info().Str("file", s.path).Msg("no existing data file, starting empty")
		} else {
			s.logger.Warn().Err(err).Str("file", s.path).Msg("could not open data file, starting empty")
		}
		return
	}
	defer f.Close()

	expenses, res, err := ReadLines(f)
	if err != nil {
		s.loadErr = err
		s.logger.Error().Err(err).Str("file", s.path).Msg("data file read interrupted; saving is disabled")
	}
	s.expenses = expenses
	s.loadResult = res
	if res.MaxID >= s.nextID {
		s.nextID = res.MaxID + 1
	}

	ev := s.logger.Info()
	if res.Skipped > 0 {
		ev = s.logger.Warn()
	}
	ev.Str("file", s.path).Int("loaded", res.Loaded).Int("skipped", res.Skipped).Msg("expenses loaded")
}

// Path returns the backing file.
func (s *Store) Path() string { return s.path }

// LoadResult reports what the initial load found.
func (s *Store) LoadResult() LoadResult { return s.loadResult }

// SaveErr returns the error from the most recent save, or nil.
func (s *Store) SaveErr() error { return s.saveErr }

// Now returns the store's clock reading.
func (s *Store) Now() time.Time { return s.now() }

// Today returns the current date in storage form.
func (s *Store) Today() string { return validate.Today(s.now()) }

// Len returns the number of expenses.
func (s *Store) Len() int { return len(s.expenses) }

// All returns a copy of the collection in insertion order.
func (s *Store) All() []model.Expense {
	return takeSnapshot(s.expenses)
}

// FindByID looks up an expense by id.
func (s *Store) FindByID(id int) (model.Expense, bool) {
	i := s.indexOf(id)
	if i < 0 {
		return model.Expense{}, false
	}
	return s.expenses[i], true
}

// Categories returns the distinct categories in sorted order.
func (s *Store) Categories() []string {
	return append([]string(nil), s.categories...)
}

// CategoryCounts returns how many expenses use each category.
func (s *Store) CategoryCounts() map[string]int {
	out := make(map[string]int, len(s.categoryCounts))
	for k, v := range s.categoryCounts {
		out[k] = v
	}
	return out
}

// PaymentMethods returns the distinct payment methods in sorted order.
func (s *Store) PaymentMethods() []string {
	seen := make(map[string]bool)
	var out []string
	for _, e := range s.expenses {
		if !seen[e.PaymentMethod()] {
			seen[e.PaymentMethod()] = true
			out = append(out, e.PaymentMethod())
		}
	}
	sort.Strings(out)
	return out
}

// DefaultCategory is the most used category. Ties go to the category that
// sorts first; an empty store yields FallbackCategory.
func (s *Store) DefaultCategory() string {
	best, bestCount := FallbackCategory, 0
	for _, c := range s.categories {
		if n := s.categoryCounts[c]; n > bestCount {
			best, bestCount = c, n
		}
	}
	return best
}

// CanUndo reports whether Undo would succeed.
func (s *Store) CanUndo() bool { return s.undo.len() > 0 }

// CanRedo reports whether Redo would succeed.
func (s *Store) CanRedo() bool { return s.redo.len() > 0 }

// Add validates f, appends a new expense with the next id and saves.
// An empty date means today.
func (s *Store) Add(f model.Fields) (model.Expense, error) {
	if validate.Normalize(f.Date) == "" {
		f.Date = s.Today()
	}
	e, err := model.New(s.nextID, f)
	if err != nil {
		return model.Expense{}, err
	}

	s.checkpoint()
	s.nextID++
	s.expenses = append(s.expenses, e)
	s.commit("add", e.ID())
	return e, nil
}

// QuickAdd records an expense dated today. A blank category falls back to
// DefaultCategory.
func (s *Store) QuickAdd(description string, amount decimal.Decimal, category string) (model.Expense, error) {
	if validate.Normalize(category) == "" {
		category = s.DefaultCategory()
	}
	return s.Add(model.Fields{
		Description: description,
		Amount:      amount,
		Category:    category,
		Date:        s.Today(),
	})
}

// Changes lists the fields to update. Nil fields are left alone.
type Changes struct {
	Description   *string
	Amount        *decimal.Decimal
	Category      *string
	Date          *string
	Notes         *string
	Recurring     *bool
	PaymentMethod *string
	Location      *string
}

// UpdateResult reports the outcome of Update.
type UpdateResult struct {
	Expense  model.Expense
	Applied  []string
	Rejected []string
}

// Update applies the requested changes one field at a time. Fields whose
// value fails validation are listed in Rejected and keep their prior value.
func (s *Store) Update(id int, c Changes) (UpdateResult, error) {
	i := s.indexOf(id)
	if i < 0 {
		return UpdateResult{}, fmt.Errorf("%w: %d", ErrNotFound, id)
	}

	s.checkpoint()
	e := s.expenses[i]
	var res UpdateResult
	apply := func(name string, ok bool) {
		if ok {
			res.Applied = append(res.Applied, name)
		} else {
			res.Rejected = append(res.Rejected, name)
		}
	}
	if c.Description != nil {
		apply("description", e.SetDescription(*c.Description))
	}
	if c.Amount != nil {
		apply("amount", e.SetAmount(*c.Amount))
	}
	if c.Category != nil {
		apply("category", e.SetCategory(*c.Category))
	}
	if c.Date != nil {
		apply("date", e.SetDate(*c.Date))
	}
	if c.Notes != nil {
		apply("notes", e.SetNotes(*c.Notes))
	}
	if c.PaymentMethod != nil {
		apply("payment method", e.SetPaymentMethod(*c.PaymentMethod))
	}
	if c.Location != nil {
		apply("location", e.SetLocation(*c.Location))
	}
	if c.Recurring != nil {
		e.SetRecurring(*c.Recurring)
		apply("recurring", true)
	}

	s.expenses[i] = e
	res.Expense = e
	s.commit("update", id)
	return res, nil
}

// PendingDelete is a deletion waiting for the caller's confirmation.
type PendingDelete struct {
	store   *Store
	expense model.Expense
	done    bool
}

// Expense returns the record that would be removed.
func (p *PendingDelete) Expense() model.Expense { return p.expense }

// Confirm removes the expense. Calling it twice is a no-op.
func (p *PendingDelete) Confirm() error {
	if p.done {
		return nil
	}
	p.done = true
	_, err := p.store.Delete(p.expense.ID())
	return err
}

// Cancel abandons the deletion.
func (p *PendingDelete) Cancel() { p.done = true }

// StageDelete locates id and returns a pending deletion. Nothing changes
// until Confirm is called.
func (s *Store) StageDelete(id int) (*PendingDelete, error) {
	e, ok := s.FindByID(id)
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	return &PendingDelete{store: s, expense: e}, nil
}

// Delete removes id unconditionally and returns the removed expense.
func (s *Store) Delete(id int) (model.Expense, error) {
	i := s.indexOf(id)
	if i < 0 {
		return model.Expense{}, fmt.Errorf("%w: %d", ErrNotFound, id)
	}

	s.checkpoint()
	removed := s.expenses[i]
	s.expenses = append(s.expenses[:i:i], s.expenses[i+1:]...)
	s.commit("delete", id)
	return removed, nil
}

// Duplicate appends a copy of id dated today with a fresh id.
func (s *Store) Duplicate(id int) (model.Expense, error) {
	src, ok := s.FindByID(id)
	if !ok {
		return model.Expense{}, fmt.Errorf("%w: %d", ErrNotFound, id)
	}

	s.checkpoint()
	dup := src.Copy(s.nextID, s.Today())
	s.nextID++
	s.expenses = append(s.expenses, dup)
	s.commit("duplicate", dup.ID())
	return dup, nil
}

// Undo restores the collection as it was before the last change.
func (s *Store) Undo() error {
	prev, ok := s.undo.pop()
	if !ok {
		return ErrNothingToUndo
	}
	s.redo.push(takeSnapshot(s.expenses))
	s.expenses = prev
	s.commit("undo", 0)
	return nil
}

// Redo reapplies the last undone change.
func (s *Store) Redo() error {
	next, ok := s.redo.pop()
	if !ok {
		return ErrNothingToRedo
	}
	s.undo.push(takeSnapshot(s.expenses))
	s.expenses = next
	s.commit("redo", 0)
	return nil
}

// Clear removes every expense. Callers must obtain confirmation first.
func (s *Store) Clear() {
	s.checkpoint()
	s.expenses = nil
	s.commit("clear", 0)
}

// Save writes the whole collection to the backing file.
func (s *Store) Save() error {
	if s.loadErr != nil {
		s.saveErr = fmt.Errorf("%w: %w", ErrPartialLoad, s.loadErr)
		s.logger.Warn().Err(s.saveErr).Str("file", s.path).Msg("refusing to overwrite data file")
		return s.saveErr
	}
	err := retry.Do(
		func() error { return s.writeFile() },
		retry.Attempts(3),
		retry.Delay(50*time.Millisecond),
		retry.LastErrorOnly(true),
	)
	s.saveErr = err
	if err != nil {
		s.logger.Warn().Err(err).Str("file", s.path).Msg("could not save expenses; changes are kept in memory")
	}
	return err
}

// WriteTo writes the collection in storage format.
func (s *Store) WriteTo(w io.Writer) error {
	return WriteLines(w, s.expenses)
}

// writeFile replaces the data file with a fully written, synced temp file
// carrying the data file's permissions.
func (s *Store) writeFile() error {
	mode := defaultFileMode
	if info, err := os.Stat(s.path); err == nil {
		mode = info.Mode().Perm()
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	fail := func(what string, err error) error {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("%s: %w", what, err)
	}
	if err := tmp.Chmod(mode); err != nil {
		return fail("setting temp file mode", err)
	}
	if err := WriteLines(tmp, s.expenses); err != nil {
		return fail("writing temp file", err)
	}
	if err := tmp.Sync(); err != nil {
		return fail("syncing temp file", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replacing data file: %w", err)
	}
	return nil
}

// checkpoint records the current collection for undo. A new action makes any
// pending redo meaningless.
func (s *Store) checkpoint() {
	s.undo.push(takeSnapshot(s.expenses))
	s.redo.clear()
}

// commit refreshes derived state and persists after a mutation.
func (s *Store) commit(op string, id int) {
	s.refreshStats()
	s.logger.Debug().Str("op", op).Int("id", id).Int("count", len(s.expenses)).Msg("expenses changed")
	_ = s.Save()
}

func (s *Store) refreshStats() {
	s.categoryCounts = make(map[string]int)
	s.categories = s.categories[:0]
	for _, e := range s.expenses {
		if s.categoryCounts[e.Category()] == 0 {
			s.categories = append(s.categories, e.Category())
		}
		s.categoryCounts[e.Category()]++
	}
	sort.Strings(s.categories)
}

func (s *Store) indexOf(id int) int {
	for i, e := range s.expenses {
		if e.ID() == id {
			return i
		}
	}
	return -1
}
