package store

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/tally/internal/model"
)

var fixedNow = time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)

func openTemp(t *testing.T, contents string) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), DefaultFile)
	if contents != "" {
		require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	}
	return Open(path, WithClock(func() time.Time { return fixedNow })), path
}

func add(t *testing.T, s *Store, desc, amount, category, date string) model.Expense {
	t.Helper()
	e, err := s.Add(model.Fields{Description: desc, Amount: dec(amount), Category: category, Date: date})
	require.NoError(t, err)
	return e
}

func ids(list []model.Expense) []int {
	out := make([]int, len(list))
	for i, e := range list {
		out[i] = e.ID()
	}
	return out
}

func TestOpen_MissingFile(t *testing.T) {
	s, path := openTemp(t, "")
	assert.Equal(t, 0, s.Len())
	assert.Equal(t, LoadResult{}, s.LoadResult())
	assert.False(t, s.CanUndo())
	assert.False(t, s.CanRedo())

	_, err := os.Stat(path)
	assert.True(t, errors.Is(err, os.ErrNotExist), "opening must not create the file")
}

func TestOpen_LegacyAndCorruptLines(t *testing.T) {
	s, _ := openTemp(t, "4|Coffee|4.50|Food|2024-03-01\n5|Bus|n/a|Transport|2024-03-02\n")
	assert.Equal(t, 1, s.LoadResult().Loaded)
	assert.Equal(t, 1, s.LoadResult().Skipped)
	assert.Equal(t, 1, s.Len())
}

func TestAdd_AssignsIDsPastLoadedMaximum(t *testing.T) {
	s, _ := openTemp(t, "3|Coffee|4.50|Food|2024-03-01\n41|Tea|3.00|Food|2024-03-02\n")
	e := add(t, s, "Bus", "2", "Transport", "2024-03-03")
	assert.Equal(t, 42, e.ID())
	e = add(t, s, "Train", "9", "Transport", "2024-03-04")
	assert.Equal(t, 43, e.ID())
}

func TestAdd_IDsNeverReused(t *testing.T) {
	s, _ := openTemp(t, "")
	add(t, s, "Coffee", "4.50", "Food", "2024-03-01")
	second := add(t, s, "Bus", "2.00", "Transport", "2024-03-02")
	_, err := s.Delete(second.ID())
	require.NoError(t, err)

	third := add(t, s, "Tea", "3.00", "Food", "2024-03-03")
	assert.Equal(t, 3, third.ID())

	require.NoError(t, s.Undo())
	fourth := add(t, s, "Cake", "5.00", "Food", "2024-03-04")
	assert.Equal(t, 4, fourth.ID())
}

func TestAdd_EmptyDateIsToday(t *testing.T) {
	s, _ := openTemp(t, "")
	e := add(t, s, "Coffee", "4.50", "Food", "")
	assert.Equal(t, "2024-06-15", e.Date())
}

func TestAdd_InvalidLeavesStoreUntouched(t *testing.T) {
	s, path := openTemp(t, "")
	_, err := s.Add(model.Fields{Description: "Bad", Amount: decimal.Zero, Category: "Food", Date: "2024-03-01"})
	require.ErrorIs(t, err, model.ErrInvalidExpense)
	assert.Equal(t, 0, s.Len())
	assert.False(t, s.CanUndo())

	_, err = os.Stat(path)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestAdd_PersistsAndReloads(t *testing.T) {
	s, path := openTemp(t, "")
	add(t, s, "Coffee", "4.50", "Food", "2024-03-01")
	add(t, s, "Bus", "2", "Transport", "2024-03-02")
	require.NoError(t, s.SaveErr())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "1|Coffee|4.50|Food|2024-03-01||0|Cash|\n2|Bus|2.00|Transport|2024-03-02||0|Cash|\n", string(data))

	reopened := Open(path)
	assert.Equal(t, 2, reopened.Len())
	assert.Equal(t, 2, reopened.LoadResult().MaxID)
	next, err := reopened.Add(model.Fields{Description: "Tea", Amount: dec("3"), Category: "Food", Date: "2024-03-03"})
	require.NoError(t, err)
	assert.Equal(t, 3, next.ID())

	matches, _ := filepath.Glob(filepath.Join(filepath.Dir(path), "*.tmp-*"))
	assert.Empty(t, matches, "temp files must be renamed away")
}

func TestScenario_DeleteThenUndo(t *testing.T) {
	s, _ := openTemp(t, "")
	coffee := add(t, s, "Coffee", "4.50", "Food", "2024-03-01")
	bus := add(t, s, "Bus", "2.00", "Transport", "2024-03-02")
	assert.Equal(t, 1, coffee.ID())
	assert.Equal(t, 2, bus.ID())

	pending, err := s.StageDelete(1)
	require.NoError(t, err)
	assert.Equal(t, 2, s.Len(), "staging does not delete")
	require.NoError(t, pending.Confirm())
	assert.Equal(t, []int{2}, ids(s.All()))

	require.NoError(t, s.Undo())
	assert.Equal(t, []int{1, 2}, ids(s.All()))
	assert.Equal(t, "6.50", s.Total().StringFixed(2))
}

func TestStageDelete_Cancel(t *testing.T) {
	s, _ := openTemp(t, "")
	add(t, s, "Coffee", "4.50", "Food", "2024-03-01")

	pending, err := s.StageDelete(1)
	require.NoError(t, err)
	assert.Equal(t, "Coffee", pending.Expense().Description())
	pending.Cancel()
	require.NoError(t, pending.Confirm())
	assert.Equal(t, 1, s.Len())
}

func TestNotFound(t *testing.T) {
	s, _ := openTemp(t, "")
	add(t, s, "Coffee", "4.50", "Food", "2024-03-01")
	before := s.All()

	_, err := s.StageDelete(99)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.Delete(99)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.Duplicate(99)
	assert.ErrorIs(t, err, ErrNotFound)
	desc := "x"
	_, err = s.Update(99, Changes{Description: &desc})
	assert.ErrorIs(t, err, ErrNotFound)
	_, ok := s.FindByID(99)
	assert.False(t, ok)

	after := s.All()
	require.Len(t, after, len(before))
	assert.True(t, before[0].Equal(after[0]))
}

func TestUndoRedo_Empty(t *testing.T) {
	s, _ := openTemp(t, "")
	assert.ErrorIs(t, s.Undo(), ErrNothingToUndo)
	assert.ErrorIs(t, s.Redo(), ErrNothingToRedo)
}

func TestUndoThenRedo_RestoresCollection(t *testing.T) {
	s, _ := openTemp(t, "")
	add(t, s, "Coffee", "4.50", "Food", "2024-03-01")
	add(t, s, "Bus", "2.00", "Transport", "2024-03-02")
	amount := dec("9.99")
	_, err := s.Update(2, Changes{Amount: &amount})
	require.NoError(t, err)

	before := s.All()
	require.NoError(t, s.Undo())
	got, _ := s.FindByID(2)
	assert.Equal(t, "2.00", got.Amount().StringFixed(2))

	require.NoError(t, s.Redo())
	after := s.All()
	require.Len(t, after, len(before))
	for i := range before {
		assert.True(t, before[i].Equal(after[i]))
	}
	assert.ErrorIs(t, s.Redo(), ErrNothingToRedo)
}

func TestNewActionClearsRedo(t *testing.T) {
	s, _ := openTemp(t, "")
	add(t, s, "Coffee", "4.50", "Food", "2024-03-01")
	require.NoError(t, s.Undo())
	assert.True(t, s.CanRedo())

	add(t, s, "Tea", "3.00", "Food", "2024-03-02")
	assert.False(t, s.CanRedo())
}

func TestUndoHistoryIsBounded(t *testing.T) {
	s, _ := openTemp(t, "")
	for i := 0; i < MaxHistory+5; i++ {
		add(t, s, "Coffee", "1.00", "Food", "2024-03-01")
	}
	for i := 0; i < MaxHistory; i++ {
		require.NoError(t, s.Undo(), "undo %d", i+1)
	}
	assert.ErrorIs(t, s.Undo(), ErrNothingToUndo)
	assert.Equal(t, 5, s.Len(), "the oldest five adds can no longer be undone")
}

func TestUndo_PersistsRestoredState(t *testing.T) {
	s, path := openTemp(t, "")
	add(t, s, "Coffee", "4.50", "Food", "2024-03-01")
	s.Clear()
	assert.Equal(t, 0, s.Len())

	require.NoError(t, s.Undo())
	reopened := Open(path)
	assert.Equal(t, 1, reopened.Len())
}

func TestSnapshotNotAffectedByLaterUpdates(t *testing.T) {
	s, _ := openTemp(t, "")
	add(t, s, "Coffee", "4.50", "Food", "2024-03-01")
	add(t, s, "Bus", "2.00", "Transport", "2024-03-02")

	desc := "Latte"
	_, err := s.Update(1, Changes{Description: &desc})
	require.NoError(t, err)
	desc = "Mocha"
	_, err = s.Update(1, Changes{Description: &desc})
	require.NoError(t, err)

	require.NoError(t, s.Undo())
	e, _ := s.FindByID(1)
	assert.Equal(t, "Latte", e.Description())
	require.NoError(t, s.Undo())
	e, _ = s.FindByID(1)
	assert.Equal(t, "Coffee", e.Description())
}

func TestUpdate_PartialRejection(t *testing.T) {
	s, _ := openTemp(t, "")
	add(t, s, "Coffee", "4.50", "Food", "2024-03-01")

	badAmount := dec("-1")
	badDate := "2023-13-01"
	notes := "  decaf "
	recurring := true
	res, err := s.Update(1, Changes{Amount: &badAmount, Date: &badDate, Notes: &notes, Recurring: &recurring})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"amount", "date"}, res.Rejected)
	assert.ElementsMatch(t, []string{"notes", "recurring"}, res.Applied)

	e, _ := s.FindByID(1)
	assert.Equal(t, "4.50", e.Amount().StringFixed(2))
	assert.Equal(t, "2024-03-01", e.Date())
	assert.Equal(t, "decaf", e.Notes())
	assert.True(t, e.Recurring())
	assert.True(t, res.Expense.Equal(e))
}

func TestUpdate_RecomputesCategories(t *testing.T) {
	s, _ := openTemp(t, "")
	add(t, s, "Coffee", "4.50", "Food", "2024-03-01")
	cat := "Drinks"
	_, err := s.Update(1, Changes{Category: &cat})
	require.NoError(t, err)
	assert.Equal(t, []string{"Drinks"}, s.Categories())
	assert.Equal(t, map[string]int{"Drinks": 1}, s.CategoryCounts())
}

func TestDuplicate(t *testing.T) {
	s, _ := openTemp(t, "")
	src, err := s.Add(model.Fields{
		Description: "Gym", Amount: dec("30"), Category: "Health", Date: "2024-01-01",
		Recurring: true, PaymentMethod: "Card", Location: "Downtown", Notes: "monthly",
	})
	require.NoError(t, err)

	dup, err := s.Duplicate(src.ID())
	require.NoError(t, err)
	assert.Equal(t, 2, dup.ID())
	assert.Equal(t, "Gym (Copy)", dup.Description())
	assert.Equal(t, "2024-06-15", dup.Date())
	assert.True(t, dup.Recurring())
	assert.Equal(t, "Card", dup.PaymentMethod())
	assert.Equal(t, "Downtown", dup.Location())
	assert.Equal(t, "monthly", dup.Notes())
	assert.Equal(t, 2, s.CategoryCounts()["Health"])
}

func TestClear(t *testing.T) {
	s, path := openTemp(t, "")
	add(t, s, "Coffee", "4.50", "Food", "2024-03-01")
	s.Clear()
	assert.Equal(t, 0, s.Len())
	assert.Empty(t, s.Categories())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Empty(t, data)
}

func TestQuickAdd_DefaultsToMostUsedCategory(t *testing.T) {
	s, _ := openTemp(t, "")
	add(t, s, "Coffee", "4.50", "Food", "2024-03-01")
	add(t, s, "Bus", "2.00", "Transport", "2024-03-02")
	add(t, s, "Lunch", "12.00", "Food", "2024-03-03")

	e, err := s.QuickAdd("Snack", dec("1.25"), "")
	require.NoError(t, err)
	assert.Equal(t, "Food", e.Category())
	assert.Equal(t, "2024-06-15", e.Date())
	assert.Equal(t, 4, e.ID())
}

func TestQuickAdd_EmptyStoreUsesGeneral(t *testing.T) {
	s, _ := openTemp(t, "")
	e, err := s.QuickAdd("Snack", dec("1.25"), "  ")
	require.NoError(t, err)
	assert.Equal(t, FallbackCategory, e.Category())
}

func TestQuickAdd_ExplicitCategory(t *testing.T) {
	s, _ := openTemp(t, "")
	add(t, s, "Coffee", "4.50", "Food", "2024-03-01")
	e, err := s.QuickAdd("Taxi", dec("20"), "Transport")
	require.NoError(t, err)
	assert.Equal(t, "Transport", e.Category())
}

func TestDefaultCategory_TieGoesToFirstSorted(t *testing.T) {
	s, _ := openTemp(t, "")
	add(t, s, "Bus", "2.00", "Transport", "2024-03-02")
	add(t, s, "Coffee", "4.50", "Food", "2024-03-01")
	assert.Equal(t, "Food", s.DefaultCategory())
}

func TestPaymentMethods(t *testing.T) {
	s, _ := openTemp(t, "")
	add(t, s, "Coffee", "4.50", "Food", "2024-03-01")
	_, err := s.Add(model.Fields{Description: "Book", Amount: dec("20"), Category: "Misc", Date: "2024-03-01", PaymentMethod: "Card"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Card", "Cash"}, s.PaymentMethods())
}

func TestSave_FailureIsReportedNotFatal(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "missing-dir", DefaultFile)
	s := Open(path)

	e, err := s.Add(model.Fields{Description: "Coffee", Amount: dec("4.50"), Category: "Food", Date: "2024-03-01"})
	require.NoError(t, err)
	assert.Equal(t, 1, e.ID())
	assert.Equal(t, 1, s.Len(), "in-memory state stays authoritative")
	require.Error(t, s.SaveErr())
}

func TestAll_ReturnsCopy(t *testing.T) {
	s, _ := openTemp(t, "")
	add(t, s, "Coffee", "4.50", "Food", "2024-03-01")
	list := s.All()
	list[0].SetDescription("Hacked")
	e, _ := s.FindByID(1)
	assert.Equal(t, "Coffee", e.Description())
}

func TestTwoStoresAreIndependent(t *testing.T) {
	a, _ := openTemp(t, "")
	b, _ := openTemp(t, "")
	add(t, a, "Coffee", "4.50", "Food", "2024-03-01")
	add(t, a, "Tea", "3.00", "Food", "2024-03-01")
	e := add(t, b, "Bus", "2.00", "Transport", "2024-03-02")
	assert.Equal(t, 1, e.ID())
}

func TestOpen_OversizedLineKeepsLaterRecords(t *testing.T) {
	contents := "1|Coffee|4.50|Food|2024-03-01\n" + strings.Repeat("x", 2<<20) + "\n3|Tea|3.00|Food|2024-03-03\n"
	s, path := openTemp(t, contents)
	assert.Equal(t, LoadResult{Loaded: 2, Skipped: 1, MaxID: 3}, s.LoadResult())

	e := add(t, s, "Bus", "2.00", "Transport", "2024-03-04")
	assert.Equal(t, 4, e.ID(), "ids after the oversized line are not reused")
	require.NoError(t, s.SaveErr())

	reloaded := Open(path)
	assert.Equal(t, []int{1, 3, 4}, ids(reloaded.All()))
}

func TestSave_KeepsFileMode(t *testing.T) {
	s, path := openTemp(t, "1|Coffee|4.50|Food|2024-03-01\n")
	require.NoError(t, os.Chmod(path, 0o640))

	add(t, s, "Tea", "3.00", "Food", "2024-03-02")
	require.NoError(t, s.SaveErr())

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o640), info.Mode().Perm())
}

func TestSave_NewFileIsWorldReadable(t *testing.T) {
	s, path := openTemp(t, "")
	add(t, s, "Tea", "3.00", "Food", "2024-03-02")
	require.NoError(t, s.SaveErr())

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())
}

func TestSave_RefusedAfterPartialLoad(t *testing.T) {
	// Opening a directory succeeds but reading it fails.
	dir := t.TempDir()
	s := Open(dir)

	_, err := s.Add(model.Fields{Description: "Coffee", Amount: dec("4.50"), Category: "Food", Date: "2024-03-01"})
	require.NoError(t, err)
	assert.Equal(t, 1, s.Len())
	assert.ErrorIs(t, s.SaveErr(), ErrPartialLoad)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir(), "data path is left alone")
}
