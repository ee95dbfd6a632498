package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/tally/internal/model"
)

func TestTotalsAndExtremes(t *testing.T) {
	s := seeded(t)
	assert.Equal(t, "1038.48", s.Total().StringFixed(2))
	assert.Equal(t, "148.35", s.Average().StringFixed(2))

	hi, ok := s.Max()
	require.True(t, ok)
	assert.Equal(t, 5, hi.ID())

	lo, ok := s.Min()
	require.True(t, ok)
	assert.Equal(t, 2, lo.ID())
}

func TestExtremes_FirstOccurrenceWinsTies(t *testing.T) {
	s, _ := openTemp(t, "")
	add(t, s, "A", "10", "X", "2024-01-01")
	add(t, s, "B", "10", "X", "2024-01-02")
	hi, _ := s.Max()
	lo, _ := s.Min()
	assert.Equal(t, 1, hi.ID())
	assert.Equal(t, 1, lo.ID())
}

func TestEmptyStoreAggregates(t *testing.T) {
	s, _ := openTemp(t, "")
	assert.True(t, s.Total().IsZero())
	assert.True(t, s.Average().IsZero())
	_, ok := s.Max()
	assert.False(t, ok)
	_, ok = s.Min()
	assert.False(t, ok)
	assert.Empty(t, s.ByCategory())
	r := s.Recurring()
	assert.Zero(t, r.Count)
	assert.True(t, r.AnnualProjection.IsZero())
}

func TestByCategory(t *testing.T) {
	s := seeded(t)
	groups := s.ByCategory()

	keys := make([]string, len(groups))
	for i, g := range groups {
		keys[i] = g.Key
	}
	assert.Equal(t, []string{"Entertainment", "Food", "Housing", "Transport", "food"}, keys)

	food := groups[1]
	assert.Equal(t, 2, food.Count)
	assert.Equal(t, "60.00", food.Total.StringFixed(2))
	assert.Equal(t, "30.00", food.Average.StringFixed(2))
	assert.Equal(t, "5.8", food.Share.StringFixed(1))
}

func TestByPaymentMethodAndMonth(t *testing.T) {
	s := seeded(t)

	pm := s.ByPaymentMethod()
	require.Len(t, pm, 4)
	assert.Equal(t, "Bank", pm[0].Key)
	assert.Equal(t, "Card", pm[1].Key)
	assert.Equal(t, "115.98", pm[1].Total.StringFixed(2))

	months := s.ByMonth()
	require.Len(t, months, 3)
	assert.Equal(t, "2024-01", months[0].Key)
	assert.Equal(t, "2024-02", months[1].Key)
	assert.Equal(t, "52.49", months[1].Total.StringFixed(2))
	assert.Equal(t, "2024-03", months[2].Key)
	assert.Equal(t, 4, months[2].Count)
}

func TestRecurring(t *testing.T) {
	s := seeded(t)
	r := s.Recurring()
	assert.Equal(t, 2, r.Count)
	assert.Equal(t, []int{4, 5}, ids(r.Expenses))
	assert.Equal(t, "915.99", r.Total.StringFixed(2))
	assert.Equal(t, "10991.88", r.AnnualProjection.StringFixed(2))
}

func TestSummary(t *testing.T) {
	s := seeded(t)
	sum := s.Summary()
	assert.Equal(t, 7, sum.Count)
	assert.Equal(t, "1038.48", sum.Total.StringFixed(2))
	assert.Equal(t, 5, sum.Highest.ID())
	assert.Equal(t, 2, sum.Lowest.ID())
	assert.Len(t, sum.ByMonth, 3)
	assert.Equal(t, 2, sum.Recurring.Count)
}

func TestScenario_TotalAfterUndo(t *testing.T) {
	s, _ := openTemp(t, "")
	_, err := s.Add(model.Fields{Description: "Coffee", Amount: dec("4.50"), Category: "Food", Date: "2024-03-01"})
	require.NoError(t, err)
	_, err = s.Add(model.Fields{Description: "Bus", Amount: dec("2.00"), Category: "Transport", Date: "2024-03-02"})
	require.NoError(t, err)
	_, err = s.Delete(1)
	require.NoError(t, err)
	assert.Equal(t, "2.00", s.Total().StringFixed(2))
	require.NoError(t, s.Undo())
	assert.Equal(t, "6.50", s.Total().StringFixed(2))
}
