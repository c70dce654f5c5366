package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyStockLevel(t *testing.T) {
	testCases := []struct {
		name    string
		current int
		minMax  string
		want    StockLevel
	}{
		{"plenty", 75, "10/100", StockGood},
		{"half or less", 22, "10/50", StockMedium},
		{"exactly half", 50, "10/100", StockMedium},
		{"just above half", 51, "10/100", StockGood},
		{"two percent", 2, "10/100", StockLow},
		{"empty", 0, "12/40", StockLow},
		{"one of forty is above the two percent band", 1, "12/40", StockMedium},
		{"refrigerant", 8, "2/10", StockGood},
		{"missing max", 5, "10", StockMedium},
		{"empty descriptor", 5, "", StockMedium},
		{"zero max", 5, "0/0", StockMedium},
		{"non-numeric max", 5, "10/lots", StockMedium},
		{"max with suffix", 30, "10/40 units", StockGood},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ClassifyStockLevel(tc.current, tc.minMax))
		})
	}
}

func TestParseStockRange(t *testing.T) {
	r, err := ParseStockRange("10/100")
	require.NoError(t, err)
	assert.Equal(t, StockRange{Min: 10, Max: 100}, r)
	assert.Equal(t, "10/100", r.String())

	_, err = ParseStockRange("100")
	assert.Error(t, err)

	_, err = ParseStockRange("a/b")
	assert.Error(t, err)
}

func TestInventoryItem_ReplayAndClone(t *testing.T) {
	item := InventoryItem{
		ID:           "inv-1",
		CurrentStock: 7,
		MinMaxStock:  "1/10",
		History: []HistoryEntry{
			{ID: "h-1", Kind: HistoryCreated, QuantityChange: 10},
			{ID: "h-2", Kind: HistoryIssued, QuantityChange: -5},
			{ID: "h-3", Kind: HistoryRestocked, QuantityChange: 2},
		},
	}
	assert.Equal(t, 7, item.ReplayStock())

	clone := item.Clone()
	clone.History[0].Note = "changed"
	assert.Empty(t, item.History[0].Note, "clone must not alias history")

	item.Reclassify()
	assert.Equal(t, StockGood, item.StockLevel)

	assert.True(t, HistoryRestocked.Credit())
	assert.False(t, HistoryRequestIssued.Credit())
}

func TestRequestStatus(t *testing.T) {
	assert.True(t, RequestIssued.Terminal())
	assert.True(t, RequestRejected.Terminal())
	assert.False(t, RequestPending.Terminal())
	assert.False(t, RequestApproved.Terminal())
	assert.False(t, RequestStatus("lost").Valid())
	assert.True(t, PriorityUrgent.Valid())
	assert.False(t, Priority("low").Valid())
}
