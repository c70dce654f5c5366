package ledger

import (
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storeroom/internal/models"
)

var testNow = time.Date(2025, 8, 2, 14, 30, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

func seedItems() []models.InventoryItem {
	return []models.InventoryItem{
		{ID: "inv-1", Name: "GFCI Outlets", Category: "Electrical", CurrentStock: 75, MinMaxStock: "10/100"},
		{ID: "inv-2", Name: "PVC Pipes (1 inch)", Category: "Plumbing", CurrentStock: 22, MinMaxStock: "10/50"},
		{ID: "inv-3", Name: "HVAC Filters", Category: "HVAC", CurrentStock: 1, MinMaxStock: "12/40"},
		{ID: "inv-4", Name: "Refrigerant R-410A", Category: "HVAC", CurrentStock: 8, MinMaxStock: "2/10"},
	}
}

func seedRequests() []models.MaterialRequest {
	return []models.MaterialRequest{
		{
			ID: "req-1", From: "Sarah Wilson", Task: "Task #12",
			Items:    []models.RequestedItem{{Name: "GFCI Outlets", Quantity: 10}},
			Priority: models.PriorityUrgent, Status: models.RequestPending,
		},
		{
			ID: "req-2", From: "John Smith", Task: "Task #9",
			Items: []models.RequestedItem{
				{Name: "HVAC Filters", Quantity: 2},
				{Name: "Refrigerant R-410A", Quantity: 1},
			},
			Priority: models.PriorityHigh, Status: models.RequestApproved,
		},
	}
}

func newTestLedger(t *testing.T, opts ...Option) *Ledger {
	t.Helper()
	opts = append([]Option{WithClock(fixedClock), WithIDGenerator(NewSequence(10))}, opts...)
	l := New(opts...)
	require.NoError(t, l.Seed(seedItems(), seedRequests()))
	return l
}

func assertConsistent(t *testing.T, l *Ledger) {
	t.Helper()
	for _, item := range l.Items() {
		assert.Equal(t, item.CurrentStock, item.ReplayStock(), "item %s", item.ID)
		assert.Equal(t, models.ClassifyStockLevel(item.CurrentStock, item.MinMaxStock), item.StockLevel, "item %s", item.ID)
	}
	assert.Empty(t, l.Audit())
}

func TestSeed(t *testing.T) {
	l := newTestLedger(t)

	items := l.Items()
	require.Len(t, items, 4)
	assert.Equal(t, "inv-1", items[0].ID)
	assert.Equal(t, models.StockGood, items[0].StockLevel)
	assert.Equal(t, models.StockMedium, items[1].StockLevel)
	require.Len(t, items[2].History, 1)
	assert.Equal(t, models.HistoryCreated, items[2].History[0].Kind)
	assert.Equal(t, 1, items[2].History[0].QuantityChange)
	assertConsistent(t, l)
}

func TestSeed_RejectsHistoryMismatch(t *testing.T) {
	l := New()
	items := []models.InventoryItem{{
		ID: "inv-9", Name: "Ballast", CurrentStock: 5, MinMaxStock: "1/10",
		History: []models.HistoryEntry{{ID: "h-9", Kind: models.HistoryCreated, QuantityChange: 4}},
	}}
	err := l.Seed(items, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "inv-9")
	assert.Empty(t, l.Items())
}

func TestSeed_RejectsUnknownStatus(t *testing.T) {
	l := New()
	err := l.Seed(nil, []models.MaterialRequest{{
		ID: "req-9", From: "Tom Brown", Status: "lost",
		Items: []models.RequestedItem{{Name: "Wire Nuts", Quantity: 1}},
	}})
	assert.True(t, errors.Is(err, ErrInvalidValue), "got %v", err)
}

func TestSeed_RejectsInvalidRequests(t *testing.T) {
	valid := func() models.MaterialRequest {
		return models.MaterialRequest{
			ID: "req-9", From: "Tom Brown", Status: models.RequestApproved, Priority: models.PriorityHigh,
			Items: []models.RequestedItem{{Name: "Wire Nuts", Quantity: 5}},
		}
	}
	tests := []struct {
		name   string
		mutate func(*models.MaterialRequest)
		want   error
	}{
		{"negative quantity", func(r *models.MaterialRequest) { r.Items[0].Quantity = -5 }, ErrInvalidQuantity},
		{"zero quantity", func(r *models.MaterialRequest) { r.Items[0].Quantity = 0 }, ErrInvalidQuantity},
		{"blank item name", func(r *models.MaterialRequest) { r.Items[0].Name = " " }, ErrMissingField},
		{"no lines", func(r *models.MaterialRequest) { r.Items = nil }, ErrMissingField},
		{"no requester", func(r *models.MaterialRequest) { r.From = "" }, ErrMissingField},
		{"unknown priority", func(r *models.MaterialRequest) { r.Priority = "bogus" }, ErrInvalidValue},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := New()
			req := valid()
			tt.mutate(&req)
			err := l.Seed(
				[]models.InventoryItem{{ID: "inv-1", Name: "Wire Nuts", CurrentStock: 8, MinMaxStock: "2/10"}},
				[]models.MaterialRequest{req},
			)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
			assert.Contains(t, err.Error(), "req-9")
			assert.Empty(t, l.Items(), "nothing is loaded from a bad seed")
			assert.Empty(t, l.Requests())
		})
	}
}

func TestSeed_RejectsInvalidItems(t *testing.T) {
	entry := func(kind models.HistoryKind, delta int) []models.HistoryEntry {
		return []models.HistoryEntry{{ID: "h-9", Kind: kind, QuantityChange: delta}}
	}
	tests := []struct {
		name  string
		items []models.InventoryItem
		want  error
	}{
		{"unknown history type", []models.InventoryItem{
			{ID: "inv-9", Name: "Tape", CurrentStock: 8, MinMaxStock: "2/10", History: entry("gifted", 8)},
		}, ErrInvalidValue},
		{"credit entry removing stock", []models.InventoryItem{
			{ID: "inv-9", Name: "Tape", CurrentStock: 2, MinMaxStock: "2/10", History: []models.HistoryEntry{
				{ID: "h-8", Kind: models.HistoryCreated, QuantityChange: 10},
				{ID: "h-9", Kind: models.HistoryRestocked, QuantityChange: -8},
			}},
		}, ErrInvalidQuantity},
		{"debit entry adding stock", []models.InventoryItem{
			{ID: "inv-9", Name: "Tape", CurrentStock: 8, MinMaxStock: "2/10", History: entry(models.HistoryRequestIssued, 8)},
		}, ErrInvalidQuantity},
		{"blank name", []models.InventoryItem{
			{ID: "inv-9", Name: "", CurrentStock: 8, MinMaxStock: "2/10"},
		}, ErrMissingField},
		{"duplicate name", []models.InventoryItem{
			{ID: "inv-8", Name: "Tape", CurrentStock: 8, MinMaxStock: "2/10"},
			{ID: "inv-9", Name: "Tape", CurrentStock: 3, MinMaxStock: "2/10"},
		}, ErrDuplicateItem},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := New()
			err := l.Seed(tt.items, nil)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
			assert.Contains(t, err.Error(), "inv-9")
			assert.Empty(t, l.Items())
		})
	}
}

func TestSeed_ValidRequestFulfillsByDeducting(t *testing.T) {
	l := New(WithClock(fixedClock), WithIDGenerator(NewSequence(10)))
	require.NoError(t, l.Seed(
		[]models.InventoryItem{{ID: "inv-1", Name: "Wire Nuts", CurrentStock: 8, MinMaxStock: "2/10"}},
		[]models.MaterialRequest{{
			ID: "req-9", From: "Tom Brown", Status: models.RequestApproved,
			Items: []models.RequestedItem{{Name: "Wire Nuts", Quantity: 5}},
		}},
	))

	req, err := l.Request("req-9")
	require.NoError(t, err)
	assert.Equal(t, models.PriorityMedium, req.Priority)

	_, _, err = l.FulfillRequest("req-9")
	require.NoError(t, err)
	assert.Equal(t, 3, stockOf(t, l, "inv-1"))
	assertConsistent(t, l)
}

func TestCreateItem(t *testing.T) {
	l := newTestLedger(t)

	item, err := l.CreateItem(NewItem{Name: " Breaker 20A ", InitialStock: 12, MinMaxStock: "5/30"})
	require.NoError(t, err)

	assert.Equal(t, "inv-11", item.ID)
	assert.Equal(t, "Breaker 20A", item.Name)
	assert.Equal(t, models.DefaultCategory, item.Category)
	assert.Equal(t, models.StockMedium, item.StockLevel)
	assert.Equal(t, time.Date(2025, 8, 2, 0, 0, 0, 0, time.UTC), item.LastRestocked)
	require.Len(t, item.History, 1)
	assert.Equal(t, models.HistoryEntry{
		ID: "h-15", Kind: models.HistoryCreated, QuantityChange: 12, Date: testNow, Note: "Initial stock added",
	}, item.History[0])

	items := l.Items()
	require.Len(t, items, 5)
	assert.Equal(t, item.ID, items[0].ID, "new items are listed first")
	assertConsistent(t, l)
}

func TestCreateItem_DuplicateName(t *testing.T) {
	l := newTestLedger(t)

	_, err := l.CreateItem(NewItem{Name: " Refrigerant R-410A ", InitialStock: 3, MinMaxStock: "2/10"})
	assert.True(t, errors.Is(err, ErrDuplicateItem), "got %v", err)
	assert.Len(t, l.Items(), 4)
	assert.Equal(t, 8, stockOf(t, l, "inv-4"))
}

func TestCreateItem_Rejections(t *testing.T) {
	tests := []struct {
		name string
		in   NewItem
		want error
	}{
		{"no name", NewItem{Name: "  ", InitialStock: 3, MinMaxStock: "1/5"}, ErrMissingField},
		{"zero stock", NewItem{Name: "Tape", MinMaxStock: "1/5"}, ErrMissingField},
		{"no range", NewItem{Name: "Tape", InitialStock: 3}, ErrMissingField},
		{"negative stock", NewItem{Name: "Tape", InitialStock: -3, MinMaxStock: "1/5"}, ErrInvalidQuantity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := newTestLedger(t)
			_, err := l.CreateItem(tt.in)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
			assert.Len(t, l.Items(), 4)
		})
	}
}

func TestIssueStock(t *testing.T) {
	l := newTestLedger(t)

	item, err := l.IssueStock("inv-2", 12, "Mike Johnson")
	require.NoError(t, err)

	assert.Equal(t, 10, item.CurrentStock)
	assert.Equal(t, models.StockMedium, item.StockLevel)
	last := item.History[len(item.History)-1]
	assert.Equal(t, models.HistoryIssued, last.Kind)
	assert.Equal(t, -12, last.QuantityChange)
	assert.Equal(t, "Issued to Mike Johnson", last.Note)
	assertConsistent(t, l)
}

func TestIssueStock_DrainsToLow(t *testing.T) {
	l := newTestLedger(t)

	item, err := l.IssueStock("inv-4", 8, "Tom Brown")
	require.NoError(t, err)
	assert.Equal(t, 0, item.CurrentStock)
	assert.Equal(t, models.StockLow, item.StockLevel)
}

func TestIssueStock_InsufficientLeavesItemUntouched(t *testing.T) {
	l := newTestLedger(t)
	before, err := l.Item("inv-4")
	require.NoError(t, err)

	_, err = l.IssueStock("inv-4", 20, "John Smith")
	assert.True(t, errors.Is(err, ErrInsufficientStock))

	after, err := l.Item("inv-4")
	require.NoError(t, err)
	assert.Equal(t, before, after)
	assert.Equal(t, 8, after.CurrentStock)
}

func TestIssueStock_Rejections(t *testing.T) {
	l := newTestLedger(t)

	_, err := l.IssueStock("inv-1", 0, "John Smith")
	assert.True(t, errors.Is(err, ErrInvalidQuantity))

	_, err = l.IssueStock("inv-1", 1, "")
	assert.True(t, errors.Is(err, ErrMissingField))

	_, err = l.IssueStock("inv-99", 1, "John Smith")
	assert.True(t, errors.Is(err, ErrItemNotFound))

	assertConsistent(t, l)
}

func TestRestock(t *testing.T) {
	l := newTestLedger(t)
	before, err := l.Item("inv-3")
	require.NoError(t, err)

	item, err := l.Restock("inv-3", 25, "Quarterly order")
	require.NoError(t, err)

	assert.Equal(t, before.CurrentStock+25, item.CurrentStock)
	assert.Equal(t, models.StockGood, item.StockLevel)
	assert.Equal(t, time.Date(2025, 8, 2, 0, 0, 0, 0, time.UTC), item.LastRestocked)
	require.Len(t, item.History, len(before.History)+1)
	last := item.History[len(item.History)-1]
	assert.Equal(t, models.HistoryRestocked, last.Kind)
	assert.Equal(t, 25, last.QuantityChange)
	assert.Equal(t, "Quarterly order", last.Note)
	assertConsistent(t, l)
}

func TestRestock_Rejections(t *testing.T) {
	l := newTestLedger(t)

	_, err := l.Restock("inv-3", -1, "Return")
	assert.True(t, errors.Is(err, ErrInvalidQuantity))

	_, err = l.Restock("inv-3", 1, " ")
	assert.True(t, errors.Is(err, ErrMissingField))

	_, err = l.Restock("inv-99", 1, "Return")
	assert.True(t, errors.Is(err, ErrItemNotFound))
}

func TestReadsReturnCopies(t *testing.T) {
	l := newTestLedger(t)

	items := l.Items()
	items[0].CurrentStock = 999
	items[0].History[0].QuantityChange = 999

	item, err := l.Item("inv-1")
	require.NoError(t, err)
	assert.Equal(t, 75, item.CurrentStock)
	assert.Equal(t, 75, item.History[0].QuantityChange)

	reqs := l.Requests()
	reqs[0].Items[0].Quantity = 999
	req, err := l.Request("req-1")
	require.NoError(t, err)
	assert.Equal(t, 10, req.Items[0].Quantity)
}

func TestHistory(t *testing.T) {
	l := newTestLedger(t)
	_, err := l.IssueStock("inv-1", 5, "Tom Brown")
	require.NoError(t, err)
	_, err = l.Restock("inv-1", 3, "Found in van")
	require.NoError(t, err)

	history, err := l.History("inv-1")
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, models.HistoryCreated, history[0].Kind)
	assert.Equal(t, models.HistoryIssued, history[1].Kind)
	assert.Equal(t, models.HistoryRestocked, history[2].Kind)

	_, err = l.History("inv-99")
	assert.True(t, errors.Is(err, ErrItemNotFound))
}

func TestSummary(t *testing.T) {
	l := newTestLedger(t)
	_, err := l.IssueStock("inv-4", 8, "Tom Brown")
	require.NoError(t, err)

	assert.Equal(t, models.Summary{
		TotalItems:       4,
		LowStock:         1,
		PendingRequests:  1,
		ApprovedRequests: 1,
	}, l.Summary())
}
