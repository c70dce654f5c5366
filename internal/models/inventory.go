package models

import "time"

// InventoryItem represents a stocked material in the maintenance storeroom
type InventoryItem struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"`
	Category      string         `json:"category"`
	CurrentStock  int            `json:"currentStock"`
	MinMaxStock   string         `json:"minMaxStock"`
	LastRestocked time.Time      `json:"lastRestocked"`
	StockLevel    StockLevel     `json:"stockLevel"`
	History       []HistoryEntry `json:"history"`
}

// HistoryEntry is one stock movement recorded against an item. Entries are
// only ever appended, in chronological order.
type HistoryEntry struct {
	ID             string      `json:"id"`
	Kind           HistoryKind `json:"type"`
	QuantityChange int         `json:"quantityChange"`
	Date           time.Time   `json:"date"`
	Note           string      `json:"note"`
}

// HistoryKind represents the reason a history entry was written
type HistoryKind string

const (
	// History kinds
	HistoryCreated       HistoryKind = "created"
	HistoryIssued        HistoryKind = "issued"
	HistoryRestocked     HistoryKind = "restocked"
	HistoryRequestIssued HistoryKind = "request_issued"
)

// Valid reports whether k is one of the known kinds.
func (k HistoryKind) Valid() bool {
	switch k {
	case HistoryCreated, HistoryIssued, HistoryRestocked, HistoryRequestIssued:
		return true
	}
	return false
}

// Credit reports whether the entry added stock.
func (k HistoryKind) Credit() bool {
	return k == HistoryCreated || k == HistoryRestocked
}

// DefaultCategory is used when an item is created without a category
const DefaultCategory = "General"

// ReplayStock sums every history delta from zero in insertion order.
func (i InventoryItem) ReplayStock() int {
	total := 0
	for _, entry := range i.History {
		total += entry.QuantityChange
	}
	return total
}

// Clone returns a copy of the item that shares no history backing array.
func (i InventoryItem) Clone() InventoryItem {
	out := i
	out.History = make([]HistoryEntry, len(i.History))
	copy(out.History, i.History)
	return out
}

// Reclassify recomputes the stock level from the current stock and range.
func (i *InventoryItem) Reclassify() {
	i.StockLevel = ClassifyStockLevel(i.CurrentStock, i.MinMaxStock)
}

// Activity is a history entry shown in the storeroom activity feed,
// tagged with the item it belongs to.
type Activity struct {
	ItemID   string `json:"itemId"`
	ItemName string `json:"itemName"`
	HistoryEntry
}
