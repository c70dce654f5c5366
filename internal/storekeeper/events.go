package storekeeper

import (
	"time"

	"storeroom/internal/models"
)

// EventType names a ledger change pushed to dashboard subscribers
type EventType string

const (
	EventItemCreated          EventType = "item_created"
	EventStockIssued          EventType = "stock_issued"
	EventItemRestocked        EventType = "item_restocked"
	EventRequestSubmitted     EventType = "request_submitted"
	EventRequestStatusChanged EventType = "request_status_changed"
	EventRequestIssued        EventType = "request_issued"
)

// Event describes one committed ledger change
type Event struct {
	Type      EventType            `json:"type"`
	ItemID    string               `json:"itemId,omitempty"`
	RequestID string               `json:"requestId,omitempty"`
	Stock     int                  `json:"stock"`
	Level     models.StockLevel    `json:"stockLevel,omitempty"`
	Status    models.RequestStatus `json:"status,omitempty"`
	At        time.Time            `json:"at"`
}

// Publisher receives events after the ledger has committed them.
// Publish must not block.
type Publisher interface {
	Publish(Event)
}

type nopPublisher struct{}

func (nopPublisher) Publish(Event) {}

func itemEvent(t EventType, item models.InventoryItem, at time.Time) Event {
	return Event{Type: t, ItemID: item.ID, Stock: item.CurrentStock, Level: item.StockLevel, At: at}
}

func requestEvent(t EventType, req models.MaterialRequest, at time.Time) Event {
	return Event{Type: t, RequestID: req.ID, Status: req.Status, At: at}
}
