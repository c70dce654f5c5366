package database

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"storeroom/internal/models"
)

// ItemRecord is the row form of an inventory item
type ItemRecord struct {
	ID            string `gorm:"primary_key"`
	Position      int
	Name          string `gorm:"index"`
	Category      string `gorm:"index"`
	CurrentStock  int
	MinMaxStock   string
	StockLevel    string
	LastRestocked time.Time
}

// TableName sets the table name for ItemRecord
func (ItemRecord) TableName() string {
	return "inventory_items"
}

// HistoryRecord is the row form of one history entry
type HistoryRecord struct {
	RowID          uint   `gorm:"primary_key;AUTO_INCREMENT"`
	EntryID        string `gorm:"index"`
	ItemID         string `gorm:"index"`
	Kind           string
	QuantityChange int
	Date           time.Time
	Stamp          int64 `gorm:"index"`
	Note           string
}

// TableName sets the table name for HistoryRecord
func (HistoryRecord) TableName() string {
	return "history_entries"
}

// RequestLines represents request lines stored as a JSON column
type RequestLines []models.RequestedItem

// Value converts the lines to a JSON string for storage
func (l RequestLines) Value() (driver.Value, error) {
	if len(l) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan converts the database value back to lines
func (l *RequestLines) Scan(value interface{}) error {
	if value == nil {
		*l = RequestLines{}
		return nil
	}

	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	default:
		return errors.New("unsupported type for RequestLines")
	}
}

// RequestRecord is the row form of a material request
type RequestRecord struct {
	ID        string `gorm:"primary_key"`
	Position  int
	Requester string
	Task      string
	Lines     RequestLines `gorm:"type:text"`
	Date      time.Time
	Priority  string
	Status    string `gorm:"index"`
}

// TableName sets the table name for RequestRecord
func (RequestRecord) TableName() string {
	return "material_requests"
}

func itemRecord(pos int, item models.InventoryItem) ItemRecord {
	return ItemRecord{
		ID:            item.ID,
		Position:      pos,
		Name:          item.Name,
		Category:      item.Category,
		CurrentStock:  item.CurrentStock,
		MinMaxStock:   item.MinMaxStock,
		StockLevel:    string(item.StockLevel),
		LastRestocked: item.LastRestocked,
	}
}

func historyRecord(itemID string, entry models.HistoryEntry) HistoryRecord {
	return HistoryRecord{
		EntryID:        entry.ID,
		ItemID:         itemID,
		Kind:           string(entry.Kind),
		QuantityChange: entry.QuantityChange,
		Date:           entry.Date,
		Stamp:          entry.Date.UnixNano(),
		Note:           entry.Note,
	}
}

func requestRecord(pos int, req models.MaterialRequest) RequestRecord {
	return RequestRecord{
		ID:        req.ID,
		Position:  pos,
		Requester: req.From,
		Task:      req.Task,
		Lines:     RequestLines(req.Items),
		Date:      req.Date,
		Priority:  string(req.Priority),
		Status:    string(req.Status),
	}
}

// MaterialRequest converts the row back to the domain type.
func (r RequestRecord) MaterialRequest() models.MaterialRequest {
	return models.MaterialRequest{
		ID:       r.ID,
		From:     r.Requester,
		Task:     r.Task,
		Items:    []models.RequestedItem(r.Lines),
		Date:     r.Date,
		Priority: models.Priority(r.Priority),
		Status:   models.RequestStatus(r.Status),
	}
}
