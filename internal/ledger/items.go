package ledger

import (
	"strings"

	"github.com/pkg/errors"

	"storeroom/internal/models"
)

// NewItem is the input for CreateItem.
type NewItem struct {
	Name         string `json:"name"`
	Category     string `json:"category"`
	InitialStock int    `json:"currentStock"`
	MinMaxStock  string `json:"minMaxStock"`
}

// CreateItem adds an item with a single created history entry and places it
// at the front of the inventory. Names are unique; request lines resolve
// items by name.
func (l *Ledger) CreateItem(in NewItem) (models.InventoryItem, error) {
	name := strings.TrimSpace(in.Name)
	switch {
	case name == "":
		return models.InventoryItem{}, missing("name")
	case in.InitialStock == 0:
		return models.InventoryItem{}, missing("initial stock")
	case strings.TrimSpace(in.MinMaxStock) == "":
		return models.InventoryItem{}, missing("min/max stock")
	case in.InitialStock < 0:
		return models.InventoryItem{}, errors.Wrapf(ErrInvalidQuantity, "initial stock %d", in.InitialStock)
	}
	category := strings.TrimSpace(in.Category)
	if category == "" {
		category = models.DefaultCategory
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.itemByName(name) >= 0 {
		return models.InventoryItem{}, errors.Wrapf(ErrDuplicateItem, "name %q", name)
	}
	now := l.now()
	item := models.InventoryItem{
		ID:            l.ids.NewID(itemPrefix),
		Name:          name,
		Category:      category,
		MinMaxStock:   strings.TrimSpace(in.MinMaxStock),
		LastRestocked: day(now),
	}
	l.items = append([]models.InventoryItem{item}, l.items...)
	l.appendEntry(0, models.HistoryCreated, in.InitialStock, now, "Initial stock added")
	return l.items[0].Clone(), nil
}

// IssueStock hands quantity units of an item to a technician. The ledger is
// unchanged if the item holds fewer units than requested.
func (l *Ledger) IssueStock(itemID string, quantity int, technician string) (models.InventoryItem, error) {
	if quantity <= 0 {
		return models.InventoryItem{}, errors.Wrapf(ErrInvalidQuantity, "issue %d", quantity)
	}
	technician = strings.TrimSpace(technician)
	if technician == "" {
		return models.InventoryItem{}, missing("technician")
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	idx := l.itemIndex(itemID)
	if idx < 0 {
		return models.InventoryItem{}, errors.Wrap(ErrItemNotFound, itemID)
	}
	if stock := l.items[idx].CurrentStock; stock < quantity {
		return models.InventoryItem{}, errors.Wrapf(ErrInsufficientStock, "%s: %d in stock, %d requested", l.items[idx].Name, stock, quantity)
	}
	l.appendEntry(idx, models.HistoryIssued, -quantity, l.now(), "Issued to "+technician)
	return l.items[idx].Clone(), nil
}

// Restock adds quantity units to an item and stamps the restock date.
func (l *Ledger) Restock(itemID string, quantity int, reason string) (models.InventoryItem, error) {
	if quantity <= 0 {
		return models.InventoryItem{}, errors.Wrapf(ErrInvalidQuantity, "restock %d", quantity)
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return models.InventoryItem{}, missing("reason")
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	idx := l.itemIndex(itemID)
	if idx < 0 {
		return models.InventoryItem{}, errors.Wrap(ErrItemNotFound, itemID)
	}
	now := l.now()
	l.appendEntry(idx, models.HistoryRestocked, quantity, now, reason)
	l.items[idx].LastRestocked = day(now)
	return l.items[idx].Clone(), nil
}
