package ledger

import (
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"

	"storeroom/internal/models"
)

// Ledger owns the storeroom inventory and the material requests raised
// against it for one dashboard session. Every operation runs to completion
// under the ledger lock, and every read hands back copies.
type Ledger struct {
	mu       sync.RWMutex
	items    []models.InventoryItem
	requests []models.MaterialRequest

	now     func() time.Time
	ids     IDGenerator
	lenient bool
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithClock replaces time.Now as the source of operation timestamps.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

// WithIDGenerator replaces the UUID-based identifier source.
func WithIDGenerator(ids IDGenerator) Option {
	return func(l *Ledger) { l.ids = ids }
}

// WithLenientTransitions drops the check on a request's current status:
// approval or rejection is accepted from any status and fulfillment runs
// whatever the current status is. A request can then be fulfilled more than
// once.
func WithLenientTransitions() Option {
	return func(l *Ledger) { l.lenient = true }
}

// New creates an empty ledger.
func New(opts ...Option) *Ledger {
	l := &Ledger{
		now: time.Now,
		ids: UUIDs{},
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Lenient reports whether the current-status guard is disabled.
func (l *Ledger) Lenient() bool {
	return l.lenient
}

// Seed loads startup data, keeping the given order. Items without history
// get a single created entry for their current stock; items whose history
// does not replay to their stock are refused. Stock levels are recomputed.
// Seeded data is held to the same rules as CreateItem and SubmitRequest:
// nothing is loaded if any item or request breaks them.
func (l *Ledger) Seed(items []models.InventoryItem, requests []models.MaterialRequest) error {
	seeded := make([]models.InventoryItem, 0, len(items))
	names := make(map[string]bool, len(items))
	for _, item := range items {
		item = item.Clone()
		if item.ID == "" {
			item.ID = l.ids.NewID(itemPrefix)
		}
		if err := checkSeedItem(item); err != nil {
			return errors.Wrapf(err, "seed item %s", item.ID)
		}
		if names[item.Name] {
			return errors.Wrapf(ErrDuplicateItem, "seed item %s: name %q", item.ID, item.Name)
		}
		names[item.Name] = true
		if item.Category == "" {
			item.Category = models.DefaultCategory
		}
		if len(item.History) == 0 {
			item.History = []models.HistoryEntry{{
				ID:             l.ids.NewID(historyPrefix),
				Kind:           models.HistoryCreated,
				QuantityChange: item.CurrentStock,
				Date:           item.LastRestocked,
				Note:           "Initial stock",
			}}
		}
		if replayed := item.ReplayStock(); replayed != item.CurrentStock {
			return errors.Errorf("seed item %s: history replays to %d, stock is %d", item.ID, replayed, item.CurrentStock)
		}
		item.Reclassify()
		seeded = append(seeded, item)
	}

	loaded := make([]models.MaterialRequest, 0, len(requests))
	for _, req := range requests {
		req = req.Clone()
		if req.ID == "" {
			req.ID = l.ids.NewID(requestPrefix)
		}
		if req.Status == "" {
			req.Status = models.RequestPending
		}
		if req.Priority == "" {
			req.Priority = models.PriorityMedium
		}
		if err := checkSeedRequest(req); err != nil {
			return errors.Wrapf(err, "seed request %s", req.ID)
		}
		loaded = append(loaded, req)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.items = seeded
	l.requests = loaded
	return nil
}

// Items returns every item, most recently created first.
func (l *Ledger) Items() []models.InventoryItem {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]models.InventoryItem, len(l.items))
	for i, item := range l.items {
		out[i] = item.Clone()
	}
	return out
}

// Item returns one item by identifier.
func (l *Ledger) Item(id string) (models.InventoryItem, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	idx := l.itemIndex(id)
	if idx < 0 {
		return models.InventoryItem{}, errors.Wrap(ErrItemNotFound, id)
	}
	return l.items[idx].Clone(), nil
}

// History returns an item's history in chronological order.
func (l *Ledger) History(id string) ([]models.HistoryEntry, error) {
	item, err := l.Item(id)
	if err != nil {
		return nil, err
	}
	return item.History, nil
}

// Requests returns every material request, most recent first.
func (l *Ledger) Requests() []models.MaterialRequest {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]models.MaterialRequest, len(l.requests))
	for i, req := range l.requests {
		out[i] = req.Clone()
	}
	return out
}

// Request returns one material request by identifier.
func (l *Ledger) Request(id string) (models.MaterialRequest, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	idx := l.requestIndex(id)
	if idx < 0 {
		return models.MaterialRequest{}, errors.Wrap(ErrRequestNotFound, id)
	}
	return l.requests[idx].Clone(), nil
}

// Summary counts items and requests the way the dashboard cards show them.
func (l *Ledger) Summary() models.Summary {
	l.mu.RLock()
	defer l.mu.RUnlock()
	s := models.Summary{TotalItems: len(l.items)}
	for _, item := range l.items {
		if item.StockLevel == models.StockLow {
			s.LowStock++
		}
	}
	for _, req := range l.requests {
		switch req.Status {
		case models.RequestPending:
			s.PendingRequests++
		case models.RequestApproved:
			s.ApprovedRequests++
		case models.RequestIssued:
			s.IssuedRequests++
		case models.RequestRejected:
			s.RejectedRequests++
		}
	}
	return s
}

// Discrepancy describes an item whose stock disagrees with its history.
type Discrepancy struct {
	ItemID   string `json:"itemId"`
	Stock    int    `json:"stock"`
	Replayed int    `json:"replayed"`
}

// Audit replays every item's history and reports mismatches. A healthy
// ledger always returns an empty slice.
func (l *Ledger) Audit() []Discrepancy {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := []Discrepancy{}
	for _, item := range l.items {
		if replayed := item.ReplayStock(); replayed != item.CurrentStock {
			out = append(out, Discrepancy{ItemID: item.ID, Stock: item.CurrentStock, Replayed: replayed})
		}
	}
	return out
}

func checkSeedItem(item models.InventoryItem) error {
	switch {
	case strings.TrimSpace(item.Name) == "":
		return missing("name")
	case item.CurrentStock < 0:
		return errors.Wrapf(ErrInvalidQuantity, "stock %d", item.CurrentStock)
	}
	for _, entry := range item.History {
		if !entry.Kind.Valid() {
			return errors.Wrapf(ErrInvalidValue, "history %s: type %q", entry.ID, entry.Kind)
		}
		if (entry.Kind.Credit() && entry.QuantityChange < 0) || (!entry.Kind.Credit() && entry.QuantityChange > 0) {
			return errors.Wrapf(ErrInvalidQuantity, "history %s: %s entry changes stock by %d", entry.ID, entry.Kind, entry.QuantityChange)
		}
	}
	return nil
}

func checkSeedRequest(req models.MaterialRequest) error {
	switch {
	case strings.TrimSpace(req.From) == "":
		return missing("requester")
	case len(req.Items) == 0:
		return missing("requested items")
	case !req.Status.Valid():
		return errors.Wrapf(ErrInvalidValue, "status %q", req.Status)
	case !req.Priority.Valid():
		return errors.Wrapf(ErrInvalidValue, "priority %q", req.Priority)
	}
	for _, line := range req.Items {
		if strings.TrimSpace(line.Name) == "" {
			return missing("item name")
		}
		if line.Quantity <= 0 {
			return errors.Wrapf(ErrInvalidQuantity, "%s quantity %d", line.Name, line.Quantity)
		}
	}
	return nil
}

func (l *Ledger) itemIndex(id string) int {
	for i := range l.items {
		if l.items[i].ID == id {
			return i
		}
	}
	return -1
}

// itemByName resolves request lines.
func (l *Ledger) itemByName(name string) int {
	for i := range l.items {
		if l.items[i].Name == name {
			return i
		}
	}
	return -1
}

func (l *Ledger) requestIndex(id string) int {
	for i := range l.requests {
		if l.requests[i].ID == id {
			return i
		}
	}
	return -1
}

func (l *Ledger) appendEntry(idx int, kind models.HistoryKind, delta int, at time.Time, note string) {
	item := &l.items[idx]
	item.CurrentStock += delta
	item.History = append(item.History, models.HistoryEntry{
		ID:             l.ids.NewID(historyPrefix),
		Kind:           kind,
		QuantityChange: delta,
		Date:           at,
		Note:           note,
	})
	item.Reclassify()
}

func day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
