package database

import (
	"strings"
	"time"

	"github.com/jinzhu/gorm"
	"github.com/pkg/errors"

	"storeroom/internal/models"
)

// Projection mirrors ledger snapshots into the read model so the dashboard
// can search and page through activity with SQL.
type Projection struct {
	db *gorm.DB
}

func NewProjection(db *gorm.DB) *Projection {
	return &Projection{db: db}
}

// Sync replaces every row with the given snapshot in one transaction.
func (p *Projection) Sync(items []models.InventoryItem, requests []models.MaterialRequest) error {
	return p.db.Transaction(func(tx *gorm.DB) error {
		for _, table := range []string{"history_entries", "inventory_items", "material_requests"} {
			if err := tx.Exec("DELETE FROM " + table).Error; err != nil {
				return errors.Wrapf(err, "clear %s", table)
			}
		}
		for pos, item := range items {
			rec := itemRecord(pos, item)
			if err := tx.Create(&rec).Error; err != nil {
				return errors.Wrapf(err, "insert item %s", item.ID)
			}
			for _, entry := range item.History {
				hrec := historyRecord(item.ID, entry)
				if err := tx.Create(&hrec).Error; err != nil {
					return errors.Wrapf(err, "insert history %s", entry.ID)
				}
			}
		}
		for pos, req := range requests {
			rec := requestRecord(pos, req)
			if err := tx.Create(&rec).Error; err != nil {
				return errors.Wrapf(err, "insert request %s", req.ID)
			}
		}
		return nil
	})
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// SearchItemIDs matches the query against item names and categories,
// ignoring ASCII case, in inventory order. An empty query matches all.
func (p *Projection) SearchItemIDs(query string) ([]string, error) {
	var ids []string
	q := p.db.Model(&ItemRecord{}).Order("position")
	if query = strings.TrimSpace(query); query != "" {
		pattern := "%" + likeEscaper.Replace(query) + "%"
		q = q.Where(`name LIKE ? ESCAPE '\' OR category LIKE ? ESCAPE '\'`, pattern, pattern)
	}
	if err := q.Pluck("id", &ids).Error; err != nil {
		return nil, errors.Wrap(err, "search items")
	}
	return ids, nil
}

type activityRow struct {
	EntryID        string
	ItemID         string
	ItemName       string
	Kind           string
	QuantityChange int
	Date           time.Time
	Note           string
}

// RecentHistory returns the newest history entries across all items.
func (p *Projection) RecentHistory(limit int) ([]models.Activity, error) {
	var rows []activityRow
	err := p.db.Table("history_entries").
		Select("history_entries.entry_id, history_entries.item_id, inventory_items.name AS item_name, " +
			"history_entries.kind, history_entries.quantity_change, history_entries.date, history_entries.note").
		Joins("JOIN inventory_items ON inventory_items.id = history_entries.item_id").
		Order("history_entries.stamp DESC, history_entries.row_id DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, errors.Wrap(err, "recent history")
	}
	out := make([]models.Activity, 0, len(rows))
	for _, r := range rows {
		out = append(out, models.Activity{
			ItemID:   r.ItemID,
			ItemName: r.ItemName,
			HistoryEntry: models.HistoryEntry{
				ID:             r.EntryID,
				Kind:           models.HistoryKind(r.Kind),
				QuantityChange: r.QuantityChange,
				Date:           r.Date,
				Note:           r.Note,
			},
		})
	}
	return out, nil
}

// CountRequestsByStatus counts material requests per status.
func (p *Projection) CountRequestsByStatus() (map[models.RequestStatus]int, error) {
	rows, err := p.db.Model(&RequestRecord{}).Select("status, count(*)").Group("status").Rows()
	if err != nil {
		return nil, errors.Wrap(err, "count requests")
	}
	defer rows.Close()

	counts := make(map[models.RequestStatus]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, errors.Wrap(err, "scan request count")
		}
		counts[models.RequestStatus(status)] = n
	}
	return counts, rows.Err()
}

// Requests returns the stored requests with the given status in list order,
// or all of them when status is empty.
func (p *Projection) Requests(status models.RequestStatus) ([]models.MaterialRequest, error) {
	var recs []RequestRecord
	q := p.db.Order("position")
	if status != "" {
		q = q.Where("status = ?", string(status))
	}
	if err := q.Find(&recs).Error; err != nil {
		return nil, errors.Wrap(err, "list requests")
	}
	out := make([]models.MaterialRequest, len(recs))
	for i, rec := range recs {
		out[i] = rec.MaterialRequest()
	}
	return out, nil
}
