package config

import (
	_ "embed"
	"os"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"storeroom/internal/models"
)

//go:embed seed.yaml
var defaultSeed []byte

const (
	dateLayout      = "2006-01-02"
	timestampLayout = time.RFC3339
)

// Seed is the startup data loaded into a fresh ledger.
type Seed struct {
	Technicians []string      `yaml:"technicians"`
	Inventory   []SeedItem    `yaml:"inventory"`
	Requests    []SeedRequest `yaml:"requests"`
}

type SeedItem struct {
	ID            string        `yaml:"id"`
	Name          string        `yaml:"name"`
	Category      string        `yaml:"category"`
	CurrentStock  int           `yaml:"current_stock"`
	MinMaxStock   string        `yaml:"min_max_stock"`
	LastRestocked string        `yaml:"last_restocked"`
	History       []SeedHistory `yaml:"history"`
}

type SeedHistory struct {
	ID             string `yaml:"id"`
	Type           string `yaml:"type"`
	QuantityChange int    `yaml:"quantity_change"`
	Date           string `yaml:"date"`
	Note           string `yaml:"note"`
}

type SeedRequest struct {
	ID       string     `yaml:"id"`
	From     string     `yaml:"from"`
	Task     string     `yaml:"task"`
	Items    []SeedLine `yaml:"items"`
	Date     string     `yaml:"date"`
	Priority string     `yaml:"priority"`
	Status   string     `yaml:"status"`
}

type SeedLine struct {
	Name     string `yaml:"name"`
	Quantity int    `yaml:"quantity"`
}

// LoadSeed reads seed data from path, or the built-in data when path is empty.
func LoadSeed(path string) (*Seed, error) {
	data := defaultSeed
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrapf(err, "read seed %s", path)
		}
	}
	return ParseSeed(data)
}

// ParseSeed decodes yaml seed data.
func ParseSeed(data []byte) (*Seed, error) {
	seed := &Seed{}
	if err := yaml.Unmarshal(data, seed); err != nil {
		return nil, errors.Wrap(err, "parse seed")
	}
	return seed, nil
}

// Items converts the seeded inventory into ledger items.
func (s *Seed) Items() ([]models.InventoryItem, error) {
	items := make([]models.InventoryItem, 0, len(s.Inventory))
	for _, si := range s.Inventory {
		restocked, err := parseTime(dateLayout, si.LastRestocked)
		if err != nil {
			return nil, errors.Wrapf(err, "item %s", si.ID)
		}
		item := models.InventoryItem{
			ID:            si.ID,
			Name:          si.Name,
			Category:      si.Category,
			CurrentStock:  si.CurrentStock,
			MinMaxStock:   si.MinMaxStock,
			LastRestocked: restocked,
		}
		for _, sh := range si.History {
			at, err := parseTime(timestampLayout, sh.Date)
			if err != nil {
				return nil, errors.Wrapf(err, "item %s history %s", si.ID, sh.ID)
			}
			item.History = append(item.History, models.HistoryEntry{
				ID:             sh.ID,
				Kind:           models.HistoryKind(sh.Type),
				QuantityChange: sh.QuantityChange,
				Date:           at,
				Note:           sh.Note,
			})
		}
		items = append(items, item)
	}
	return items, nil
}

// MaterialRequests converts the seeded requests.
func (s *Seed) MaterialRequests() ([]models.MaterialRequest, error) {
	reqs := make([]models.MaterialRequest, 0, len(s.Requests))
	for _, sr := range s.Requests {
		date, err := parseTime(dateLayout, sr.Date)
		if err != nil {
			return nil, errors.Wrapf(err, "request %s", sr.ID)
		}
		req := models.MaterialRequest{
			ID:       sr.ID,
			From:     sr.From,
			Task:     sr.Task,
			Date:     date,
			Priority: models.Priority(sr.Priority),
			Status:   models.RequestStatus(sr.Status),
		}
		for _, line := range sr.Items {
			req.Items = append(req.Items, models.RequestedItem{Name: line.Name, Quantity: line.Quantity})
		}
		reqs = append(reqs, req)
	}
	return reqs, nil
}

func parseTime(layout, value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	return time.Parse(layout, value)
}
