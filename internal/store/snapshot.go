package store

import (
	"bytes"
	"encoding/json"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/dealerdesk/dealerdesk/internal/db/models"
)

// snapshotMagic is the fixed header identifying a DealerDesk snapshot.
// Loaded bytes without it are discarded and a fresh store is used instead.
const snapshotMagic = "DEALERDESK/1\n"

// snapshot is the serialized form of the in-memory tables.
type snapshot struct {
	Templates []models.Template   `json:"templates"`
	Dealers   []models.Dealer     `json:"dealers"`
	Prices    []models.PriceSheet `json:"vehicle_prices"`
}

// tables holds the in-memory relational state. Price sheets are keyed by
// lower-cased brand.
type tables struct {
	templates map[string]*models.Template
	dealers   map[string]*models.Dealer
	prices    map[string]*models.PriceSheet
}

func newTables() *tables {
	return &tables{
		templates: make(map[string]*models.Template),
		dealers:   make(map[string]*models.Dealer),
		prices:    make(map[string]*models.PriceSheet),
	}
}

// encodeSnapshot serializes the tables deterministically (rows sorted by
// primary key) behind the magic header.
func encodeSnapshot(t *tables) ([]byte, error) {
	var s snapshot

	for _, row := range t.templates {
		s.Templates = append(s.Templates, *row)
	}

	sort.Slice(s.Templates, func(i, j int) bool { return s.Templates[i].Key < s.Templates[j].Key })

	for _, row := range t.dealers {
		s.Dealers = append(s.Dealers, *row)
	}

	sort.Slice(s.Dealers, func(i, j int) bool { return s.Dealers[i].ID < s.Dealers[j].ID })

	for _, row := range t.prices {
		s.Prices = append(s.Prices, *row)
	}

	sort.Slice(s.Prices, func(i, j int) bool { return s.Prices[i].Brand < s.Prices[j].Brand })

	body, err := json.Marshal(s)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal snapshot")
	}

	return append([]byte(snapshotMagic), body...), nil
}

// decodeSnapshot parses snapshot bytes back into tables. Returns
// ErrBadSnapshot when the magic header is missing.
func decodeSnapshot(data []byte) (*tables, error) {
	if !bytes.HasPrefix(data, []byte(snapshotMagic)) {
		return nil, ErrBadSnapshot
	}

	var s snapshot
	if err := json.Unmarshal(bytes.TrimPrefix(data, []byte(snapshotMagic)), &s); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal snapshot")
	}

	t := newTables()

	for i := range s.Templates {
		row := s.Templates[i]
		t.templates[row.Key] = &row
	}

	for i := range s.Dealers {
		row := s.Dealers[i]
		t.dealers[row.ID] = &row
	}

	for i := range s.Prices {
		row := s.Prices[i]
		t.prices[strings.ToLower(row.Brand)] = &row
	}

	return t, nil
}
