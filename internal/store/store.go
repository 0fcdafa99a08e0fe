// Package store implements the persistence contract shared by the three
// DealerDesk backends: a local snapshot file, a remote blob, and a relational
// database. All backends expose identical semantics; only durability timing
// differs.
package store

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/dealerdesk/dealerdesk/internal/db/models"
)

// TemplateInfo is a template list entry.
type TemplateInfo struct {
	Key       string    `json:"key"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PriceSheetInfo is a price sheet list entry.
type PriceSheetInfo struct {
	Brand     string    `json:"brand"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DealerFields carries the writable dealer attributes for a create.
type DealerFields struct {
	Name         string
	Address      string
	Number       string
	Brand        string
	ShowroomLink string
}

// DealerPatch carries a partial dealer update. Nil fields retain the prior
// value.
type DealerPatch struct {
	Name         *string
	Address      *string
	Number       *string
	Brand        *string
	ShowroomLink *string
}

// ImportRecord is a loosely-shaped dealer record from an external list.
// Historical exports disagree on field spellings, so values are resolved by
// trying each known alias.
type ImportRecord map[string]any

// Store is the storage adapter contract.
//
// Absence is never an error: missing templates read as "", missing dealers as
// nil, deletes of absent records succeed. Init is idempotent and safe for
// concurrent use; only the first call performs work. Flush forces any pending
// deferred persistence and must be called before teardown in ephemeral
// runtimes.
type Store interface {
	Init(ctx context.Context) error
	Flush(ctx context.Context) error
	Close() error

	GetTemplate(ctx context.Context, key string) (string, error)
	SaveTemplate(ctx context.Context, key, content string) error
	ListTemplates(ctx context.Context) ([]TemplateInfo, error)
	DeleteTemplate(ctx context.Context, key string) (bool, error)
	RenameTemplate(ctx context.Context, oldKey, newKey string) (bool, error)

	ListDealers(ctx context.Context) ([]models.Dealer, error)
	GetDealer(ctx context.Context, id string) (*models.Dealer, error)
	CreateDealer(ctx context.Context, fields DealerFields) (*models.Dealer, error)
	UpdateDealer(ctx context.Context, id string, patch DealerPatch) (*models.Dealer, error)
	DeleteDealer(ctx context.Context, id string) error
	UpsertDealers(ctx context.Context, records []ImportRecord) (int, error)

	GetPriceSheet(ctx context.Context, brand string) (string, error)
	SavePriceSheet(ctx context.Context, brand, content string) error
	ListPriceSheets(ctx context.Context) ([]PriceSheetInfo, error)
	DeletePriceSheet(ctx context.Context, brand string) (bool, error)
}

// normalizeKey maps an empty template key to the default key.
func normalizeKey(key string) string {
	if strings.TrimSpace(key) == "" {
		return models.DefaultTemplateKey
	}

	return key
}

// field resolves the first non-empty value among the given aliases,
// trimmed. Non-string JSON values are coerced where sensible, since phone
// numbers show up as bare numbers in some exports.
func (r ImportRecord) field(aliases ...string) string {
	for _, a := range aliases {
		v, ok := r[a]
		if !ok {
			continue
		}

		var s string
		switch t := v.(type) {
		case string:
			s = t
		case float64:
			s = strconv.FormatFloat(t, 'f', -1, 64)
		default:
			continue
		}

		if s = strings.TrimSpace(s); s != "" {
			return s
		}
	}

	return ""
}

// merge applies a patch over existing dealer fields, stamping UpdatedAt.
func merge(d *models.Dealer, patch DealerPatch, now time.Time) {
	if patch.Name != nil {
		d.Name = *patch.Name
	}

	if patch.Address != nil {
		d.Address = *patch.Address
	}

	if patch.Number != nil {
		d.Number = *patch.Number
	}

	if patch.Brand != nil {
		d.Brand = *patch.Brand
	}

	if patch.ShowroomLink != nil {
		d.ShowroomLink = *patch.ShowroomLink
	}

	d.UpdatedAt = now
}
