package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/dealerdesk/dealerdesk/internal/db/models"
	"github.com/dealerdesk/dealerdesk/internal/uniuri"
)

// persister owns the durable copy of a snapshot store. The file persister
// writes synchronously, the blob persister debounces uploads.
type persister interface {
	// Load returns the last persisted snapshot bytes, or nil when none exist.
	Load(ctx context.Context) ([]byte, error)

	// Store persists snapshot bytes. Implementations decide durability
	// timing; failures are logged by the implementation and never abort
	// the in-memory mutation.
	Store(ctx context.Context, data []byte) error

	// Flush forces any pending deferred persistence.
	Flush(ctx context.Context) error

	Close() error
}

// memStore keeps the authoritative state in memory and hands full snapshots
// to its persister after every mutation. The RWMutex protects the maps;
// cross-request semantics stay last-write-wins.
type memStore struct {
	mu sync.RWMutex
	t  *tables
	p  persister

	initOnce sync.Once
	initErr  error
}

func newMemStore(p persister) *memStore {
	return &memStore{t: newTables(), p: p}
}

// Init loads the persisted snapshot, once. Corrupt or unrecognized snapshot
// bytes are discarded and an empty store is used.
func (s *memStore) Init(ctx context.Context) error {
	s.initOnce.Do(func() {
		data, err := s.p.Load(ctx)
		if err != nil {
			s.initErr = err
			return
		}

		if data == nil {
			return
		}

		t, err := decodeSnapshot(data)
		if err != nil {
			log.Warn().Err(err).Msg("discarding unreadable snapshot, starting empty")
			return
		}

		s.mu.Lock()
		s.t = t
		s.mu.Unlock()
	})

	return s.initErr
}

// Flush forces pending persistence.
func (s *memStore) Flush(ctx context.Context) error {
	return s.p.Flush(ctx)
}

// Close flushes and releases the persister.
func (s *memStore) Close() error {
	return s.p.Close()
}

// persistLocked hands the current state to the persister. Callers hold at
// least the read lock. Persistence failures keep the in-memory state
// authoritative until the next successful flush.
func (s *memStore) persistLocked(ctx context.Context) {
	data, err := encodeSnapshot(s.t)
	if err != nil {
		log.Error().Err(err).Msg("failed to encode snapshot")
		return
	}

	if err := s.p.Store(ctx, data); err != nil {
		log.Warn().Err(err).Msg("failed to persist snapshot")
	}
}

func (s *memStore) GetTemplate(_ context.Context, key string) (string, error) {
	key = normalizeKey(key)

	s.mu.RLock()
	defer s.mu.RUnlock()

	if row, ok := s.t.templates[key]; ok {
		return row.Content, nil
	}

	if key != models.DefaultTemplateKey {
		return "", nil
	}

	// fall back to the case-insensitively first template
	first := ""
	for k := range s.t.templates {
		if first == "" || strings.ToLower(k) < strings.ToLower(first) {
			first = k
		}
	}

	if first == "" {
		return "", nil
	}

	return s.t.templates[first].Content, nil
}

func (s *memStore) SaveTemplate(ctx context.Context, key, content string) error {
	key = normalizeKey(key)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.t.templates[key] = &models.Template{
		Key:       key,
		Content:   content,
		UpdatedAt: time.Now().UTC(),
	}

	s.persistLocked(ctx)

	return nil
}

func (s *memStore) ListTemplates(_ context.Context) ([]TemplateInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]TemplateInfo, 0, len(s.t.templates))
	for _, row := range s.t.templates {
		out = append(out, TemplateInfo{Key: row.Key, UpdatedAt: row.UpdatedAt})
	}

	sortTemplateInfos(out)

	return out, nil
}

func (s *memStore) DeleteTemplate(ctx context.Context, key string) (bool, error) {
	if key == "" || key == models.DefaultTemplateKey {
		return false, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.t.templates[key]; !ok {
		return false, nil
	}

	delete(s.t.templates, key)
	s.persistLocked(ctx)

	return true, nil
}

func (s *memStore) RenameTemplate(ctx context.Context, oldKey, newKey string) (bool, error) {
	if oldKey == "" || newKey == "" {
		return false, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.t.templates[oldKey]
	if !ok {
		return false, nil
	}

	// identity rename of an existing key is a no-op success
	if oldKey == newKey {
		return true, nil
	}

	if _, exists := s.t.templates[newKey]; exists {
		return false, nil
	}

	delete(s.t.templates, oldKey)
	row.Key = newKey
	s.t.templates[newKey] = row
	s.persistLocked(ctx)

	return true, nil
}

func (s *memStore) ListDealers(_ context.Context) ([]models.Dealer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Dealer, 0, len(s.t.dealers))
	for _, row := range s.t.dealers {
		out = append(out, *row)
	}

	sortDealers(out)

	return out, nil
}

func (s *memStore) GetDealer(_ context.Context, id string) (*models.Dealer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row, ok := s.t.dealers[id]
	if !ok {
		return nil, nil
	}

	d := *row

	return &d, nil
}

func (s *memStore) CreateDealer(ctx context.Context, fields DealerFields) (*models.Dealer, error) {
	name := strings.TrimSpace(fields.Name)
	if name == "" {
		return nil, ErrNameRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.dealerByNameLocked(name) != nil {
		return nil, ErrDealerExists
	}

	now := time.Now().UTC()
	d := &models.Dealer{
		ID:           uniuri.New(),
		Name:         name,
		Address:      fields.Address,
		Number:       fields.Number,
		Brand:        fields.Brand,
		ShowroomLink: fields.ShowroomLink,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	s.t.dealers[d.ID] = d
	s.persistLocked(ctx)

	out := *d

	return &out, nil
}

func (s *memStore) UpdateDealer(ctx context.Context, id string, patch DealerPatch) (*models.Dealer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.t.dealers[id]
	if !ok {
		return nil, nil
	}

	merge(row, patch, time.Now().UTC())
	s.persistLocked(ctx)

	out := *row

	return &out, nil
}

func (s *memStore) DeleteDealer(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.t.dealers[id]; !ok {
		return nil
	}

	delete(s.t.dealers, id)
	s.persistLocked(ctx)

	return nil
}

// UpsertDealers applies the whole batch in memory and flushes once, so the
// persisted snapshot moves atomically. Duplicate names and unresolvable id
// collisions are skipped, never errors.
func (s *memStore) UpsertDealers(ctx context.Context, records []ImportRecord) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	inserted := 0
	now := time.Now().UTC()

	for _, rec := range records {
		if rec == nil {
			continue
		}

		name := rec.field("name", "Dealer Name", "dealerName")
		if name == "" {
			continue
		}

		if s.dealerByNameLocked(name) != nil {
			continue
		}

		id, ok := s.freeIDLocked(slugify(name))
		if !ok {
			continue
		}

		s.t.dealers[id] = &models.Dealer{
			ID:        id,
			Name:      name,
			Address:   rec.field("address", "Address"),
			Number:    rec.field("number", "Number"),
			Brand:     rec.field("brand", "Brand"),
			CreatedAt: now,
			UpdatedAt: now,
		}
		inserted++
	}

	if inserted > 0 {
		s.persistLocked(ctx)
	}

	return inserted, nil
}

func (s *memStore) GetPriceSheet(_ context.Context, brand string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row, ok := s.t.prices[strings.ToLower(brand)]
	if !ok {
		return "", nil
	}

	return row.Content, nil
}

func (s *memStore) SavePriceSheet(ctx context.Context, brand, content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.t.prices[strings.ToLower(brand)] = &models.PriceSheet{
		Brand:     strings.ToLower(brand),
		Content:   content,
		UpdatedAt: time.Now().UTC(),
	}

	s.persistLocked(ctx)

	return nil
}

func (s *memStore) ListPriceSheets(_ context.Context) ([]PriceSheetInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]PriceSheetInfo, 0, len(s.t.prices))
	for _, row := range s.t.prices {
		out = append(out, PriceSheetInfo{Brand: row.Brand, UpdatedAt: row.UpdatedAt})
	}

	sortPriceSheetInfos(out)

	return out, nil
}

func (s *memStore) DeletePriceSheet(ctx context.Context, brand string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := strings.ToLower(brand)
	if _, ok := s.t.prices[key]; !ok {
		return false, nil
	}

	delete(s.t.prices, key)
	s.persistLocked(ctx)

	return true, nil
}

// dealerByNameLocked finds a dealer by case-insensitive name. Callers hold
// the lock.
func (s *memStore) dealerByNameLocked(name string) *models.Dealer {
	lower := strings.ToLower(name)
	for _, row := range s.t.dealers {
		if strings.ToLower(row.Name) == lower {
			return row
		}
	}

	return nil
}

// freeIDLocked resolves an unused dealer id from a base slug, retrying with
// short random suffixes before giving up on the record.
func (s *memStore) freeIDLocked(base string) (string, bool) {
	id := base
	for attempt := 0; ; attempt++ {
		if _, taken := s.t.dealers[id]; !taken {
			return id, true
		}

		if attempt >= maxSlugAttempts {
			return "", false
		}

		id = base + slugSuffix()
	}
}

// Shared orderings: templates by update time descending with a
// case-insensitive key tiebreak, dealers by case-insensitive name.

func sortTemplateInfos(infos []TemplateInfo) {
	sort.Slice(infos, func(i, j int) bool {
		if !infos[i].UpdatedAt.Equal(infos[j].UpdatedAt) {
			return infos[i].UpdatedAt.After(infos[j].UpdatedAt)
		}

		return strings.ToLower(infos[i].Key) < strings.ToLower(infos[j].Key)
	})
}

func sortDealers(dealers []models.Dealer) {
	sort.Slice(dealers, func(i, j int) bool {
		a, b := strings.ToLower(dealers[i].Name), strings.ToLower(dealers[j].Name)
		if a != b {
			return a < b
		}

		return dealers[i].ID < dealers[j].ID
	})
}

func sortPriceSheetInfos(infos []PriceSheetInfo) {
	sort.Slice(infos, func(i, j int) bool {
		if !infos[i].UpdatedAt.Equal(infos[j].UpdatedAt) {
			return infos[i].UpdatedAt.After(infos[j].UpdatedAt)
		}

		return infos[i].Brand < infos[j].Brand
	})
}
