package store

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/dealerdesk/dealerdesk/internal/config"
	"github.com/dealerdesk/dealerdesk/internal/db/dsn"
	"github.com/dealerdesk/dealerdesk/internal/db/models"
	"github.com/dealerdesk/dealerdesk/internal/uniuri"
)

// gormStore forwards every operation to a relational database. There is no
// local cache and no deferred persistence: each mutation is durable before
// the call returns, which makes this the only backend safe for
// multi-instance deployments.
type gormStore struct {
	dialector gorm.Dialector

	initOnce sync.Once
	initErr  error
	db       *gorm.DB
}

// NewRemote creates the remote relational store from the configured DSN.
func NewRemote(cfg *config.Config) (Store, error) {
	dialector, err := dsn.Dialector(cfg.Storage.Remote.DSN)
	if err != nil {
		return nil, err
	}

	return &gormStore{dialector: dialector}, nil
}

// NewGorm wraps an already opened gorm handle. Used for dev setups and tests.
func NewGorm(db *gorm.DB) Store {
	return &gormStore{db: db}
}

// Init opens the connection and migrates the schema, once.
func (s *gormStore) Init(_ context.Context) error {
	s.initOnce.Do(func() {
		if s.db == nil {
			db, err := gorm.Open(s.dialector, &gorm.Config{})
			if err != nil {
				s.initErr = errors.Wrap(err, "failed to connect database")
				return
			}

			s.db = db
		}

		s.initErr = s.migrate()
	})

	return s.initErr
}

func (s *gormStore) migrate() error {
	err := s.db.AutoMigrate(
		&models.Template{},
		&models.Dealer{},
		&models.PriceSheet{},
	)

	return errors.Wrap(err, "failed to migrate database")
}

// Flush is a no-op, every mutation is already durable.
func (s *gormStore) Flush(_ context.Context) error {
	return nil
}

func (s *gormStore) Close() error {
	if s.db == nil {
		return nil
	}

	sqlDB, err := s.db.DB()
	if err != nil {
		return errors.Wrap(err, "failed to access underlying connection")
	}

	return errors.Wrap(sqlDB.Close(), "failed to close database")
}

func (s *gormStore) GetTemplate(ctx context.Context, key string) (string, error) {
	key = normalizeKey(key)

	var t models.Template

	err := s.db.WithContext(ctx).Where(map[string]any{"key": key}).First(&t).Error
	if err == nil {
		return t.Content, nil
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", errors.Wrap(err, "failed to read template")
	}

	if key != models.DefaultTemplateKey {
		return "", nil
	}

	// fall back to the case-insensitively first template
	infos, err := s.listTemplateRows(ctx)
	if err != nil || len(infos) == 0 {
		return "", err
	}

	first := infos[0]
	for _, row := range infos[1:] {
		if strings.ToLower(row.Key) < strings.ToLower(first.Key) {
			first = row
		}
	}

	return first.Content, nil
}

func (s *gormStore) SaveTemplate(ctx context.Context, key, content string) error {
	key = normalizeKey(key)

	var t models.Template

	err := s.db.WithContext(ctx).Where(map[string]any{"key": key}).First(&t).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		t = models.Template{Key: key, Content: content}

		return errors.Wrap(s.db.WithContext(ctx).Create(&t).Error, "failed to create template")
	}

	if err != nil {
		return errors.Wrap(err, "failed to read template")
	}

	t.Content = content

	return errors.Wrap(s.db.WithContext(ctx).Save(&t).Error, "failed to update template")
}

func (s *gormStore) ListTemplates(ctx context.Context) ([]TemplateInfo, error) {
	rows, err := s.listTemplateRows(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]TemplateInfo, 0, len(rows))
	for _, row := range rows {
		out = append(out, TemplateInfo{Key: row.Key, UpdatedAt: row.UpdatedAt})
	}

	sortTemplateInfos(out)

	return out, nil
}

func (s *gormStore) listTemplateRows(ctx context.Context) ([]models.Template, error) {
	var rows []models.Template
	if err := s.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "failed to list templates")
	}

	return rows, nil
}

func (s *gormStore) DeleteTemplate(ctx context.Context, key string) (bool, error) {
	if key == "" || key == models.DefaultTemplateKey {
		return false, nil
	}

	result := s.db.WithContext(ctx).Where(map[string]any{"key": key}).Delete(&models.Template{})
	if result.Error != nil {
		return false, errors.Wrap(result.Error, "failed to delete template")
	}

	return result.RowsAffected > 0, nil
}

func (s *gormStore) RenameTemplate(ctx context.Context, oldKey, newKey string) (bool, error) {
	if oldKey == "" || newKey == "" {
		return false, nil
	}

	var current models.Template

	err := s.db.WithContext(ctx).Where(map[string]any{"key": oldKey}).First(&current).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}

	if err != nil {
		return false, errors.Wrap(err, "failed to read template")
	}

	// identity rename of an existing key is a no-op success
	if oldKey == newKey {
		return true, nil
	}

	var existing models.Template

	err = s.db.WithContext(ctx).Where(map[string]any{"key": newKey}).First(&existing).Error
	if err == nil {
		return false, nil
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, errors.Wrap(err, "failed to check template key")
	}

	result := s.db.WithContext(ctx).
		Model(&models.Template{}).
		Where(map[string]any{"key": oldKey}).
		Update("key", newKey)
	if result.Error != nil {
		return false, errors.Wrap(result.Error, "failed to rename template")
	}

	return result.RowsAffected > 0, nil
}

func (s *gormStore) ListDealers(ctx context.Context) ([]models.Dealer, error) {
	var rows []models.Dealer
	if err := s.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "failed to list dealers")
	}

	sortDealers(rows)

	return rows, nil
}

func (s *gormStore) GetDealer(ctx context.Context, id string) (*models.Dealer, error) {
	var d models.Dealer

	err := s.db.WithContext(ctx).Where(map[string]any{"id": id}).First(&d).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}

	if err != nil {
		return nil, errors.Wrap(err, "failed to read dealer")
	}

	return &d, nil
}

func (s *gormStore) CreateDealer(ctx context.Context, fields DealerFields) (*models.Dealer, error) {
	name := strings.TrimSpace(fields.Name)
	if name == "" {
		return nil, ErrNameRequired
	}

	existing, err := s.dealerByName(ctx, name)
	if err != nil {
		return nil, err
	}

	if existing != nil {
		return nil, ErrDealerExists
	}

	d := models.Dealer{
		ID:           uniuri.New(),
		Name:         name,
		Address:      fields.Address,
		Number:       fields.Number,
		Brand:        fields.Brand,
		ShowroomLink: fields.ShowroomLink,
	}

	if err := s.db.WithContext(ctx).Create(&d).Error; err != nil {
		return nil, errors.Wrap(err, "failed to create dealer")
	}

	return &d, nil
}

func (s *gormStore) UpdateDealer(ctx context.Context, id string, patch DealerPatch) (*models.Dealer, error) {
	d, err := s.GetDealer(ctx, id)
	if err != nil || d == nil {
		return nil, err
	}

	merge(d, patch, time.Now().UTC())

	if err := s.db.WithContext(ctx).Save(d).Error; err != nil {
		return nil, errors.Wrap(err, "failed to update dealer")
	}

	return d, nil
}

func (s *gormStore) DeleteDealer(ctx context.Context, id string) error {
	err := s.db.WithContext(ctx).Where(map[string]any{"id": id}).Delete(&models.Dealer{}).Error

	return errors.Wrap(err, "failed to delete dealer")
}

// UpsertDealers inserts records one at a time so a rejected record cannot
// poison the rest of the batch; each successful insert is durable on its own.
func (s *gormStore) UpsertDealers(ctx context.Context, records []ImportRecord) (int, error) {
	inserted := 0

	for _, rec := range records {
		if rec == nil {
			continue
		}

		name := rec.field("name", "Dealer Name", "dealerName")
		if name == "" {
			continue
		}

		existing, err := s.dealerByName(ctx, name)
		if err != nil {
			return inserted, err
		}

		if existing != nil {
			continue
		}

		id, ok, err := s.freeID(ctx, slugify(name))
		if err != nil {
			return inserted, err
		}

		if !ok {
			continue
		}

		d := models.Dealer{
			ID:      id,
			Name:    name,
			Address: rec.field("address", "Address"),
			Number:  rec.field("number", "Number"),
			Brand:   rec.field("brand", "Brand"),
		}

		if err := s.db.WithContext(ctx).Create(&d).Error; err != nil {
			log.Warn().Err(err).Str("name", name).Msg("skipping dealer record that failed to insert")
			continue
		}

		inserted++
	}

	return inserted, nil
}

func (s *gormStore) GetPriceSheet(ctx context.Context, brand string) (string, error) {
	var p models.PriceSheet

	err := s.db.WithContext(ctx).Where(map[string]any{"brand": strings.ToLower(brand)}).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}

	if err != nil {
		return "", errors.Wrap(err, "failed to read price sheet")
	}

	return p.Content, nil
}

func (s *gormStore) SavePriceSheet(ctx context.Context, brand, content string) error {
	key := strings.ToLower(brand)

	var p models.PriceSheet

	err := s.db.WithContext(ctx).Where(map[string]any{"brand": key}).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		p = models.PriceSheet{Brand: key, Content: content}

		return errors.Wrap(s.db.WithContext(ctx).Create(&p).Error, "failed to create price sheet")
	}

	if err != nil {
		return errors.Wrap(err, "failed to read price sheet")
	}

	p.Content = content

	return errors.Wrap(s.db.WithContext(ctx).Save(&p).Error, "failed to update price sheet")
}

func (s *gormStore) ListPriceSheets(ctx context.Context) ([]PriceSheetInfo, error) {
	var rows []models.PriceSheet
	if err := s.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "failed to list price sheets")
	}

	out := make([]PriceSheetInfo, 0, len(rows))
	for _, row := range rows {
		out = append(out, PriceSheetInfo{Brand: row.Brand, UpdatedAt: row.UpdatedAt})
	}

	sortPriceSheetInfos(out)

	return out, nil
}

func (s *gormStore) DeletePriceSheet(ctx context.Context, brand string) (bool, error) {
	result := s.db.WithContext(ctx).
		Where(map[string]any{"brand": strings.ToLower(brand)}).
		Delete(&models.PriceSheet{})
	if result.Error != nil {
		return false, errors.Wrap(result.Error, "failed to delete price sheet")
	}

	return result.RowsAffected > 0, nil
}

func (s *gormStore) dealerByName(ctx context.Context, name string) (*models.Dealer, error) {
	var d models.Dealer

	err := s.db.WithContext(ctx).Where("LOWER(name) = ?", strings.ToLower(name)).First(&d).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}

	if err != nil {
		return nil, errors.Wrap(err, "failed to look up dealer by name")
	}

	return &d, nil
}

func (s *gormStore) freeID(ctx context.Context, base string) (string, bool, error) {
	id := base
	for attempt := 0; ; attempt++ {
		var existing models.Dealer

		err := s.db.WithContext(ctx).Where(map[string]any{"id": id}).First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return id, true, nil
		}

		if err != nil {
			return "", false, errors.Wrap(err, "failed to check dealer id")
		}

		if attempt >= maxSlugAttempts {
			return "", false, nil
		}

		id = base + slugSuffix()
	}
}
