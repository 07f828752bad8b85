// Package storage persists fingerprint corpora to SQLite for deployments
// that prefer a database over a JSON file tree. The database is a maintenance
// artifact: the match engine always works from an in-memory corpus snapshot.
package storage

import (
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/infopercept/rix/internal/core/domain"
	"github.com/infopercept/rix/internal/core/ports"
)

// SQLiteStore implements ports.CorpusStore using GORM and SQLite.
type SQLiteStore struct {
	db *gorm.DB
}

var _ ports.CorpusStore = (*SQLiteStore)(nil)

// ProductModel is the GORM model for product entries.
type ProductModel struct {
	ID          uint   `gorm:"primaryKey"`
	VendorID    string `gorm:"uniqueIndex:idx_vendor_product"`
	ProductID   string `gorm:"uniqueIndex:idx_vendor_product"`
	Vendor      string
	Product     string
	Category    string `gorm:"index"`
	Subcategory string

	Rules []RuleModel `gorm:"foreignKey:ProductRowID;constraint:OnDelete:CASCADE"`
}

// RuleModel stores one pattern rule. VersionRange is empty for generic
// (all_versions) rules. Position preserves file order within a bucket.
// Metadata is kept as its original JSON document.
type RuleModel struct {
	ID           uint   `gorm:"primaryKey"`
	ProductRowID uint   `gorm:"index"`
	VersionRange string `gorm:"index"`
	Position     int
	Name         string
	Pattern      string
	VersionGroup int
	Priority     int
	Confidence   float64
	Metadata     string // JSON encoded *domain.PatternMetadata
}

// NewSQLiteStore initializes the database and migrates schema.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	// Auto Migrate
	if err := db.AutoMigrate(&ProductModel{}, &RuleModel{}); err != nil {
		return nil, err
	}

	// Create Indices for Performance
	db.Exec("CREATE INDEX IF NOT EXISTS idx_rules_priority ON rule_models(priority)")

	return &SQLiteStore{db: db}, nil
}

// SaveEntry upserts one product entry and all of its rules. Existing rules
// for the same (vendor_id, product_id) are replaced wholesale; partial rule
// updates are not something the corpus format expresses.
func (s *SQLiteStore) SaveEntry(entry domain.ProductEntry) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var existing ProductModel
		err := tx.Where(&ProductModel{VendorID: entry.VendorID, ProductID: entry.ProductID}).
			First(&existing).Error
		switch {
		case err == nil:
			if err := tx.Where("product_row_id = ?", existing.ID).Delete(&RuleModel{}).Error; err != nil {
				return err
			}
			if err := tx.Delete(&existing).Error; err != nil {
				return err
			}
		case err != gorm.ErrRecordNotFound:
			return err
		}

		model, err := toModel(entry)
		if err != nil {
			return fmt.Errorf("encode %s/%s: %w", entry.VendorID, entry.ProductID, err)
		}
		return tx.Create(&model).Error
	})
}

// SaveAll persists a full corpus snapshot.
func (s *SQLiteStore) SaveAll(entries []domain.ProductEntry) error {
	for _, entry := range entries {
		if err := s.SaveEntry(entry); err != nil {
			return err
		}
	}
	return nil
}

// LoadAll reads every stored product entry back into domain form, in
// insertion order.
func (s *SQLiteStore) LoadAll() ([]domain.ProductEntry, error) {
	var models []ProductModel
	if err := s.db.Preload("Rules", func(db *gorm.DB) *gorm.DB {
		return db.Order("rule_models.version_range, rule_models.position")
	}).Order("product_models.id").Find(&models).Error; err != nil {
		return nil, err
	}

	entries := make([]domain.ProductEntry, 0, len(models))
	for _, m := range models {
		entry, err := toDomain(m)
		if err != nil {
			return nil, fmt.Errorf("decode %s/%s: %w", m.VendorID, m.ProductID, err)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// Count returns the number of stored product entries.
func (s *SQLiteStore) Count() (int64, error) {
	var n int64
	err := s.db.Model(&ProductModel{}).Count(&n).Error
	return n, err
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
