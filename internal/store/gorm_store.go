package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DocumentRecord is the relational row backing one document.
type DocumentRecord struct {
	Collection string            `gorm:"primaryKey;size:64"`
	ID         string            `gorm:"primaryKey;size:32"`
	Data       datatypes.JSONMap `gorm:"not null"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// TableName pins the table name.
func (DocumentRecord) TableName() string {
	return "documents"
}

// GormStore keeps documents as JSON columns in a SQL database. Equality filters
// are pushed down through JSON path expressions so postgres and sqlite both work.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore wraps an open gorm connection.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// Migrate creates the documents table.
func (s *GormStore) Migrate() error {
	return s.db.AutoMigrate(&DocumentRecord{})
}

func (s *GormStore) Query(ctx context.Context, collection string, filters ...Filter) ([]Document, error) {
	query := s.db.WithContext(ctx).Model(&DocumentRecord{}).Where("collection = ?", collection)
	for _, filter := range filters {
		query = query.Where(datatypes.JSONQuery("data").Equals(scalar(filter.Value), filter.Field))
	}

	var records []DocumentRecord
	if err := query.Order("id ASC").Find(&records).Error; err != nil {
		return nil, err
	}

	documents := make([]Document, 0, len(records))
	for _, record := range records {
		// JSON equality on non-string values is dialect dependent; re-check in memory.
		data := plainJSON(record.Data)
		if !matches(data, filters) {
			continue
		}
		documents = append(documents, Document{ID: record.ID, Data: data})
	}

	return documents, nil
}

func (s *GormStore) Get(ctx context.Context, collection, id string) (Document, error) {
	var record DocumentRecord
	err := s.db.WithContext(ctx).
		Where("collection = ? AND id = ?", collection, id).
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Document{}, ErrNotFound
		}
		return Document{}, err
	}

	return Document{ID: record.ID, Data: plainJSON(record.Data)}, nil
}

func (s *GormStore) Set(ctx context.Context, collection, id string, data map[string]any) error {
	record := DocumentRecord{Collection: collection, ID: id, Data: datatypes.JSONMap(data)}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "collection"}, {Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"data", "updated_at"}),
	}).Create(&record).Error
}

func (s *GormStore) Update(ctx context.Context, collection, id string, fields map[string]any) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var record DocumentRecord
		err := tx.Where("collection = ? AND id = ?", collection, id).
			First(&record).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		merged := make(datatypes.JSONMap, len(record.Data)+len(fields))
		for key, value := range record.Data {
			merged[key] = value
		}
		for key, value := range fields {
			merged[key] = value
		}

		result := tx.Model(&DocumentRecord{}).
			Where("collection = ? AND id = ?", collection, id).
			Updates(map[string]any{"data": merged, "updated_at": time.Now()})
		if result.Error != nil {
			return fmt.Errorf("merge document %s/%s: %w", collection, id, result.Error)
		}
		return nil
	})
}

// Ping checks the underlying database connection.
func (s *GormStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *GormStore) Delete(ctx context.Context, collection, id string) error {
	return s.db.WithContext(ctx).
		Where("collection = ? AND id = ?", collection, id).
		Delete(&DocumentRecord{}).Error
}

// plainJSON converts the json.Number values JSONMap scans into int64, or
// float64 when the number is not integral.
func plainJSON(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for key, value := range in {
		out[key] = plainJSONValue(value)
	}
	return out
}

func plainJSONValue(value any) any {
	switch v := value.(type) {
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return i
		}
		if f, err := v.Float64(); err == nil {
			return f
		}
		return v.String()
	case map[string]any:
		return plainJSON(v)
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = plainJSONValue(item)
		}
		return out
	default:
		return v
	}
}
