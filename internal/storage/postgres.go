package storage

import (
	"context"
	"errors"
	"fmt"

	"vetlab/internal/database"
	"vetlab/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Postgres stores documents as rows of stored_documents, one per key.
type Postgres struct {
	db *gorm.DB
}

// NewPostgres connects to dsn and migrates the document table.
func NewPostgres(dsn string) (*Postgres, error) {
	db, err := database.NewConnection(dsn)
	if err != nil {
		return nil, err
	}
	return &Postgres{db: db}, nil
}

// NewPostgresFromDB wraps an existing gorm handle.
func NewPostgresFromDB(db *gorm.DB) *Postgres {
	return &Postgres{db: db}
}

func (p *Postgres) Load(ctx context.Context, key string) ([]byte, error) {
	var doc model.StoredDocument
	err := p.db.WithContext(ctx).First(&doc, "key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", key, err)
	}
	return []byte(doc.Payload), nil
}

func (p *Postgres) Save(ctx context.Context, key string, data []byte) error {
	if err := validateKey(key); err != nil {
		return err
	}
	doc := model.StoredDocument{Key: key, Payload: string(data)}
	return p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"payload", "updated_at"}),
		}).Create(&doc).Error
		if err != nil {
			return fmt.Errorf("upsert %s: %w", key, err)
		}
		return nil
	})
}

func (p *Postgres) Delete(ctx context.Context, key string) error {
	return p.db.WithContext(ctx).Where("key = ?", key).Delete(&model.StoredDocument{}).Error
}
