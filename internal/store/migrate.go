package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// migrate brings db up to SchemaVersion. Every step checks for the table
// first, so running it against a partially upgraded database is safe. It
// returns the version found before upgrading.
func migrate(ctx context.Context, db *gorm.DB) (int, error) {
	m := db.WithContext(ctx).Migrator()
	if !m.HasTable(&schemaMeta{}) {
		if err := m.CreateTable(&schemaMeta{}); err != nil {
			return 0, fmt.Errorf("create schema_meta: %w", err)
		}
	}

	var meta schemaMeta
	err := db.WithContext(ctx).First(&meta, 1).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		meta = schemaMeta{ID: 1}
	case err != nil:
		return 0, err
	}
	found := meta.Version
	if found > SchemaVersion {
		return found, fmt.Errorf("%w: found v%d, know v%d", ErrVersionTooNew, found, SchemaVersion)
	}

	steps := []struct {
		version int
		model   any
	}{
		{1, &chatRecord{}},
		{2, &snapshotRecord{}},
		{3, &usageRecord{}},
	}
	for _, step := range steps {
		if m.HasTable(step.model) {
			continue
		}
		if err := m.CreateTable(step.model); err != nil {
			return found, fmt.Errorf("upgrade to v%d: %w", step.version, err)
		}
	}

	if found < SchemaVersion {
		meta.Version = SchemaVersion
		if err := db.WithContext(ctx).Save(&meta).Error; err != nil {
			return found, err
		}
	}
	return found, nil
}
