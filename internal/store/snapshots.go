package store

import (
	"context"
	"encoding/json"
	"errors"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/suPer8Hu/codeassist/internal/chat"
)

// GetSnapshot returns nil when the chat has no snapshot.
func (s *Store) GetSnapshot(ctx context.Context, chatID string) (*chat.Snapshot, error) {
	var snap *chat.Snapshot
	err := s.run(ctx, "get_snapshot", func(db *gorm.DB) error {
		var rec snapshotRecord
		err := db.WithContext(ctx).Where("chat_id = ?", chatID).Take(&rec).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			snap = nil
			return nil
		}
		if err != nil {
			return err
		}
		snap = &chat.Snapshot{}
		return json.Unmarshal(rec.Snapshot, snap)
	})
	if err = soft(err); err != nil {
		return nil, err
	}
	return snap, nil
}

// PutSnapshot replaces the snapshot stored for chatID.
func (s *Store) PutSnapshot(ctx context.Context, chatID string, snap chat.Snapshot) error {
	b, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	rec := snapshotRecord{ChatID: chatID, Snapshot: datatypes.JSON(b)}
	return soft(s.run(ctx, "put_snapshot", func(db *gorm.DB) error {
		return db.WithContext(ctx).Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "chat_id"}},
			UpdateAll: true,
		}).Create(&rec).Error
	}))
}

// DeleteSnapshot succeeds whether or not a snapshot exists.
func (s *Store) DeleteSnapshot(ctx context.Context, chatID string) error {
	return soft(s.run(ctx, "delete_snapshot", func(db *gorm.DB) error {
		return db.WithContext(ctx).Where("chat_id = ?", chatID).Delete(&snapshotRecord{}).Error
	}))
}
