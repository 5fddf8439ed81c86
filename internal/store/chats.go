package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/suPer8Hu/codeassist/internal/chat"
)

const isoMillis = "2006-01-02T15:04:05.000Z07:00"

// timestampLayouts are the date forms PutChat accepts.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02",
	time.RFC1123,
	time.RFC1123Z,
}

func validTimestamp(ts string) bool {
	for _, layout := range timestampLayouts {
		if _, err := time.Parse(layout, ts); err == nil {
			return true
		}
	}
	return false
}

// PutChat writes the full record, replacing any previous version. An empty
// Timestamp becomes the current time; a non-empty one must parse as a date.
func (s *Store) PutChat(ctx context.Context, item chat.HistoryItem) error {
	if item.ID == "" {
		return errors.New("chat id is required")
	}
	if item.Timestamp == "" {
		item.Timestamp = s.now().UTC().Format(isoMillis)
	} else if !validTimestamp(item.Timestamp) {
		return fmt.Errorf("%w: %q", ErrInvalidTimestamp, item.Timestamp)
	}
	rec, err := toRecord(item)
	if err != nil {
		return err
	}
	return soft(s.run(ctx, "put_chat", func(db *gorm.DB) error {
		return putChat(ctx, db, &rec)
	}))
}

func putChat(ctx context.Context, db *gorm.DB, rec *chatRecord) error {
	return db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(rec).Error
}

// GetChat returns nil when no chat has this id.
func (s *Store) GetChat(ctx context.Context, id string) (*chat.HistoryItem, error) {
	item, err := s.getChat(ctx, "id", id)
	return item, soft(err)
}

// GetChatByURLID returns nil when no chat has this url id.
func (s *Store) GetChatByURLID(ctx context.Context, urlID string) (*chat.HistoryItem, error) {
	item, err := s.getChat(ctx, "url_id", urlID)
	return item, soft(err)
}

// GetMessages looks the chat up by id and then by url id.
func (s *Store) GetMessages(ctx context.Context, idOrURLID string) (*chat.HistoryItem, error) {
	item, err := s.GetChat(ctx, idOrURLID)
	if err != nil || item != nil {
		return item, err
	}
	return s.GetChatByURLID(ctx, idOrURLID)
}

func (s *Store) getChat(ctx context.Context, column, value string) (*chat.HistoryItem, error) {
	var item *chat.HistoryItem
	err := s.run(ctx, "get_chat", func(db *gorm.DB) error {
		var rec chatRecord
		err := db.WithContext(ctx).Where(column+" = ?", value).Take(&rec).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			item = nil
			return nil
		}
		if err != nil {
			return err
		}
		item, err = rec.item()
		return err
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// ListChats returns every chat, newest first.
func (s *Store) ListChats(ctx context.Context) ([]chat.HistoryItem, error) {
	var out []chat.HistoryItem
	err := s.run(ctx, "list_chats", func(db *gorm.DB) error {
		var recs []chatRecord
		if err := db.WithContext(ctx).Order("timestamp DESC").Order("id DESC").Find(&recs).Error; err != nil {
			return err
		}
		out = make([]chat.HistoryItem, 0, len(recs))
		for _, r := range recs {
			item, err := r.item()
			if err != nil {
				return fmt.Errorf("chat %s: %w", r.ID, err)
			}
			out = append(out, *item)
		}
		return nil
	})
	return out, soft(err)
}

// DeleteChat removes the chat and its snapshot. Deleting a chat that does
// not exist succeeds.
func (s *Store) DeleteChat(ctx context.Context, id string) error {
	return soft(s.run(ctx, "delete_chat", func(db *gorm.DB) error {
		return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := tx.Where("id = ?", id).Delete(&chatRecord{}).Error; err != nil {
				return err
			}
			return tx.Where("chat_id = ?", id).Delete(&snapshotRecord{}).Error
		})
	}))
}

// CreateChatFromMessages stores messages under a fresh id and returns the
// url id assigned to the new chat.
func (s *Store) CreateChatFromMessages(ctx context.Context, description string, messages []chat.Message, metadata *chat.Metadata) (string, error) {
	var urlID string
	err := s.run(ctx, "create_chat", func(db *gorm.DB) error {
		var err error
		urlID, err = s.createChat(ctx, db, description, messages, metadata)
		return err
	})
	return urlID, soft(err)
}

func (s *Store) createChat(ctx context.Context, db *gorm.DB, description string, messages []chat.Message, metadata *chat.Metadata) (string, error) {
	var id string
	if s.ids == ULID {
		id = newULID()
	} else {
		var err error
		if id, err = nextSequentialID(ctx, db); err != nil {
			return "", err
		}
	}
	taken, err := urlIDs(ctx, db)
	if err != nil {
		return "", err
	}
	urlID := freeURLID(id, taken)

	rec, err := toRecord(chat.HistoryItem{
		ID:          id,
		URLID:       urlID,
		Description: description,
		Messages:    messages,
		Timestamp:   s.now().UTC().Format(isoMillis),
		Metadata:    metadata,
	})
	if err != nil {
		return "", err
	}
	if err := putChat(ctx, db, &rec); err != nil {
		return "", err
	}
	return urlID, nil
}

// ForkChat copies the messages of chatID up to and including messageID into
// a new chat and returns its url id. chatID may also be a url id. The new
// chat starts without metadata.
func (s *Store) ForkChat(ctx context.Context, chatID, messageID string) (string, error) {
	return s.derive(ctx, "fork_chat", chatID, func(src *chat.HistoryItem) (string, []chat.Message, error) {
		idx := -1
		for i, m := range src.Messages {
			if m.ID == messageID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return "", nil, fmt.Errorf("%w: %s", ErrMessageNotFound, messageID)
		}
		desc := "Forked chat"
		if src.Description != "" {
			desc = src.Description + " (fork)"
		}
		return desc, src.Messages[:idx+1], nil
	})
}

// DuplicateChat copies every message of id (or url id) into a new chat and
// returns its url id.
func (s *Store) DuplicateChat(ctx context.Context, id string) (string, error) {
	return s.derive(ctx, "duplicate_chat", id, func(src *chat.HistoryItem) (string, []chat.Message, error) {
		desc := src.Description
		if desc == "" {
			desc = "Chat"
		}
		return desc + " (copy)", src.Messages, nil
	})
}

func (s *Store) derive(ctx context.Context, op, id string, build func(*chat.HistoryItem) (string, []chat.Message, error)) (string, error) {
	var urlID string
	err := s.run(ctx, op, func(db *gorm.DB) error {
		src, err := findChat(ctx, db, id)
		if err != nil {
			return err
		}
		desc, msgs, err := build(src)
		if err != nil {
			return err
		}
		urlID, err = s.createChat(ctx, db, desc, msgs, nil)
		return err
	})
	return urlID, soft(err)
}

// UpdateDescription renames a chat. Blank text is rejected.
func (s *Store) UpdateDescription(ctx context.Context, id, description string) error {
	return soft(s.run(ctx, "update_description", func(db *gorm.DB) error {
		item, err := findChat(ctx, db, id)
		if err != nil {
			return err
		}
		if strings.TrimSpace(description) == "" {
			return ErrEmptyDescription
		}
		item.Description = description
		return rewrite(ctx, db, *item)
	}))
}

// UpdateMetadata replaces the metadata of a chat as a whole.
func (s *Store) UpdateMetadata(ctx context.Context, id string, metadata *chat.Metadata) error {
	return soft(s.run(ctx, "update_metadata", func(db *gorm.DB) error {
		item, err := findChat(ctx, db, id)
		if err != nil {
			return err
		}
		item.Metadata = metadata
		return rewrite(ctx, db, *item)
	}))
}

// findChat resolves id first as a chat id and then as a url id.
func findChat(ctx context.Context, db *gorm.DB, id string) (*chat.HistoryItem, error) {
	for _, column := range []string{"id", "url_id"} {
		var rec chatRecord
		err := db.WithContext(ctx).Where(column+" = ?", id).Take(&rec).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return rec.item()
	}
	return nil, fmt.Errorf("%w: %s", ErrChatNotFound, id)
}

func rewrite(ctx context.Context, db *gorm.DB, item chat.HistoryItem) error {
	rec, err := toRecord(item)
	if err != nil {
		return err
	}
	return putChat(ctx, db, &rec)
}
