package store

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// UsageEvent records one model call made on behalf of a chat.
type UsageEvent struct {
	ChatID          string        `json:"chatId"`
	Provider        string        `json:"provider"`
	Model           string        `json:"model"`
	PromptChars     int           `json:"promptChars"`
	CompletionChars int           `json:"completionChars"`
	Duration        time.Duration `json:"duration"`
	CreatedAt       time.Time     `json:"createdAt"`
}

func (s *Store) RecordUsage(ctx context.Context, ev UsageEvent) error {
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = s.now()
	}
	rec := usageRecord{
		ChatID:          ev.ChatID,
		Provider:        ev.Provider,
		Model:           ev.Model,
		PromptChars:     ev.PromptChars,
		CompletionChars: ev.CompletionChars,
		DurationMS:      ev.Duration.Milliseconds(),
		CreatedAt:       ev.CreatedAt.UTC(),
	}
	return soft(s.run(ctx, "record_usage", func(db *gorm.DB) error {
		return db.WithContext(ctx).Create(&rec).Error
	}))
}

// ListUsage returns the events of a chat in the order they were recorded.
// An empty chatID lists everything.
func (s *Store) ListUsage(ctx context.Context, chatID string) ([]UsageEvent, error) {
	var out []UsageEvent
	err := s.run(ctx, "list_usage", func(db *gorm.DB) error {
		q := db.WithContext(ctx).Order("id ASC")
		if chatID != "" {
			q = q.Where("chat_id = ?", chatID)
		}
		var recs []usageRecord
		if err := q.Find(&recs).Error; err != nil {
			return err
		}
		out = make([]UsageEvent, 0, len(recs))
		for _, r := range recs {
			out = append(out, UsageEvent{
				ChatID:          r.ChatID,
				Provider:        r.Provider,
				Model:           r.Model,
				PromptChars:     r.PromptChars,
				CompletionChars: r.CompletionChars,
				Duration:        time.Duration(r.DurationMS) * time.Millisecond,
				CreatedAt:       r.CreatedAt,
			})
		}
		return nil
	})
	return out, soft(err)
}
