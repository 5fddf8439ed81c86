package store

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"

	"github.com/suPer8Hu/codeassist/internal/chat"
)

// SchemaVersion is the newest layout this build knows.
//
//	1: chats
//	2: snapshots
//	3: usage_events
const SchemaVersion = 3

type schemaMeta struct {
	ID      uint `gorm:"primaryKey"`
	Version int  `gorm:"not null"`
}

func (schemaMeta) TableName() string { return "schema_meta" }

type chatRecord struct {
	ID          string         `gorm:"primaryKey;size:64"`
	URLID       *string        `gorm:"column:url_id;size:191;uniqueIndex"`
	Description string         `gorm:"type:text"`
	Messages    datatypes.JSON `gorm:"not null"`
	Timestamp   string         `gorm:"size:40;index"`
	Metadata    datatypes.JSON
}

func (chatRecord) TableName() string { return "chats" }

type snapshotRecord struct {
	ChatID   string         `gorm:"column:chat_id;primaryKey;size:64"`
	Snapshot datatypes.JSON `gorm:"not null"`
}

func (snapshotRecord) TableName() string { return "snapshots" }

type usageRecord struct {
	ID              uint64    `gorm:"primaryKey;autoIncrement"`
	ChatID          string    `gorm:"size:64;index"`
	Provider        string    `gorm:"size:64;not null"`
	Model           string    `gorm:"size:191;not null"`
	PromptChars     int       `gorm:"not null"`
	CompletionChars int       `gorm:"not null"`
	DurationMS      int64     `gorm:"column:duration_ms;not null"`
	CreatedAt       time.Time `gorm:"index"`
}

func (usageRecord) TableName() string { return "usage_events" }

func toRecord(item chat.HistoryItem) (chatRecord, error) {
	msgs := item.Messages
	if msgs == nil {
		msgs = []chat.Message{}
	}
	b, err := json.Marshal(msgs)
	if err != nil {
		return chatRecord{}, err
	}
	rec := chatRecord{
		ID:          item.ID,
		Description: item.Description,
		Messages:    datatypes.JSON(b),
		Timestamp:   item.Timestamp,
	}
	if item.URLID != "" {
		u := item.URLID
		rec.URLID = &u
	}
	if item.Metadata != nil {
		md, err := json.Marshal(item.Metadata)
		if err != nil {
			return chatRecord{}, err
		}
		rec.Metadata = datatypes.JSON(md)
	}
	return rec, nil
}

func (r chatRecord) item() (*chat.HistoryItem, error) {
	item := &chat.HistoryItem{
		ID:          r.ID,
		Description: r.Description,
		Timestamp:   r.Timestamp,
		Messages:    []chat.Message{},
	}
	if r.URLID != nil {
		item.URLID = *r.URLID
	}
	if len(r.Messages) > 0 {
		if err := json.Unmarshal(r.Messages, &item.Messages); err != nil {
			return nil, err
		}
	}
	if len(r.Metadata) > 0 && string(r.Metadata) != "null" {
		item.Metadata = &chat.Metadata{}
		if err := json.Unmarshal(r.Metadata, item.Metadata); err != nil {
			return nil, err
		}
	}
	return item, nil
}
