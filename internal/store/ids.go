package store

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/oklog/ulid/v2"
	"gorm.io/gorm"
)

// IDStrategy controls how new chat ids are allocated.
type IDStrategy int

const (
	// Sequential returns max(existing numeric id)+1. Two writers creating a
	// chat at the same time can get the same id; it assumes a single writer.
	Sequential IDStrategy = iota
	// ULID ids are unique without coordination.
	ULID
)

func ParseIDStrategy(s string) (IDStrategy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "sequential":
		return Sequential, nil
	case "ulid":
		return ULID, nil
	}
	return Sequential, fmt.Errorf("unknown id strategy %q", s)
}

// NextID allocates an id for a new chat.
func (s *Store) NextID(ctx context.Context) (string, error) {
	if s.ids == ULID {
		return newULID(), nil
	}
	var next string
	err := s.run(ctx, "next_id", func(db *gorm.DB) error {
		var err error
		next, err = nextSequentialID(ctx, db)
		return err
	})
	if err = soft(err); err != nil {
		return "", err
	}
	if next == "" {
		next = "1"
	}
	return next, nil
}

func newULID() string { return ulid.Make().String() }

func nextSequentialID(ctx context.Context, db *gorm.DB) (string, error) {
	var ids []string
	if err := db.WithContext(ctx).Model(&chatRecord{}).Pluck("id", &ids).Error; err != nil {
		return "", err
	}
	highest := 0
	for _, id := range ids {
		if n, err := strconv.Atoi(id); err == nil && n > highest {
			highest = n
		}
	}
	return strconv.Itoa(highest + 1), nil
}

// URLID returns candidate if no chat uses it, otherwise the first free
// candidate-2, candidate-3, ...
func (s *Store) URLID(ctx context.Context, candidate string) (string, error) {
	var taken map[string]bool
	err := s.run(ctx, "url_id", func(db *gorm.DB) error {
		var err error
		taken, err = urlIDs(ctx, db)
		return err
	})
	if err = soft(err); err != nil {
		return "", err
	}
	return freeURLID(candidate, taken), nil
}

func urlIDs(ctx context.Context, db *gorm.DB) (map[string]bool, error) {
	var ids []string
	if err := db.WithContext(ctx).Model(&chatRecord{}).
		Where("url_id IS NOT NULL").
		Pluck("url_id", &ids).Error; err != nil {
		return nil, err
	}
	taken := make(map[string]bool, len(ids))
	for _, id := range ids {
		taken[id] = true
	}
	return taken, nil
}

func freeURLID(candidate string, taken map[string]bool) string {
	if !taken[candidate] {
		return candidate
	}
	for i := 2; ; i++ {
		c := fmt.Sprintf("%s-%d", candidate, i)
		if !taken[c] {
			return c
		}
	}
}
