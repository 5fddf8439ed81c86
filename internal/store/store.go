// Package store persists chats and project snapshots.
//
// A Store owns one logical database connection. The connection is opened
// lazily, concurrent callers share a single in-flight open, and a stale
// connection is replaced once per operation before giving up. When the
// database cannot be opened at all, reads return empty results and writes
// are dropped; validation errors are always reported.
package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"

	"github.com/suPer8Hu/codeassist/internal/metrics"
)

type State int

const (
	StateUnopened State = iota
	StateOpening
	StateOpen
	StateClosing
)

func (s State) String() string {
	switch s {
	case StateOpening:
		return "opening"
	case StateOpen:
		return "open"
	case StateClosing:
		return "closing"
	default:
		return "unopened"
	}
}

// Opener creates a fresh connection. It is called again after a failure.
type Opener func(ctx context.Context) (*gorm.DB, error)

// Notifier tells other instances that the schema changed.
type Notifier interface {
	PublishVersionChange(ctx context.Context, instanceID string, version int) error
}

type Store struct {
	opener     Opener
	logger     *zap.Logger
	ids        IDStrategy
	notifier   Notifier
	instanceID string
	now        func() time.Time

	mu    sync.Mutex
	state State
	db    *gorm.DB
	opens singleflight.Group
}

type Option func(*Store)

func WithLogger(l *zap.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

func WithIDStrategy(ids IDStrategy) Option {
	return func(s *Store) { s.ids = ids }
}

func WithNotifier(n Notifier) Option {
	return func(s *Store) { s.notifier = n }
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

func New(opener Opener, opts ...Option) *Store {
	s := &Store{
		opener:     opener,
		logger:     zap.NewNop(),
		ids:        Sequential,
		instanceID: uuid.NewString(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.Named("chat-history")
	return s
}

// InstanceID identifies this store in version-change notifications.
func (s *Store) InstanceID() string { return s.instanceID }

func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Open connects and migrates eagerly. Operations open lazily, so calling it
// is optional; it is useful to surface configuration errors at startup.
func (s *Store) Open(ctx context.Context) error {
	_, err := s.conn(ctx)
	return err
}

// Close releases the connection. The next operation reopens it.
func (s *Store) Close() error {
	s.mu.Lock()
	db := s.db
	s.db = nil
	s.state = StateUnopened
	s.mu.Unlock()
	return closeDB(db)
}

// Reset is Close without an error, for tests and version changes.
func (s *Store) Reset() {
	_ = s.Close()
}

// HandleVersionChange is called when another instance upgraded the schema.
// The local connection is dropped and the next operation goes through
// recovery.
func (s *Store) HandleVersionChange(version int) {
	s.logger.Info("schema version changed elsewhere, closing connection", zap.Int("version", version))
	s.mu.Lock()
	if s.state == StateOpen {
		s.state = StateClosing
	}
	s.mu.Unlock()
	s.Reset()
}

func (s *Store) conn(ctx context.Context) (*gorm.DB, error) {
	s.mu.Lock()
	if s.state == StateOpen && s.db != nil {
		db := s.db
		s.mu.Unlock()
		return db, nil
	}
	s.mu.Unlock()

	v, err, _ := s.opens.Do("open", func() (any, error) {
		s.mu.Lock()
		if s.state == StateOpen && s.db != nil {
			db := s.db
			s.mu.Unlock()
			return db, nil
		}
		s.state = StateOpening
		s.mu.Unlock()

		db, err := s.open(ctx)

		s.mu.Lock()
		defer s.mu.Unlock()
		if err != nil {
			s.state = StateUnopened
			return nil, err
		}
		s.db = db
		s.state = StateOpen
		return db, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*gorm.DB), nil
}

func (s *Store) open(ctx context.Context) (*gorm.DB, error) {
	db, err := s.opener(ctx)
	if err != nil {
		return nil, err
	}
	before, err := migrate(ctx, db)
	if err != nil {
		_ = closeDB(db)
		return nil, err
	}
	if before < SchemaVersion {
		s.logger.Info("schema upgraded", zap.Int("from", before), zap.Int("to", SchemaVersion))
		if s.notifier != nil {
			if err := s.notifier.PublishVersionChange(ctx, s.instanceID, SchemaVersion); err != nil {
				s.logger.Warn("publish version change", zap.Error(err))
			}
		}
	}
	return db, nil
}

// reopen drops stale (if it is still current) and opens a new connection.
func (s *Store) reopen(ctx context.Context, stale *gorm.DB) (*gorm.DB, error) {
	s.mu.Lock()
	if s.db == stale {
		s.state = StateClosing
		s.db = nil
		_ = closeDB(stale)
		s.state = StateUnopened
	}
	s.mu.Unlock()

	db, err := s.conn(ctx)
	if err != nil {
		metrics.StoreRecoveries.WithLabelValues("failed").Inc()
		return nil, err
	}
	metrics.StoreRecoveries.WithLabelValues("ok").Inc()
	return db, nil
}

// probe is a no-op round trip that detects a connection that went away
// since the last operation.
func probe(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// run executes fn against an open connection. A failed probe or a transient
// error from fn leads to exactly one reopen and retry. If no connection can
// be had, run returns ErrUnavailable.
func (s *Store) run(ctx context.Context, op string, fn func(db *gorm.DB) error) error {
	db, err := s.conn(ctx)
	if err != nil {
		return s.degrade(op, err)
	}

	retried := false
	if err := probe(ctx, db); err != nil {
		s.logger.Warn("connection probe failed, reopening", zap.String("op", op), zap.Error(err))
		if db, err = s.reopen(ctx, db); err != nil {
			return s.degrade(op, err)
		}
		retried = true
	}

	err = fn(db)
	if !IsTransient(err) {
		return err
	}
	if retried {
		return s.degrade(op, err)
	}

	s.logger.Warn("transient failure, reopening", zap.String("op", op), zap.Error(err))
	if db, err = s.reopen(ctx, db); err != nil {
		return s.degrade(op, err)
	}
	if err = fn(db); IsTransient(err) {
		return s.degrade(op, err)
	}
	return err
}

func (s *Store) degrade(op string, cause error) error {
	metrics.StoreDegraded.WithLabelValues(op).Inc()
	s.logger.Error("store unavailable", zap.String("op", op), zap.Error(cause))
	return errors.Join(ErrUnavailable, cause)
}

// soft hides unavailability from callers.
func soft(err error) error {
	if errors.Is(err, ErrUnavailable) {
		return nil
	}
	return err
}

func closeDB(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
