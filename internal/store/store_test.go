package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/suPer8Hu/codeassist/internal/chat"
	"github.com/suPer8Hu/codeassist/internal/workspace"
)

func openFile(path string) (*gorm.DB, error) {
	return gorm.Open(sqlite.Open(path), &gorm.Config{Logger: logger.Discard})
}

type countingOpener struct {
	path  string
	opens atomic.Int32
	// onOpen may decorate the n-th connection (1-based).
	onOpen func(n int32, db *gorm.DB)
}

func (o *countingOpener) Open(ctx context.Context) (*gorm.DB, error) {
	n := o.opens.Add(1)
	db, err := openFile(o.path)
	if err != nil {
		return nil, err
	}
	if o.onOpen != nil {
		o.onOpen(n, db)
	}
	return db, nil
}

var fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func newTestStore(t *testing.T, opts ...Option) (*Store, *countingOpener) {
	t.Helper()
	o := &countingOpener{path: filepath.Join(t.TempDir(), "history.db")}
	opts = append([]Option{WithClock(func() time.Time { return fixedNow })}, opts...)
	s := New(o.Open, opts...)
	t.Cleanup(func() { _ = s.Close() })
	return s, o
}

func mustMessages(t *testing.T, raw string) []chat.Message {
	t.Helper()
	var msgs []chat.Message
	require.NoError(t, json.Unmarshal([]byte(raw), &msgs))
	return msgs
}

const threeMessages = `[{"id":"m1","role":"user","content":"build a todo app"},` +
	`{"id":"m2","role":"assistant","content":"done","annotations":[{"type":"chatSummary","summary":"todo app","chatId":"m2"},{"type":"codeContext","files":["src/App.tsx"]}]},` +
	`{"id":"m3","role":"user","content":[{"type":"text","text":"now add tests"},{"type":"image","image":"data:image/png;base64,AAAA"}]}]`

func TestStore_PutGetRoundTrip(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	msgs := mustMessages(t, threeMessages)

	require.NoError(t, s.PutChat(ctx, chat.HistoryItem{ID: "1", URLID: "abc", Messages: msgs}))

	got, err := s.GetChatByURLID(ctx, "abc")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, msgs, got.Messages)
	assert.Equal(t, "1", got.ID)
	assert.Equal(t, "2024-05-01T12:00:00.000Z", got.Timestamp)

	byID, err := s.GetMessages(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "abc", byID.URLID)
	byURL, err := s.GetMessages(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, "1", byURL.ID)

	missing, err := s.GetMessages(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestStore_PutChatReplacesWholeRecord(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.PutChat(ctx, chat.HistoryItem{
		ID: "1", URLID: "a", Description: "first",
		Metadata: &chat.Metadata{GitURL: "https://example.com/repo.git"},
	}))
	require.NoError(t, s.PutChat(ctx, chat.HistoryItem{ID: "1", URLID: "a", Timestamp: "2024-01-02T03:04:05Z"}))

	got, err := s.GetChat(ctx, "1")
	require.NoError(t, err)
	assert.Empty(t, got.Description)
	assert.Nil(t, got.Metadata)
	assert.Equal(t, "2024-01-02T03:04:05Z", got.Timestamp)
	assert.NotNil(t, got.Messages)
}

func TestStore_InvalidTimestamp(t *testing.T) {
	s, o := newTestStore(t)
	err := s.PutChat(context.Background(), chat.HistoryItem{ID: "1", Timestamp: "yesterday"})
	assert.ErrorIs(t, err, ErrInvalidTimestamp)
	assert.Equal(t, int32(0), o.opens.Load())
}

func TestStore_AcceptsDateForms(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	cases := []struct {
		ts string
		ok bool
	}{
		{"2024-01-15T10:00:00.000Z", true},
		{"2024-01-15T10:00:00+02:00", true},
		{"2024-01-15T10:00:00", true},
		{"2024-01-15T10:00", true},
		{"2024-01-15", true},
		{"Mon, 15 Jan 2024 10:00:00 GMT", true},
		{"2024-13-40", false},
		{"15/01/2024", false},
		{"not a date", false},
	}
	for _, tc := range cases {
		t.Run(tc.ts, func(t *testing.T) {
			err := s.PutChat(ctx, chat.HistoryItem{ID: "1", Timestamp: tc.ts})
			if !tc.ok {
				assert.ErrorIs(t, err, ErrInvalidTimestamp)
				return
			}
			require.NoError(t, err)
			got, err := s.GetChat(ctx, "1")
			require.NoError(t, err)
			assert.Equal(t, tc.ts, got.Timestamp)
		})
	}
}

func TestStore_URLIDIsIdempotentUntilTaken(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	id, err := s.URLID(ctx, "todo")
	require.NoError(t, err)
	assert.Equal(t, "todo", id)
	id, err = s.URLID(ctx, "todo")
	require.NoError(t, err)
	assert.Equal(t, "todo", id)

	require.NoError(t, s.PutChat(ctx, chat.HistoryItem{ID: "1", URLID: "todo"}))
	id, err = s.URLID(ctx, "todo")
	require.NoError(t, err)
	assert.Equal(t, "todo-2", id)

	require.NoError(t, s.PutChat(ctx, chat.HistoryItem{ID: "2", URLID: "todo-2"}))
	id, err = s.URLID(ctx, "todo")
	require.NoError(t, err)
	assert.Equal(t, "todo-3", id)
}

func TestStore_NextID(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	id, err := s.NextID(ctx)
	require.NoError(t, err)
	assert.Equal(t, "1", id)

	for _, id := range []string{"3", "10", "custom"} {
		require.NoError(t, s.PutChat(ctx, chat.HistoryItem{ID: id}))
	}
	id, err = s.NextID(ctx)
	require.NoError(t, err)
	assert.Equal(t, "11", id)
}

func TestStore_ULIDStrategy(t *testing.T) {
	s, _ := newTestStore(t, WithIDStrategy(ULID))
	ctx := context.Background()

	a, err := s.NextID(ctx)
	require.NoError(t, err)
	b, err := s.NextID(ctx)
	require.NoError(t, err)
	assert.Len(t, a, 26)
	assert.NotEqual(t, a, b)

	urlID, err := s.CreateChatFromMessages(ctx, "x", nil, nil)
	require.NoError(t, err)
	assert.Len(t, urlID, 26)
}

func TestParseIDStrategy(t *testing.T) {
	got, err := ParseIDStrategy("ULID")
	require.NoError(t, err)
	assert.Equal(t, ULID, got)
	got, err = ParseIDStrategy("")
	require.NoError(t, err)
	assert.Equal(t, Sequential, got)
	_, err = ParseIDStrategy("uuid")
	assert.Error(t, err)
}

func TestStore_DeleteCascadesToSnapshot(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	files := workspace.NewFileMap()
	files.Set("/home/project/src/app.ts", workspace.File("x"))
	require.NoError(t, s.PutChat(ctx, chat.HistoryItem{ID: "1", URLID: "one"}))
	require.NoError(t, s.PutSnapshot(ctx, "1", chat.Snapshot{ChatIndex: "m2", Files: files, Summary: "s"}))

	require.NoError(t, s.DeleteChat(ctx, "1"))

	got, err := s.GetChat(ctx, "1")
	require.NoError(t, err)
	assert.Nil(t, got)
	snap, err := s.GetSnapshot(ctx, "1")
	require.NoError(t, err)
	assert.Nil(t, snap)

	// already gone
	assert.NoError(t, s.DeleteChat(ctx, "1"))
	assert.NoError(t, s.DeleteSnapshot(ctx, "1"))
}

func TestStore_SnapshotRoundTrip(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	files := workspace.NewFileMap()
	files.Set("/home/project/src", workspace.Folder())
	files.Set("/home/project/src/z.ts", workspace.File("z"))
	files.Set("/home/project/src/a.ts", workspace.File("a"))

	require.NoError(t, s.PutSnapshot(ctx, "7", chat.Snapshot{ChatIndex: "m1", Files: files}))
	require.NoError(t, s.PutSnapshot(ctx, "7", chat.Snapshot{ChatIndex: "m3", Files: files, Summary: "later"}))

	snap, err := s.GetSnapshot(ctx, "7")
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.Equal(t, "m3", snap.ChatIndex)
	assert.Equal(t, "later", snap.Summary)
	assert.Equal(t, files.Paths(), snap.Files.Paths())
}

func TestStore_ForkKeepsPrefix(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	msgs := mustMessages(t, threeMessages)
	md := &chat.Metadata{GitURL: "https://example.com/r.git", GitBranch: "main"}

	require.NoError(t, s.PutChat(ctx, chat.HistoryItem{ID: "1", URLID: "1", Description: "Todo", Messages: msgs, Metadata: md}))

	urlID, err := s.ForkChat(ctx, "1", "m2")
	require.NoError(t, err)
	assert.Equal(t, "2", urlID)

	forked, err := s.GetChatByURLID(ctx, urlID)
	require.NoError(t, err)
	require.NotNil(t, forked)
	assert.Equal(t, msgs[:2], forked.Messages)
	assert.Equal(t, "Todo (fork)", forked.Description)
	assert.Nil(t, forked.Metadata)

	_, err = s.ForkChat(ctx, "1", "missing")
	assert.ErrorIs(t, err, ErrMessageNotFound)
	_, err = s.ForkChat(ctx, "404", "m1")
	assert.ErrorIs(t, err, ErrChatNotFound)
}

func TestStore_ForkWithoutDescription(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.PutChat(ctx, chat.HistoryItem{ID: "1", Messages: mustMessages(t, threeMessages)}))

	urlID, err := s.ForkChat(ctx, "1", "m1")
	require.NoError(t, err)
	forked, err := s.GetChatByURLID(ctx, urlID)
	require.NoError(t, err)
	assert.Equal(t, "Forked chat", forked.Description)
	assert.Len(t, forked.Messages, 1)
}

func TestStore_Duplicate(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	msgs := mustMessages(t, threeMessages)
	require.NoError(t, s.PutChat(ctx, chat.HistoryItem{ID: "1", URLID: "1", Messages: msgs}))

	urlID, err := s.DuplicateChat(ctx, "1")
	require.NoError(t, err)
	dup, err := s.GetChatByURLID(ctx, urlID)
	require.NoError(t, err)
	assert.Equal(t, "Chat (copy)", dup.Description)
	assert.Equal(t, msgs, dup.Messages)
	assert.NotEqual(t, "1", dup.ID)

	_, err = s.DuplicateChat(ctx, "404")
	assert.ErrorIs(t, err, ErrChatNotFound)
}

func TestStore_DeriveByURLID(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	msgs := mustMessages(t, threeMessages)
	require.NoError(t, s.PutChat(ctx, chat.HistoryItem{
		ID: "1", URLID: "abc", Description: "Todo", Messages: msgs,
		Metadata: &chat.Metadata{GitURL: "https://example.com/r.git"},
	}))

	urlID, err := s.ForkChat(ctx, "abc", "m2")
	require.NoError(t, err)
	forked, err := s.GetChatByURLID(ctx, urlID)
	require.NoError(t, err)
	require.NotNil(t, forked)
	assert.Equal(t, msgs[:2], forked.Messages)

	urlID, err = s.DuplicateChat(ctx, "abc")
	require.NoError(t, err)
	dup, err := s.GetChatByURLID(ctx, urlID)
	require.NoError(t, err)
	require.NotNil(t, dup)
	assert.Equal(t, "Todo (copy)", dup.Description)
	assert.Nil(t, dup.Metadata)

	require.NoError(t, s.UpdateDescription(ctx, "abc", "Renamed"))
	require.NoError(t, s.UpdateMetadata(ctx, "abc", &chat.Metadata{GitURL: "u2"}))
	got, err := s.GetChat(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Description)
	assert.Equal(t, &chat.Metadata{GitURL: "u2"}, got.Metadata)
	assert.Equal(t, "abc", got.URLID)

	list, err := s.ListChats(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 3)
}

func TestStore_NotFoundIDsAreNeverTransient(t *testing.T) {
	s, o := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.PutChat(ctx, chat.HistoryItem{ID: "1", Messages: mustMessages(t, threeMessages)}))
	opens := o.opens.Load()

	_, err := s.ForkChat(ctx, "1", "closing-remarks")
	assert.ErrorIs(t, err, ErrMessageNotFound)
	_, err = s.DuplicateChat(ctx, "closing-time")
	assert.ErrorIs(t, err, ErrChatNotFound)
	assert.ErrorIs(t, s.UpdateDescription(ctx, "connection is closing", "x"), ErrChatNotFound)
	assert.Equal(t, opens, o.opens.Load())
}

func TestStore_CreateChatFromMessages(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.PutChat(ctx, chat.HistoryItem{ID: "4", URLID: "5"}))

	urlID, err := s.CreateChatFromMessages(ctx, "Imported", mustMessages(t, threeMessages), nil)
	require.NoError(t, err)
	// id 5 is allocated but url id 5 is taken
	assert.Equal(t, "5-2", urlID)

	got, err := s.GetChat(ctx, "5")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Imported", got.Description)
}

func TestStore_UpdateDescription(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.PutChat(ctx, chat.HistoryItem{ID: "1", Description: "old"}))

	assert.ErrorIs(t, s.UpdateDescription(ctx, "404", "x"), ErrChatNotFound)
	assert.ErrorIs(t, s.UpdateDescription(ctx, "404", "  "), ErrChatNotFound)
	assert.ErrorIs(t, s.UpdateDescription(ctx, "1", " \t"), ErrEmptyDescription)

	require.NoError(t, s.UpdateDescription(ctx, "1", "new"))
	got, err := s.GetChat(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "new", got.Description)
}

func TestStore_UpdateMetadataReplaces(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.PutChat(ctx, chat.HistoryItem{ID: "1", Metadata: &chat.Metadata{GitURL: "u", GitBranch: "dev"}}))

	require.NoError(t, s.UpdateMetadata(ctx, "1", &chat.Metadata{GitURL: "u2"}))
	got, err := s.GetChat(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, &chat.Metadata{GitURL: "u2"}, got.Metadata)

	assert.ErrorIs(t, s.UpdateMetadata(ctx, "404", nil), ErrChatNotFound)
}

func TestStore_ListChatsNewestFirst(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.PutChat(ctx, chat.HistoryItem{ID: "1", Timestamp: "2024-01-01T00:00:00.000Z"}))
	require.NoError(t, s.PutChat(ctx, chat.HistoryItem{ID: "2", Timestamp: "2024-03-01T00:00:00.000Z"}))

	list, err := s.ListChats(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "2", list[0].ID)
}

func TestStore_RecoversFromTransactionInactive(t *testing.T) {
	s, o := newTestStore(t)
	ctx := context.Background()

	var armed atomic.Bool
	o.onOpen = func(n int32, db *gorm.DB) {
		if n != 1 {
			return
		}
		_ = db.Callback().Query().Before("gorm:query").Register("test:inactive", func(tx *gorm.DB) {
			if armed.Load() {
				_ = tx.AddError(ErrTransactionInactive)
			}
		})
	}

	require.NoError(t, s.PutChat(ctx, chat.HistoryItem{ID: "1", URLID: "abc"}))
	armed.Store(true)

	got, err := s.GetChatByURLID(ctx, "abc")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "1", got.ID)
	assert.Equal(t, int32(2), o.opens.Load())
	assert.Equal(t, StateOpen, s.State())
}

func TestStore_ProbeDetectsClosedConnection(t *testing.T) {
	s, o := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.PutChat(ctx, chat.HistoryItem{ID: "1"}))

	s.mu.Lock()
	sqlDB, err := s.db.DB()
	s.mu.Unlock()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	got, err := s.GetChat(ctx, "1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, int32(2), o.opens.Load())
}

func TestStore_GivesUpAfterOneRetry(t *testing.T) {
	s, o := newTestStore(t)
	ctx := context.Background()
	o.onOpen = func(n int32, db *gorm.DB) {
		_ = db.Callback().Query().Before("gorm:query").Register("test:inactive", func(tx *gorm.DB) {
			if tx.Statement.Table == "chats" {
				_ = tx.AddError(ErrConnClosing)
			}
		})
	}
	require.NoError(t, s.PutChat(ctx, chat.HistoryItem{ID: "1"}))

	got, err := s.GetChat(ctx, "1")
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Equal(t, int32(2), o.opens.Load())
}

func TestStore_DegradesWhenOpenFails(t *testing.T) {
	var opens atomic.Int32
	s := New(func(ctx context.Context) (*gorm.DB, error) {
		opens.Add(1)
		return nil, errors.New("blocked by another client")
	})
	ctx := context.Background()

	got, err := s.GetChat(ctx, "1")
	assert.NoError(t, err)
	assert.Nil(t, got)

	list, err := s.ListChats(ctx)
	assert.NoError(t, err)
	assert.Empty(t, list)

	assert.NoError(t, s.PutChat(ctx, chat.HistoryItem{ID: "1"}))
	assert.NoError(t, s.DeleteChat(ctx, "1"))

	id, err := s.NextID(ctx)
	assert.NoError(t, err)
	assert.Equal(t, "1", id)

	urlID, err := s.URLID(ctx, "x")
	assert.NoError(t, err)
	assert.Equal(t, "x", urlID)

	// validation still surfaces
	assert.ErrorIs(t, s.PutChat(ctx, chat.HistoryItem{ID: "1", Timestamp: "bad"}), ErrInvalidTimestamp)
	assert.Error(t, s.Open(ctx))

	// a failed open is not cached
	assert.Greater(t, opens.Load(), int32(1))
}

func TestStore_RefusesNewerSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "future.db")
	db, err := openFile(path)
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&schemaMeta{}))
	require.NoError(t, db.Create(&schemaMeta{ID: 1, Version: SchemaVersion + 1}).Error)
	require.NoError(t, closeDB(db))

	s := New(func(ctx context.Context) (*gorm.DB, error) { return openFile(path) })
	defer s.Close()

	assert.ErrorIs(t, s.Open(context.Background()), ErrVersionTooNew)
	got, err := s.GetChat(context.Background(), "1")
	assert.NoError(t, err)
	assert.Nil(t, got)
}

type recordingNotifier struct {
	mu       sync.Mutex
	versions []int
}

func (n *recordingNotifier) PublishVersionChange(ctx context.Context, instanceID string, version int) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.versions = append(n.versions, version)
	return nil
}

func TestStore_MigrationIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	opener := func(ctx context.Context) (*gorm.DB, error) { return openFile(path) }
	n := &recordingNotifier{}
	ctx := context.Background()

	first := New(opener, WithNotifier(n))
	require.NoError(t, first.Open(ctx))
	require.NoError(t, first.PutChat(ctx, chat.HistoryItem{ID: "1"}))
	require.NoError(t, first.Close())

	second := New(opener, WithNotifier(n))
	defer second.Close()
	require.NoError(t, second.Open(ctx))
	got, err := second.GetChat(ctx, "1")
	require.NoError(t, err)
	assert.NotNil(t, got)

	assert.Equal(t, []int{SchemaVersion}, n.versions)
}

func TestStore_ConcurrentCallersShareOneOpen(t *testing.T) {
	var opens atomic.Int32
	path := filepath.Join(t.TempDir(), "history.db")
	s := New(func(ctx context.Context) (*gorm.DB, error) {
		opens.Add(1)
		time.Sleep(50 * time.Millisecond)
		return openFile(path)
	})
	defer s.Close()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.GetChat(context.Background(), "1")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), opens.Load())
}

func TestStore_HandleVersionChangeForcesReopen(t *testing.T) {
	s, o := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.Open(ctx))
	assert.Equal(t, StateOpen, s.State())

	s.HandleVersionChange(SchemaVersion)
	assert.Equal(t, StateUnopened, s.State())

	_, err := s.GetChat(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, int32(2), o.opens.Load())
}

func TestStore_Usage(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.RecordUsage(ctx, UsageEvent{ChatID: "1", Provider: "Ollama", Model: "llama3", PromptChars: 100, CompletionChars: 20, Duration: 1500 * time.Millisecond}))
	require.NoError(t, s.RecordUsage(ctx, UsageEvent{ChatID: "2", Provider: "OpenAI", Model: "gpt-4o"}))

	events, err := s.ListUsage(ctx, "1")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, 1500*time.Millisecond, events[0].Duration)
	assert.True(t, events[0].CreatedAt.Equal(fixedNow))

	all, err := s.ListUsage(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestIsTransient(t *testing.T) {
	assert.True(t, IsTransient(ErrTransactionInactive))
	assert.True(t, IsTransient(errors.Join(errors.New("op"), ErrInvalidState)))
	assert.True(t, IsTransient(errors.New("sql: database is closed")))
	assert.True(t, IsTransient(errors.New("connection is closing")))
	assert.False(t, IsTransient(ErrChatNotFound))
	assert.False(t, IsTransient(fmt.Errorf("%w: closing-remarks", ErrMessageNotFound)))
	assert.False(t, IsTransient(nil))
}
