package handlers

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/suPer8Hu/codeassist/internal/ai"
	"github.com/suPer8Hu/codeassist/internal/common"
	"github.com/suPer8Hu/codeassist/internal/metrics"
	"github.com/suPer8Hu/codeassist/internal/preview"
	"github.com/suPer8Hu/codeassist/internal/selector"
	"github.com/suPer8Hu/codeassist/internal/store"
	"github.com/suPer8Hu/codeassist/internal/store/rabbitmq"
	"github.com/suPer8Hu/codeassist/internal/workspace"
)

// UsagePublisher hands usage events to the worker queue.
type UsagePublisher interface {
	PublishUsage(ctx context.Context, m rabbitmq.UsageMessage) error
}

type Options struct {
	Filter     *workspace.IgnoreFilter
	Serializer *workspace.Serializer
	Publisher  UsagePublisher
	Preview    *preview.Watchdog

	DefaultProvider string
	DefaultModel    string
}

type Handler struct {
	Store    *store.Store
	Registry *ai.Registry
	Engine   *selector.Engine
	Preview  *preview.Watchdog
	Usage    UsagePublisher
	Logger   *zap.Logger

	defaultProvider string
	defaultModel    string
}

func NewHandler(st *store.Store, reg *ai.Registry, logger *zap.Logger, opts Options) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &Handler{
		Store:           st,
		Registry:        reg,
		Preview:         opts.Preview,
		Usage:           opts.Publisher,
		Logger:          logger,
		defaultProvider: opts.DefaultProvider,
		defaultModel:    opts.DefaultModel,
	}
	if h.Preview == nil {
		h.Preview = preview.NewWatchdog(preview.DefaultTimeout, logger, nil)
	}

	engineOpts := []selector.Option{selector.WithLogger(logger), selector.WithOnFinish(h.recordUsage)}
	if opts.Filter != nil {
		engineOpts = append(engineOpts, selector.WithFilter(opts.Filter))
	}
	if opts.Serializer != nil {
		engineOpts = append(engineOpts, selector.WithSerializer(opts.Serializer))
	}
	h.Engine = selector.NewEngine(reg, engineOpts...)
	return h
}

func (h *Handler) Ping(c *gin.Context) {
	common.OK(c, gin.H{"pong": true, "store": h.Store.State().String()})
}

// recordUsage publishes to the queue when one is configured and writes to
// the store directly otherwise.
func (h *Handler) recordUsage(done selector.Completion) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	m := rabbitmq.UsageMessage{
		ChatID:          done.ChatID,
		Provider:        done.Provider,
		Model:           done.Model,
		PromptChars:     done.PromptChars,
		CompletionChars: len(done.Text),
		DurationMS:      done.Duration.Milliseconds(),
		At:              time.Now().UTC(),
	}

	if h.Usage != nil {
		err := h.Usage.PublishUsage(ctx, m)
		if err == nil {
			metrics.UsageEventsPublished.WithLabelValues("ok").Inc()
			return
		}
		metrics.UsageEventsPublished.WithLabelValues("error").Inc()
		h.Logger.Warn("publish usage failed, storing directly", zap.Error(err))
	}

	if err := h.Store.RecordUsage(ctx, store.UsageEvent{
		ChatID:          m.ChatID,
		Provider:        m.Provider,
		Model:           m.Model,
		PromptChars:     m.PromptChars,
		CompletionChars: m.CompletionChars,
		Duration:        done.Duration,
		CreatedAt:       m.At,
	}); err != nil {
		h.Logger.Warn("record usage failed", zap.Error(err))
	}
}
