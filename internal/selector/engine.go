package selector

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/suPer8Hu/codeassist/internal/ai"
	"github.com/suPer8Hu/codeassist/internal/chat"
	"github.com/suPer8Hu/codeassist/internal/metrics"
	"github.com/suPer8Hu/codeassist/internal/workspace"
)

const (
	SourceHeuristic = "heuristic"
	SourceLLM       = "llm"
)

// Completion describes one finished model call, for usage accounting.
type Completion struct {
	ChatID      string
	Provider    string
	Model       string
	Text        string
	PromptChars int
	Duration    time.Duration
}

// Request is the input to SelectContext. Provider and Model are the
// defaults used when the latest user message carries no directives.
type Request struct {
	ChatID   string
	Messages []chat.Message
	Files    *workspace.FileMap
	Summary  string
	Provider string
	Model    string
}

// Result holds the files newly added to the context. Retained is the
// previous context after excludes were applied. Keys are absolute paths.
type Result struct {
	Files    *workspace.FileMap
	Retained *workspace.FileMap
	Excluded []string
	Source   string
	Provider string
	Model    string
	Raw      string
}

// ErrNoUserMessage is returned when the history holds nothing to answer.
var ErrNoUserMessage = errors.New("no user message found")

type Engine struct {
	registry   *ai.Registry
	filter     *workspace.IgnoreFilter
	serializer *workspace.Serializer
	logger     *zap.Logger
	onFinish   func(Completion)
}

type Option func(*Engine)

func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

func WithFilter(f *workspace.IgnoreFilter) Option {
	return func(e *Engine) {
		if f != nil {
			e.filter = f
		}
	}
}

// WithSerializer replaces the serializer used for the context buffer. Its
// filter is forced to the engine's.
func WithSerializer(s *workspace.Serializer) Option {
	return func(e *Engine) {
		if s != nil {
			e.serializer = s
		}
	}
}

// WithOnFinish registers a callback invoked after every model call.
func WithOnFinish(fn func(Completion)) Option {
	return func(e *Engine) { e.onFinish = fn }
}

func NewEngine(registry *ai.Registry, opts ...Option) *Engine {
	e := &Engine{
		registry: registry,
		filter:   workspace.NewIgnoreFilter(""),
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.serializer == nil {
		e.serializer = workspace.NewSerializer(e.filter)
	}
	s := *e.serializer
	s.Filter = e.filter
	s.RelativePaths = true
	e.serializer = &s
	e.logger = e.logger.Named("select-context")
	return e
}

func (e *Engine) Filter() *workspace.IgnoreFilter { return e.filter }

// SelectContext picks additional files for the next prompt. The FileMap in
// req is never modified. An empty selection is not an error.
func (e *Engine) SelectContext(ctx context.Context, req Request) (*Result, error) {
	history, directives := chat.NormalizeHistory(req.Messages, chat.Directives{
		Model:    req.Model,
		Provider: req.Provider,
	})

	question, ok := lastUserText(history)
	if !ok {
		return nil, ErrNoUserMessage
	}

	res, err := e.registry.ResolveModel(ctx, directives.Provider, directives.Model)
	if err != nil {
		return nil, err
	}
	if res.ProviderFallback {
		e.logger.Warn("unknown provider, using default",
			zap.String("requested", directives.Provider), zap.String("provider", res.Provider))
	}
	if res.ModelFallback {
		e.logger.Warn("model not found, using first available",
			zap.String("requested", directives.Model), zap.String("model", res.Model.Name))
	}

	files := req.Files
	if files == nil {
		files = workspace.NewFileMap()
	}
	candidates := e.filter.Filter(files.Files())
	allowed := make(map[string]bool, len(candidates))
	relative := make([]string, len(candidates))
	for i, p := range candidates {
		allowed[p] = true
		relative[i] = e.filter.Relative(p)
	}

	state := chat.ReadContext(history)
	current := workspace.NewFileMap()
	for _, rel := range state.Files {
		abs := e.filter.Absolute(rel)
		if d, ok := files.Get(abs); ok && d.IsFile() && allowed[abs] {
			current.Set(abs, d)
		}
	}

	result := &Result{
		Files:    workspace.NewFileMap(),
		Retained: current,
		Provider: res.Provider,
		Model:    res.Model.Name,
	}

	if picked := SelectHeuristic(question, relative); len(picked) > 0 {
		result.Source = SourceHeuristic
		for _, rel := range picked {
			abs := e.filter.Absolute(rel)
			d, _ := files.Get(abs)
			result.Files.Set(abs, d)
		}
		e.logger.Debug("heuristic selection",
			zap.String("intent", ClassifyIntent(question).String()), zap.Strings("files", picked))
		e.finish(result)
		return result, nil
	}

	result.Source = SourceLLM
	summary := req.Summary
	if summary == "" {
		summary = state.Summary
	}
	prompt := BuildPrompt(relative, e.serializer.Serialize(current), question, summary)

	provider, err := e.registry.Get(ctx, res.Provider, res.Model.Name)
	if err != nil {
		return nil, err
	}
	started := time.Now()
	raw, err := provider.Chat(ctx, []ai.Message{
		{Role: chat.RoleSystem, Content: prompt.System},
		{Role: chat.RoleUser, Content: prompt.User},
	})
	elapsed := time.Since(started)
	metrics.LLMLatency.WithLabelValues(res.Provider).Observe(elapsed.Seconds())
	if err != nil {
		return nil, fmt.Errorf("select context: %w", err)
	}
	result.Raw = raw
	if e.onFinish != nil {
		e.onFinish(Completion{
			ChatID:      req.ChatID,
			Provider:    res.Provider,
			Model:       res.Model.Name,
			Text:        raw,
			PromptChars: len(prompt.System) + len(prompt.User),
			Duration:    elapsed,
		})
	}

	update, err := ParseContextResponse(raw)
	if err != nil {
		metrics.ContextResponseErrors.Inc()
		e.logger.Error("invalid context response", zap.Error(err))
		return nil, err
	}

	for _, p := range update.Excludes {
		abs := e.filter.Absolute(p)
		if current.Has(abs) {
			current.Delete(abs)
			result.Excluded = append(result.Excluded, abs)
		}
	}
	for _, p := range update.Includes {
		abs := e.filter.Absolute(p)
		if !allowed[abs] {
			e.logger.Debug("include not in candidate list", zap.String("path", p))
			continue
		}
		if current.Has(abs) {
			continue
		}
		d, _ := files.Get(abs)
		result.Files.Set(abs, d)
	}

	e.finish(result)
	return result, nil
}

func (e *Engine) finish(r *Result) {
	n := r.Files.Len()
	metrics.ContextFilesSelected.Observe(float64(n))
	if n == 0 {
		metrics.ContextSelections.WithLabelValues("empty").Inc()
		e.logger.Warn("no files selected", zap.String("source", r.Source))
		return
	}
	metrics.ContextSelections.WithLabelValues(r.Source).Inc()
	e.logger.Info("context selected",
		zap.String("source", r.Source), zap.Int("files", n), zap.Int("retained", r.Retained.Len()))
}

func lastUserText(messages []chat.Message) (string, bool) {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == chat.RoleUser {
			return strings.TrimSpace(messages[i].Text()), true
		}
	}
	return "", false
}
