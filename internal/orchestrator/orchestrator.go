// Package orchestrator translates batches of texts concurrently through one
// translator client, optionally backed by a translation memory.
package orchestrator

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/valpere/ddgtran/internal/translator"
)

const (
	DefaultConcurrency = 4
	DefaultTimeout     = 30 * time.Second
)

// Translator is the part of translator.Client the orchestrator needs.
type Translator interface {
	From() string
	To() string
	TranslateResult(ctx context.Context, text string) (*translator.ServiceResult, error)
}

// Memory is a translation cache such as store.Store.
type Memory interface {
	GetCachedTranslation(ctx context.Context, sourceText, sourceLang, targetLang string) (string, bool, error)
	SaveToMemory(ctx context.Context, sourceText, sourceLang, targetLang, translatedText, detectedLang string) error
}

type OrchestratorConfig struct {
	Timeout     time.Duration
	Concurrency int
}

type ItemResult struct {
	Index      int
	SourceText string
	// Output is the translation, or translator.FallbackText when Err is set.
	Output           string
	DetectedLanguage string
	Cached           bool
	Latency          time.Duration
	Err              error
}

type OrchestratorResult struct {
	Items     []ItemResult
	Succeeded int
	Failed    int
	Cached    int
}

type Orchestrator struct {
	translator Translator
	memory     Memory
	config     OrchestratorConfig
	logger     *zap.Logger
}

// New returns an Orchestrator. memory and logger may be nil.
func New(t Translator, memory Memory, config OrchestratorConfig, logger *zap.Logger) *Orchestrator {
	if config.Timeout <= 0 {
		config.Timeout = DefaultTimeout
	}
	if config.Concurrency <= 0 {
		config.Concurrency = DefaultConcurrency
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{
		translator: t,
		memory:     memory,
		config:     config,
		logger:     logger,
	}
}

// Execute translates every text and returns the results in input order.
// Blank texts are passed through untouched. A failed item never stops the
// batch; only cancellation of ctx does, and the remaining items are then
// reported as failed with ctx.Err().
func (o *Orchestrator) Execute(ctx context.Context, texts []string) *OrchestratorResult {
	items := make([]ItemResult, len(texts))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.config.Concurrency)

	for i, text := range texts {
		i := i
		items[i] = ItemResult{Index: i, SourceText: text}
		if strings.TrimSpace(text) == "" {
			items[i].Output = text
			continue
		}

		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				items[i].Output = translator.FallbackText
				items[i].Err = err
				return nil
			}
			o.translateOne(gctx, &items[i])
			return nil
		})
	}
	_ = g.Wait()

	result := &OrchestratorResult{Items: items}
	for _, it := range items {
		switch {
		case it.Err != nil:
			result.Failed++
		case it.Cached:
			result.Cached++
			result.Succeeded++
		default:
			result.Succeeded++
		}
	}
	return result
}

func (o *Orchestrator) translateOne(ctx context.Context, item *ItemResult) {
	from, to := o.translator.From(), o.translator.To()

	if o.memory != nil {
		cached, found, err := o.memory.GetCachedTranslation(ctx, item.SourceText, from, to)
		if err != nil {
			o.logger.Warn("translation memory lookup failed", zap.Int("index", item.Index), zap.Error(err))
		} else if found {
			item.Output = cached
			item.Cached = true
			return
		}
	}

	itemCtx, cancel := context.WithTimeout(ctx, o.config.Timeout)
	defer cancel()

	res, err := o.translator.TranslateResult(itemCtx, item.SourceText)
	if res != nil {
		item.Latency = res.Latency
	}
	if err != nil {
		o.logger.Error("translation failed", zap.Int("index", item.Index), zap.Error(err))
		item.Output = translator.FallbackText
		item.Err = err
		return
	}

	item.Output = res.TranslatedText
	item.DetectedLanguage = res.DetectedLanguage

	if o.memory != nil {
		if err := o.memory.SaveToMemory(ctx, item.SourceText, from, to, res.TranslatedText, res.DetectedLanguage); err != nil {
			o.logger.Warn("failed to save translation memory", zap.Int("index", item.Index), zap.Error(err))
		}
	}
}
