// Package service runs the LLM judge: one prompt per item, a paced worker
// pool for batches, and nil whenever the model cannot give a usable answer
package service

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"trawler/internal/core/discovery"
	"trawler/internal/core/verdict"
	"trawler/internal/platform/logger"
	"trawler/internal/services/judge/domain"
)

// Defaults for batch judging
const (
	DefaultConcurrency = 5
	DefaultPacing      = 250 * time.Millisecond
)

// sleep is a seam so tests do not wait out the pacing delay
var sleep = func(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

// Config for the judge service
type Config struct {
	Concurrency int
	Pacing      time.Duration
}

// Service implements domain.Judge over a Completer
type Service struct {
	llm domain.Completer
	cfg Config
}

// New constructs the judge; a nil or disabled completer yields a judge that
// always answers nil without calling out
func New(llm domain.Completer, cfg Config) *Service {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = DefaultConcurrency
	}
	if cfg.Pacing < 0 {
		cfg.Pacing = 0
	}
	return &Service{llm: llm, cfg: cfg}
}

// Enabled reports whether a credential is configured
func (s *Service) Enabled() bool { return s.llm != nil && s.llm.Enabled() }

// Judge asks the model about one item. Transport failures, non 2xx answers,
// timeouts and unparsable payloads all yield nil
func (s *Service) Judge(ctx context.Context, in domain.Input) *discovery.JudgeVerdict {
	if !s.Enabled() {
		return nil
	}
	text, err := s.llm.Complete(ctx, systemPrompt, buildUser(in))
	if err != nil {
		logger.C(ctx).Debug().Err(err).Str("title", in.Title).Msg("judge: completion failed")
		return nil
	}
	v, err := verdict.Parse(text)
	if err != nil {
		logger.C(ctx).Debug().Err(err).Str("title", in.Title).Msg("judge: unparsable verdict")
		return nil
	}
	return v
}

// JudgeBatch judges inputs with a fixed pool pulling from a shared cursor
// Result i always belongs to input i
func (s *Service) JudgeBatch(ctx context.Context, inputs []domain.Input, concurrency int) []*discovery.JudgeVerdict {
	out := make([]*discovery.JudgeVerdict, len(inputs))
	if len(inputs) == 0 || !s.Enabled() {
		return out
	}
	if concurrency <= 0 {
		concurrency = s.cfg.Concurrency
	}
	workers := min(concurrency, len(inputs))

	var (
		cursor atomic.Int64
		wg     sync.WaitGroup
	)
	for range workers {
		wg.Go(func() {
			for {
				i := int(cursor.Add(1) - 1)
				if i >= len(inputs) || ctx.Err() != nil {
					return
				}
				out[i] = s.Judge(ctx, inputs[i])
				sleep(ctx, s.cfg.Pacing)
			}
		})
	}
	wg.Wait()
	return out
}
