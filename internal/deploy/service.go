// Package deploy turns a task request into a published GitHub Pages app.
package deploy

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/shaun/pagesmith/internal/auth"
	"github.com/shaun/pagesmith/internal/llm"
	"github.com/shaun/pagesmith/internal/prompt"
)

// Notifier delivers the result payload. Implemented by *notify.Notifier.
type Notifier interface {
	Notify(ctx context.Context, url string, payload any) (bool, error)
}

type Service struct {
	verifier *auth.Verifier
	store    RepoStore
	gen      llm.Generator
	notifier Notifier
	log      *zap.Logger

	deletePause time.Duration
	commitPause time.Duration
	sleep       func(ctx context.Context, d time.Duration) error
	now         func() time.Time
}

type Option func(*Service)

// WithPauses sets how long to wait after deleting a repository and between
// the two update commits.
func WithPauses(afterDelete, betweenCommits time.Duration) Option {
	return func(s *Service) {
		s.deletePause = afterDelete
		s.commitPause = betweenCommits
	}
}

func WithSleep(fn func(ctx context.Context, d time.Duration) error) Option {
	return func(s *Service) { s.sleep = fn }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(verifier *auth.Verifier, store RepoStore, gen llm.Generator, notifier Notifier, log *zap.Logger, opts ...Option) *Service {
	s := &Service{
		verifier:    verifier,
		store:       store,
		gen:         gen,
		notifier:    notifier,
		log:         log,
		deletePause: 2 * time.Second,
		commitPause: time.Second,
		sleep:       sleepCtx,
		now:         time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

type loggerKey struct{}

func withLogger(ctx context.Context, log *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, log)
}

func loggerFrom(ctx context.Context, fallback *zap.Logger) *zap.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*zap.Logger); ok {
		return l
	}
	return fallback
}

// Handle verifies, validates and runs req, then notifies the evaluation URL
// once. The notify outcome does not affect the returned error. Cancellation
// of ctx is ignored: a caller that hangs up still gets its repository
// finished and its callback sent.
func (s *Service) Handle(ctx context.Context, req Request) (*Payload, error) {
	log := s.log.With(zap.String("run", uuid.NewString()), zap.String("task", req.Task), zap.Int("round", req.Round))
	ctx = withLogger(context.WithoutCancel(ctx), log)

	if err := s.verifier.Verify(req.Secret); err != nil {
		log.Warn("rejected request: secret mismatch")
		return nil, err
	}
	req.Task = strings.TrimSpace(req.Task)
	if err := req.Validate(); err != nil {
		log.Warn("rejected request", zap.Error(err))
		return nil, err
	}
	round, _ := RoundFromNumber(req.Round)
	log.Info("handling request", zap.Stringer("op", round))

	var (
		res *Result
		err error
	)
	switch round {
	case RoundCreate:
		res, err = s.create(ctx, req)
	case RoundModify:
		res, err = s.Update(ctx, req.Task, req.Brief, req.Attachments, req.Checks)
	default:
		err = fmt.Errorf("%w: unknown round %v", ErrValidation, round)
	}
	if err != nil {
		log.Error("request failed", zap.Error(err))
		return nil, err
	}

	number := req.Round
	if number == 0 {
		number = 1
	}
	payload := NewPayload(req, number, res)
	if ok, err := s.notifier.Notify(ctx, req.EvaluationURL, payload); !ok {
		log.Error("evaluation callback not delivered", zap.Error(fmt.Errorf("%w: %w", ErrNotify, err)))
	}
	return &payload, nil
}

func (s *Service) create(ctx context.Context, req Request) (*Result, error) {
	out, err := s.gen.Generate(ctx, prompt.Create(req.Brief, req.Attachments, req.Checks))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrGeneration, err)
	}
	html := llm.StripFences(out)
	if html == "" {
		return nil, fmt.Errorf("%w: %w", ErrGeneration, llm.ErrEmptyResponse)
	}
	return s.Publish(ctx, req.Task, html, req.Brief)
}
