package deploy

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/shaun/pagesmith/internal/llm"
	"github.com/shaun/pagesmith/internal/prompt"
)

// Update revises an existing repository: it asks the model for new
// index.html and README.md contents based on the current ones and commits
// both. Fetch and commit failures wrap ErrPublish, model failures wrap
// ErrGeneration.
func (s *Service) Update(ctx context.Context, name, brief string, attachments []prompt.Attachment, checks []string) (*Result, error) {
	log := loggerFrom(ctx, s.log).With(zap.String("repo", name))
	login, err := s.store.Login(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPublish, err)
	}
	index, err := s.store.GetFile(ctx, name, IndexFile)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPublish, err)
	}
	readme, err := s.store.GetFile(ctx, name, ReadmeFile)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPublish, err)
	}

	out, err := s.gen.Generate(ctx, prompt.Modify(brief, attachments, checks, index.Content, readme.Content))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrGeneration, err)
	}
	html, newReadme, err := llm.SplitPair(out)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrGeneration, err)
	}

	if _, err := s.store.PutFile(ctx, name, IndexFile, html, index.SHA, "Update "+IndexFile); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPublish, err)
	}
	log.Debug("committed", zap.String("path", IndexFile))
	if err := s.sleep(ctx, s.commitPause); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPublish, err)
	}
	// The README sha is read again after the first commit lands.
	readme, err = s.store.GetFile(ctx, name, ReadmeFile)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPublish, err)
	}
	sha, err := s.store.PutFile(ctx, name, ReadmeFile, newReadme, readme.SHA, "Update "+ReadmeFile)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPublish, err)
	}
	log.Info("updated", zap.String("commit", sha))
	return &Result{RepoURL: RepoURL(login, name), PagesURL: PagesURL(login, name), CommitSHA: sha}, nil
}
