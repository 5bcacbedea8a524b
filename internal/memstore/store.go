// Package memstore is an in-memory deploy.RepoStore for tests and dry runs.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/shaun/pagesmith/internal/deploy"
)

type Repo struct {
	Name        string
	Description string
	Files       map[string]*deploy.File
	Head        string
	Pages       bool
}

type Store struct {
	mu    sync.RWMutex
	login string
	repos map[string]*Repo

	// Calls records every mutating operation in order, e.g. "delete todo".
	Calls []string
}

func NewStore(login string) *Store {
	return &Store{login: login, repos: make(map[string]*Repo)}
}

func (s *Store) record(format string, args ...any) {
	s.Calls = append(s.Calls, fmt.Sprintf(format, args...))
}

func (s *Store) Login(context.Context) (string, error) {
	return s.login, nil
}

func (s *Store) Exists(_ context.Context, name string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.repos[name]
	return ok, nil
}

func (s *Store) Delete(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.repos[name]; !ok {
		return fmt.Errorf("delete repo %s: %w", name, deploy.ErrNotFound)
	}
	delete(s.repos, name)
	s.record("delete %s", name)
	return nil
}

func (s *Store) Create(_ context.Context, name, description string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.repos[name]; ok {
		return "", fmt.Errorf("create repo %s: %w: name already exists", name, deploy.ErrConflict)
	}
	s.repos[name] = &Repo{Name: name, Description: description, Files: make(map[string]*deploy.File)}
	s.record("create %s", name)
	return fmt.Sprintf("https://github.com/%s/%s", s.login, name), nil
}

func (s *Store) GetFile(_ context.Context, name, path string) (*deploy.File, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	repo, ok := s.repos[name]
	if !ok {
		return nil, fmt.Errorf("get %s/%s: %w", name, path, deploy.ErrNotFound)
	}
	f, ok := repo.Files[path]
	if !ok {
		return nil, fmt.Errorf("get %s/%s: %w", name, path, deploy.ErrNotFound)
	}
	cp := *f
	return &cp, nil
}

func (s *Store) PutFile(_ context.Context, name, path, content, sha, message string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	repo, ok := s.repos[name]
	if !ok {
		return "", fmt.Errorf("commit %s/%s: %w", name, path, deploy.ErrNotFound)
	}
	existing, ok := repo.Files[path]
	switch {
	case ok && sha == "":
		return "", fmt.Errorf("commit %s/%s: %w: sha required to replace file", name, path, deploy.ErrConflict)
	case ok && sha != existing.SHA:
		return "", fmt.Errorf("commit %s/%s: %w: sha %s does not match %s", name, path, deploy.ErrConflict, sha, existing.SHA)
	case !ok && sha != "":
		return "", fmt.Errorf("commit %s/%s: %w", name, path, deploy.ErrNotFound)
	}
	blob := BlobSHA(content)
	repo.Files[path] = &deploy.File{Path: path, Content: content, SHA: blob}
	repo.Head = commitSHA(repo.Head, path, blob, message)
	s.record("put %s/%s", name, path)
	return repo.Head, nil
}

func (s *Store) EnablePages(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	repo, ok := s.repos[name]
	if !ok {
		return fmt.Errorf("enable pages %s: %w", name, deploy.ErrNotFound)
	}
	repo.Pages = true
	s.record("pages %s", name)
	return nil
}

func (s *Store) HeadCommit(_ context.Context, name string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	repo, ok := s.repos[name]
	if !ok || repo.Head == "" {
		return "", fmt.Errorf("get branch %s: %w", name, deploy.ErrNotFound)
	}
	return repo.Head, nil
}

// Repo returns a snapshot of the named repository, or nil.
func (s *Store) Repo(name string) *Repo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.repos[name]
	if !ok {
		return nil
	}
	cp := *r
	cp.Files = make(map[string]*deploy.File, len(r.Files))
	for k, v := range r.Files {
		f := *v
		cp.Files[k] = &f
	}
	return &cp
}

// Paths lists the files in the named repository, sorted.
func (s *Store) Paths(name string) []string {
	r := s.Repo(name)
	if r == nil {
		return nil
	}
	var paths []string
	for p := range r.Files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

var _ deploy.RepoStore = (*Store)(nil)
