package deploy

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shaun/pagesmith/internal/auth"
	"github.com/shaun/pagesmith/internal/prompt"
)

const (
	DefaultBranch = "main"

	IndexFile   = "index.html"
	ReadmeFile  = "README.md"
	LicenseFile = "LICENSE"
)

var (
	ErrUnauthorized = auth.ErrUnauthorized
	ErrValidation   = errors.New("invalid request")
	ErrGeneration   = errors.New("generation failed")
	ErrPublish      = errors.New("publish failed")
	ErrNotify       = errors.New("notify failed")

	// ErrNotFound and ErrConflict are returned (wrapped) by RepoStore
	// implementations.
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")
)

// File is a file at the head of the default branch.
type File struct {
	Path    string
	Content string
	SHA     string
}

// RepoStore is the subset of the hosting provider used to publish apps.
// Repository names are scoped to the authenticated account.
type RepoStore interface {
	Login(ctx context.Context) (string, error)
	Exists(ctx context.Context, name string) (bool, error)
	Delete(ctx context.Context, name string) error
	// Create makes a new public repository and returns its web URL.
	Create(ctx context.Context, name, description string) (string, error)
	GetFile(ctx context.Context, name, path string) (*File, error)
	// PutFile creates path when sha is empty, otherwise replaces the version
	// identified by sha. It returns the SHA of the resulting commit.
	PutFile(ctx context.Context, name, path, content, sha, message string) (string, error)
	EnablePages(ctx context.Context, name string) error
	HeadCommit(ctx context.Context, name string) (string, error)
}

// Round selects the operation for a request.
type Round int

const (
	RoundCreate Round = iota + 1
	RoundModify
)

func (r Round) String() string {
	switch r {
	case RoundCreate:
		return "create"
	case RoundModify:
		return "modify"
	default:
		return fmt.Sprintf("Round(%d)", int(r))
	}
}

// RoundFromNumber maps the request's round field to an operation. Zero means
// the field was absent.
func RoundFromNumber(n int) (Round, error) {
	switch {
	case n < 0:
		return 0, fmt.Errorf("%w: round must be positive, got %d", ErrValidation, n)
	case n <= 1:
		return RoundCreate, nil
	default:
		return RoundModify, nil
	}
}

// Request is the inbound task.
type Request struct {
	Secret        string
	Brief         string
	Attachments   []prompt.Attachment
	Checks        []string
	Task          string
	Round         int
	Email         json.RawMessage
	Nonce         json.RawMessage
	EvaluationURL string
}

// Validate reports missing required fields.
func (r Request) Validate() error {
	var missing []string
	if r.Task == "" {
		missing = append(missing, "task")
	}
	if r.Brief == "" {
		missing = append(missing, "brief")
	}
	if r.EvaluationURL == "" {
		missing = append(missing, "evaluation_url")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %v", ErrValidation, missing)
	}
	if _, err := RoundFromNumber(r.Round); err != nil {
		return err
	}
	return nil
}

// Result is what a publish or update produced.
type Result struct {
	RepoURL   string
	PagesURL  string
	CommitSHA string
}

// Payload is posted to the evaluation URL. Email and nonce are echoed
// verbatim, whatever their JSON type. URL and sha fields are null when not
// known.
type Payload struct {
	Email     json.RawMessage `json:"email"`
	Task      string          `json:"task"`
	Round     int             `json:"round"`
	Nonce     json.RawMessage `json:"nonce"`
	RepoURL   *string         `json:"repo_url"`
	CommitSHA *string         `json:"commit_sha"`
	PagesURL  *string         `json:"pages_url"`
}

// NewPayload assembles the callback body for req. A nil res yields null
// URL and sha fields.
func NewPayload(req Request, round int, res *Result) Payload {
	p := Payload{Email: req.Email, Task: req.Task, Round: round, Nonce: req.Nonce}
	if res != nil {
		p.RepoURL = strPtr(res.RepoURL)
		p.CommitSHA = strPtr(res.CommitSHA)
		p.PagesURL = strPtr(res.PagesURL)
	}
	return p
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// PagesURL is where GitHub Pages serves a repository's default branch.
func PagesURL(login, name string) string {
	return fmt.Sprintf("https://%s.github.io/%s/", login, name)
}
