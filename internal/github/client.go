package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/google/go-github/v66/github"
	"golang.org/x/oauth2"

	"github.com/shaun/pagesmith/internal/deploy"
)

// Client implements deploy.RepoStore against the GitHub REST API.
type Client struct {
	gh *github.Client

	mu    sync.Mutex
	login string
}

func NewClient(ctx context.Context, token string) *Client {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	return NewClientWithHTTPClient(oauth2.NewClient(ctx, ts))
}

// NewClientWithHTTPClient returns a client that uses the given http.Client for API calls (e.g. in tests).
func NewClientWithHTTPClient(hc *http.Client) *Client {
	return &Client{gh: github.NewClient(hc)}
}

func statusOf(err error) int {
	var ghErr *github.ErrorResponse
	if errors.As(err, &ghErr) && ghErr.Response != nil {
		return ghErr.Response.StatusCode
	}
	return 0
}

// classify wraps 404 and 409 responses in the deploy sentinels.
func classify(err error) error {
	switch statusOf(err) {
	case http.StatusNotFound:
		return fmt.Errorf("%w: %w", deploy.ErrNotFound, err)
	case http.StatusConflict:
		return fmt.Errorf("%w: %w", deploy.ErrConflict, err)
	}
	return err
}

// Login returns the authenticated user's login, fetched once.
func (c *Client) Login(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.login != "" {
		return c.login, nil
	}
	user, _, err := c.gh.Users.Get(ctx, "")
	if err != nil {
		return "", fmt.Errorf("get user: %w", err)
	}
	if user.GetLogin() == "" {
		return "", errors.New("get user: empty login")
	}
	c.login = user.GetLogin()
	return c.login, nil
}

func (c *Client) Exists(ctx context.Context, name string) (bool, error) {
	owner, err := c.Login(ctx)
	if err != nil {
		return false, err
	}
	_, _, err = c.gh.Repositories.Get(ctx, owner, name)
	if err != nil {
		if statusOf(err) == http.StatusNotFound {
			return false, nil
		}
		return false, fmt.Errorf("get repo %s: %w", name, err)
	}
	return true, nil
}

func (c *Client) Delete(ctx context.Context, name string) error {
	owner, err := c.Login(ctx)
	if err != nil {
		return err
	}
	if _, err := c.gh.Repositories.Delete(ctx, owner, name); err != nil {
		return fmt.Errorf("delete repo %s: %w", name, classify(err))
	}
	return nil
}

func (c *Client) Create(ctx context.Context, name, description string) (string, error) {
	repo, _, err := c.gh.Repositories.Create(ctx, "", &github.Repository{
		Name:        github.String(name),
		Description: github.String(description),
		Private:     github.Bool(false),
	})
	if err != nil {
		return "", fmt.Errorf("create repo %s: %w", name, classify(err))
	}
	return repo.GetHTMLURL(), nil
}

func (c *Client) GetFile(ctx context.Context, name, path string) (*deploy.File, error) {
	owner, err := c.Login(ctx)
	if err != nil {
		return nil, err
	}
	opts := &github.RepositoryContentGetOptions{Ref: deploy.DefaultBranch}
	file, _, _, err := c.gh.Repositories.GetContents(ctx, owner, name, path, opts)
	if err != nil {
		return nil, fmt.Errorf("get %s/%s: %w", name, path, classify(err))
	}
	if file == nil {
		return nil, fmt.Errorf("get %s/%s: %w: path is a directory", name, path, deploy.ErrNotFound)
	}
	content, err := file.GetContent()
	if err != nil {
		return nil, fmt.Errorf("decode %s/%s: %w", name, path, err)
	}
	return &deploy.File{Path: path, Content: content, SHA: file.GetSHA()}, nil
}

func (c *Client) PutFile(ctx context.Context, name, path, content, sha, message string) (string, error) {
	owner, err := c.Login(ctx)
	if err != nil {
		return "", err
	}
	branch := deploy.DefaultBranch
	opts := &github.RepositoryContentFileOptions{
		Message: github.String(message),
		Content: []byte(content),
		Branch:  &branch,
	}
	var res *github.RepositoryContentResponse
	if sha == "" {
		res, _, err = c.gh.Repositories.CreateFile(ctx, owner, name, path, opts)
	} else {
		opts.SHA = github.String(sha)
		res, _, err = c.gh.Repositories.UpdateFile(ctx, owner, name, path, opts)
	}
	if err != nil {
		return "", fmt.Errorf("commit %s/%s: %w", name, path, classify(err))
	}
	if res == nil {
		return "", fmt.Errorf("commit %s/%s: empty response", name, path)
	}
	return res.Commit.GetSHA(), nil
}

// EnablePages turns on Pages served from the root of the default branch.
// A 409 means Pages is already enabled and is not an error.
func (c *Client) EnablePages(ctx context.Context, name string) error {
	owner, err := c.Login(ctx)
	if err != nil {
		return err
	}
	_, resp, err := c.gh.Repositories.EnablePages(ctx, owner, name, &github.Pages{
		Source: &github.PagesSource{
			Branch: github.String(deploy.DefaultBranch),
			Path:   github.String("/"),
		},
	})
	if err != nil {
		if statusOf(err) == http.StatusConflict {
			return nil
		}
		return fmt.Errorf("enable pages %s: %w", name, err)
	}
	if resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("enable pages %s: unexpected status %d", name, resp.StatusCode)
	}
	return nil
}

func (c *Client) HeadCommit(ctx context.Context, name string) (string, error) {
	owner, err := c.Login(ctx)
	if err != nil {
		return "", err
	}
	branch, _, err := c.gh.Repositories.GetBranch(ctx, owner, name, deploy.DefaultBranch, 1)
	if err != nil {
		return "", fmt.Errorf("get branch %s: %w", name, classify(err))
	}
	sha := branch.GetCommit().GetSHA()
	if sha == "" {
		return "", fmt.Errorf("get branch %s: no commit", name)
	}
	return sha, nil
}

var _ deploy.RepoStore = (*Client)(nil)
