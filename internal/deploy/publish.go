package deploy

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"text/template"

	"go.uber.org/zap"
)

var readmeTpl = template.Must(template.New("readme").Parse(`# {{.Name}}

{{.Brief}}

## Live site

{{.PagesURL}}

## Files

- ` + "`index.html`" + ` contains the whole app: markup, styles and script.

## License

MIT, see [LICENSE](LICENSE).
`))

var licenseTpl = template.Must(template.New("license").Parse(`MIT License

Copyright (c) {{.Year}} {{.Owner}}

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in all
copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
SOFTWARE.
`))

func execute(t *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// RepoURL is the web URL of a repository owned by login.
func RepoURL(login, name string) string {
	return fmt.Sprintf("https://github.com/%s/%s", login, name)
}

func description(brief string) string {
	d := strings.Join(strings.Fields(brief), " ")
	if r := []rune(d); len(r) > 300 {
		d = string(r[:297]) + "..."
	}
	return d
}

// Publish creates name from scratch holding html, a README and a LICENSE,
// and enables Pages. An existing repository with the same name is deleted
// first. Nothing is rolled back on failure.
func (s *Service) Publish(ctx context.Context, name, html, brief string) (*Result, error) {
	res, err := s.publish(ctx, name, html, brief)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPublish, err)
	}
	return res, nil
}

func (s *Service) publish(ctx context.Context, name, html, brief string) (*Result, error) {
	log := loggerFrom(ctx, s.log).With(zap.String("repo", name))
	login, err := s.store.Login(ctx)
	if err != nil {
		return nil, err
	}
	exists, err := s.store.Exists(ctx, name)
	if err != nil {
		return nil, err
	}
	if exists {
		log.Info("deleting existing repository")
		if err := s.store.Delete(ctx, name); err != nil {
			return nil, err
		}
		if err := s.sleep(ctx, s.deletePause); err != nil {
			return nil, err
		}
	}
	repoURL, err := s.store.Create(ctx, name, description(brief))
	if err != nil {
		return nil, err
	}
	if repoURL == "" {
		repoURL = RepoURL(login, name)
	}
	pagesURL := PagesURL(login, name)

	readme, err := execute(readmeTpl, map[string]string{"Name": name, "Brief": strings.TrimSpace(brief), "PagesURL": pagesURL})
	if err != nil {
		return nil, err
	}
	license, err := execute(licenseTpl, map[string]any{"Year": s.now().Year(), "Owner": login})
	if err != nil {
		return nil, err
	}
	for _, f := range []File{
		{Path: IndexFile, Content: html},
		{Path: ReadmeFile, Content: readme},
		{Path: LicenseFile, Content: license},
	} {
		if _, err := s.store.PutFile(ctx, name, f.Path, f.Content, "", "Add "+f.Path); err != nil {
			return nil, err
		}
		log.Debug("committed", zap.String("path", f.Path))
	}
	if err := s.store.EnablePages(ctx, name); err != nil {
		return nil, err
	}
	sha, err := s.store.HeadCommit(ctx, name)
	if err != nil {
		return nil, err
	}
	log.Info("published", zap.String("commit", sha), zap.String("pages_url", pagesURL))
	return &Result{RepoURL: repoURL, PagesURL: pagesURL, CommitSHA: sha}, nil
}
