package api

import (
	"encoding/json"

	"github.com/shaun/pagesmith/internal/deploy"
	"github.com/shaun/pagesmith/internal/prompt"
)

type TaskRequest struct {
	Secret        string          `json:"secret"`
	Brief         string          `json:"brief"`
	Attachments   []Attachment    `json:"attachments"`
	Checks        []string        `json:"checks"`
	Task          string          `json:"task"`
	Round         int             `json:"round"`
	Email         json.RawMessage `json:"email"`
	Nonce         json.RawMessage `json:"nonce"`
	EvaluationURL string          `json:"evaluation_url"`
}

type Attachment struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

type TaskResponse struct {
	Status   string `json:"status"`
	UserCode string `json:"usercode,omitempty"`
	Error    string `json:"error,omitempty"`
}

func (r TaskRequest) toDeploy() deploy.Request {
	atts := make([]prompt.Attachment, 0, len(r.Attachments))
	for _, a := range r.Attachments {
		atts = append(atts, prompt.Attachment{Name: a.Name, URL: a.URL})
	}
	return deploy.Request{
		Secret:        r.Secret,
		Brief:         r.Brief,
		Attachments:   atts,
		Checks:        r.Checks,
		Task:          r.Task,
		Round:         r.Round,
		Email:         r.Email,
		Nonce:         r.Nonce,
		EvaluationURL: r.EvaluationURL,
	}
}
