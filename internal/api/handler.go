package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/shaun/pagesmith/internal/deploy"
)

const maxBodyBytes = 1 << 20

// Dispatcher runs a task request. Implemented by *deploy.Service; inject a fake in tests.
type Dispatcher interface {
	Handle(ctx context.Context, req deploy.Request) (*deploy.Payload, error)
}

type Handler struct {
	svc      Dispatcher
	userCode string
	log      *zap.Logger
}

func NewHandler(svc Dispatcher, userCode string, log *zap.Logger) *Handler {
	return &Handler{svc: svc, userCode: userCode, log: log}
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, TaskResponse{Status: "error", Error: msg})
}

// statusFor maps a dispatcher error to the webhook's response code.
func statusFor(err error) int {
	switch {
	case errors.Is(err, deploy.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, deploy.ErrValidation):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

// Index answers GET / so the endpoint can be probed in a browser.
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, TaskResponse{Status: "ok", UserCode: h.userCode})
}

// Task is the webhook: POST / with a TaskRequest body.
func (h *Handler) Task(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req *TaskRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		if errors.Is(err, io.EOF) {
			respondError(w, http.StatusBadRequest, "missing JSON body")
			return
		}
		respondError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req == nil {
		respondError(w, http.StatusBadRequest, "missing JSON body")
		return
	}
	if _, err := h.svc.Handle(r.Context(), req.toDeploy()); err != nil {
		status := statusFor(err)
		h.log.Info("task rejected", zap.Int("status", status), zap.String("task", req.Task), zap.Error(err))
		msg := err.Error()
		if status == http.StatusForbidden {
			msg = "invalid secret"
		}
		respondError(w, status, msg)
		return
	}
	respondJSON(w, http.StatusOK, TaskResponse{Status: "ok", UserCode: h.userCode})
}
