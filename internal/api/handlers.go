package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/memeulacra/memegen/internal/orchestrator"
	"github.com/memeulacra/memegen/internal/store"
	"github.com/memeulacra/memegen/internal/variants"
)

// BatchRunner executes a meme batch. *orchestrator.Orchestrator satisfies it.
type BatchRunner interface {
	Run(ctx context.Context, batchContext string, memeIDs []string) ([]orchestrator.SlotResult, error)
}

// Repository is the slice of the store the API needs directly.
type Repository interface {
	Ping(ctx context.Context) error
	ListTemplates(ctx context.Context) ([]store.MemeTemplate, error)
}

// Logger defines the logging operations the api package needs.
type Logger interface {
	Info(msg string, err error, fields ...map[string]interface{})
	Warn(msg string, err error, fields ...map[string]interface{})
	Error(msg string, err error, fields ...map[string]interface{})
}

// Handler exposes the HTTP surface of the service.
type Handler struct {
	runner BatchRunner
	repo   Repository
	logger Logger
}

func NewHandler(runner BatchRunner, repo Repository, logger Logger) *Handler {
	return &Handler{runner: runner, repo: repo, logger: logger}
}

// Router builds the route table.
func (h *Handler) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/health", h.health).Methods(http.MethodGet)
	r.HandleFunc("/generate-meme-batch", h.generateBatch).Methods(http.MethodPost)
	r.HandleFunc("/templates", h.listTemplates).Methods(http.MethodGet)
	return r
}

type batchRequest struct {
	Context string   `json:"context"`
	UUIDs   []string `json:"uuids"`
}

type memeResponse struct {
	UUID      string    `json:"uuid"`
	TextBoxes []*string `json:"text_boxes"`
	CDNURL    *string   `json:"cdn_url"`
	Error     string    `json:"error,omitempty"`
}

type batchResponse struct {
	Memes []memeResponse `json:"memes"`
}

type templateResponse struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	ImageRef    string `json:"image_ref"`
	BoxCount    int    `json:"box_count"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	if err := h.repo.Ping(r.Context()); err != nil {
		h.logger.Warn("health check failed", err, nil)
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "database unreachable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) generateBatch(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}
	if err := validateBatchRequest(req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	results, err := h.runner.Run(r.Context(), req.Context, req.UUIDs)
	if err != nil {
		switch {
		case errors.Is(err, orchestrator.ErrValidation), errors.Is(err, orchestrator.ErrNoContentGenerated):
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		default:
			h.logger.Error("meme batch failed", err, map[string]interface{}{"slots": len(req.UUIDs)})
			writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "batch generation failed"})
		}
		return
	}

	resp := batchResponse{Memes: make([]memeResponse, 0, len(results))}
	for _, res := range results {
		resp.Memes = append(resp.Memes, memeResponse{
			UUID:      res.MemeID,
			TextBoxes: trimCaptions(res.Captions),
			CDNURL:    res.ImageURL,
			Error:     res.FailureReason,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) listTemplates(w http.ResponseWriter, r *http.Request) {
	templates, err := h.repo.ListTemplates(r.Context())
	if err != nil {
		h.logger.Error("listing templates failed", err, nil)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "listing templates failed"})
		return
	}

	out := make([]templateResponse, 0, len(templates))
	for _, t := range templates {
		out = append(out, templateResponse{
			ID:          t.ID,
			Name:        t.Name,
			Description: t.Description,
			ImageRef:    t.ImageRef,
			BoxCount:    t.BoxCount,
		})
	}
	writeJSON(w, http.StatusOK, map[string][]templateResponse{"templates": out})
}

func validateBatchRequest(req batchRequest) error {
	if req.Context == "" {
		return fmt.Errorf("context must not be empty")
	}
	if len(req.UUIDs) == 0 {
		return fmt.Errorf("uuids must not be empty")
	}
	for _, id := range req.UUIDs {
		if _, err := uuid.Parse(id); err != nil {
			return fmt.Errorf("invalid uuid %q", id)
		}
	}
	return nil
}

// trimCaptions drops trailing empty slots so a two box meme does not
// serialize five nulls.
func trimCaptions(captions [variants.MaxSlots]*string) []*string {
	last := -1
	for i, c := range captions {
		if c != nil {
			last = i
		}
	}
	out := make([]*string, last+1)
	copy(out, captions[:last+1])
	return out
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
