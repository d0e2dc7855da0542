package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/user/job-insights/internal/delivery/http/response"
	"github.com/user/job-insights/internal/repository"
	"github.com/user/job-insights/internal/usecase"
	"github.com/user/job-insights/pkg/jobid"
)

// SessionReader is the read side of an instrumentation session.
type SessionReader interface {
	Stats() usecase.SessionStats
	Store() repository.JobRecordRepository
}

type Handler struct {
	session SessionReader
	logger  *zap.Logger
}

func NewHandler(session SessionReader, logger *zap.Logger) *Handler {
	return &Handler{
		session: session,
		logger:  logger,
	}
}

func (h *Handler) HandleHealthCheck(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) HandleGetSession(w http.ResponseWriter, r *http.Request) {
	st := h.session.Stats()
	h.writeJSON(w, http.StatusOK, response.SessionResponse{
		ID:         st.ID,
		State:      string(st.State),
		Records:    st.Records,
		Candidates: st.Candidates,
		StartedAt:  st.StartedAt,
	})
}

func (h *Handler) HandleGetJob(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !jobid.IsNumeric(id) {
		h.writeJSONError(w, "Job id must be numeric", http.StatusBadRequest)
		return
	}

	rec, ok := h.session.Store().Get(id)
	if !ok {
		h.writeJSONError(w, "No data captured for this job", http.StatusNotFound)
		return
	}

	h.writeJSON(w, http.StatusOK, response.JobResponse{
		ID:               rec.ID,
		Title:            rec.Title,
		Company:          rec.Company,
		ListedAt:         rec.ListedAt,
		OriginalListedAt: rec.OriginalListedAt,
		ExpireAt:         rec.ExpireAt,
		Views:            rec.Views,
		Applies:          rec.Applies,
		CapturedAt:       rec.CapturedAt,
	})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to write JSON response", zap.Error(err))
	}
}

func (h *Handler) writeJSONError(w http.ResponseWriter, message string, status int) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
