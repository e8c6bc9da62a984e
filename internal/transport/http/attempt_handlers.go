package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"disciple-assessment-service/internal/app"
	"disciple-assessment-service/internal/assessment"
	"disciple-assessment-service/internal/domain"
	"github.com/go-chi/chi/v5"
)

type attemptResponse struct {
	ID        string              `json:"id"`
	BankID    string              `json:"bank_id"`
	StartedAt time.Time           `json:"started_at"`
	Progress  assessment.Progress `json:"progress"`
}

type startRequest struct {
	PageSize int `json:"page_size,omitempty"`
}

type answerRequest struct {
	Value int `json:"value"`
}

type submitRequest struct {
	Confirm bool `json:"confirm"`
}

type incompleteResponse struct {
	Error      string   `json:"error"`
	Answered   int      `json:"answered"`
	Total      int      `json:"total"`
	Unanswered []string `json:"unanswered"`
}

func newAttemptResponse(a *assessment.Attempt) attemptResponse {
	return attemptResponse{
		ID:        a.ID(),
		BankID:    a.BankID(),
		StartedAt: a.StartedAt(),
		Progress:  a.Progress(),
	}
}

func (h *handlers) getBank(w http.ResponseWriter, r *http.Request) {
	b, err := h.assessments.Bank(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (h *handlers) getSections(w http.ResponseWriter, r *http.Request) {
	b, err := h.assessments.Bank(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b.SectionMetadata())
}

func (h *handlers) startAttempt(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	if r.ContentLength > 0 {
		if err := decodeJSON(r, &req); err != nil {
			h.writeError(w, r, err)
			return
		}
	}
	attempt, err := h.assessments.Start(r.Context(), userID(r), req.PageSize)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, newAttemptResponse(attempt))
}

func (h *handlers) getAttempt(w http.ResponseWriter, r *http.Request) {
	attempt, err := h.assessments.Attempt(r.Context(), chi.URLParam(r, "attemptID"), userID(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newAttemptResponse(attempt))
}

func (h *handlers) getPage(w http.ResponseWriter, r *http.Request) {
	n, err := strconv.Atoi(chi.URLParam(r, "n"))
	if err != nil {
		h.writeError(w, r, domain.ErrPageOutOfRange)
		return
	}
	view, err := h.assessments.Page(r.Context(), chi.URLParam(r, "attemptID"), userID(r), n)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *handlers) putAnswer(w http.ResponseWriter, r *http.Request) {
	var req answerRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	progress, err := h.assessments.Answer(r.Context(), chi.URLParam(r, "attemptID"), userID(r), chi.URLParam(r, "itemID"), req.Value)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, progress)
}

func (h *handlers) restartAttempt(w http.ResponseWriter, r *http.Request) {
	attempt, err := h.assessments.Restart(r.Context(), chi.URLParam(r, "attemptID"), userID(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, newAttemptResponse(attempt))
}

func (h *handlers) submitAttempt(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if r.ContentLength > 0 {
		if err := decodeJSON(r, &req); err != nil {
			h.writeError(w, r, err)
			return
		}
	}
	sub, err := h.assessments.Submit(r.Context(), chi.URLParam(r, "attemptID"), userID(r), req.Confirm)
	if errors.Is(err, domain.ErrIncompleteAnswers) {
		writeJSON(w, http.StatusConflict, newIncompleteResponse(sub))
		return
	}
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sub)
}

func newIncompleteResponse(sub app.Submission) incompleteResponse {
	return incompleteResponse{
		Error:      domain.ErrIncompleteAnswers.Error(),
		Answered:   sub.Progress.Answered,
		Total:      sub.Progress.Total,
		Unanswered: sub.Unanswered,
	}
}
