package http

import (
	"net/http"

	"disciple-assessment-service/internal/domain"
	"disciple-assessment-service/internal/report"
	"github.com/go-chi/chi/v5"
)

type resultResponse struct {
	Result  domain.Result  `json:"result"`
	Summary report.Summary `json:"summary"`
}

func (h *handlers) listResults(w http.ResponseWriter, r *http.Request) {
	results, err := h.assessments.History(r.Context(), userID(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	out := make([]resultResponse, 0, len(results))
	for _, res := range results {
		view, err := h.resultView(r, res)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		out = append(out, view)
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *handlers) latestResult(w http.ResponseWriter, r *http.Request) {
	res, err := h.assessments.Latest(r.Context(), userID(r))
	h.respondResult(w, r, res, err)
}

func (h *handlers) getResult(w http.ResponseWriter, r *http.Request) {
	res, err := h.assessments.Result(r.Context(), userID(r), chi.URLParam(r, "resultID"))
	h.respondResult(w, r, res, err)
}

func (h *handlers) transientResult(w http.ResponseWriter, r *http.Request) {
	res, err := h.assessments.Transient(r.Context(), chi.URLParam(r, "key"))
	h.respondResult(w, r, res, err)
}

func (h *handlers) compareResults(w http.ResponseWriter, r *http.Request) {
	first, second := r.URL.Query().Get("first"), r.URL.Query().Get("second")
	if first == "" || second == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "first and second are required"})
		return
	}
	cmp, err := h.assessments.Compare(r.Context(), userID(r), first, second)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cmp)
}

func (h *handlers) respondResult(w http.ResponseWriter, r *http.Request, res domain.Result, err error) {
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	view, err := h.resultView(r, res)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *handlers) resultView(r *http.Request, res domain.Result) (resultResponse, error) {
	summary, err := h.assessments.Summarize(r.Context(), res)
	if err != nil {
		return resultResponse{}, err
	}
	return resultResponse{Result: res, Summary: summary}, nil
}
