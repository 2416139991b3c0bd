package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/dshills/undocalc/internal/app"
	"github.com/dshills/undocalc/internal/engine/accumulator"
	"github.com/dshills/undocalc/internal/engine/history"
)

// ComputeRequest is the body of POST /compute.
type ComputeRequest struct {
	Op      string `json:"op"`
	Operand *int64 `json:"operand"`
}

// StepResponse is returned by undo and redo.
type StepResponse struct {
	Requested int       `json:"requested"`
	Steps     int       `json:"steps"`
	State     app.State `json:"state"`
}

// HistoryEntry is one item of GET /history.
type HistoryEntry struct {
	Description string    `json:"description"`
	Timestamp   time.Time `json:"timestamp"`
	Applied     bool      `json:"applied"`
}

func (s *Server) handleState(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.app.State())
}

func (s *Server) handleHistory(w http.ResponseWriter, _ *http.Request) {
	entries := s.app.Entries()
	out := make([]HistoryEntry, len(entries))
	for i, e := range entries {
		out[i] = HistoryEntry{Description: e.Description, Timestamp: e.Timestamp, Applied: e.Applied}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCompute(w http.ResponseWriter, r *http.Request) {
	var req ComputeRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Operand == nil {
		writeError(w, http.StatusBadRequest, "operand is required")
		return
	}

	if err := s.app.ComputeSymbol(r.Context(), req.Op, *req.Operand); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.app.State())
}

func (s *Server) handleStep(kind string) http.HandlerFunc {
	run := s.app.Undo
	if kind == "redo" {
		run = s.app.Redo
	}

	return func(w http.ResponseWriter, r *http.Request) {
		levels := 1
		if v := r.URL.Query().Get("levels"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 0 {
				writeError(w, http.StatusBadRequest, "levels must be a non-negative integer")
				return
			}
			levels = n
		}

		n, err := run(r.Context(), levels)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, StepResponse{Requested: levels, Steps: n, State: s.app.State()})
	}
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	s.app.ClearHistory(r.Context())
	writeJSON(w, http.StatusOK, s.app.State())
}

// fail maps a session error to a status code.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed",
			zap.String("request_id", RequestIDFromContext(r.Context())),
			zap.Error(err))
	}
	writeError(w, status, err.Error())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, accumulator.ErrDivisionByZero), errors.Is(err, accumulator.ErrInvalidOperator):
		return http.StatusUnprocessableEntity
	case errors.Is(err, app.ErrInvalidLevels):
		return http.StatusBadRequest
	case errors.Is(err, history.ErrGroupOpen):
		return http.StatusConflict
	case errors.Is(err, app.ErrClosed):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
