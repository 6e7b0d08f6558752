package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"empires-server/internal/empire"
	"empires-server/internal/shared/errors"
	"empires-server/internal/shared/response"
)

const maxBodyBytes = 1 << 20

type EmpireHandler struct {
	service *empire.Service
}

func NewEmpireHandler(service *empire.Service) *EmpireHandler {
	return &EmpireHandler{service: service}
}

func (h *EmpireHandler) List(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "list_empires")

	if r.Method != http.MethodGet {
		response.Error(w, r, logger, errors.MethodNotAllowed(r.Method))
		return
	}

	empires, err := h.service.List(r.Context())
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusOK, empires)
}

func (h *EmpireHandler) Get(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "get_empire")

	if r.Method != http.MethodGet {
		response.Error(w, r, logger, errors.MethodNotAllowed(r.Method))
		return
	}

	empireID, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		response.Error(w, r, logger, errors.WrapValidation("invalid empire ID format", err))
		return
	}

	e, err := h.service.Get(r.Context(), empireID)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusOK, e)
}

func (h *EmpireHandler) AdvanceTurn(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "advance_turn")

	if r.Method != http.MethodPost {
		response.Error(w, r, logger, errors.MethodNotAllowed(r.Method))
		return
	}

	turn, err := strconv.Atoi(r.PathValue("turn"))
	if err != nil {
		response.Error(w, r, logger, errors.WrapValidation("invalid turn format", err))
		return
	}

	report, err := h.service.AdvanceTurn(r.Context(), turn)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusOK, report)
}

type stanceRequest struct {
	Stance string `json:"stance"`
}

func (h *EmpireHandler) SetStance(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "set_stance")

	if r.Method != http.MethodPost {
		response.Error(w, r, logger, errors.MethodNotAllowed(r.Method))
		return
	}

	empireID, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		response.Error(w, r, logger, errors.WrapValidation("invalid empire ID format", err))
		return
	}

	var req stanceRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.ErrorWithMessage(w, r, logger, errors.WrapValidation("invalid JSON in request body", err), "invalid JSON in request body")
		return
	}

	e, err := h.service.SetStance(r.Context(), empireID, req.Stance)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusOK, e)
}

func (h *EmpireHandler) CurrentTurn(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "current_turn")

	if r.Method != http.MethodGet {
		response.Error(w, r, logger, errors.MethodNotAllowed(r.Method))
		return
	}

	turn, err := h.service.CurrentTurn(r.Context())
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusOK, map[string]int{"turn": turn})
}
