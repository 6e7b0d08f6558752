package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"empires-server/internal/battle"
	"empires-server/internal/middleware"
	"empires-server/internal/shared/errors"
	"empires-server/internal/shared/response"

	"github.com/google/uuid"
)

const maxBodyBytes = 1 << 20

type BattleHandler struct {
	service *battle.Service
}

func NewBattleHandler(service *battle.Service) *BattleHandler {
	return &BattleHandler{service: service}
}

func (h *BattleHandler) Simulate(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "simulate_battle")

	if r.Method != http.MethodPost {
		response.Error(w, r, logger, errors.MethodNotAllowed(r.Method))
		return
	}

	var req battle.SimulateRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.ErrorWithMessage(w, r, logger, errors.WrapValidation("invalid JSON in request body", err), "invalid JSON in request body")
		return
	}

	result, err := h.service.Simulate(r.Context(), req)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusOK, result)
}

func (h *BattleHandler) Engage(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "engage")

	if r.Method != http.MethodPost {
		response.Error(w, r, logger, errors.MethodNotAllowed(r.Method))
		return
	}

	attackerID, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		response.Error(w, r, logger, errors.WrapValidation("invalid empire ID format", err))
		return
	}

	var req battle.EngageRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.ErrorWithMessage(w, r, logger, errors.WrapValidation("invalid JSON in request body", err), "invalid JSON in request body")
		return
	}

	if req.Seed != 0 {
		if claims := middleware.GetUserFromContext(r); claims == nil || !claims.IsAdmin() {
			response.Error(w, r, logger, errors.Forbidden("only admins can seed a battle"))
			return
		}
	}

	report, err := h.service.Engage(r.Context(), attackerID, req)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusCreated, report)
}

func (h *BattleHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "get_battle_report")

	if r.Method != http.MethodGet {
		response.Error(w, r, logger, errors.MethodNotAllowed(r.Method))
		return
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		response.Error(w, r, logger, errors.WrapValidation("invalid battle report ID format", err))
		return
	}

	report, err := h.service.GetReport(r.Context(), id)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusOK, report)
}
