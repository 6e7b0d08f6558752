package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"empires-server/internal/battle"
	"empires-server/internal/shared/errors"
	"empires-server/internal/shared/response"
)

type CoalitionHandler struct {
	service *battle.Service
}

func NewCoalitionHandler(service *battle.Service) *CoalitionHandler {
	return &CoalitionHandler{service: service}
}

func (h *CoalitionHandler) Detect(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "detect_coalitions")

	if r.Method != http.MethodPost {
		response.Error(w, r, logger, errors.MethodNotAllowed(r.Method))
		return
	}

	var req battle.DetectRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.ErrorWithMessage(w, r, logger, errors.WrapValidation("invalid JSON in request body", err), "invalid JSON in request body")
		return
	}

	raids, err := h.service.AnalyzeCoalition(r.Context(), req)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusOK, raids)
}

func (h *CoalitionHandler) TurnRaids(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "turn_raids")

	if r.Method != http.MethodGet {
		response.Error(w, r, logger, errors.MethodNotAllowed(r.Method))
		return
	}

	turn, err := strconv.Atoi(r.PathValue("turn"))
	if err != nil {
		response.Error(w, r, logger, errors.WrapValidation("invalid turn format", err))
		return
	}

	raids, err := h.service.DetectRaids(r.Context(), turn)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusOK, raids)
}
