package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"empires-server/internal/shared/errors"
	"empires-server/internal/shared/response"
)

// EmpireFinder reports whether an empire exists.
type EmpireFinder interface {
	Exists(ctx context.Context, id int) (bool, error)
}

// EmpireAccessMiddleware lets a commander act only for their own empire.
// Admins may act for any empire.
type EmpireAccessMiddleware struct {
	auth    *Authenticator
	empires EmpireFinder
}

func NewEmpireAccessMiddleware(authenticator *Authenticator, empires EmpireFinder) *EmpireAccessMiddleware {
	return &EmpireAccessMiddleware{auth: authenticator, empires: empires}
}

func (m *EmpireAccessMiddleware) Require(next http.Handler) http.Handler {
	return m.auth.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := slog.With(
			"middleware", "empire_access",
			"method", r.Method,
			"path", r.URL.Path,
		)

		claims := GetUserFromContext(r)
		if claims == nil {
			response.Error(w, r, logger, errors.Unauthorized("authentication required"))
			return
		}

		idStr := r.PathValue("id")
		if idStr == "" {
			response.Error(w, r, logger, errors.Validation("empire ID is required"))
			return
		}

		empireID, err := strconv.Atoi(idStr)
		if err != nil {
			response.Error(w, r, logger, errors.WrapValidation("invalid empire ID format", err))
			return
		}

		exists, err := m.empires.Exists(r.Context(), empireID)
		if err != nil {
			response.Error(w, r, logger, errors.WrapInternal("failed to look up empire", err))
			return
		}
		if !exists {
			response.Error(w, r, logger, errors.NotFoundf("empire not found with id: %d", empireID))
			return
		}

		if !claims.IsAdmin() && claims.EmpireID != empireID {
			logger.Warn("Commander attempted to act for another empire",
				"empire_id", empireID,
				"claimed_empire_id", claims.EmpireID)
			response.Error(w, r, logger, errors.Forbidden("empire access required"))
			return
		}

		next.ServeHTTP(w, r)
	}))
}
