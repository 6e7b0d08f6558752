package battle

import (
	"log/slog"

	"github.com/google/uuid"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// SetIDGenerator replaces the report id source.
func (s *Service) SetIDGenerator(fn func() uuid.UUID) {
	s.newID = fn
}
