package server

import (
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/dmarrero/scheditor/internal/engine"
	"github.com/dmarrero/scheditor/pkg/board"
	"github.com/dmarrero/scheditor/pkg/history"
	"github.com/dmarrero/scheditor/pkg/slotmask"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

// Server fronts one editing session over HTTP: the board, its undo/redo
// history, and the locally held preference masks. The heavy lifting
// (solving, conflict analysis, preference persistence) is proxied to the
// external engine.
//
// The board, the history and the preference maps are single-session state
// with no internal locking, so the router serializes handlers through mu.
type Server struct {
	mu        sync.Mutex
	grid      slotmask.Grid
	board     *board.Board
	history   *history.History
	engine    *engine.Client
	prefs     map[string]slotmask.Preferences
	forbidden map[string]slotmask.Mask
	validate  *validator.Validate
	logger    *zap.Logger
}

func New(grid slotmask.Grid, b *board.Board, h *history.History, e *engine.Client, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		grid:      grid,
		board:     b,
		history:   h,
		engine:    e,
		prefs:     make(map[string]slotmask.Preferences),
		forbidden: make(map[string]slotmask.Mask),
		validate:  validator.New(),
		logger:    logger,
	}
}

func (s *Server) Handler() http.Handler {
	router := chi.NewRouter()
	router.Use(s.requestLogger)
	router.Use(s.sessionLock)

	router.Route("/entries", func(r chi.Router) {
		r.Get("/", s.listEntries)
		r.Post("/swap", s.swapEntries)
		r.Post("/{entryID}/move", s.moveEntry)
		r.Post("/{entryID}/fixed", s.setEntryFixed)
	})

	router.Route("/teachers/{teacherID}/preferences", func(r chi.Router) {
		r.Get("/", s.getPreferences)
		r.Post("/slots", s.setPreferenceSlot)
		r.Delete("/", s.clearPreferences)
	})

	router.Post("/subjects/{subjectID}/forbidden", s.setForbiddenSlot)

	router.Route("/history", func(r chi.Router) {
		r.Get("/", s.getHistory)
		r.Post("/undo", s.undo)
		r.Post("/redo", s.redo)
		r.Delete("/", s.clearHistory)
		r.Get("/blob", s.exportHistory)
		r.Put("/blob", s.importHistory)
	})

	router.Post("/schedule/generate", s.generate)
	router.Post("/schedule/conflicts", s.detectConflicts)

	return router
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("cannot encode response", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, board.ErrEntryNotFound):
		status = http.StatusNotFound
	case errors.Is(err, slotmask.ErrInvalidSlot), errors.Is(err, errInvalidBody):
		status = http.StatusBadRequest
	case errors.Is(err, board.ErrSlotOccupied),
		errors.Is(err, board.ErrEntryFixed),
		errors.Is(err, board.ErrStaleSlot),
		errors.Is(err, history.ErrBusy):
		status = http.StatusConflict
	}
	var engineErr *engine.StatusError
	if errors.As(err, &engineErr) {
		status = http.StatusBadGateway
	}
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		status = http.StatusBadRequest
	}
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}

var errInvalidBody = errors.New("invalid request body")

// decode parses and validates a JSON request body.
func (s *Server) decode(r *http.Request, out any) error {
	if err := json.NewDecoder(r.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %v", errInvalidBody, err)
	}
	return s.validate.Struct(out)
}
