package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/dmarrero/scheditor/internal/engine"
	"github.com/dmarrero/scheditor/pkg/board"
	"github.com/dmarrero/scheditor/pkg/history"
	"github.com/dmarrero/scheditor/pkg/slotmask"
	"github.com/go-chi/chi/v5"
)

var errEngineUnavailable = errors.New("no scheduling engine configured")

type moveRequest struct {
	Day    int `json:"day" validate:"min=0"`
	Period int `json:"period" validate:"min=0"`
}

type swapRequest struct {
	FirstID  string `json:"firstId" validate:"required"`
	SecondID string `json:"secondId" validate:"required"`
}

type fixedRequest struct {
	Fixed bool `json:"fixed"`
}

type preferenceSlotRequest struct {
	Day    int    `json:"day" validate:"min=0"`
	Period int    `json:"period" validate:"min=0"`
	Kind   string `json:"kind" validate:"required,oneof=preferred blocked"`
	On     bool   `json:"on"`
}

type forbiddenSlotRequest struct {
	Day    int  `json:"day" validate:"min=0"`
	Period int  `json:"period" validate:"min=0"`
	On     bool `json:"on"`
}

func (s *Server) listEntries(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.board.Entries())
}

func (s *Server) moveEntry(w http.ResponseWriter, r *http.Request) {
	entryID := chi.URLParam(r, "entryID")
	var request moveRequest
	if err := s.decode(r, &request); err != nil {
		s.writeError(w, err)
		return
	}

	entry, ok := s.board.Entry(entryID)
	if !ok {
		s.writeError(w, fmt.Errorf("%w: %v", board.ErrEntryNotFound, entryID))
		return
	}
	to := slotmask.Slot{Day: request.Day, Period: request.Period}
	op := history.Move{EntryID: entryID, From: entry.Slot, To: to}
	description := fmt.Sprintf("Move entry %v to %v", entryID, to)

	recordID, err := s.history.Do(r.Context(), op, description)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"recordId": recordID})
}

func (s *Server) swapEntries(w http.ResponseWriter, r *http.Request) {
	var request swapRequest
	if err := s.decode(r, &request); err != nil {
		s.writeError(w, err)
		return
	}

	first, firstOk := s.board.Entry(request.FirstID)
	second, secondOk := s.board.Entry(request.SecondID)
	if !firstOk {
		s.writeError(w, fmt.Errorf("%w: %v", board.ErrEntryNotFound, request.FirstID))
		return
	}
	if !secondOk {
		s.writeError(w, fmt.Errorf("%w: %v", board.ErrEntryNotFound, request.SecondID))
		return
	}
	op := history.Swap{
		FirstID:    first.ID,
		SecondID:   second.ID,
		FirstSlot:  first.Slot,
		SecondSlot: second.Slot,
	}
	description := fmt.Sprintf("Swap entries %v and %v", first.ID, second.ID)

	recordID, err := s.history.Do(r.Context(), op, description)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"recordId": recordID})
}

func (s *Server) setEntryFixed(w http.ResponseWriter, r *http.Request) {
	entryID := chi.URLParam(r, "entryID")
	var request fixedRequest
	if err := s.decode(r, &request); err != nil {
		s.writeError(w, err)
		return
	}

	var op history.Operation
	var description string
	if request.Fixed {
		op = history.SetFixed{EntryID: entryID}
		description = fmt.Sprintf("Fix entry %v", entryID)
	} else {
		op = history.UnsetFixed{EntryID: entryID}
		description = fmt.Sprintf("Release entry %v", entryID)
	}

	recordID, err := s.history.Do(r.Context(), op, description)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"recordId": recordID})
}

func (s *Server) getPreferences(w http.ResponseWriter, r *http.Request) {
	teacherID := chi.URLParam(r, "teacherID")
	prefs, ok := s.prefs[teacherID]
	if !ok {
		prefs = slotmask.NewPreferences(s.grid)
	}
	s.writeJSON(w, http.StatusOK, engine.PreferencesPayload(prefs))
}

func (s *Server) setPreferenceSlot(w http.ResponseWriter, r *http.Request) {
	teacherID := chi.URLParam(r, "teacherID")
	var request preferenceSlotRequest
	if err := s.decode(r, &request); err != nil {
		s.writeError(w, err)
		return
	}

	prefs, ok := s.prefs[teacherID]
	if !ok {
		prefs = slotmask.NewPreferences(s.grid)
	}
	var err error
	if request.Kind == "preferred" {
		prefs, err = prefs.SetPreferred(request.Day, request.Period, request.On)
	} else {
		prefs, err = prefs.SetBlocked(request.Day, request.Period, request.On)
	}
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.prefs[teacherID] = prefs

	if s.engine != nil {
		if err := s.engine.UpdateTeacherPreferences(r.Context(), teacherID, prefs); err != nil {
			s.writeError(w, err)
			return
		}
	}
	s.writeJSON(w, http.StatusOK, engine.PreferencesPayload(prefs))
}

func (s *Server) clearPreferences(w http.ResponseWriter, r *http.Request) {
	teacherID := chi.URLParam(r, "teacherID")
	prefs, ok := s.prefs[teacherID]
	if !ok {
		prefs = slotmask.NewPreferences(s.grid)
	}
	prefs = prefs.ClearAll()
	s.prefs[teacherID] = prefs

	if s.engine != nil {
		if err := s.engine.UpdateTeacherPreferences(r.Context(), teacherID, prefs); err != nil {
			s.writeError(w, err)
			return
		}
	}
	s.writeJSON(w, http.StatusOK, engine.PreferencesPayload(prefs))
}

func (s *Server) setForbiddenSlot(w http.ResponseWriter, r *http.Request) {
	subjectID := chi.URLParam(r, "subjectID")
	var request forbiddenSlotRequest
	if err := s.decode(r, &request); err != nil {
		s.writeError(w, err)
		return
	}

	bit, err := s.grid.Bit(request.Day, request.Period)
	if err != nil {
		s.writeError(w, err)
		return
	}
	mask := s.forbidden[subjectID].SetTo(bit, request.On)
	s.forbidden[subjectID] = mask

	if s.engine != nil {
		if err := s.engine.UpdateSubjectConstraints(r.Context(), subjectID, mask); err != nil {
			s.writeError(w, err)
			return
		}
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"forbiddenSlots": mask.String()})
}

func (s *Server) getHistory(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"cursor":   s.history.Cursor(),
		"length":   s.history.Len(),
		"canUndo":  s.history.CanUndo(),
		"canRedo":  s.history.CanRedo(),
		"undoable": s.history.UndoableDescriptions(),
		"redoable": s.history.RedoableDescriptions(),
	})
}

func (s *Server) undo(w http.ResponseWriter, r *http.Request) {
	done, err := s.history.Undo(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]bool{"done": done})
}

func (s *Server) redo(w http.ResponseWriter, r *http.Request) {
	done, err := s.history.Redo(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]bool{"done": done})
}

func (s *Server) clearHistory(w http.ResponseWriter, r *http.Request) {
	s.history.Clear()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) exportHistory(w http.ResponseWriter, r *http.Request) {
	blob, err := s.history.Export()
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(blob)
}

func (s *Server) importHistory(w http.ResponseWriter, r *http.Request) {
	blob, err := io.ReadAll(r.Body)
	if err != nil {
		s.writeError(w, fmt.Errorf("%w: %v", errInvalidBody, err))
		return
	}
	if err := s.history.Import(blob); err != nil {
		s.writeError(w, fmt.Errorf("%w: %v", errInvalidBody, err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) generate(w http.ResponseWriter, r *http.Request) {
	if s.engine == nil {
		s.writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": errEngineUnavailable.Error()})
		return
	}
	var request engine.GenerateRequest
	if err := s.decode(r, &request); err != nil {
		s.writeError(w, err)
		return
	}
	request.CycleDays = s.grid.CycleDays
	request.PeriodsPerDay = s.grid.PeriodsPerDay
	request.Preferences = make(map[string]engine.TeacherPreferencesPayload, len(s.prefs))
	for teacherID, prefs := range s.prefs {
		request.Preferences[teacherID] = engine.PreferencesPayload(prefs)
	}

	before, err := s.board.Snapshot(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	timetable, err := s.engine.Generate(r.Context(), request)
	if err != nil {
		s.writeError(w, err)
		return
	}
	generated, err := board.FromTimetable(s.grid, timetable)
	if err != nil {
		s.writeError(w, err)
		return
	}
	after, err := generated.Snapshot(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}

	op := history.Generate{Before: before, After: after}
	recordID, err := s.history.Do(r.Context(), op, "Generate timetable")
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"recordId": recordID,
		"entries":  s.board.Entries(),
	})
}

func (s *Server) detectConflicts(w http.ResponseWriter, r *http.Request) {
	if s.engine == nil {
		s.writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": errEngineUnavailable.Error()})
		return
	}
	conflicts, err := s.engine.DetectConflicts(r.Context(), s.board.Entries())
	if err != nil {
		s.writeError(w, err)
		return
	}
	if conflicts == nil {
		conflicts = []engine.Conflict{}
	}
	s.writeJSON(w, http.StatusOK, conflicts)
}
