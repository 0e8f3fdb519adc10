package engine

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dmarrero/scheditor/pkg/slotmask"
	"github.com/stretchr/testify/assert"
)

func TestUpdateTeacherPreferencesSendsDecimalMasks(t *testing.T) {
	// Arrange
	grid, err := slotmask.NewGrid(5, 8)
	assert.Nil(t, err)
	prefs, err := slotmask.NewPreferences(grid).SetPreferred(4, 7, true)
	assert.Nil(t, err)
	prefs, err = prefs.SetBlocked(0, 0, true)
	assert.Nil(t, err)

	var gotPath string
	var gotPayload map[string]string
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.Method + " " + r.URL.Path
		assert.Nil(t, json.NewDecoder(r.Body).Decode(&gotPayload))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer backend.Close()

	client := NewClient(backend.URL, time.Second, nil)

	// Act
	err = client.UpdateTeacherPreferences(context.Background(), "t42", prefs)

	// Assert
	assert.Nil(t, err)
	assert.Equal(t, "PUT /teachers/t42/preferences", gotPath)
	assert.Equal(t, "549755813888", gotPayload["preferredSlots"])
	assert.Equal(t, "1", gotPayload["blockedSlots"])
}

func TestUpdateSubjectConstraints(t *testing.T) {
	// Arrange
	var gotPath string
	var gotPayload map[string]string
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.Method + " " + r.URL.Path
		assert.Nil(t, json.NewDecoder(r.Body).Decode(&gotPayload))
		w.WriteHeader(http.StatusOK)
	}))
	defer backend.Close()

	client := NewClient(backend.URL, time.Second, nil)
	forbidden := slotmask.Mask{}.Set(10)

	// Act
	err := client.UpdateSubjectConstraints(context.Background(), "s7", forbidden)

	// Assert
	assert.Nil(t, err)
	assert.Equal(t, "PUT /subjects/s7/constraints", gotPath)
	assert.Equal(t, "1024", gotPayload["forbiddenSlots"])
}

func TestGenerateDecodesTimetable(t *testing.T) {
	// Arrange
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "/schedule/generate", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"timetable": {
			"0": [{"period": 1, "day": 2, "subject": 3, "professor": 4, "room": 5}]
		}}`))
	}))
	defer backend.Close()

	client := NewClient(backend.URL, time.Second, nil)

	// Act
	timetable, err := client.Generate(context.Background(), GenerateRequest{CycleDays: 5, PeriodsPerDay: 8})

	// Assert
	assert.Nil(t, err)
	assert.Len(t, timetable["0"], 1)
	assert.Equal(t, uint64(2), timetable["0"][0].Day)
	assert.Equal(t, uint64(1), timetable["0"][0].Period)
	assert.Equal(t, uint64(5), timetable["0"][0].Room)
}

func TestNon2xxBecomesStatusError(t *testing.T) {
	// Arrange
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unsatisfiable", http.StatusUnprocessableEntity)
	}))
	defer backend.Close()

	client := NewClient(backend.URL, time.Second, nil)

	// Act
	_, err := client.Generate(context.Background(), GenerateRequest{})

	// Assert
	var statusErr *StatusError
	assert.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusUnprocessableEntity, statusErr.Code)
	assert.Contains(t, statusErr.Body, "unsatisfiable")
}

func TestDetectConflicts(t *testing.T) {
	// Arrange
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/schedule/detect-conflicts", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"entryId": "e1", "kind": "room", "message": "room 5 double-booked"}]`))
	}))
	defer backend.Close()

	client := NewClient(backend.URL, time.Second, nil)

	// Act
	conflicts, err := client.DetectConflicts(context.Background(), nil)

	// Assert
	assert.Nil(t, err)
	assert.Len(t, conflicts, 1)
	assert.Equal(t, "e1", conflicts[0].EntryID)
	assert.Equal(t, "room", conflicts[0].Kind)
}
