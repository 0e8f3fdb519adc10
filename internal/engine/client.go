package engine

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/dmarrero/scheditor/pkg/board"
	"github.com/dmarrero/scheditor/pkg/slotmask"
	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

// Client talks to the external scheduling engine, which owns constraint
// solving and preference persistence. Slot masks cross the wire as base-10
// decimal strings; that encoding is load-bearing for existing consumers.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
}

func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// StatusError is a non-2xx engine response.
type StatusError struct {
	Method string
	Path   string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("engine: %v %v returned %v: %v", e.Method, e.Path, e.Code, e.Body)
}

// TeacherPreferencesPayload is the preference record submitted per teacher.
type TeacherPreferencesPayload struct {
	PreferredSlots string `json:"preferredSlots"`
	BlockedSlots   string `json:"blockedSlots"`
}

// SubjectConstraintsPayload carries the per-subject forbidden-slot mask.
type SubjectConstraintsPayload struct {
	ForbiddenSlots string `json:"forbiddenSlots"`
}

type GenerateRequest struct {
	CycleDays     int                                  `json:"cycleDays"`
	PeriodsPerDay int                                  `json:"periodsPerDay"`
	Subjects      []board.Subject                      `json:"subjects"`
	Professors    []board.Professor                    `json:"professors"`
	Classes       []board.Class                        `json:"classes"`
	Rooms         []board.Room                         `json:"rooms"`
	Preferences   map[string]TeacherPreferencesPayload `json:"preferences"`
}

type GenerateResult struct {
	Timetable map[string][]rawLessonPayload `json:"timetable"`
}

type rawLessonPayload struct {
	Period    uint64 `json:"period"`
	Day       uint64 `json:"day"`
	Subject   uint64 `json:"subject"`
	Professor uint64 `json:"professor"`
	Room      uint64 `json:"room"`
}

type Conflict struct {
	EntryID string `json:"entryId"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// PreferencesPayload converts a preference set into its wire form.
func PreferencesPayload(prefs slotmask.Preferences) TeacherPreferencesPayload {
	return TeacherPreferencesPayload{
		PreferredSlots: prefs.Preferred.String(),
		BlockedSlots:   prefs.Blocked.String(),
	}
}

// UpdateTeacherPreferences persists a teacher's preference masks.
func (c *Client) UpdateTeacherPreferences(ctx context.Context, teacherID string, prefs slotmask.Preferences) error {
	path := fmt.Sprintf("/teachers/%v/preferences", teacherID)
	return c.do(ctx, http.MethodPut, path, PreferencesPayload(prefs), nil)
}

// UpdateSubjectConstraints persists a subject's forbidden-slot mask.
func (c *Client) UpdateSubjectConstraints(ctx context.Context, subjectID string, forbidden slotmask.Mask) error {
	path := fmt.Sprintf("/subjects/%v/constraints", subjectID)
	payload := SubjectConstraintsPayload{ForbiddenSlots: forbidden.String()}
	return c.do(ctx, http.MethodPut, path, payload, nil)
}

// Generate asks the engine for a fresh timetable and converts its per-class
// output into board lessons.
func (c *Client) Generate(ctx context.Context, request GenerateRequest) (map[string][]board.RawLesson, error) {
	var result GenerateResult
	if err := c.do(ctx, http.MethodPost, "/schedule/generate", request, &result); err != nil {
		return nil, err
	}
	timetable := make(map[string][]board.RawLesson, len(result.Timetable))
	for class, lessons := range result.Timetable {
		for _, lesson := range lessons {
			timetable[class] = append(timetable[class], board.RawLesson{
				Period:    lesson.Period,
				Day:       lesson.Day,
				Subject:   lesson.Subject,
				Professor: lesson.Professor,
				Room:      lesson.Room,
			})
		}
	}
	return timetable, nil
}

// DetectConflicts submits the current entries for conflict analysis.
func (c *Client) DetectConflicts(ctx context.Context, entries []board.Entry) ([]Conflict, error) {
	var conflicts []Conflict
	if err := c.do(ctx, http.MethodPost, "/schedule/detect-conflicts", entries, &conflicts); err != nil {
		return nil, err
	}
	return conflicts, nil
}

func (c *Client) do(ctx context.Context, method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("engine: cannot encode %v %v payload: %w", method, path, err)
		}
		body = bytes.NewReader(encoded)
	}

	request, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	request.Header.Set("Content-Type", "application/json")

	start := time.Now()
	response, err := c.http.Do(request)
	if err != nil {
		return fmt.Errorf("engine: %v %v: %w", method, path, err)
	}
	defer response.Body.Close()

	c.logger.Debug("engine request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", response.StatusCode),
		zap.Duration("duration", time.Since(start)))

	if response.StatusCode < 200 || response.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(response.Body, 4096))
		return &StatusError{Method: method, Path: path, Code: response.StatusCode, Body: string(raw)}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(response.Body).Decode(out); err != nil {
		return fmt.Errorf("engine: cannot decode %v %v response: %w", method, path, err)
	}
	return nil
}
