package board

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/dmarrero/scheditor/pkg/slotmask"
	"github.com/google/uuid"
	"github.com/mitchellh/mapstructure"
)

type Subject struct {
	Id   uint64
	Name string
}

type Class struct {
	Id   uint64
	Name string
	Size uint64
}

type Room struct {
	Id       uint64
	Name     string
	Capacity uint64
}

type Professor struct {
	Id          uint64
	Name        string
	Preferences slotmask.Preferences
}

// RawLesson is one generated lesson as the scheduling engine emits it in its
// per-class timetable output.
type RawLesson struct {
	Period    uint64 `mapstructure:"period"`
	Day       uint64 `mapstructure:"day"`
	Subject   uint64 `mapstructure:"subject"`
	Professor uint64 `mapstructure:"professor"`
	Room      uint64 `mapstructure:"room"`
}

// FromTimetable builds a board from the engine's per-class timetable, keyed
// by class id. Every lesson gets a fresh entry id.
func FromTimetable(grid slotmask.Grid, timetable map[string][]RawLesson) (*Board, error) {
	board := NewBoard(grid)
	for classKey, lessons := range timetable {
		class, err := strconv.ParseUint(classKey, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("timetable class key must be an integer: %q", classKey)
		}
		for _, lesson := range lessons {
			entry := Entry{
				ID:        uuid.NewString(),
				Subject:   lesson.Subject,
				Professor: lesson.Professor,
				Class:     class,
				Room:      lesson.Room,
				Slot:      slotmask.Slot{Day: int(lesson.Day), Period: int(lesson.Period)},
			}
			if err := board.AddEntry(entry); err != nil {
				return nil, err
			}
		}
	}
	return board, nil
}

// BoardFromJson loads a board from a per-class timetable file.
func BoardFromJson(grid slotmask.Grid, file string) (*Board, error) {
	bytes, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}
	var timetableJson map[string]any
	if err := json.Unmarshal(bytes, &timetableJson); err != nil {
		return nil, err
	}

	var timetable map[string][]RawLesson
	if err := mapstructure.Decode(timetableJson, &timetable); err != nil {
		return nil, fmt.Errorf("cannot decode timetable: %w", err)
	}

	return FromTimetable(grid, timetable)
}
