package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/dmarrero/scheditor/pkg/board"
	"github.com/dmarrero/scheditor/pkg/history"
	"github.com/dmarrero/scheditor/pkg/slotmask"
)

// scriptStep is one edit of the input script: a tagged operation plus an
// optional label shown in the history listing.
type scriptStep struct {
	history.OperationBlob
	Description string `json:"description"`
}

func main() {
	// Define arguments
	boardPathPtr := flag.String("board", "", "Path to the board file (per-class timetable JSON)")
	scriptPathPtr := flag.String("script", "", "Path to the edit script (JSON list of operations); optional")
	undoPtr := flag.Int("undo", 0, "Number of undo steps to apply after the script")
	redoPtr := flag.Int("redo", 0, "Number of redo steps to apply after the undos")
	outPathPtr := flag.String("out", "", "Path to the file where the edited board will be written; if empty, it'll be written into the Standard Output")
	historyOutPtr := flag.String("history-out", "", "Path to the file where the history blob will be exported; optional")
	maxSizePtr := flag.Int("max-size", history.DefaultMaxSize, "Maximum number of history records kept")
	daysPtr := flag.Int("days", 5, "Days per schedule cycle")
	periodsPtr := flag.Int("periods", 8, "Periods per day")
	flag.Parse()

	// Validate arguments
	if *boardPathPtr == "" {
		log.Fatal("a board file must be specified")
	} else if *undoPtr < 0 || *redoPtr < 0 {
		log.Fatal("undo and redo counts must not be negative")
	}

	grid, err := slotmask.NewGrid(*daysPtr, *periodsPtr)
	if err != nil {
		log.Fatalf("invalid grid configuration: %v", err)
	}

	// Extract input
	editedBoard, err := board.BoardFromJson(grid, *boardPathPtr)
	if err != nil {
		log.Fatalf("cannot parse board file: %v", err)
	}

	editHistory := history.NewHistory(editedBoard, *maxSizePtr, nil)
	ctx := context.Background()

	// Apply the edit script
	if *scriptPathPtr != "" {
		steps, err := readScript(*scriptPathPtr)
		if err != nil {
			log.Fatalf("cannot parse script file: %v", err)
		}
		for i, step := range steps {
			op, err := history.DecodeOperation(step.OperationBlob)
			if err != nil {
				log.Fatalf("script step %v: %v", i, err)
			}
			description := step.Description
			if description == "" {
				description = string(op.Kind())
			}
			if _, err := editHistory.Do(ctx, op, description); err != nil {
				log.Fatalf("script step %v (%v) failed: %v", i, description, err)
			}
		}
	}

	// Walk the history backward and forward as requested
	for i := 0; i < *undoPtr; i++ {
		done, err := editHistory.Undo(ctx)
		if err != nil {
			log.Fatalf("undo failed: %v", err)
		} else if !done {
			break
		}
	}
	for i := 0; i < *redoPtr; i++ {
		done, err := editHistory.Redo(ctx)
		if err != nil {
			log.Fatalf("redo failed: %v", err)
		} else if !done {
			break
		}
	}

	// Marshal output
	entriesJson, err := json.Marshal(editedBoard.Entries())
	if err != nil {
		log.Fatalf("an error occurred while building output json: %v", err)
	}

	if *outPathPtr == "" {
		fmt.Println(string(entriesJson))
	} else if err := os.WriteFile(*outPathPtr, entriesJson, 0666); err != nil {
		log.Fatalf("an error occurred while writing to the output file: %v", err)
	}

	if *historyOutPtr != "" {
		blob, err := editHistory.Export()
		if err != nil {
			log.Fatalf("cannot export history: %v", err)
		}
		if err := os.WriteFile(*historyOutPtr, blob, 0666); err != nil {
			log.Fatalf("an error occurred while writing the history file: %v", err)
		}
	}
}

func readScript(file string) ([]scriptStep, error) {
	bytes, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}
	var steps []scriptStep
	if err := json.Unmarshal(bytes, &steps); err != nil {
		return nil, err
	}
	return steps, nil
}
