package history

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

const DefaultMaxSize = 50

// ErrBusy is returned when a push or edit arrives while an undo/redo is
// still applying its effect.
var ErrBusy = errors.New("an undo or redo is already in flight")

// Record is one entry of the history stack.
type Record struct {
	ID          string
	Description string
	CreatedAt   time.Time
	Reversible  bool
	Op          Operation
}

// History is a bounded linear undo/redo stack of schedule edits. Records at
// indices <= cursor are the undoable prefix, records past the cursor are the
// redoable tail; pushing after an undo discards that tail, and capacity is
// enforced by evicting from the oldest end.
//
// A History belongs to a single editing session and is not safe for
// concurrent use: the executing flag only guards against reentrancy while an
// effect is being applied, it is not a lock.
type History struct {
	stack     []Record
	cursor    int
	maxSize   int
	executing bool
	applier   Applier
	logger    *zap.Logger
	onChange  []func()
}

// NewHistory creates an empty history applying effects through applier.
// maxSize <= 0 means DefaultMaxSize; a nil logger disables logging.
func NewHistory(applier Applier, maxSize int, logger *zap.Logger) *History {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &History{
		stack:   make([]Record, 0, maxSize),
		cursor:  -1,
		maxSize: maxSize,
		applier: applier,
		logger:  logger,
	}
}

// OnChange registers a callback invoked after every stack or cursor change.
func (h *History) OnChange(fn func()) {
	h.onChange = append(h.onChange, fn)
}

func (h *History) notify() {
	for _, fn := range h.onChange {
		fn()
	}
}

// Push records an already-applied operation and returns its record id. Any
// redo tail is discarded, then the oldest records are evicted until the
// stack fits maxSize again. Pushing while an undo/redo is in flight is
// rejected with ErrBusy.
func (h *History) Push(op Operation, description string, reversible bool) (string, error) {
	if h.executing {
		return "", ErrBusy
	}
	if h.cursor < len(h.stack)-1 {
		h.stack = h.stack[:h.cursor+1]
	}
	record := Record{
		ID:          uuid.NewString(),
		Description: description,
		CreatedAt:   time.Now(),
		Reversible:  reversible,
		Op:          op,
	}
	h.stack = append(h.stack, record)
	h.cursor = len(h.stack) - 1
	if evicted := len(h.stack) - h.maxSize; evicted > 0 {
		h.stack = h.stack[evicted:]
		h.cursor -= evicted
	}
	h.notify()
	return record.ID, nil
}

// Do applies the operation's forward effect and, on success, records it.
func (h *History) Do(ctx context.Context, op Operation, description string) (string, error) {
	if h.executing {
		return "", ErrBusy
	}
	err := func() error {
		h.executing = true
		defer func() { h.executing = false }()
		return op.apply(ctx, h.applier)
	}()
	if err != nil {
		h.logger.Warn("operation failed to apply",
			zap.String("kind", string(op.Kind())),
			zap.String("description", description),
			zap.Error(err))
		return "", err
	}
	return h.Push(op, description, true)
}

func (h *History) CanUndo() bool {
	return h.cursor >= 0 && !h.executing
}

func (h *History) CanRedo() bool {
	return h.cursor < len(h.stack)-1 && !h.executing
}

// Undo reverts the record at the cursor. It returns (false, nil) when there
// is nothing to undo or the record is not reversible, and (false, err) when
// the applier failed; the cursor only moves on success. The executing guard
// is always cleared, whatever the applier does.
func (h *History) Undo(ctx context.Context) (bool, error) {
	if !h.CanUndo() {
		return false, nil
	}
	record := h.stack[h.cursor]
	if !record.Reversible {
		return false, nil
	}

	h.executing = true
	defer func() { h.executing = false }()

	if err := record.Op.revert(ctx, h.applier); err != nil {
		h.logger.Warn("undo failed",
			zap.String("record", record.ID),
			zap.String("description", record.Description),
			zap.Error(err))
		return false, err
	}
	h.cursor--
	h.notify()
	return true, nil
}

// Redo replays the record just past the cursor. Same contract as Undo.
func (h *History) Redo(ctx context.Context) (bool, error) {
	if !h.CanRedo() {
		return false, nil
	}
	record := h.stack[h.cursor+1]

	h.executing = true
	defer func() { h.executing = false }()

	if err := record.Op.apply(ctx, h.applier); err != nil {
		h.logger.Warn("redo failed",
			zap.String("record", record.ID),
			zap.String("description", record.Description),
			zap.Error(err))
		return false, err
	}
	h.cursor++
	h.notify()
	return true, nil
}

// Clear empties the stack.
func (h *History) Clear() {
	h.stack = h.stack[:0]
	h.cursor = -1
	h.notify()
}

func (h *History) Len() int {
	return len(h.stack)
}

func (h *History) Cursor() int {
	return h.cursor
}

// UndoableDescriptions lists the undoable prefix, most recent first.
func (h *History) UndoableDescriptions() []string {
	undoable := make([]Record, 0, h.cursor+1)
	for i := h.cursor; i >= 0; i-- {
		undoable = append(undoable, h.stack[i])
	}
	return lo.Map(undoable, func(record Record, _ int) string { return record.Description })
}

// RedoableDescriptions lists the redoable tail, next redo first.
func (h *History) RedoableDescriptions() []string {
	return lo.Map(h.stack[h.cursor+1:], func(record Record, _ int) string { return record.Description })
}
