package history

import (
	"context"
	"fmt"

	"github.com/dmarrero/scheditor/pkg/slotmask"
)

// Kind is the wire tag identifying an operation variant in exported blobs.
type Kind string

const (
	KindMove       Kind = "move"
	KindSwap       Kind = "swap"
	KindSetFixed   Kind = "set_fixed"
	KindUnsetFixed Kind = "unset_fixed"
	KindGenerate   Kind = "generate"
	KindBatch      Kind = "batch"
)

// Applier performs the actual schedule mutations an operation describes.
// The board is the in-process implementation; an implementation may just as
// well persist each effect remotely, hence the contexts.
type Applier interface {
	MoveEntry(ctx context.Context, entryID string, from, to slotmask.Slot) error
	SwapEntries(ctx context.Context, firstID, secondID string) error
	SetEntryFixed(ctx context.Context, entryID string, fixed bool) error
	RestoreSnapshot(ctx context.Context, snapshot string) error
}

// Operation is a single reversible schedule edit. Each variant carries the
// data needed to invert itself, and the set of variants is closed: dispatch
// happens through the interface, so there is no "unknown operation" path at
// runtime (only DecodeOperation can meet an unknown tag, in imported blobs).
type Operation interface {
	Kind() Kind
	apply(ctx context.Context, a Applier) error
	revert(ctx context.Context, a Applier) error
}

// Move relocates one entry between two cells of the grid.
type Move struct {
	EntryID string        `json:"entryId" mapstructure:"entryId"`
	From    slotmask.Slot `json:"from" mapstructure:"from"`
	To      slotmask.Slot `json:"to" mapstructure:"to"`
}

func (op Move) Kind() Kind { return KindMove }

func (op Move) apply(ctx context.Context, a Applier) error {
	return a.MoveEntry(ctx, op.EntryID, op.From, op.To)
}

func (op Move) revert(ctx context.Context, a Applier) error {
	return a.MoveEntry(ctx, op.EntryID, op.To, op.From)
}

// Swap exchanges the cells of two entries. It is its own inverse; the slots
// are carried for presentation only.
type Swap struct {
	FirstID    string        `json:"firstId" mapstructure:"firstId"`
	SecondID   string        `json:"secondId" mapstructure:"secondId"`
	FirstSlot  slotmask.Slot `json:"firstSlot" mapstructure:"firstSlot"`
	SecondSlot slotmask.Slot `json:"secondSlot" mapstructure:"secondSlot"`
}

func (op Swap) Kind() Kind { return KindSwap }

func (op Swap) apply(ctx context.Context, a Applier) error {
	return a.SwapEntries(ctx, op.FirstID, op.SecondID)
}

func (op Swap) revert(ctx context.Context, a Applier) error {
	return a.SwapEntries(ctx, op.FirstID, op.SecondID)
}

// SetFixed pins an entry to its current cell.
type SetFixed struct {
	EntryID string `json:"entryId" mapstructure:"entryId"`
}

func (op SetFixed) Kind() Kind { return KindSetFixed }

func (op SetFixed) apply(ctx context.Context, a Applier) error {
	return a.SetEntryFixed(ctx, op.EntryID, true)
}

func (op SetFixed) revert(ctx context.Context, a Applier) error {
	return a.SetEntryFixed(ctx, op.EntryID, false)
}

// UnsetFixed releases a pinned entry.
type UnsetFixed struct {
	EntryID string `json:"entryId" mapstructure:"entryId"`
}

func (op UnsetFixed) Kind() Kind { return KindUnsetFixed }

func (op UnsetFixed) apply(ctx context.Context, a Applier) error {
	return a.SetEntryFixed(ctx, op.EntryID, false)
}

func (op UnsetFixed) revert(ctx context.Context, a Applier) error {
	return a.SetEntryFixed(ctx, op.EntryID, true)
}

// Generate replaces the whole board with a freshly generated timetable. Both
// the prior and the new board snapshots are carried as opaque blobs so the
// operation can be replayed in either direction.
type Generate struct {
	Before string `json:"before" mapstructure:"before"`
	After  string `json:"after" mapstructure:"after"`
}

func (op Generate) Kind() Kind { return KindGenerate }

func (op Generate) apply(ctx context.Context, a Applier) error {
	return a.RestoreSnapshot(ctx, op.After)
}

func (op Generate) revert(ctx context.Context, a Applier) error {
	return a.RestoreSnapshot(ctx, op.Before)
}

// Batch bundles an ordered list of child operations that are applied as a
// unit: forward in order, inverted in reverse order.
type Batch struct {
	Ops []Operation
}

func (op Batch) Kind() Kind { return KindBatch }

func (op Batch) apply(ctx context.Context, a Applier) error {
	for i, child := range op.Ops {
		if err := child.apply(ctx, a); err != nil {
			return &BatchError{Applied: i, Err: err}
		}
	}
	return nil
}

func (op Batch) revert(ctx context.Context, a Applier) error {
	for i := len(op.Ops) - 1; i >= 0; i-- {
		if err := op.Ops[i].revert(ctx, a); err != nil {
			return &BatchError{Applied: len(op.Ops) - 1 - i, Err: err}
		}
	}
	return nil
}

// BatchError reports a batch that failed mid-sequence: Applied children had
// already taken effect when the failure hit. There is no automatic rollback
// of the applied prefix; the caller decides how to recover.
type BatchError struct {
	Applied int
	Err     error
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("batch failed after %v applied children: %v", e.Applied, e.Err)
}

func (e *BatchError) Unwrap() error {
	return e.Err
}
