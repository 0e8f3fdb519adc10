package board

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"github.com/dmarrero/scheditor/pkg/slotmask"
)

var (
	ErrEntryNotFound = errors.New("entry not found on the board")
	ErrSlotOccupied  = errors.New("destination slot is already occupied")
	ErrEntryFixed    = errors.New("entry is fixed to its slot")
	ErrStaleSlot     = errors.New("entry is not at the expected slot")
)

// Entry is one scheduled lesson: a (subject, professor, class, room)
// assignment occupying a single cell of the grid.
type Entry struct {
	ID        string        `json:"id" mapstructure:"id"`
	Subject   uint64        `json:"subject" mapstructure:"subject"`
	Professor uint64        `json:"professor" mapstructure:"professor"`
	Class     uint64        `json:"class" mapstructure:"class"`
	Room      uint64        `json:"room" mapstructure:"room"`
	Slot      slotmask.Slot `json:"slot" mapstructure:"slot"`
	Fixed     bool          `json:"fixed" mapstructure:"fixed"`
}

type cell struct {
	class uint64
	slot  slotmask.Slot
}

// Board is the editable in-memory timetable one session works on. At most
// one entry per (class, slot) cell. It implements history.Applier, so undo
// and redo effects land here.
type Board struct {
	grid     slotmask.Grid
	entries  map[string]*Entry
	occupied map[cell]string
}

func NewBoard(grid slotmask.Grid) *Board {
	return &Board{
		grid:     grid,
		entries:  make(map[string]*Entry),
		occupied: make(map[cell]string),
	}
}

func (b *Board) Grid() slotmask.Grid {
	return b.grid
}

func (b *Board) AddEntry(entry Entry) error {
	if entry.ID == "" {
		return errors.New("entry id must not be empty")
	}
	if _, exists := b.entries[entry.ID]; exists {
		return fmt.Errorf("duplicate entry id: %v", entry.ID)
	}
	if !b.grid.Contains(entry.Slot) {
		return fmt.Errorf("%w: %v", slotmask.ErrInvalidSlot, entry.Slot)
	}
	key := cell{class: entry.Class, slot: entry.Slot}
	if holder, taken := b.occupied[key]; taken {
		return fmt.Errorf("%w: %v held by %v", ErrSlotOccupied, entry.Slot, holder)
	}
	b.entries[entry.ID] = &entry
	b.occupied[key] = entry.ID
	return nil
}

func (b *Board) Entry(id string) (Entry, bool) {
	entry, ok := b.entries[id]
	if !ok {
		return Entry{}, false
	}
	return *entry, true
}

// Entries returns all entries sorted by day, period and class.
func (b *Board) Entries() []Entry {
	entries := make([]Entry, 0, len(b.entries))
	for _, entry := range b.entries {
		entries = append(entries, *entry)
	}
	slices.SortFunc(entries, func(a, b Entry) int {
		if a.Slot.Day != b.Slot.Day {
			return a.Slot.Day - b.Slot.Day
		}
		if a.Slot.Period != b.Slot.Period {
			return a.Slot.Period - b.Slot.Period
		}
		return int(a.Class) - int(b.Class)
	})
	return entries
}

func (b *Board) Len() int {
	return len(b.entries)
}

// MoveEntry relocates an entry from one cell to another. The from slot must
// match the entry's current slot so a stale effect cannot silently land in
// the wrong place.
func (b *Board) MoveEntry(ctx context.Context, entryID string, from, to slotmask.Slot) error {
	entry, ok := b.entries[entryID]
	if !ok {
		return fmt.Errorf("%w: %v", ErrEntryNotFound, entryID)
	}
	if entry.Fixed {
		return fmt.Errorf("%w: %v", ErrEntryFixed, entryID)
	}
	if entry.Slot != from {
		return fmt.Errorf("%w: %v is at %v, not %v", ErrStaleSlot, entryID, entry.Slot, from)
	}
	// A move onto the entry's own cell is a no-op, not a collision with itself
	if to == from {
		return nil
	}
	if !b.grid.Contains(to) {
		return fmt.Errorf("%w: %v", slotmask.ErrInvalidSlot, to)
	}
	destination := cell{class: entry.Class, slot: to}
	if holder, taken := b.occupied[destination]; taken {
		return fmt.Errorf("%w: %v held by %v", ErrSlotOccupied, to, holder)
	}
	delete(b.occupied, cell{class: entry.Class, slot: from})
	b.occupied[destination] = entryID
	entry.Slot = to
	return nil
}

// SwapEntries exchanges the slots of two entries.
func (b *Board) SwapEntries(ctx context.Context, firstID, secondID string) error {
	first, ok := b.entries[firstID]
	if !ok {
		return fmt.Errorf("%w: %v", ErrEntryNotFound, firstID)
	}
	second, ok := b.entries[secondID]
	if !ok {
		return fmt.Errorf("%w: %v", ErrEntryNotFound, secondID)
	}
	if first.Fixed || second.Fixed {
		return fmt.Errorf("%w: %v or %v", ErrEntryFixed, firstID, secondID)
	}

	delete(b.occupied, cell{class: first.Class, slot: first.Slot})
	delete(b.occupied, cell{class: second.Class, slot: second.Slot})

	// Cross-class swaps may land on a cell a third entry holds
	firstDest := cell{class: first.Class, slot: second.Slot}
	secondDest := cell{class: second.Class, slot: first.Slot}
	if holder, taken := b.occupied[firstDest]; taken {
		b.occupied[cell{class: first.Class, slot: first.Slot}] = firstID
		b.occupied[cell{class: second.Class, slot: second.Slot}] = secondID
		return fmt.Errorf("%w: %v held by %v", ErrSlotOccupied, second.Slot, holder)
	}
	if holder, taken := b.occupied[secondDest]; taken {
		b.occupied[cell{class: first.Class, slot: first.Slot}] = firstID
		b.occupied[cell{class: second.Class, slot: second.Slot}] = secondID
		return fmt.Errorf("%w: %v held by %v", ErrSlotOccupied, first.Slot, holder)
	}

	first.Slot, second.Slot = second.Slot, first.Slot
	b.occupied[firstDest] = firstID
	b.occupied[secondDest] = secondID
	return nil
}

// SetEntryFixed pins or releases an entry.
func (b *Board) SetEntryFixed(ctx context.Context, entryID string, fixed bool) error {
	entry, ok := b.entries[entryID]
	if !ok {
		return fmt.Errorf("%w: %v", ErrEntryNotFound, entryID)
	}
	entry.Fixed = fixed
	return nil
}

// Snapshot serializes the whole board into an opaque blob that
// RestoreSnapshot accepts.
func (b *Board) Snapshot(ctx context.Context) (string, error) {
	blob, err := json.Marshal(b.Entries())
	if err != nil {
		return "", fmt.Errorf("cannot snapshot board: %w", err)
	}
	return string(blob), nil
}

// RestoreSnapshot replaces the board contents with a prior snapshot. The
// board is only swapped once the whole snapshot re-validated cleanly.
func (b *Board) RestoreSnapshot(ctx context.Context, snapshot string) error {
	var entries []Entry
	if err := json.Unmarshal([]byte(snapshot), &entries); err != nil {
		return fmt.Errorf("cannot parse board snapshot: %w", err)
	}
	restored := NewBoard(b.grid)
	for _, entry := range entries {
		if err := restored.AddEntry(entry); err != nil {
			return fmt.Errorf("cannot restore board snapshot: %w", err)
		}
	}
	b.entries = restored.entries
	b.occupied = restored.occupied
	return nil
}
