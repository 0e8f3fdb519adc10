package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"
)

// ErrUnknownOperation is reported when an imported blob carries a type tag
// no variant matches. Import logs and skips such records; everywhere else
// the variant set is closed, so the tag cannot be wrong.
var ErrUnknownOperation = errors.New("unknown operation type")

// OperationBlob is the tagged wire form of a single operation.
type OperationBlob struct {
	Type Kind           `json:"type" mapstructure:"type"`
	Data map[string]any `json:"data,omitempty" mapstructure:"data"`
}

type recordBlob struct {
	ID          string    `json:"id"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	Reversible  bool      `json:"reversible"`
	OperationBlob
}

type historyBlob struct {
	HistoryStack []recordBlob `json:"historyStack"`
	CurrentIndex int          `json:"currentIndex"`
}

// EncodeOperation converts an operation into its tagged wire form.
func EncodeOperation(op Operation) (OperationBlob, error) {
	blob := OperationBlob{Type: op.Kind()}
	if batch, ok := op.(Batch); ok {
		children := make([]OperationBlob, 0, len(batch.Ops))
		for _, child := range batch.Ops {
			childBlob, err := EncodeOperation(child)
			if err != nil {
				return OperationBlob{}, err
			}
			children = append(children, childBlob)
		}
		blob.Data = map[string]any{"ops": children}
		return blob, nil
	}
	if err := mapstructure.Decode(op, &blob.Data); err != nil {
		return OperationBlob{}, fmt.Errorf("cannot encode %v operation: %w", op.Kind(), err)
	}
	return blob, nil
}

// DecodeOperation rebuilds an operation from its tagged wire form.
func DecodeOperation(blob OperationBlob) (Operation, error) {
	switch blob.Type {
	case KindMove:
		var op Move
		return op, decodeData(blob, &op)
	case KindSwap:
		var op Swap
		return op, decodeData(blob, &op)
	case KindSetFixed:
		var op SetFixed
		return op, decodeData(blob, &op)
	case KindUnsetFixed:
		var op UnsetFixed
		return op, decodeData(blob, &op)
	case KindGenerate:
		var op Generate
		return op, decodeData(blob, &op)
	case KindBatch:
		var wrapper struct {
			Ops []OperationBlob `mapstructure:"ops"`
		}
		if err := decodeData(blob, &wrapper); err != nil {
			return nil, err
		}
		batch := Batch{Ops: make([]Operation, 0, len(wrapper.Ops))}
		for _, childBlob := range wrapper.Ops {
			child, err := DecodeOperation(childBlob)
			if err != nil {
				return nil, err
			}
			batch.Ops = append(batch.Ops, child)
		}
		return batch, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownOperation, blob.Type)
	}
}

func decodeData(blob OperationBlob, out any) error {
	if err := mapstructure.Decode(blob.Data, out); err != nil {
		return fmt.Errorf("cannot decode %v operation: %w", blob.Type, err)
	}
	return nil
}

// Export serializes the full history state to an opaque JSON blob that
// Import round-trips losslessly.
func (h *History) Export() ([]byte, error) {
	blob := historyBlob{
		HistoryStack: make([]recordBlob, 0, len(h.stack)),
		CurrentIndex: h.cursor,
	}
	for _, record := range h.stack {
		opBlob, err := EncodeOperation(record.Op)
		if err != nil {
			return nil, err
		}
		blob.HistoryStack = append(blob.HistoryStack, recordBlob{
			ID:            record.ID,
			Description:   record.Description,
			CreatedAt:     record.CreatedAt,
			Reversible:    record.Reversible,
			OperationBlob: opBlob,
		})
	}
	return json.Marshal(blob)
}

// Import replaces the history state with a previously exported blob. Records
// whose operation type is not recognized are logged and skipped, shifting
// the cursor accordingly; the result is then trimmed to maxSize from the
// oldest end like any other overflow.
func (h *History) Import(data []byte) error {
	if h.executing {
		return ErrBusy
	}
	var blob historyBlob
	if err := json.Unmarshal(data, &blob); err != nil {
		return fmt.Errorf("cannot parse history blob: %w", err)
	}
	if blob.CurrentIndex < -1 || blob.CurrentIndex >= len(blob.HistoryStack) {
		return fmt.Errorf("history blob index out of range: %v with %v records",
			blob.CurrentIndex, len(blob.HistoryStack))
	}

	stack := make([]Record, 0, len(blob.HistoryStack))
	cursor := blob.CurrentIndex
	for i, rb := range blob.HistoryStack {
		op, err := DecodeOperation(rb.OperationBlob)
		if err != nil {
			if !errors.Is(err, ErrUnknownOperation) {
				return err
			}
			h.logger.Warn("skipping history record with unknown operation type",
				zap.String("record", rb.ID),
				zap.String("type", string(rb.Type)))
			if i <= blob.CurrentIndex {
				cursor--
			}
			continue
		}
		stack = append(stack, Record{
			ID:          rb.ID,
			Description: rb.Description,
			CreatedAt:   rb.CreatedAt,
			Reversible:  rb.Reversible,
			Op:          op,
		})
	}

	if evicted := len(stack) - h.maxSize; evicted > 0 {
		stack = stack[evicted:]
		cursor -= evicted
		if cursor < -1 {
			cursor = -1
		}
	}

	h.stack = stack
	h.cursor = cursor
	h.notify()
	return nil
}
