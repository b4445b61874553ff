// Package listedit provides ordered-collection editing for résumé sections:
// append, remove, positional move and drag/keyboard drop resolution.
//
// All operations are pure: they return a new slice and never mutate the input.
// Results are always compact (indexable 0..len-1) and identifiers are never
// reassigned.
package listedit

import "github.com/google/uuid"

// Entry is an item with a stable identifier used as its sequence key.
type Entry interface {
	EntryID() string
}

// IDFunc generates entry identifiers.
type IDFunc func() string

// NewID is the default identifier generator. UUIDs are never reused.
func NewID() string {
	return uuid.NewString()
}

// Append returns items with a new entry at the end.
// newEntry receives a freshly generated identifier and builds the entry
// with empty default fields.
func Append[T any](items []T, gen IDFunc, newEntry func(id string) T) []T {
	if gen == nil {
		gen = NewID
	}
	out := make([]T, 0, len(items)+1)
	out = append(out, items...)
	return append(out, newEntry(gen()))
}

// Remove returns items without the entry at index. Later entries shift left.
func Remove[T any](items []T, index int) ([]T, error) {
	if err := checkIndex("remove", index, len(items)); err != nil {
		return nil, err
	}
	out := make([]T, 0, len(items)-1)
	out = append(out, items[:index]...)
	return append(out, items[index+1:]...), nil
}

// Move relocates the entry at from to position to, preserving the relative
// order of all other entries. from == to is a no-op.
func Move[T any](items []T, from, to int) ([]T, error) {
	if err := checkIndex("move", from, len(items)); err != nil {
		return nil, err
	}
	if err := checkIndex("move", to, len(items)); err != nil {
		return nil, err
	}
	out := make([]T, len(items))
	copy(out, items)
	if from == to {
		return out, nil
	}

	moved := out[from]
	if from < to {
		copy(out[from:to], out[from+1:to+1])
	} else {
		copy(out[to+1:from+1], out[to:from])
	}
	out[to] = moved
	return out, nil
}

// IndexOf returns the position of the entry with id, or -1.
func IndexOf[T Entry](items []T, id string) int {
	for i, item := range items {
		if item.EntryID() == id {
			return i
		}
	}
	return -1
}

// ResolveDrop maps a drag or keyboard drop onto a single Move.
// The drop is ignored (moved == false) when activeID equals overID or when
// either identifier is not in items.
func ResolveDrop[T Entry](items []T, activeID, overID string) (result []T, moved bool, err error) {
	if activeID == "" || overID == "" || activeID == overID {
		return items, false, nil
	}
	from := IndexOf(items, activeID)
	to := IndexOf(items, overID)
	if from < 0 || to < 0 {
		return items, false, nil
	}
	result, err = Move(items, from, to)
	if err != nil {
		return nil, false, err
	}
	return result, true, nil
}

func checkIndex(op string, index, length int) error {
	if index < 0 || index >= length {
		return &IndexError{Op: op, Index: index, Len: length}
	}
	return nil
}
