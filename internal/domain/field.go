package domain

type fieldOp uint8

const (
	fieldKeep fieldOp = iota
	fieldClear
	fieldSet
)

// FieldUpdate describes a change to an optional field: leave it as is,
// clear it, or set it to a new value. The zero value keeps the field.
type FieldUpdate[T any] struct {
	op    fieldOp
	value T
}

// Keep leaves the field unchanged.
func Keep[T any]() FieldUpdate[T] { return FieldUpdate[T]{op: fieldKeep} }

// Clear removes the field's value.
func Clear[T any]() FieldUpdate[T] { return FieldUpdate[T]{op: fieldClear} }

// Set replaces the field's value.
func Set[T any](v T) FieldUpdate[T] { return FieldUpdate[T]{op: fieldSet, value: v} }

func (f FieldUpdate[T]) IsKeep() bool  { return f.op == fieldKeep }
func (f FieldUpdate[T]) IsClear() bool { return f.op == fieldClear }

// Value returns the new value and true when the update sets one.
func (f FieldUpdate[T]) Value() (T, bool) {
	return f.value, f.op == fieldSet
}

// Apply resolves the update against the current value.
func (f FieldUpdate[T]) Apply(current *T) *T {
	switch f.op {
	case fieldClear:
		return nil
	case fieldSet:
		v := f.value
		return &v
	default:
		return clonePtr(current)
	}
}
