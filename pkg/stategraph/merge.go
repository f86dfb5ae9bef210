package stategraph

import "slices"

// Optional carries a replace-style field in a partial update.
// The zero value means "leave the field untouched".
type Optional[T any] struct {
	value T
	set   bool
}

// Some returns an Optional that overwrites the field with v.
func Some[T any](v T) Optional[T] {
	return Optional[T]{value: v, set: true}
}

// Get returns the carried value and whether it was set.
func (o Optional[T]) Get() (T, bool) {
	return o.value, o.set
}

// IsSet reports whether the update carries a value.
func (o Optional[T]) IsSet() bool {
	return o.set
}

// Apply returns the carried value if set, otherwise current.
func (o Optional[T]) Apply(current T) T {
	if o.set {
		return o.value
	}
	return current
}

// AppendOnly appends items to an append-only field.
// The result never aliases the backing array of current, so earlier
// state values stay intact after a merge.
func AppendOnly[T any](current []T, items ...T) []T {
	if len(items) == 0 {
		return current
	}
	return append(slices.Clip(current), items...)
}
