package workflow

// Reducer merges a current field value with an update.
type Reducer[T any] func(current, update T) T

// LastValueReducer keeps the update.
func LastValueReducer[T any]() Reducer[T] {
	return func(_, update T) T {
		return update
	}
}

// AppendReducer concatenates slices into a fresh backing array, so the result
// never aliases current.
func AppendReducer[T any]() Reducer[[]T] {
	return func(current, update []T) []T {
		result := make([]T, 0, len(current)+len(update))
		result = append(result, current...)
		return append(result, update...)
	}
}

// KeepFirstReducer keeps current once it is non-zero according to isSet.
func KeepFirstReducer[T any](isSet func(T) bool) Reducer[T] {
	return func(current, update T) T {
		if isSet(current) {
			return current
		}
		return update
	}
}
