// Package ptr builds pointers to values, for the optional fields of the
// catalog payloads.
package ptr

// To returns a pointer to a copy of v.
func To[T any](v T) *T {
	return &v
}
