package util

// Deref returns the value p points to, or the zero value of T when p is
// nil. Optional API response fields arrive as pointers; Deref reads them
// without a nil check at every call site.
func Deref[T any](p *T) T {
	if p == nil {
		var zero T
		return zero
	}
	return *p
}
