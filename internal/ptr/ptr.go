// Package ptr provides helpers for optional (pointer) fields.
package ptr

// To returns a pointer to v.
func To[T any](v T) *T {
	return &v
}

// Deref returns *p, or def when p is nil.
func Deref[T any](p *T, def T) T {
	if p != nil {
		return *p
	}
	return def
}

// ToString converts a pointer to a string-based type (such as a domain enum)
// to its string value. A nil pointer yields "".
func ToString[T ~string](p *T) string {
	if p == nil {
		return ""
	}
	return string(*p)
}

// NonEmpty returns a pointer to s, or nil when s is empty.
func NonEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
