package util

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}

// StringPtrOrNil returns nil for an empty string and a pointer to s otherwise.
func StringPtrOrNil(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Contains checks if a slice contains a specific value
func Contains[T comparable](slice []T, val T) bool {
	for _, item := range slice {
		if item == val {
			return true
		}
	}
	return false
}
