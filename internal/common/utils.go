package common

// AnyNonEmpty returns true if any of the given strings is non-empty.
func AnyNonEmpty(vals ...string) bool {
	for _, v := range vals {
		if v != "" {
			return true
		}
	}
	return false
}
