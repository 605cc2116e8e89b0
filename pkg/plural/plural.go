// Package plural picks the suffix for a count of things.
package plural

// Of returns suffix unless n is exactly one.
func Of(n int, suffix string) string {
	if n == 1 {
		return ""
	}
	return suffix
}

func Slice[S ~[]E, E any](s S, suffix string) string {
	return Of(len(s), suffix)
}
