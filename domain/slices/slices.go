// Package slices holds generic slice helpers shared by the batching code.
package slices

// Split splits s into consecutive chunks of at most size elements.
// The chunks share the backing array of s. The last chunk holds the remainder.
func Split[T any](s []T, size int) [][]T {
	var result [][]T

	for l := 0; l < len(s); l += size {
		h := min(l+size, len(s))
		result = append(result, s[l:h:h])
	}

	return result
}

// Unique returns the elements of s without repeats, in order of first occurrence.
// s is not modified.
func Unique[T comparable](s []T) []T {
	if len(s) == 0 {
		return nil
	}

	seen := make(map[T]struct{}, len(s))
	result := make([]T, 0, len(s))
	for _, v := range s {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		result = append(result, v)
	}

	return result
}
