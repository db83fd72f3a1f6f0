package utils

// Map applies a function to each element in the slice.
func Map[T, U any](elems []T, f func(T) U) []U {
	result := make([]U, len(elems))
	for i, v := range elems {
		result[i] = f(v)
	}
	return result
}

// Filter returns a new slice holding only the elements of elems that satisfy f().
func Filter[T any](elems []T, f func(T) bool) []T {
	var result []T
	for _, v := range elems {
		if f(v) {
			result = append(result, v)
		}
	}
	return result
}

// Contains reports whether element is present in slice.
func Contains[T comparable](slice []T, element T) bool {
	for _, v := range slice {
		if v == element {
			return true
		}
	}
	return false
}

// Chunk splits elems into consecutive slices of at most size elements.
func Chunk[T any](elems []T, size int) [][]T {
	if size <= 0 {
		size = 1
	}
	out := make([][]T, 0, (len(elems)+size-1)/size)
	for start := 0; start < len(elems); start += size {
		end := start + size
		if end > len(elems) {
			end = len(elems)
		}
		out = append(out, elems[start:end])
	}
	return out
}
