package fn

// Map never returns nil: an empty input yields an empty slice, so list
// responses built with it serialize as [] rather than null.
func Map[T any, V any](items []T, selector func(T) V) []V {
	results := make([]V, 0, len(items))
	for _, item := range items {
		results = append(results, selector(item))
	}
	return results
}
