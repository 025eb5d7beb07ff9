package ir

// Extract returns the sub-value of doc found by walking address through
// nested mappings.
//
// An empty address returns doc unchanged. A missing key, or an
// intermediate value that is not a mapping, fails with KEY_NOT_FOUND
// naming the address component that could not be found.
func Extract(doc Value, address []string) (Value, error) {
	current := OrNull(doc)
	for _, key := range address {
		m, ok := current.(Mapping)
		if !ok {
			return nil, NewKeyNotFoundError(key)
		}
		next, ok := m[key]
		if !ok {
			return nil, NewKeyNotFoundError(key)
		}
		current = OrNull(next)
	}
	return current, nil
}
