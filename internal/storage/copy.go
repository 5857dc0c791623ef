package storage

import "fmt"

// Copy writes every key of src into dst and returns the number of keys copied
func Copy(dst, src Backend) (int, error) {
	keys, err := src.Keys()
	if err != nil {
		return 0, err
	}

	copied := 0
	for _, key := range keys {
		value, ok, err := src.Get(key)
		if err != nil {
			return copied, err
		}
		if !ok {
			continue
		}
		if err := dst.Set(key, value); err != nil {
			return copied, fmt.Errorf("failed to copy %s: %w", key, err)
		}
		copied++
	}
	return copied, nil
}
