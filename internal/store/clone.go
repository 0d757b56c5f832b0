package store

import (
	"encoding/json"
	"log"
)

// clone deep-copies a record through its JSON form, which is also its
// persisted form, so callers never alias slices held by the cache.
func clone[T any](v T) T {
	raw, err := json.Marshal(v)
	if err != nil {
		log.Printf("store: clone encode failed: %v", err)
		return v
	}
	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		log.Printf("store: clone decode failed: %v", err)
		return v
	}
	return out
}

func cloneAll[T any](records []T) []T {
	out := make([]T, len(records))
	for i := range records {
		out[i] = clone(records[i])
	}
	return out
}
