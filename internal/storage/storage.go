// Package storage persists opaque JSON documents under namespaced keys,
// one document per key. It stands in for browser local storage.
package storage

import (
	"context"
	"errors"
	"fmt"
)

var ErrNotFound = errors.New("storage: key not found")

type Storage interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Key joins a deployment namespace and a collection name, e.g. "cardify-tickets".
func Key(namespace, name string) string {
	if namespace == "" {
		return name
	}
	return fmt.Sprintf("%s-%s", namespace, name)
}
