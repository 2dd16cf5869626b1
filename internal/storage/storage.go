package storage

import (
	"context"
	"time"
)

// ObjectStorage — контракт объектного хранилища для изображений и метаданных.
// Единственной персистентной ссылкой на объект является его URL; Delete
// принимает URL и извлекает из него ключ обратно.
type ObjectStorage interface {
	Put(ctx context.Context, data []byte, key, contentType string) (string, error)
	Delete(ctx context.Context, url string) error
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
	IsConfigured() bool
}
