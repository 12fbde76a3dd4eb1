package port

import "context"

// Cache — кеш справочных данных сессии (параметры, пороги, выровненные серии)
type Cache interface {
	// Get читает значение по ключу в dest; cache miss — ошибка
	Get(ctx context.Context, key string, dest interface{}) error

	// Set сохраняет значение с TTL по умолчанию
	Set(ctx context.Context, key string, value interface{}) error

	// Delete удаляет значение
	Delete(ctx context.Context, key string) error
}
