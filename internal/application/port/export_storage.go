package port

import "context"

// ExportStorage — объектное хранилище для файлов экспорта
type ExportStorage interface {
	// PutObject загружает объект и возвращает URL для скачивания
	PutObject(ctx context.Context, key, contentType string, body []byte) (string, error)
}
