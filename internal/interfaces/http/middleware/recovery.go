package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/dreschagin/buoywatch/pkg/logger"
)

// Recovery middleware перехватывает панику обработчика и отвечает 500.
// Паника одного запроса не должна ронять процесс целиком
func Recovery(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					log.Error("Panic recovered", fmt.Errorf("%v", rec),
						"path", r.URL.Path,
						"method", r.Method,
						"stack", string(debug.Stack()),
					)
					http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
