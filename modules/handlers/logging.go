package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"gogofolio/modules/logger"
)

// RequestLogger logs one line per request once it has been served.
func RequestLogger(log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			defer func() {
				status := ww.Status()
				if status == 0 {
					status = http.StatusOK
				}
				fields := []logger.Field{
					logger.String("method", r.Method),
					logger.String("path", r.URL.Path),
					logger.Int("status", status),
					logger.Int("bytes", ww.BytesWritten()),
					logger.Duration("duration", time.Since(start)),
					logger.String("request_id", middleware.GetReqID(r.Context())),
				}
				if status >= http.StatusInternalServerError {
					log.Error("request", fields...)
				} else {
					log.Info("request", fields...)
				}
			}()

			next.ServeHTTP(ww, r)
		})
	}
}
