package delivery

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/Vovarama1992/go-utils/logger"
	"github.com/go-chi/chi/v5/middleware"
)

// Recoverer turns a handler panic into a 500 error envelope.
func Recoverer(log *logger.ZapLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if p := recover(); p != nil {
					if p == http.ErrAbortHandler {
						panic(p)
					}
					WriteError(w, log, &HTTPError{
						Status:  http.StatusInternalServerError,
						Name:    "InternalServerError",
						Message: "Internal server error",
						Err:     fmt.Errorf("panic: %v\n%s", p, debug.Stack()),
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// RequestLogger logs every response with a level derived from its status.
func RequestLogger(log *logger.ZapLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}

			level := "info"
			switch {
			case status >= http.StatusInternalServerError:
				level = "error"
			case status >= http.StatusBadRequest:
				level = "warn"
			}

			log.Log(logger.LogEntry{
				Level:   level,
				Message: "response",
				Fields: map[string]any{
					"requestID": middleware.GetReqID(r.Context()),
					"method":    r.Method,
					"uri":       r.RequestURI,
					"status":    status,
					"bytes":     ww.BytesWritten(),
					"duration":  time.Since(start).String(),
				},
			})
		})
	}
}
