package httpx

import (
	"log"
	"net/http"
	"runtime/debug"
)

// RecoveryMiddleware turns a panic into a 500 response. The panic value is
// logged but never sent to the client.
func RecoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			log.Printf("panic recovered: request_id=%s error=%v stack=%s", RequestIDFrom(r), rec, debug.Stack())

			if sr, ok := w.(*statusRecorder); ok && sr.wroteHeader {
				return
			}
			InternalError(w, r)
		}()
		next.ServeHTTP(w, r)
	})
}
