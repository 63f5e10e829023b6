package middleware

import (
	stdhttp "net/http"
	"runtime/debug"

	"glossarysync/internal/platform/logger"
	phttp "glossarysync/internal/platform/net/http"

	chimw "github.com/go-chi/chi/v5/middleware"
)

// RecoverJSON converts panics into a JSON 500 and logs the stack with the request id
func RecoverJSON(next stdhttp.Handler) stdhttp.Handler {
	return stdhttp.HandlerFunc(func(w stdhttp.ResponseWriter, r *stdhttp.Request) {
		defer func() {
			v := recover()
			if v == nil {
				return
			}
			if v == stdhttp.ErrAbortHandler {
				panic(v)
			}
			reqID := chimw.GetReqID(r.Context())
			logger.Named("http").Error().
				Str("request_id", reqID).
				Interface("panic", v).
				Str("stack", string(debug.Stack())).
				Msg("panic recovered")

			if reqID != "" {
				w.Header().Set("X-Request-ID", reqID)
			}
			phttp.Fail(w, stdhttp.StatusInternalServerError, "InternalServerError", "panic recovered")
		}()
		next.ServeHTTP(w, r)
	})
}
