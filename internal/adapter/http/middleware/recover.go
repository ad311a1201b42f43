package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	wrap "github.com/Temutjin2k/auth-service/pkg/logger/wrapper"
)

func (m *Middleware) Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if p := recover(); p != nil {
				ctx := wrap.WithAction(r.Context(), "panic_recovered")
				m.log.Error(ctx, "panic while serving request", fmt.Errorf("%v", p), "stack", string(debug.Stack()))

				w.Header().Set("Connection", "close")
				errorResponse(w, http.StatusInternalServerError, "the server encountered a problem and could not process your request")
			}
		}()

		next.ServeHTTP(w, r)
	})
}
