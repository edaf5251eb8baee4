package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

const recoveryPage = `<!DOCTYPE html>
<html>
<head><title>Something went wrong</title></head>
<body>
<main style="max-width:32rem;margin:4rem auto;font-family:sans-serif">
<h1>Something went wrong</h1>
<p>An unexpected error occurred while rendering this page.</p>
<p><a href="javascript:location.reload()">Retry</a> &middot; <a href="/">Back to start</a></p>
</main>
</body>
</html>`

// Recovery is the outermost crash boundary: any panic below it is logged and
// turned into a retryable error page instead of tearing down the connection.
func Recovery(logger *logrus.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.WithFields(logrus.Fields{
						"panic": rec,
						"path":  r.URL.Path,
						"stack": string(debug.Stack()),
					}).Error("recovered from panic in handler")
					w.Header().Set("Content-Type", "text/html; charset=utf-8")
					w.WriteHeader(http.StatusInternalServerError)
					_, _ = w.Write([]byte(recoveryPage))
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
