package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/moimran/netdata/pkg/composables"
	"github.com/moimran/netdata/pkg/configuration"
	"github.com/moimran/netdata/pkg/metrics"
)

type statusCaptureWriter struct {
	http.ResponseWriter
	statusCode    int
	statusWritten bool
}

func (w *statusCaptureWriter) WriteHeader(code int) {
	if !w.statusWritten {
		w.statusCode = code
		w.statusWritten = true
		w.ResponseWriter.WriteHeader(code)
	}
}

// Status returns the HTTP status code.
func (w *statusCaptureWriter) Status() int {
	if w.statusCode == 0 {
		return http.StatusOK
	}
	return w.statusCode
}

func (w *statusCaptureWriter) Flush() {
	if flusher, ok := w.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

func getRealIP(r *http.Request, conf *configuration.Configuration) string {
	if ip := r.Header.Get(conf.RealIPHeader); ip != "" {
		return ip
	}
	return r.RemoteAddr
}

func getRequestID(r *http.Request, conf *configuration.Configuration) string {
	if id := r.Header.Get(conf.RequestIDHeader); id != "" {
		return id
	}
	return uuid.New().String()
}

// RequestParams stores request metadata and a request-scoped logrus entry in
// the context for downstream handlers.
func RequestParams(logger *logrus.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			conf := configuration.Use()
			requestID := getRequestID(r, conf)
			entry := logger.WithFields(logrus.Fields{
				"requestID": requestID,
				"path":      r.URL.Path,
				"method":    r.Method,
			})
			ctx := composables.WithLogger(r.Context(), entry)
			ctx = composables.WithParams(ctx, &composables.Params{
				IP:        getRealIP(r, conf),
				UserAgent: r.UserAgent(),
				RequestID: requestID,
				Request:   r,
				Writer:    w,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// LogRequests emits one log line per handled request with duration and
// status, and feeds the request counter.
func LogRequests() mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			cw := &statusCaptureWriter{ResponseWriter: w}
			next.ServeHTTP(cw, r)

			entry := composables.UseLogger(r.Context())
			entry.WithFields(logrus.Fields{
				"status":   cw.Status(),
				"duration": time.Since(start).String(),
			}).Info("handled request")
			metrics.HTTPRequestsTotal.WithLabelValues(
				r.Method, strconv.Itoa(cw.Status()),
			).Inc()
		})
	}
}
