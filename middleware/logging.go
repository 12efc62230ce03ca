package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/Dosada05/party-bets/metrics"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// RequestLogger attaches a logger tagged with the request id to the context
// and writes one access line per request. It also records the request
// duration by route pattern when m is not nil.
func RequestLogger(log *zap.Logger, m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			reqLog := log.With(zap.String("request_id", chimw.GetReqID(r.Context())))
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r.WithContext(WithLogger(r.Context(), reqLog)))

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			elapsed := time.Since(start)
			route := routePattern(r)
			m.ObserveRequest(r.Method, route, strconv.Itoa(status), elapsed.Seconds())

			fields := []zap.Field{
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("route", route),
				zap.Int("status", status),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", elapsed),
			}
			if status >= http.StatusInternalServerError {
				reqLog.Error("request failed", fields...)
				return
			}
			reqLog.Info("request", fields...)
		})
	}
}

// routePattern keeps metric labels bounded: /entries/{entryID}, not /entries/7.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}
