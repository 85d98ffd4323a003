package middleware

import (
	"net/http"
	"time"

	"greencare-be/internal/metrics"
)

type RequestObserver interface {
	ObserveRequest(method, route string, status int, d time.Duration)
}

func Metrics(obs RequestObserver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			timer := metrics.StartTimer()
			rec := newStatusRecorder(w)

			next.ServeHTTP(rec, r)

			obs.ObserveRequest(r.Method, routePattern(r), rec.status, timer.Duration())
		})
	}
}
