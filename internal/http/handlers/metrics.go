package handlers

import "net/http"

func (a *App) PrometheusMetrics(w http.ResponseWriter, r *http.Request) {
	a.Metrics.Handler().ServeHTTP(w, r)
}
