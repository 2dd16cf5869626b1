// Package metrics — сбор и публикация Prometheus-метрик сервера.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector собирает метрики HTTP-запросов и генераций изображений.
type Collector struct {
	requests    *prometheus.CounterVec
	latency     *prometheus.HistogramVec
	generations *prometheus.CounterVec
}

// NewCollector регистрирует метрики в переданном реестре.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "wardrobe_http_requests_total",
			Help: "Число HTTP-запросов по методу, маршруту и статусу",
		}, []string{"method", "route", "status"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "wardrobe_http_request_duration_seconds",
			Help:    "Длительность HTTP-запросов в секундах",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		generations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "wardrobe_image_generations_total",
			Help: "Число запросов генерации изображений по статусу результата",
		}, []string{"status"}),
	}

	reg.MustRegister(c.requests, c.latency, c.generations)
	return c
}

// RecordRequest учитывает завершённый HTTP-запрос.
func (c *Collector) RecordRequest(method, route string, status int, duration time.Duration) {
	c.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.latency.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordGeneration учитывает результат генерации изображения.
func (c *Collector) RecordGeneration(status string) {
	c.generations.WithLabelValues(status).Inc()
}

// Handler возвращает HTTP-хендлер для Prometheus-скрейпа.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
