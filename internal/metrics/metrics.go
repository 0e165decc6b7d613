// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package metrics collects and exposes Prometheus metrics for the blog.
package metrics

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/olegiv/oblog/internal/cache"
)

const namespace = "oblog"

// Login results.
const (
	LoginSuccess = "success"
	LoginFailure = "failure"
	LoginLocked  = "locked"
)

// Recorder is the set of domain events the handlers report.
type Recorder interface {
	RecordLogin(kind, result string)
	RecordComment(reply bool)
	RecordPublication(published bool)
}

// Nop is a Recorder that discards everything.
type Nop struct{}

func (Nop) RecordLogin(string, string) {}
func (Nop) RecordComment(bool)         {}
func (Nop) RecordPublication(bool)     {}

// Collector is the Prometheus-backed Recorder plus HTTP request metrics.
type Collector struct {
	requests     *prometheus.CounterVec
	latency      *prometheus.HistogramVec
	logins       *prometheus.CounterVec
	comments     *prometheus.CounterVec
	publications *prometheus.CounterVec
	reg          prometheus.Registerer
}

// NewCollector creates a Collector and registers its metrics with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route pattern and status code.",
		}, []string{"method", "route", "status"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and route pattern.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "logins_total",
			Help:      "Login attempts by principal kind and result.",
		}, []string{"kind", "result"}),
		comments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "comments_created_total",
			Help:      "Comments created, split into top-level comments and replies.",
		}, []string{"type"}),
		publications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "post_publications_total",
			Help:      "Publish and unpublish transitions.",
		}, []string{"action"}),
		reg: reg,
	}

	reg.MustRegister(
		c.requests,
		c.latency,
		c.logins,
		c.comments,
		c.publications,
	)

	return c
}

// RecordLogin counts a login attempt. kind is "user", "admin" or "unknown".
func (c *Collector) RecordLogin(kind, result string) {
	c.logins.WithLabelValues(kind, result).Inc()
}

// RecordComment counts a created comment.
func (c *Collector) RecordComment(reply bool) {
	label := "comment"
	if reply {
		label = "reply"
	}
	c.comments.WithLabelValues(label).Inc()
}

// RecordPublication counts a publish or unpublish.
func (c *Collector) RecordPublication(published bool) {
	action := "unpublish"
	if published {
		action = "publish"
	}
	c.publications.WithLabelValues(action).Inc()
}

// RegisterCacheStats exposes the listing cache counters as gauges read at
// scrape time. Backends without statistics are skipped.
func (c *Collector) RegisterCacheStats(backend string, cc cache.Cache) {
	sp, ok := cc.(cache.StatsProvider)
	if !ok {
		return
	}

	labels := prometheus.Labels{"backend": backend}
	gauge := func(name, help string, value func(cache.Stats) float64) prometheus.Collector {
		return prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace:   namespace,
			Subsystem:   "cache",
			Name:        name,
			Help:        help,
			ConstLabels: labels,
		}, func() float64 { return value(sp.Stats()) })
	}

	c.reg.MustRegister(
		gauge("hits", "Listing cache hits.", func(s cache.Stats) float64 { return float64(s.Hits) }),
		gauge("misses", "Listing cache misses.", func(s cache.Stats) float64 { return float64(s.Misses) }),
		gauge("hit_rate_percent", "Listing cache hit rate.", func(s cache.Stats) float64 { return s.HitRate() }),
	)
}

// Middleware records request count and latency per chi route pattern.
func (c *Collector) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		route := routePattern(r)
		elapsed := time.Since(start)

		c.requests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		c.latency.WithLabelValues(r.Method, route).Observe(elapsed.Seconds())

		slog.DebugContext(r.Context(), "request served",
			"method", r.Method,
			"route", route,
			"status", status,
			"bytes", ww.BytesWritten(),
			"duration", elapsed,
		)
	})
}

// routePattern returns the matched chi pattern so ids do not explode label
// cardinality. Unmatched requests share one label.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unmatched"
}

// Handler returns the HTTP handler for Prometheus scrapes.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
