// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package metrics

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/oblog/internal/cache"
)

func TestCollector_DomainCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordLogin("admin", LoginSuccess)
	c.RecordLogin("unknown", LoginFailure)
	c.RecordLogin("unknown", LoginFailure)
	c.RecordComment(false)
	c.RecordComment(true)
	c.RecordComment(true)
	c.RecordPublication(true)

	body := scrape(t, reg)
	assert.Contains(t, body, `oblog_logins_total{kind="admin",result="success"} 1`)
	assert.Contains(t, body, `oblog_logins_total{kind="unknown",result="failure"} 2`)
	assert.Contains(t, body, `oblog_comments_created_total{type="comment"} 1`)
	assert.Contains(t, body, `oblog_comments_created_total{type="reply"} 2`)
	assert.Contains(t, body, `oblog_post_publications_total{action="publish"} 1`)
	assert.NotContains(t, body, `action="unpublish"`)
}

func TestCollector_MiddlewareUsesRoutePattern(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	r := chi.NewRouter()
	r.Use(c.Middleware)
	r.Get("/blog/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	for _, path := range []string{"/blog/1", "/blog/2", "/nope"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	body := scrape(t, reg)
	assert.Contains(t, body, `oblog_http_requests_total{method="GET",route="/blog/{id}",status="200"} 2`)
	assert.Contains(t, body, `oblog_http_requests_total{method="GET",route="unmatched",status="404"} 1`)
	assert.NotContains(t, body, `route="/blog/1"`)
}

func TestCollector_CacheStats(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	mc := cache.NewMemoryCache(cache.MemoryCacheOptions{DefaultTTL: time.Minute})
	defer func() { _ = mc.Close() }()
	c.RegisterCacheStats("memory", mc)

	ctx := context.Background()
	_, _ = mc.Get(ctx, "posts:published")
	require.NoError(t, mc.Set(ctx, "posts:published", []byte("[]"), 0))
	_, _ = mc.Get(ctx, "posts:published")

	body := scrape(t, reg)
	assert.Contains(t, body, `oblog_cache_hits{backend="memory"} 1`)
	assert.Contains(t, body, `oblog_cache_misses{backend="memory"} 1`)
	assert.Contains(t, body, `oblog_cache_hit_rate_percent{backend="memory"} 50`)
}

func TestNop(t *testing.T) {
	var r Recorder = Nop{}
	r.RecordLogin("user", LoginSuccess)
	r.RecordComment(true)
	r.RecordPublication(false)
}

func TestHandler_ServesMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)
	c.RecordLogin("user", LoginSuccess)

	body := scrape(t, reg)
	assert.True(t, strings.Contains(body, "oblog_logins_total"), "response should contain oblog_logins_total")
	assert.True(t, strings.HasPrefix(body, "# HELP"), "response should use the text exposition format")
}

func scrape(t *testing.T, reg *prometheus.Registry) string {
	t.Helper()
	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Result().Body)
	require.NoError(t, err)
	return string(body)
}
