package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"financas/internal/address"
	"financas/internal/log"
	"financas/internal/services"
)

var errTemplatesUnavailable = errors.New("templates not loaded")

// pageView is the data behind the full page.
type pageView struct {
	Profile  profileView
	Address  addressView
	Finances financesView
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	html, err := s.render("index.html", pageView{Finances: financesView{}})
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Failed to render index", "error", err)
		InternalServerError("Página indisponível").Write(w)
		return
	}
	NewHTMXResponse().BodyHTML(html).Write(w)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":         "ok",
		"uptime_seconds": int64(time.Since(s.startedAt).Seconds()),
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	checks := map[string]string{}
	ready := true
	if s.templates == nil {
		checks["templates"] = errTemplatesUnavailable.Error()
		ready = false
	} else {
		checks["templates"] = "ok"
	}
	for _, c := range s.checks {
		if err := c.Check(ctx); err != nil {
			checks[c.Name] = err.Error()
			ready = false
			s.logger.WarnContext(r.Context(), "Readiness check failed", "check", c.Name, log.FieldError, err)
			continue
		}
		checks[c.Name] = "ok"
	}

	status, code := "ready", http.StatusOK
	if !ready {
		status, code = "not ready", http.StatusServiceUnavailable
	}
	writeJSON(w, code, map[string]any{"status": status, "checks": checks})
}

// handleMetrics writes counters in the Prometheus text exposition format.
func (s *Server) handleMetrics(w http.ResponseWriter, _ *http.Request) {
	var b strings.Builder

	traceMetrics := s.traceMiddleware.GetMetrics()
	rlMetrics := s.rateLimiter.GetMetrics()
	secMetrics := s.securityDetector.GetMetrics()

	counter := func(name, help string, v int64) {
		fmt.Fprintf(&b, "# HELP %s %s\n# TYPE %s counter\n%s %d\n", name, help, name, name, v)
	}
	gauge := func(name, help string, v int64) {
		fmt.Fprintf(&b, "# HELP %s %s\n# TYPE %s gauge\n%s %d\n", name, help, name, name, v)
	}

	counter("financas_http_requests_total", "Total number of HTTP requests", traceMetrics.TotalRequests)
	counter("financas_http_client_errors_total", "HTTP responses with a 4xx status", traceMetrics.ClientErrors)
	counter("financas_http_server_errors_total", "HTTP responses with a 5xx status", traceMetrics.ServerErrors)
	gauge("financas_http_response_time_microseconds", "Average response time", traceMetrics.AverageResponseTime)
	counter("financas_rate_limit_hits_total", "Requests rejected by the rate limiter", rlMetrics.TotalHits)
	gauge("financas_active_clients", "Clients tracked by the rate limiter", rlMetrics.ClientCount)
	counter("financas_security_suspicious_requests_total", "Requests flagged as suspicious", secMetrics.SuspiciousRequests)
	counter("financas_security_invalid_ips_total", "Requests with an unparseable client IP", secMetrics.InvalidIPAttempts)

	if fs, ok := s.finance.(interface{ Stats() services.Stats }); ok {
		st := fs.Stats()
		counter("financas_evaluations_total", "Expense submissions evaluated", st.Evaluations)
		counter("financas_summaries_total", "Summaries computed", st.Summaries)
		counter("financas_malformed_submissions_total", "Submissions rejected for a malformed line", st.Malformed)
		counter("financas_events_published_total", "Summary events published", st.Published)
		counter("financas_event_publish_failures_total", "Summary events that failed to publish", st.PublishFailures)
	}
	if cl, ok := s.lookup.(*address.CachedLookup); ok {
		m := cl.Metrics()
		cs := cl.CacheStats()
		counter("financas_address_lookups_total", "Postal code lookups", m.Lookups)
		counter("financas_address_not_found_total", "Postal codes reported as not found", m.NotFound)
		counter("financas_address_failures_total", "Postal code lookups that failed", m.Failures)
		counter("financas_address_upstream_total", "Lookups sent to the postal code service", m.Upstream)
		counter("financas_address_cache_hits_total", "Address cache hits", cs.Hits)
		counter("financas_address_cache_misses_total", "Address cache misses", cs.Misses)
		gauge("financas_address_cache_entries", "Entries in the address cache", int64(cs.Size))
	}
	gauge("financas_uptime_seconds", "Seconds since the server started", int64(time.Since(s.startedAt).Seconds()))

	w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
	_, _ = w.Write([]byte(b.String()))
}
