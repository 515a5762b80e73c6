package api

import (
	"net/http"
	"strconv"

	"github.com/naviya/naviya/internal/telemetry"
)

// Interceptor receives one telemetry trace per instrumented response.
type Interceptor func(telemetry.Trace)

// AttachInterceptor wires fn into the client. The attach is idempotent:
// only the first call per client lifetime takes effect, so re-running
// setup paths cannot double-emit.
func (c *Client) AttachInterceptor(fn Interceptor) {
	c.attachOnce.Do(func() {
		c.interceptor = fn
	})
}

// intercept lifts the observability headers off a response and emits a
// trace. Responses without x-opik-agent pass through untouched. A
// failing interceptor must never fail the request, hence the recover.
func (c *Client) intercept(resp *http.Response, label string) {
	if c.interceptor == nil {
		return
	}
	agent := resp.Header.Get("x-opik-agent")
	if agent == "" {
		return
	}

	status := resp.Header.Get("x-opik-status")
	if resp.StatusCode >= 400 {
		status = "error"
	}

	trace := telemetry.Trace{
		Agent:            agent,
		Label:            label,
		LatencyMs:        headerFloat(resp, "x-opik-latency"),
		Model:            resp.Header.Get("x-opik-model"),
		Status:           status,
		PromptTokens:     headerInt(resp, "x-opik-prompt-tokens"),
		CompletionTokens: headerInt(resp, "x-opik-completion-tokens"),
		TotalTokens:      headerInt(resp, "x-opik-total-tokens"),
		TraceID:          resp.Header.Get("x-opik-trace-id"),
	}

	defer func() { _ = recover() }()
	c.interceptor(trace)
}

// headerFloat parses a float header, defaulting to 0.
func headerFloat(resp *http.Response, key string) float64 {
	v, err := strconv.ParseFloat(resp.Header.Get(key), 64)
	if err != nil {
		return 0
	}
	return v
}

// headerInt parses an integer header, defaulting to 0.
func headerInt(resp *http.Response, key string) int {
	v, err := strconv.Atoi(resp.Header.Get(key))
	if err != nil {
		return 0
	}
	return v
}
