package logpipe

import (
	"fmt"
	"time"
)

// Convenience wrappers for common application events. Each is a thin
// argument-shaping call into the level methods and carries no state.

// APIRequest records an outgoing API request.
func (p *Pipeline) APIRequest(method, url string) {
	p.Debug(fmt.Sprintf("API request: %s %s", method, url),
		WithComponent("api"), WithAction("request"))
}

// APIResponse records a completed API request. Responses with a status of
// 400 or above are captured as warnings.
func (p *Pipeline) APIResponse(method, url string, status int, duration time.Duration) {
	msg := fmt.Sprintf("API response: %s %s %d (%dms)", method, url, status, duration.Milliseconds())
	data := map[string]any{"status": status, "durationMs": duration.Milliseconds()}
	if status >= 400 {
		p.Warn(msg, WithData(data), WithComponent("api"), WithAction("response"))
		return
	}
	p.Debug(msg, WithData(data), WithComponent("api"), WithAction("response"))
}

// APIError records a failed API request.
func (p *Pipeline) APIError(method, url string, err error) {
	p.Error(fmt.Sprintf("API error: %s %s", method, url),
		WithData(err), WithComponent("api"), WithAction("error"))
}

// ComponentMounted records a component entering the tree.
func (p *Pipeline) ComponentMounted(name string) {
	p.Debug("component mounted", WithComponent(name), WithAction("mount"))
}

// ComponentUnmounted records a component leaving the tree.
func (p *Pipeline) ComponentUnmounted(name string) {
	p.Debug("component unmounted", WithComponent(name), WithAction("unmount"))
}

// BusinessOperation records a domain-level operation with its details.
func (p *Pipeline) BusinessOperation(operation string, details any) {
	p.Info(fmt.Sprintf("business operation: %s", operation),
		WithData(details), WithComponent("business"), WithAction(operation))
}

// Performance records a measured value for a named metric.
func (p *Pipeline) Performance(metric string, value float64, unit string) {
	p.Debug(fmt.Sprintf("performance: %s=%v%s", metric, value, unit),
		WithData(map[string]any{"value": value, "unit": unit}),
		WithComponent("performance"), WithAction(metric))
}

// UserAction records an action taken by the user.
func (p *Pipeline) UserAction(action string, details any) {
	p.Info(fmt.Sprintf("user action: %s", action),
		WithData(details), WithComponent("user"), WithAction(action))
}
