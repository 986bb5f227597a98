package http

import (
	"encoding/json"
	"net/http"

	"github.com/classpilot/classpilot-api/internal/automation"
)

// GET /automation/status
func AutomationStatusHandler(sched *automation.Scheduler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if sched == nil {
			_ = json.NewEncoder(w).Encode(automation.Status{Running: false})
			return
		}
		_ = json.NewEncoder(w).Encode(sched.Status(r.Context()))
	}
}

// POST /automation/run triggers one polling pass without waiting for the
// next tick.
func AutomationRunHandler(sched *automation.Scheduler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if sched == nil {
			http.Error(w, "automation disabled", http.StatusConflict)
			return
		}
		sched.RunOnce()
		_ = json.NewEncoder(w).Encode(sched.Status(r.Context()))
	}
}
