package monitoring

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"
)

var startTime = time.Now()

// HealthChecker tracks the liveness of the analysis loop
type HealthChecker struct {
	mu           sync.RWMutex
	lastAnalysis time.Time
	lastPrice    float64
	dataOK       bool
	errors       []string
}

// HealthStatus is the JSON health report
type HealthStatus struct {
	Status       string    `json:"status"`
	Timestamp    time.Time `json:"timestamp"`
	LastAnalysis time.Time `json:"last_analysis"`
	LastPrice    float64   `json:"last_price"`
	DataOK       bool      `json:"data_ok"`
	Uptime       string    `json:"uptime"`
	Errors       []string  `json:"errors,omitempty"`
}

// NewHealthChecker creates a health checker
func NewHealthChecker() *HealthChecker {
	return &HealthChecker{
		errors: make([]string, 0),
	}
}

// RecordAnalysis notes a completed analysis pass
func (h *HealthChecker) RecordAnalysis(price float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.lastAnalysis = time.Now()
	h.lastPrice = price
	h.dataOK = true
}

// RecordError adds an error to the health report
func (h *HealthChecker) RecordError(msg string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.errors = append(h.errors, msg)
	if len(h.errors) > 20 {
		h.errors = h.errors[len(h.errors)-20:]
	}
}

// SetDataOK marks the data source as reachable or not
func (h *HealthChecker) SetDataOK(ok bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.dataOK = ok
}

func (h *HealthChecker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	status := "healthy"
	if !h.dataOK {
		status = "degraded"
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	if len(h.errors) > 0 {
		status = "unhealthy"
		w.WriteHeader(http.StatusInternalServerError)
	}

	health := HealthStatus{
		Status:       status,
		Timestamp:    time.Now(),
		LastAnalysis: h.lastAnalysis,
		LastPrice:    h.lastPrice,
		DataOK:       h.dataOK,
		Uptime:       time.Since(startTime).String(),
		Errors:       h.errors,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(health)
}
