package health

import (
	"encoding/json"
	"net/http"

	coreHealth "github.com/Sokol111/streamflix-reliability/pkg/core/health"
)

type healthHandler struct {
	readiness coreHealth.ReadinessChecker
}

func newHealthHandler(r coreHealth.ReadinessChecker) *healthHandler {
	return &healthHandler{readiness: r}
}

// IsReady answers "ready"/"not ready", or the component status as JSON when
// asked with ?format=json or Accept: application/json.
func (h *healthHandler) IsReady(w http.ResponseWriter, r *http.Request) {
	code := http.StatusOK
	if !h.readiness.IsReady() {
		code = http.StatusServiceUnavailable
	}

	if r.URL.Query().Get("format") == "json" || r.Header.Get("Accept") == "application/json" {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		_ = json.NewEncoder(w).Encode(h.readiness.GetStatus())
		return
	}

	w.WriteHeader(code)
	if code == http.StatusOK {
		_, _ = w.Write([]byte("ready"))
	} else {
		_, _ = w.Write([]byte("not ready"))
	}
}

func (h *healthHandler) IsLive(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("alive"))
}
