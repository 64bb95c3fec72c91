package router

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"github.com/anvesh2019/dhan-trading/src/models"
)

// Snapshot is the read-only view of the last reconciliation pass exposed over
// the status API.
type Snapshot struct {
	Positions []*models.Position `json:"positions"`
	Orders    []*models.Order    `json:"orders"`
	LastPass  time.Time          `json:"lastPass"`
}

type SnapshotProvider interface {
	Snapshot() Snapshot
}

func writeJSON(w http.ResponseWriter, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Errorf("router: failed to encode response: %v", err)
	}
}

// NewStatusRouter serves health, snapshot and metrics endpoints for one
// trading process.
func NewStatusRouter(provider SnapshotProvider) *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	r.HandleFunc("/positions", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, provider.Snapshot().Positions)
	}).Methods(http.MethodGet)

	r.HandleFunc("/orders", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, provider.Snapshot().Orders)
	}).Methods(http.MethodGet)

	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	return r
}
