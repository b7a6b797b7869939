// Package dashboard serves a small read-only HTTP endpoint exposing a
// running simulation's live metrics and host resource usage, grounded on
// the teacher's monitoring/web package.
package dashboard

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/mux"
	"github.com/shirou/gopsutil/cpu"
	"github.com/shirou/gopsutil/mem"

	"github.com/sarchlab/ftlsim/ftlsim"
)

// Server exposes live MetricsCollector snapshots and host stats over HTTP.
type Server struct {
	mu       sync.RWMutex
	policies map[string]*ftlsim.MetricsCollector

	router *mux.Router
	addr   string
}

// New builds a dashboard Server bound to addr. Call Register for each
// policy the run is exercising before calling ListenAndServe.
func New(addr string) *Server {
	s := &Server{
		policies: make(map[string]*ftlsim.MetricsCollector),
		router:   mux.NewRouter(),
		addr:     addr,
	}

	s.router.HandleFunc("/metrics/{policy}", s.handleMetrics).Methods(http.MethodGet)
	s.router.HandleFunc("/metrics", s.handleAllMetrics).Methods(http.MethodGet)
	s.router.HandleFunc("/host", s.handleHost).Methods(http.MethodGet)

	return s
}

// Register makes label's collector visible at /metrics/{label}.
func (s *Server) Register(label string, mc *ftlsim.MetricsCollector) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.policies[label] = mc
}

// ListenAndServe blocks serving the dashboard until the process exits or
// the listener errors.
func (s *Server) ListenAndServe() error {
	log.Printf("ftlsim: dashboard listening on %s", s.addr)
	return http.ListenAndServe(s.addr, s.router)
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	policy := mux.Vars(r)["policy"]

	s.mu.RLock()
	mc, ok := s.policies[policy]
	s.mu.RUnlock()

	if !ok {
		http.NotFound(w, r)
		return
	}

	writeJSON(w, mc.Snapshot())
}

func (s *Server) handleAllMetrics(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	snapshot := make(map[string]ftlsim.MetricsStats, len(s.policies))
	for label, mc := range s.policies {
		snapshot[label] = mc.Snapshot()
	}
	s.mu.RUnlock()

	writeJSON(w, snapshot)
}

func (s *Server) handleHost(w http.ResponseWriter, r *http.Request) {
	percents, err := cpu.Percent(0, false)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	vm, err := mem.VirtualMemory()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, struct {
		CPUPercent  float64 `json:"cpu_percent"`
		MemUsedPct  float64 `json:"mem_used_percent"`
		MemUsedMB   uint64  `json:"mem_used_mb"`
		MemTotalMB  uint64  `json:"mem_total_mb"`
	}{
		CPUPercent: firstOrZero(percents),
		MemUsedPct: vm.UsedPercent,
		MemUsedMB:  vm.Used / (1 << 20),
		MemTotalMB: vm.Total / (1 << 20),
	})
}

func firstOrZero(vs []float64) float64 {
	if len(vs) == 0 {
		return 0
	}
	return vs[0]
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("ftlsim: dashboard: failed to encode response: %v", err)
	}
}
