// Package httpapi is the host runtime for the oracle core: it decodes
// incoming messages, supplies the invocation context (caller address, call
// time), dispatches to the state machine and serializes responses. The core's
// typed failures are translated onto HTTP status codes here.
package httpapi

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/R3E-Network/price_oracle/internal/feedbus"
	"github.com/R3E-Network/price_oracle/services/oracle"
)

// CallerHeader carries the external address of the command sender.
const CallerHeader = "X-Caller-Address"

// Config configures the HTTP host.
type Config struct {
	Service  *oracle.Service
	Bus      *feedbus.Bus
	Logger   zerolog.Logger
	Registry *prometheus.Registry

	// RateLimit bounds execute requests per second; zero disables limiting.
	RateLimit float64
	Burst     int
}

// Server exposes the oracle over HTTP.
type Server struct {
	svc     *oracle.Service
	bus     *feedbus.Bus
	log     zerolog.Logger
	router  *mux.Router
	metrics *apiMetrics
	limiter *rate.Limiter

	upgrader websocket.Upgrader

	// now supplies command timestamps; swappable for tests.
	now func() time.Time
}

// NewServer builds the router and registers all routes.
func NewServer(cfg Config) *Server {
	registry := cfg.Registry
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	s := &Server{
		svc:     cfg.Service,
		bus:     cfg.Bus,
		log:     cfg.Logger.With().Str("component", "httpapi").Logger(),
		router:  mux.NewRouter(),
		metrics: newAPIMetrics(registry),
		now:     time.Now,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
	if cfg.RateLimit > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		s.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}

	s.router.Use(s.requestID, s.logRequests)

	s.router.HandleFunc("/v1/execute", s.handleExecute).Methods(http.MethodPost)
	s.router.HandleFunc("/v1/config", s.handleConfig).Methods(http.MethodGet)
	s.router.HandleFunc("/v1/assets/{symbol}", s.handleAsset).Methods(http.MethodGet)
	s.router.HandleFunc("/v1/prices/{symbol}", s.handlePrice).Methods(http.MethodGet)
	s.router.HandleFunc("/v1/stream", s.handleStream).Methods(http.MethodGet)

	s.router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	s.router.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{})).Methods(http.MethodGet)

	return s
}

// Handler returns the root handler for an http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
