// Package monitor runs background hygiene checks for the oracle host.
package monitor

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/R3E-Network/price_oracle/internal/feedbus"
)

// Staleness watches feed events and warns about symbols whose latest price is
// older than a threshold. Read-only: it never touches oracle state.
type Staleness struct {
	mu       sync.Mutex
	lastSeen map[string]time.Time

	threshold time.Duration
	log       zerolog.Logger
	cron      *cron.Cron
	stop      func()

	staleGauge prometheus.Gauge

	// now is swappable for tests.
	now func() time.Time
}

// NewStaleness creates a staleness monitor with the given threshold.
func NewStaleness(threshold time.Duration, log zerolog.Logger, reg prometheus.Registerer) *Staleness {
	gauge := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "oracle_stale_symbols",
		Help: "Number of registered symbols whose latest price exceeds the staleness threshold.",
	})
	if reg != nil {
		reg.MustRegister(gauge)
	}
	return &Staleness{
		lastSeen:   make(map[string]time.Time),
		threshold:  threshold,
		log:        log.With().Str("component", "staleness").Logger(),
		staleGauge: gauge,
		now:        time.Now,
	}
}

// Start subscribes to bus and schedules the sweep with the given cron spec.
func (s *Staleness) Start(bus *feedbus.Bus, spec string) error {
	events, cancel := bus.Subscribe()
	s.stop = cancel

	go func() {
		for ev := range events {
			s.Observe(ev)
		}
	}()

	s.cron = cron.New()
	if _, err := s.cron.AddFunc(spec, func() { s.Sweep() }); err != nil {
		cancel()
		return err
	}
	s.cron.Start()
	return nil
}

// Stop halts the sweep and releases the bus subscription.
func (s *Staleness) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
	if s.stop != nil {
		s.stop()
	}
}

// Observe records a feed event. Registration starts the clock for a symbol;
// a price feed resets it.
func (s *Staleness) Observe(ev feedbus.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch ev.Type {
	case feedbus.TypeAssetRegistered, feedbus.TypePriceFeed:
		s.lastSeen[ev.Symbol] = s.now()
	}
}

// Sweep logs a warning per stale symbol and returns how many were stale.
func (s *Staleness) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	stale := 0
	cutoff := s.now().Add(-s.threshold)
	for symbol, seen := range s.lastSeen {
		if seen.Before(cutoff) {
			stale++
			s.log.Warn().
				Str("symbol", symbol).
				Time("last_seen", seen).
				Dur("threshold", s.threshold).
				Msg("price feed is stale")
		}
	}
	s.staleGauge.Set(float64(stale))
	return stale
}
