package monitor

import (
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/R3E-Network/price_oracle/internal/feedbus"
)

func TestSweepCountsStaleSymbols(t *testing.T) {
	s := NewStaleness(time.Minute, zerolog.Nop(), nil)

	base := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return base }

	s.Observe(feedbus.Event{Type: feedbus.TypeAssetRegistered, Symbol: "mAPPL"})
	s.Observe(feedbus.Event{Type: feedbus.TypePriceFeed, Symbol: "mBTC"})

	// Nothing stale yet.
	if got := s.Sweep(); got != 0 {
		t.Fatalf("Sweep() = %d, want 0", got)
	}

	// Advance past the threshold, then refresh only mBTC.
	s.now = func() time.Time { return base.Add(2 * time.Minute) }
	s.Observe(feedbus.Event{Type: feedbus.TypePriceFeed, Symbol: "mBTC"})

	if got := s.Sweep(); got != 1 {
		t.Fatalf("Sweep() = %d, want 1 (mAPPL stale, mBTC fresh)", got)
	}
}

func TestObserveIgnoresUnknownEvents(t *testing.T) {
	s := NewStaleness(time.Minute, zerolog.Nop(), nil)
	s.Observe(feedbus.Event{Type: "something_else", Symbol: "mAPPL"})

	s.now = func() time.Time { return time.Now().Add(time.Hour) }
	if got := s.Sweep(); got != 0 {
		t.Fatalf("Sweep() = %d, want 0 for untracked symbol", got)
	}
}

func TestStartStop(t *testing.T) {
	bus := feedbus.New()
	s := NewStaleness(time.Minute, zerolog.Nop(), nil)
	if err := s.Start(bus, "@every 1h"); err != nil {
		t.Fatalf("Start() err = %v", err)
	}
	defer s.Stop()

	bus.Publish(feedbus.Event{Type: feedbus.TypePriceFeed, Symbol: "mAPPL"})

	// Publish is async; wait for the observer goroutine to record it.
	deadline := time.Now().Add(time.Second)
	for {
		s.mu.Lock()
		_, ok := s.lastSeen["mAPPL"]
		s.mu.Unlock()
		if ok {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("event not observed")
		}
		time.Sleep(5 * time.Millisecond)
	}
}
