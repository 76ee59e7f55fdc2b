package oracle

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/R3E-Network/price_oracle/internal/keyvalue"
)

// Storage keys. Asset and price records for the same symbol live in distinct
// namespaces.
const (
	configKey   = "config"
	assetPrefix = "asset:"
	pricePrefix = "price:"
)

// Store persists oracle state through the key-value capability. Every access
// is a fresh round-trip keyed by a stable identifier; nothing is cached
// between invocations.
type Store struct {
	kv keyvalue.Store
}

// NewStore creates a Store over the given key-value backend.
func NewStore(kv keyvalue.Store) *Store {
	return &Store{kv: kv}
}

func assetKey(symbol string) string {
	return assetPrefix + symbol
}

func priceKey(symbol string) string {
	return pricePrefix + symbol
}

func (s *Store) get(ctx context.Context, key, kind string, out any) error {
	raw, err := s.kv.Get(ctx, key)
	if errors.Is(err, keyvalue.ErrKeyNotFound) {
		return fmt.Errorf("%s: %w", kind, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", kind, err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s: %w", kind, err)
	}
	return nil
}

func (s *Store) set(ctx context.Context, key, kind string, record any) error {
	raw, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encode %s: %w", kind, err)
	}
	if err := s.kv.Set(ctx, key, raw); err != nil {
		return fmt.Errorf("write %s: %w", kind, err)
	}
	return nil
}

// Config reads the singleton configuration.
func (s *Store) Config(ctx context.Context) (Config, error) {
	var cfg Config
	err := s.get(ctx, configKey, "config", &cfg)
	return cfg, err
}

// SetConfig writes the singleton configuration.
func (s *Store) SetConfig(ctx context.Context, cfg Config) error {
	return s.set(ctx, configKey, "config", cfg)
}

// Asset reads the registration record for symbol.
func (s *Store) Asset(ctx context.Context, symbol string) (Asset, error) {
	var asset Asset
	err := s.get(ctx, assetKey(symbol), "asset "+symbol, &asset)
	return asset, err
}

// Price reads the price record for symbol.
func (s *Store) Price(ctx context.Context, symbol string) (PriceRecord, error) {
	var record PriceRecord
	err := s.get(ctx, priceKey(symbol), "price "+symbol, &record)
	return record, err
}

// SetPrice writes the price record for symbol.
func (s *Store) SetPrice(ctx context.Context, symbol string, record PriceRecord) error {
	return s.set(ctx, priceKey(symbol), "price "+symbol, record)
}

// StageRegistration stages the asset and its zero price record into batch so
// both land in one atomic apply.
func (s *Store) StageRegistration(batch *keyvalue.Batch, asset Asset, record PriceRecord) error {
	rawAsset, err := json.Marshal(asset)
	if err != nil {
		return fmt.Errorf("encode asset %s: %w", asset.Symbol, err)
	}
	rawPrice, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encode price %s: %w", asset.Symbol, err)
	}
	batch.Set(assetKey(asset.Symbol), rawAsset)
	batch.Set(priceKey(asset.Symbol), rawPrice)
	return nil
}

// Apply commits a staged batch.
func (s *Store) Apply(ctx context.Context, batch *keyvalue.Batch) error {
	if err := s.kv.Apply(ctx, batch); err != nil {
		return fmt.Errorf("apply batch: %w", err)
	}
	return nil
}
