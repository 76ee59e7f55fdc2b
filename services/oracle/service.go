package oracle

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/R3E-Network/price_oracle/internal/identity"
	"github.com/R3E-Network/price_oracle/internal/keyvalue"
)

// Service is the oracle state machine. It holds no entity state of its own:
// every operation is a synchronous read-modify-write against the store, and a
// failed operation persists nothing. The host serializes invocations, so the
// service needs no locking of entity state.
type Service struct {
	store *Store
	codec identity.Codec
	log   zerolog.Logger
}

// New creates the oracle service over a key-value backend and address codec.
func New(kv keyvalue.Store, codec identity.Codec, log zerolog.Logger) *Service {
	return &Service{
		store: NewStore(kv),
		codec: codec,
		log:   log.With().Str("component", "oracle").Logger(),
	}
}

func (s *Service) canonicalize(human string) (identity.Address, error) {
	addr, err := s.codec.Canonicalize(human)
	if err != nil {
		return "", fmt.Errorf("address %q: %w", human, ErrInvalidInput)
	}
	return addr, nil
}

// Initialize writes the singleton config. The host invokes it exactly once,
// at creation time, before any command is dispatched.
func (s *Service) Initialize(ctx context.Context, owner, baseDenom string) error {
	canonical, err := s.canonicalize(owner)
	if err != nil {
		return err
	}
	if err := s.store.SetConfig(ctx, Config{Owner: canonical, BaseDenom: baseDenom}); err != nil {
		return err
	}
	s.log.Info().Str("owner", owner).Str("base_denom", baseDenom).Msg("oracle initialized")
	return nil
}

// UpdateConfig transfers ownership when newOwner is set. The caller must be
// the current owner; a nil newOwner is a valid no-op that still enforces the
// owner check.
func (s *Service) UpdateConfig(ctx context.Context, info MsgInfo, newOwner *string) error {
	cfg, err := s.store.Config(ctx)
	if err != nil {
		return err
	}

	sender, err := s.canonicalize(info.Sender)
	if err != nil {
		return err
	}
	if sender != cfg.Owner {
		return fmt.Errorf("update config: %w", ErrUnauthorized)
	}

	if newOwner != nil {
		owner, err := s.canonicalize(*newOwner)
		if err != nil {
			return err
		}
		cfg.Owner = owner
	}

	return s.store.SetConfig(ctx, cfg)
}

// RegisterAsset registers symbol with its feeder and token, and atomically
// creates the paired zero price record. A symbol can be registered once;
// registration is deliberately not owner-gated.
func (s *Service) RegisterAsset(ctx context.Context, info MsgInfo, symbol, feeder, token string) error {
	if symbol == "" {
		return fmt.Errorf("empty symbol: %w", ErrInvalidInput)
	}

	_, err := s.store.Asset(ctx, symbol)
	if err == nil {
		return fmt.Errorf("register %s: %w", symbol, ErrAlreadyExists)
	}
	if !errors.Is(err, ErrNotFound) {
		return err
	}

	feederAddr, err := s.canonicalize(feeder)
	if err != nil {
		return err
	}
	tokenAddr, err := s.canonicalize(token)
	if err != nil {
		return err
	}

	batch := keyvalue.NewBatch()
	asset := Asset{Symbol: symbol, Feeder: feederAddr, Token: tokenAddr}
	zero := PriceRecord{
		Price:           decimal.Zero,
		PriceMultiplier: decimal.NewFromInt(1),
		LastUpdateTime:  0,
	}
	if err := s.store.StageRegistration(batch, asset, zero); err != nil {
		return err
	}
	if err := s.store.Apply(ctx, batch); err != nil {
		return err
	}

	s.log.Info().Str("symbol", symbol).Str("feeder", feeder).Msg("asset registered")
	return nil
}

// FeedPrice records a new price for symbol. The caller must be the symbol's
// registered feeder. Price and timestamp are always overwritten; the
// multiplier only when supplied. Returns the emitted log attributes.
func (s *Service) FeedPrice(ctx context.Context, info MsgInfo, msg FeedPriceMsg) ([]LogAttribute, error) {
	if msg.Price.IsNegative() {
		return nil, fmt.Errorf("negative price: %w", ErrInvalidInput)
	}
	if msg.PriceMultiplier != nil && msg.PriceMultiplier.IsNegative() {
		return nil, fmt.Errorf("negative price multiplier: %w", ErrInvalidInput)
	}

	asset, err := s.store.Asset(ctx, msg.Symbol)
	if err != nil {
		return nil, err
	}

	sender, err := s.canonicalize(info.Sender)
	if err != nil {
		return nil, err
	}
	if sender != asset.Feeder {
		return nil, fmt.Errorf("feed %s: %w", msg.Symbol, ErrUnauthorized)
	}

	record, err := s.store.Price(ctx, msg.Symbol)
	if err != nil {
		return nil, err
	}
	record.Price = msg.Price
	record.LastUpdateTime = info.Time
	if msg.PriceMultiplier != nil {
		record.PriceMultiplier = *msg.PriceMultiplier
	}

	if err := s.store.SetPrice(ctx, msg.Symbol, record); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("symbol", msg.Symbol).
		Str("price", msg.Price.String()).
		Uint64("time", info.Time).
		Msg("price feed")

	return []LogAttribute{
		{Key: "action", Value: "price_feed"},
		{Key: "price", Value: msg.Price.String()},
	}, nil
}

// =============================================================================
// Queries
// =============================================================================

// QueryConfig returns the configuration with the owner in external form.
func (s *Service) QueryConfig(ctx context.Context) (ConfigResponse, error) {
	cfg, err := s.store.Config(ctx)
	if err != nil {
		return ConfigResponse{}, err
	}
	owner, err := s.codec.Humanize(cfg.Owner)
	if err != nil {
		return ConfigResponse{}, fmt.Errorf("humanize owner: %w", err)
	}
	return ConfigResponse{Owner: owner, BaseDenom: cfg.BaseDenom}, nil
}

// QueryAsset returns the registration record for symbol.
func (s *Service) QueryAsset(ctx context.Context, symbol string) (AssetResponse, error) {
	asset, err := s.store.Asset(ctx, symbol)
	if err != nil {
		return AssetResponse{}, err
	}
	feeder, err := s.codec.Humanize(asset.Feeder)
	if err != nil {
		return AssetResponse{}, fmt.Errorf("humanize feeder: %w", err)
	}
	token, err := s.codec.Humanize(asset.Token)
	if err != nil {
		return AssetResponse{}, fmt.Errorf("humanize token: %w", err)
	}
	return AssetResponse{Symbol: asset.Symbol, Feeder: feeder, Token: token}, nil
}

// QueryPrice returns the latest price record for symbol.
func (s *Service) QueryPrice(ctx context.Context, symbol string) (PriceResponse, error) {
	record, err := s.store.Price(ctx, symbol)
	if err != nil {
		return PriceResponse{}, err
	}
	return PriceResponse{
		Price:           record.Price,
		PriceMultiplier: record.PriceMultiplier,
		LastUpdateTime:  record.LastUpdateTime,
	}, nil
}
