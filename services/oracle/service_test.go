package oracle

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/R3E-Network/price_oracle/internal/identity"
	"github.com/R3E-Network/price_oracle/internal/keyvalue"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	return New(keyvalue.NewMemory(), identity.RawCodec{}, zerolog.Nop())
}

func mustInit(t *testing.T, svc *Service) {
	t.Helper()
	if err := svc.Initialize(context.Background(), "owner0000", "base0000"); err != nil {
		t.Fatalf("Initialize() err = %v", err)
	}
}

func TestInitialization(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	// Config reads fail before initialization.
	if _, err := svc.QueryConfig(ctx); !errors.Is(err, ErrNotFound) {
		t.Fatalf("QueryConfig() err = %v, want ErrNotFound", err)
	}

	mustInit(t, svc)

	cfg, err := svc.QueryConfig(ctx)
	if err != nil {
		t.Fatalf("QueryConfig() err = %v", err)
	}
	if cfg.Owner != "owner0000" || cfg.BaseDenom != "base0000" {
		t.Fatalf("QueryConfig() = %+v", cfg)
	}
}

func TestUpdateConfig(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	mustInit(t, svc)

	// Transfer ownership.
	newOwner := "owner0001"
	if err := svc.UpdateConfig(ctx, MsgInfo{Sender: "owner0000"}, &newOwner); err != nil {
		t.Fatalf("UpdateConfig() err = %v", err)
	}

	cfg, err := svc.QueryConfig(ctx)
	if err != nil {
		t.Fatalf("QueryConfig() err = %v", err)
	}
	if cfg.Owner != "owner0001" {
		t.Fatalf("owner = %q, want owner0001", cfg.Owner)
	}
	if cfg.BaseDenom != "base0000" {
		t.Fatalf("base_denom = %q, want base0000", cfg.BaseDenom)
	}

	// The previous owner lost the role, even for a no-op update.
	err = svc.UpdateConfig(ctx, MsgInfo{Sender: "owner0000"}, nil)
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("UpdateConfig() err = %v, want ErrUnauthorized", err)
	}

	// Config is unchanged after the rejected call.
	cfg, err = svc.QueryConfig(ctx)
	if err != nil {
		t.Fatalf("QueryConfig() err = %v", err)
	}
	if cfg.Owner != "owner0001" {
		t.Fatalf("owner after rejection = %q, want owner0001", cfg.Owner)
	}

	// A no-op update by the current owner passes the gate.
	if err := svc.UpdateConfig(ctx, MsgInfo{Sender: "owner0001"}, nil); err != nil {
		t.Fatalf("no-op UpdateConfig() err = %v", err)
	}
}

func TestRegisterAssetPairsPriceRecord(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	mustInit(t, svc)

	if err := svc.RegisterAsset(ctx, MsgInfo{Sender: "addr0000"}, "mAPPL", "addr0000", "asset0000"); err != nil {
		t.Fatalf("RegisterAsset() err = %v", err)
	}

	asset, err := svc.QueryAsset(ctx, "mAPPL")
	if err != nil {
		t.Fatalf("QueryAsset() err = %v", err)
	}
	if asset.Symbol != "mAPPL" || asset.Feeder != "addr0000" || asset.Token != "asset0000" {
		t.Fatalf("QueryAsset() = %+v", asset)
	}

	// Registration creates the zero price record in the same step.
	price, err := svc.QueryPrice(ctx, "mAPPL")
	if err != nil {
		t.Fatalf("QueryPrice() err = %v", err)
	}
	if !price.Price.IsZero() {
		t.Fatalf("price = %s, want 0", price.Price)
	}
	if !price.PriceMultiplier.Equal(decimal.NewFromInt(1)) {
		t.Fatalf("multiplier = %s, want 1", price.PriceMultiplier)
	}
	if price.LastUpdateTime != 0 {
		t.Fatalf("last_update_time = %d, want 0", price.LastUpdateTime)
	}
}

func TestRegisterAssetRejectsDuplicate(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	mustInit(t, svc)

	if err := svc.RegisterAsset(ctx, MsgInfo{Sender: "addr0000"}, "mAPPL", "addr0000", "asset0000"); err != nil {
		t.Fatalf("RegisterAsset() err = %v", err)
	}

	err := svc.RegisterAsset(ctx, MsgInfo{Sender: "addr0001"}, "mAPPL", "addr0001", "asset0001")
	if !errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("duplicate RegisterAsset() err = %v, want ErrAlreadyExists", err)
	}

	// The first registration is untouched.
	asset, err := svc.QueryAsset(ctx, "mAPPL")
	if err != nil {
		t.Fatalf("QueryAsset() err = %v", err)
	}
	if asset.Feeder != "addr0000" || asset.Token != "asset0000" {
		t.Fatalf("asset overwritten: %+v", asset)
	}
}

func TestRegistrationIsOpen(t *testing.T) {
	// Registration is not owner-gated: any caller may claim an unused symbol.
	// Only the one-time-per-symbol rule constrains it.
	ctx := context.Background()
	svc := newTestService(t)
	mustInit(t, svc)

	if err := svc.RegisterAsset(ctx, MsgInfo{Sender: "stranger0000"}, "mTSLA", "addr0000", "asset0000"); err != nil {
		t.Fatalf("RegisterAsset() by non-owner err = %v", err)
	}
}

func TestFeedPrice(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	mustInit(t, svc)

	// Feeding an unregistered symbol fails before any authorization check.
	_, err := svc.FeedPrice(ctx, MsgInfo{Sender: "addr0000", Time: 100}, FeedPriceMsg{
		Symbol: "uusd",
		Price:  decimal.RequireFromString("1.2"),
	})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("FeedPrice(unregistered) err = %v, want ErrNotFound", err)
	}

	if err := svc.RegisterAsset(ctx, MsgInfo{Sender: "addr0000"}, "mAPPL", "addr0000", "asset0000"); err != nil {
		t.Fatalf("RegisterAsset() err = %v", err)
	}

	logs, err := svc.FeedPrice(ctx, MsgInfo{Sender: "addr0000", Time: 1571797419}, FeedPriceMsg{
		Symbol: "mAPPL",
		Price:  decimal.RequireFromString("1.2"),
	})
	if err != nil {
		t.Fatalf("FeedPrice() err = %v", err)
	}
	if len(logs) != 2 || logs[0].Key != "action" || logs[0].Value != "price_feed" || logs[1].Key != "price" || logs[1].Value != "1.2" {
		t.Fatalf("logs = %+v", logs)
	}

	price, err := svc.QueryPrice(ctx, "mAPPL")
	if err != nil {
		t.Fatalf("QueryPrice() err = %v", err)
	}
	if !price.Price.Equal(decimal.RequireFromString("1.2")) {
		t.Fatalf("price = %s, want 1.2", price.Price)
	}
	// Multiplier not supplied, prior value carries over.
	if !price.PriceMultiplier.Equal(decimal.NewFromInt(1)) {
		t.Fatalf("multiplier = %s, want 1", price.PriceMultiplier)
	}
	if price.LastUpdateTime != 1571797419 {
		t.Fatalf("last_update_time = %d, want 1571797419", price.LastUpdateTime)
	}
}

func TestFeedPriceFeederGate(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	mustInit(t, svc)

	if err := svc.RegisterAsset(ctx, MsgInfo{Sender: "addr0000"}, "mAPPL", "addr0000", "asset0000"); err != nil {
		t.Fatalf("RegisterAsset() err = %v", err)
	}
	if _, err := svc.FeedPrice(ctx, MsgInfo{Sender: "addr0000", Time: 50}, FeedPriceMsg{
		Symbol: "mAPPL",
		Price:  decimal.RequireFromString("1.2"),
	}); err != nil {
		t.Fatalf("FeedPrice() err = %v", err)
	}

	_, err := svc.FeedPrice(ctx, MsgInfo{Sender: "addr0001", Time: 60}, FeedPriceMsg{
		Symbol: "mAPPL",
		Price:  decimal.RequireFromString("9.9"),
	})
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("FeedPrice() by non-feeder err = %v, want ErrUnauthorized", err)
	}

	// The rejected feed left the record unchanged.
	price, err := svc.QueryPrice(ctx, "mAPPL")
	if err != nil {
		t.Fatalf("QueryPrice() err = %v", err)
	}
	if !price.Price.Equal(decimal.RequireFromString("1.2")) || price.LastUpdateTime != 50 {
		t.Fatalf("record changed by rejected feed: %+v", price)
	}
}

func TestFeedPriceMultiplierOverwrite(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	mustInit(t, svc)

	if err := svc.RegisterAsset(ctx, MsgInfo{Sender: "addr0000"}, "mAPPL", "addr0000", "asset0000"); err != nil {
		t.Fatalf("RegisterAsset() err = %v", err)
	}

	mult := decimal.RequireFromString("0.5")
	if _, err := svc.FeedPrice(ctx, MsgInfo{Sender: "addr0000", Time: 10}, FeedPriceMsg{
		Symbol:          "mAPPL",
		Price:           decimal.RequireFromString("2"),
		PriceMultiplier: &mult,
	}); err != nil {
		t.Fatalf("FeedPrice() err = %v", err)
	}

	price, err := svc.QueryPrice(ctx, "mAPPL")
	if err != nil {
		t.Fatalf("QueryPrice() err = %v", err)
	}
	if !price.PriceMultiplier.Equal(mult) {
		t.Fatalf("multiplier = %s, want 0.5", price.PriceMultiplier)
	}

	// Next feed without a multiplier keeps 0.5.
	if _, err := svc.FeedPrice(ctx, MsgInfo{Sender: "addr0000", Time: 20}, FeedPriceMsg{
		Symbol: "mAPPL",
		Price:  decimal.RequireFromString("3"),
	}); err != nil {
		t.Fatalf("FeedPrice() err = %v", err)
	}
	price, err = svc.QueryPrice(ctx, "mAPPL")
	if err != nil {
		t.Fatalf("QueryPrice() err = %v", err)
	}
	if !price.PriceMultiplier.Equal(mult) {
		t.Fatalf("multiplier after carry-over = %s, want 0.5", price.PriceMultiplier)
	}
}

func TestQueriesAreIdempotent(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	mustInit(t, svc)

	if err := svc.RegisterAsset(ctx, MsgInfo{Sender: "addr0000"}, "mAPPL", "addr0000", "asset0000"); err != nil {
		t.Fatalf("RegisterAsset() err = %v", err)
	}

	cfg1, err := svc.QueryConfig(ctx)
	if err != nil {
		t.Fatalf("QueryConfig() err = %v", err)
	}
	cfg2, err := svc.QueryConfig(ctx)
	if err != nil {
		t.Fatalf("QueryConfig() err = %v", err)
	}
	if cfg1 != cfg2 {
		t.Fatalf("config reads differ: %+v vs %+v", cfg1, cfg2)
	}

	asset1, err := svc.QueryAsset(ctx, "mAPPL")
	if err != nil {
		t.Fatalf("QueryAsset() err = %v", err)
	}
	asset2, err := svc.QueryAsset(ctx, "mAPPL")
	if err != nil {
		t.Fatalf("QueryAsset() err = %v", err)
	}
	if asset1 != asset2 {
		t.Fatalf("asset reads differ: %+v vs %+v", asset1, asset2)
	}

	price1, err := svc.QueryPrice(ctx, "mAPPL")
	if err != nil {
		t.Fatalf("QueryPrice() err = %v", err)
	}
	price2, err := svc.QueryPrice(ctx, "mAPPL")
	if err != nil {
		t.Fatalf("QueryPrice() err = %v", err)
	}
	if !price1.Price.Equal(price2.Price) || !price1.PriceMultiplier.Equal(price2.PriceMultiplier) || price1.LastUpdateTime != price2.LastUpdateTime {
		t.Fatalf("price reads differ: %+v vs %+v", price1, price2)
	}
}

func TestFeedPriceRejectsNegative(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	mustInit(t, svc)

	if err := svc.RegisterAsset(ctx, MsgInfo{Sender: "addr0000"}, "mAPPL", "addr0000", "asset0000"); err != nil {
		t.Fatalf("RegisterAsset() err = %v", err)
	}

	_, err := svc.FeedPrice(ctx, MsgInfo{Sender: "addr0000", Time: 5}, FeedPriceMsg{
		Symbol: "mAPPL",
		Price:  decimal.RequireFromString("-1"),
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("negative price err = %v, want ErrInvalidInput", err)
	}

	neg := decimal.RequireFromString("-0.5")
	_, err = svc.FeedPrice(ctx, MsgInfo{Sender: "addr0000", Time: 5}, FeedPriceMsg{
		Symbol:          "mAPPL",
		Price:           decimal.RequireFromString("1"),
		PriceMultiplier: &neg,
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("negative multiplier err = %v, want ErrInvalidInput", err)
	}
}
