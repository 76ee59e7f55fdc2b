// Package oracle implements the price-oracle state machine: a config store,
// an asset registry and a price ledger over a persistent key-value store,
// with role-gated commands and unrestricted queries.
package oracle

import (
	"github.com/shopspring/decimal"

	"github.com/R3E-Network/price_oracle/internal/identity"
)

// Config is the singleton oracle configuration. Created once at
// initialization and mutated only by the current owner.
type Config struct {
	Owner     identity.Address `json:"owner"`
	BaseDenom string           `json:"base_denom"`
}

// Asset binds a symbol to its authorized price feeder and token contract.
// Immutable after registration: no update or delete operation exists.
type Asset struct {
	Symbol string           `json:"symbol"`
	Feeder identity.Address `json:"feeder"`
	Token  identity.Address `json:"token"`
}

// PriceRecord is the latest reported price for a registered symbol.
// Created together with its Asset, initialized to {0, 1, 0}.
type PriceRecord struct {
	Price           decimal.Decimal `json:"price"`
	PriceMultiplier decimal.Decimal `json:"price_multiplier"`
	LastUpdateTime  uint64          `json:"last_update_time"`
}

// =============================================================================
// Command / Query Envelopes
// =============================================================================

// ExecuteMsg is the envelope for state-mutating commands.
// Exactly one variant must be set.
type ExecuteMsg struct {
	UpdateConfig  *UpdateConfigMsg  `json:"update_config,omitempty"`
	RegisterAsset *RegisterAssetMsg `json:"register_asset,omitempty"`
	FeedPrice     *FeedPriceMsg     `json:"feed_price,omitempty"`
}

// UpdateConfigMsg transfers ownership when Owner is set. An empty message is
// still a valid owner-gated no-op.
type UpdateConfigMsg struct {
	Owner *string `json:"owner,omitempty"`
}

// RegisterAssetMsg registers a new symbol with its feeder and token.
// Registration is open: any caller may register an unused symbol.
type RegisterAssetMsg struct {
	Symbol string `json:"symbol"`
	Feeder string `json:"feeder"`
	Token  string `json:"token"`
}

// FeedPriceMsg reports a new price for a symbol. PriceMultiplier, when nil,
// leaves the stored multiplier untouched.
type FeedPriceMsg struct {
	Symbol          string           `json:"symbol"`
	Price           decimal.Decimal  `json:"price"`
	PriceMultiplier *decimal.Decimal `json:"price_multiplier,omitempty"`
}

// QueryMsg is the envelope for read-only queries. Exactly one variant must be
// set. Queries require no caller identity.
type QueryMsg struct {
	Config *ConfigQuery `json:"config,omitempty"`
	Asset  *AssetQuery  `json:"asset,omitempty"`
	Price  *PriceQuery  `json:"price,omitempty"`
}

// ConfigQuery requests the current configuration.
type ConfigQuery struct{}

// AssetQuery requests the registration record for a symbol.
type AssetQuery struct {
	Symbol string `json:"symbol"`
}

// PriceQuery requests the latest price record for a symbol.
type PriceQuery struct {
	Symbol string `json:"symbol"`
}

// ConfigResponse is the serialized configuration with the owner rendered in
// external form.
type ConfigResponse struct {
	Owner     string `json:"owner"`
	BaseDenom string `json:"base_denom"`
}

// AssetResponse is the serialized asset registration with addresses rendered
// in external form.
type AssetResponse struct {
	Symbol string `json:"symbol"`
	Feeder string `json:"feeder"`
	Token  string `json:"token"`
}

// PriceResponse is the serialized price record.
type PriceResponse struct {
	Price           decimal.Decimal `json:"price"`
	PriceMultiplier decimal.Decimal `json:"price_multiplier"`
	LastUpdateTime  uint64          `json:"last_update_time"`
}

// MsgInfo is the invocation context supplied by the host for each command:
// the external address of the caller and the invocation timestamp.
type MsgInfo struct {
	Sender string
	Time   uint64
}

// LogAttribute is an observable key/value pair emitted by a successful
// command, in the order emitted.
type LogAttribute struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}
