package oracle

import (
	"context"
	"encoding/json"
	"fmt"
)

// Execute routes a command envelope to its handler. Failures short-circuit:
// a failed command leaves no storage side effects, and the registration's
// dual write of asset plus price record lands as one atomic step.
func (s *Service) Execute(ctx context.Context, info MsgInfo, msg ExecuteMsg) ([]LogAttribute, error) {
	switch {
	case msg.UpdateConfig != nil:
		return nil, s.UpdateConfig(ctx, info, msg.UpdateConfig.Owner)
	case msg.RegisterAsset != nil:
		m := msg.RegisterAsset
		return nil, s.RegisterAsset(ctx, info, m.Symbol, m.Feeder, m.Token)
	case msg.FeedPrice != nil:
		return s.FeedPrice(ctx, info, *msg.FeedPrice)
	default:
		return nil, fmt.Errorf("empty execute message: %w", ErrInvalidInput)
	}
}

// Query routes a query envelope and returns the serialized response record.
// Queries run read-only and need no caller identity.
func (s *Service) Query(ctx context.Context, msg QueryMsg) (json.RawMessage, error) {
	switch {
	case msg.Config != nil:
		resp, err := s.QueryConfig(ctx)
		if err != nil {
			return nil, err
		}
		return json.Marshal(resp)
	case msg.Asset != nil:
		resp, err := s.QueryAsset(ctx, msg.Asset.Symbol)
		if err != nil {
			return nil, err
		}
		return json.Marshal(resp)
	case msg.Price != nil:
		resp, err := s.QueryPrice(ctx, msg.Price.Symbol)
		if err != nil {
			return nil, err
		}
		return json.Marshal(resp)
	default:
		return nil, fmt.Errorf("empty query message: %w", ErrInvalidInput)
	}
}
