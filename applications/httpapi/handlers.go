package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/R3E-Network/price_oracle/internal/feedbus"
	"github.com/R3E-Network/price_oracle/internal/identity"
	"github.com/R3E-Network/price_oracle/services/oracle"
)

// executeResponse wraps the log attributes of a successful command.
type executeResponse struct {
	Logs []oracle.LogAttribute `json:"logs"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleExecute(w http.ResponseWriter, r *http.Request) {
	if s.limiter != nil && !s.limiter.Allow() {
		writeJSON(w, http.StatusTooManyRequests, errorResponse{Error: "rate limit exceeded"})
		return
	}

	caller := r.Header.Get(CallerHeader)
	if caller == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "missing " + CallerHeader + " header"})
		return
	}

	var msg oracle.ExecuteMsg
	if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "malformed execute message: " + err.Error()})
		return
	}

	info := oracle.MsgInfo{
		Sender: caller,
		Time:   uint64(s.now().Unix()),
	}

	logs, err := s.svc.Execute(r.Context(), info, msg)
	s.metrics.observeExecute(commandName(msg), err)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.publish(msg, info)
	if logs == nil {
		logs = []oracle.LogAttribute{}
	}
	writeJSON(w, http.StatusOK, executeResponse{Logs: logs})
}

// publish mirrors a successful command onto the event bus for the stream and
// the staleness monitor.
func (s *Server) publish(msg oracle.ExecuteMsg, info oracle.MsgInfo) {
	if s.bus == nil {
		return
	}
	switch {
	case msg.RegisterAsset != nil:
		s.bus.Publish(feedbus.Event{
			Type:   feedbus.TypeAssetRegistered,
			Symbol: msg.RegisterAsset.Symbol,
			Time:   info.Time,
		})
	case msg.FeedPrice != nil:
		s.bus.Publish(feedbus.Event{
			Type:   feedbus.TypePriceFeed,
			Symbol: msg.FeedPrice.Symbol,
			Price:  msg.FeedPrice.Price,
			Time:   info.Time,
		})
	}
}

func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	s.query(w, r, oracle.QueryMsg{Config: &oracle.ConfigQuery{}})
}

func (s *Server) handleAsset(w http.ResponseWriter, r *http.Request) {
	symbol := mux.Vars(r)["symbol"]
	s.query(w, r, oracle.QueryMsg{Asset: &oracle.AssetQuery{Symbol: symbol}})
}

func (s *Server) handlePrice(w http.ResponseWriter, r *http.Request) {
	symbol := mux.Vars(r)["symbol"]
	s.query(w, r, oracle.QueryMsg{Price: &oracle.PriceQuery{Symbol: symbol}})
}

func (s *Server) query(w http.ResponseWriter, r *http.Request, msg oracle.QueryMsg) {
	raw, err := s.svc.Query(r.Context(), msg)
	s.metrics.observeQuery(err)
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(raw)
}

// writeError maps the core's failure taxonomy onto HTTP status codes.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, oracle.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, oracle.ErrUnauthorized):
		status = http.StatusForbidden
	case errors.Is(err, oracle.ErrAlreadyExists):
		status = http.StatusConflict
	case errors.Is(err, oracle.ErrInvalidInput), errors.Is(err, identity.ErrInvalidAddress):
		status = http.StatusBadRequest
	}
	if status == http.StatusInternalServerError {
		s.log.Error().Err(err).Msg("internal failure")
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func commandName(msg oracle.ExecuteMsg) string {
	switch {
	case msg.UpdateConfig != nil:
		return "update_config"
	case msg.RegisterAsset != nil:
		return "register_asset"
	case msg.FeedPrice != nil:
		return "feed_price"
	default:
		return "unknown"
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
