package apiv1

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	"ielts-payme-billing/internal/domain"
	"ielts-payme-billing/internal/infra/logging"
	"ielts-payme-billing/internal/infra/metrics"
)

type rpcRequest struct {
	ID     json.RawMessage `json:"id"`
	Method string          `json:"method"`
	Params json.RawMessage `json:"params"`
}

type rpcResponse struct {
	JSONRPC string           `json:"jsonrpc"`
	ID      json.RawMessage  `json:"id"`
	Result  any              `json:"result,omitempty"`
	Error   *domain.RPCError `json:"error,omitempty"`
}

// handlePayme answers every request with HTTP 200; failures travel in the
// JSON-RPC error member.
func (s *Server) handlePayme(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeRPC(w, nil, nil, domain.NewRPCError(domain.CodeInvalidHTTPMethod, "Invalid HTTP method"))
		return
	}

	// An unreadable body still goes through the guard first so unauthenticated
	// callers only ever see -32504. HMAC over a truncated body cannot match.
	body, readErr := io.ReadAll(http.MaxBytesReader(w, r.Body, s.opts.MaxBodyBytes))

	var req rpcRequest
	parseErr := readErr
	if parseErr == nil {
		parseErr = json.Unmarshal(body, &req)
	}

	if aerr := s.Guard.Authenticate(r.Header, body); aerr != nil {
		metrics.IncPaymeAuthFailure()
		l := logging.With(r.Context(), s.log)
		l.Warn().
			Str("remote", r.RemoteAddr).
			Str("credentials", logging.Redact(presentedCredentials(r.Header), s.opts.Dev)).
			Msg("payme authorization failed")
		writeRPC(w, req.ID, nil, aerr)
		return
	}
	if parseErr != nil {
		writeRPC(w, nil, nil, domain.NewRPCError(domain.CodeParseError, "Parse error"))
		return
	}
	if req.Method == "" {
		writeRPC(w, req.ID, nil, domain.NewRPCError(domain.CodeInvalidRequest, "Method is required").WithData("method"))
		return
	}
	params := req.Params
	if len(bytes.TrimSpace(params)) == 0 {
		params = json.RawMessage(`{}`)
	}

	defer logging.TraceDuration(s.log, "payme."+req.Method)()
	result, rerr := s.Payme.Handle(r.Context(), req.Method, params)
	if rerr != nil {
		l := logging.With(r.Context(), s.log)
		l.Info().Str("method", req.Method).Int("code", rerr.Code).Str("data", rerr.Data).Msg("payme rpc error")
	}
	writeRPC(w, req.ID, result, rerr)
}

func writeRPC(w http.ResponseWriter, id json.RawMessage, result any, rerr *domain.RPCError) {
	resp := rpcResponse{JSONRPC: "2.0", ID: id}
	if rerr != nil {
		resp.Error = rerr
	} else {
		resp.Result = result
	}
	writeJSON(w, http.StatusOK, resp)
}

func presentedCredentials(h http.Header) string {
	if v := h.Get("Authorization"); v != "" {
		return v
	}
	return h.Get("X-Auth")
}
