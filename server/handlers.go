package server

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	fcuid "github.com/fluxsignal/fcuid-gateway"
	"github.com/fluxsignal/fcuid-gateway/internal/util"
	"github.com/fluxsignal/fcuid-gateway/security"
)

// maxRequestBodySize bounds validate request bodies
const maxRequestBodySize = 4096

// validateRequest is the body of POST /v1/validate
type validateRequest struct {
	// Identifier is the candidate FCUID
	Identifier string `json:"identifier"`

	// Requester overrides the IP-derived requester identity (optional)
	Requester string `json:"requester,omitempty"`
}

// errorResponse is the generic error payload for transport-level failures
type errorResponse struct {
	Error       string `json:"error"`
	Description string `json:"description,omitempty"`
}

// handleValidate runs the full validation pipeline.
// The requester identity defaults to the client IP; the authenticated flag
// comes from the API-key check.
func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBodySize))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "Failed to read request body.")
		return
	}

	var req validateRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "Request body must be JSON.")
		return
	}

	requester := fcuid.Requester{
		ID:            req.Requester,
		Authenticated: s.authenticate(r),
	}
	if requester.ID == "" {
		requester.ID = s.clientIP(r)
	}

	result := s.gateway.Validate(r.Context(), util.NormalizeIdentifier(req.Identifier), requester)

	status := http.StatusOK
	if !result.Valid {
		status = fatalStatus(result)
		if status == http.StatusTooManyRequests && result.RateLimit != nil {
			w.Header().Set("Retry-After", strconv.Itoa(result.RateLimit.RetryAfterSeconds))
		}
	}

	s.logger.Info("validation handled",
		"request_id", security.GetRequestID(r.Context()),
		"valid", result.Valid,
		"variant", result.Variant,
		"warnings", len(result.Warnings))

	writeJSON(w, status, result)
}

// resourceResponse is the sensitive payload returned by a resource lookup
type resourceResponse struct {
	Identifier string `json:"identifier"`
	Variant    string `json:"variant"`
	RequestID  string `json:"request_id"`
}

// handleResource performs a sensitive lookup: full validation followed by
// the access gate. Unauthenticated callers are denied even for well-formed
// identifiers.
func (s *Server) handleResource(w http.ResponseWriter, r *http.Request) {
	identifier := util.NormalizeIdentifier(r.PathValue("identifier"))
	requester := fcuid.Requester{
		ID:            s.clientIP(r),
		Authenticated: s.authenticate(r),
	}

	result := s.gateway.Validate(r.Context(), identifier, requester)
	if !result.Valid {
		status := fatalStatus(result)
		if status == http.StatusTooManyRequests && result.RateLimit != nil {
			w.Header().Set("Retry-After", strconv.Itoa(result.RateLimit.RetryAfterSeconds))
		}
		writeJSON(w, status, result)
		return
	}

	resource := resourceResponse{
		Identifier: identifier,
		Variant:    string(result.Variant),
		RequestID:  security.GetRequestID(r.Context()),
	}

	if aerr := s.gateway.AuthorizeAccess(r.Context(), identifier, requester, resource); aerr != nil {
		writeError(w, aerr.Status, aerr.Code, aerr.Description)
		return
	}

	writeJSON(w, http.StatusOK, resource)
}

// handleRateLimit runs only the rate limiter for the lookup operation
func (s *Server) handleRateLimit(w http.ResponseWriter, r *http.Request) {
	requester := r.PathValue("requester")
	if requester == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "Requester identity is required.")
		return
	}

	decision := s.gateway.CheckRateLimit(r.Context(), requester, fcuid.OperationLookup)

	status := http.StatusOK
	if !decision.Allowed {
		status = http.StatusTooManyRequests
		w.Header().Set("Retry-After", strconv.Itoa(decision.RetryAfterSeconds))
	}
	writeJSON(w, status, decision)
}

// handleReport returns the point-in-time security report
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.gateway.GenerateReport(r.Context()))
}

// handleHealthz is the liveness probe
func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// fatalStatus maps the first fatal error of a result to an HTTP status
func fatalStatus(result *fcuid.ValidationResult) int {
	if len(result.Errors) == 0 {
		return http.StatusOK
	}
	if status := result.Errors[0].Status; status != 0 {
		return status
	}
	return http.StatusBadRequest
}

// writeJSON writes a JSON response with the given status
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes a transport-level error payload
func writeError(w http.ResponseWriter, status int, code, description string) {
	writeJSON(w, status, errorResponse{Error: code, Description: description})
}
