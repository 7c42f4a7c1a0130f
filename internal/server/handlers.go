// internal/server/handlers.go
package server

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"lovefi-matcher/internal/common/errors"
	"lovefi-matcher/internal/common/metrics"
	"lovefi-matcher/internal/common/validation"
	"lovefi-matcher/internal/compatibility"
	"lovefi-matcher/internal/models"
)

var availableEndpoints = []string{"/", "/api", "/submit", "/api/submit", "/match/calculate", "/health", "/ready", "/metrics"}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/", "/api", "/api/":
	default:
		writeJSON(w, http.StatusNotFound, map[string]interface{}{
			"status":              "error",
			"message":             "Endpoint not found",
			"available_endpoints": availableEndpoints,
		})
		return
	}

	modes := make([]string, 0, 2)
	for _, cfg := range compatibility.Modes() {
		modes = append(modes, string(cfg.Mode))
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "Dating Matcher Agent is running",
		"agent":     s.cfg.AgentName,
		"message":   "Go endpoint working",
		"method":    r.Method,
		"modes":     modes,
		"endpoints": availableEndpoints,
		"timestamp": s.now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "healthy",
		"time":   s.now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	checks := make(map[string]string, len(s.checkers))
	ready := true
	for _, c := range s.checkers {
		if err := c.Ping(ctx); err != nil {
			checks[c.Name()] = err.Error()
			ready = false
			continue
		}
		checks[c.Name()] = "ok"
	}

	status, code := "ready", http.StatusOK
	if !ready {
		status, code = "not ready", http.StatusServiceUnavailable
	}
	writeJSON(w, code, map[string]interface{}{
		"status": status,
		"checks": checks,
		"time":   s.now().UTC().Format(time.RFC3339),
	})
}

// handleMatchCalculate scores the flat two-profile body with the REST configuration.
func (s *Server) handleMatchCalculate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]interface{}{
			"status":  "error",
			"message": "use POST",
		})
		return
	}

	ctx, span := s.obs.StartSpan(r.Context(), "http.match.calculate",
		attribute.String("mode", string(s.restMode)))
	defer span.End()

	body, err := readBody(w, r)
	if err != nil {
		s.writeError(w, metrics.TransportREST, errors.NewParseError(err))
		return
	}

	if res := validation.ValidateMatchRequest(body); !res.Valid {
		s.writeError(w, metrics.TransportREST, errors.NewProfileValidationError(res.Error()))
		return
	}

	var req models.MatchRequest
	if err := json.Unmarshal(body, &req); err != nil {
		s.writeError(w, metrics.TransportREST, errors.NewParseError(err))
		return
	}

	a, b := req.Profiles()
	result, err := compatibility.Score(a.ToProfile(), b.ToProfile(), s.restMode)
	if err != nil {
		span.RecordError(err)
		s.writeError(w, metrics.TransportREST, errors.NewScoringConfigurationError(err))
		return
	}

	metrics.RecordScore(string(result.Mode), metrics.TransportREST, result.OverallScore)
	s.obs.RecordScore(ctx, string(result.Mode), metrics.TransportREST)

	writeJSON(w, http.StatusOK, models.MatchResponse{
		Score:   result.OverallScore,
		Details: models.ChatText(req.Name1, req.Name2, result),
		Result:  result,
	})
}

// handleSubmit accepts agent envelopes. Envelopes without a usable payload are
// acknowledged rather than rejected.
func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"status":  "GET received",
			"message": "Submit endpoint working",
			"method":  r.Method,
		})
		return
	}

	ctx, span := s.obs.StartSpan(r.Context(), "http.submit",
		attribute.String("mode", string(s.messageMode)))
	defer span.End()

	body, err := readBody(w, r)
	if err != nil {
		s.writeError(w, metrics.TransportAgent, errors.NewParseError(err))
		return
	}

	var fields map[string]json.RawMessage
	if len(body) > 0 {
		if err := json.Unmarshal(body, &fields); err != nil {
			s.writeError(w, metrics.TransportAgent, errors.NewParseError(err))
			return
		}
	}

	var env models.Envelope
	if len(fields) > 0 {
		if err := json.Unmarshal(body, &env); err != nil {
			s.writeError(w, metrics.TransportAgent, errors.NewParseError(err))
			return
		}
	}

	if env.Payload == "" {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"status":        "POST received",
			"message":       "Submit endpoint working",
			"received_data": len(fields) > 0,
			"method":        http.MethodPost,
		})
		return
	}

	now := s.now().Unix()
	if env.Expires > 0 && env.Expires < now {
		s.writeError(w, metrics.TransportAgent, errors.NewEnvelopeExpiredError(env.Expires))
		return
	}

	var payload models.MatchPayload
	if err := env.DecodePayload(&payload); err != nil {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"status":  "received",
			"message": "Could not parse payload",
			"error":   err.Error(),
		})
		return
	}

	if !payload.HasProfiles() {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"status":  "received",
			"message": "Payload processed but no profiles found",
		})
		return
	}

	for i, p := range []*models.ProfilePayload{payload.Profile1, payload.Profile2} {
		if res := validation.ValidateProfileDocument(p); !res.Valid {
			s.writeError(w, metrics.TransportAgent,
				errors.NewProfileValidationError(fmt.Sprintf("profile%d: %s", i+1, res.Error())))
			return
		}
	}

	result, err := compatibility.Score(payload.Profile1.ToProfile(), payload.Profile2.ToProfile(), s.messageMode)
	if err != nil {
		span.RecordError(err)
		s.writeError(w, metrics.TransportAgent, errors.NewScoringConfigurationError(err))
		return
	}

	metrics.RecordScore(string(result.Mode), metrics.TransportAgent, result.OverallScore)
	s.obs.RecordScore(ctx, string(result.Mode), metrics.TransportAgent)

	session := env.Session
	if session == "" {
		session = uuid.NewString()
	}
	reply := env.Reply(s.cfg.AgentName, session)
	reply.Expires = replyExpiry(env.Expires, now, s.cfg.EnvelopeTTL)
	if err := reply.EncodePayload(models.NewMatchResultPayload(result)); err != nil {
		s.writeError(w, metrics.TransportAgent, errors.NewInternalError(err))
		return
	}

	messageID := uuid.NewString()
	w.Header().Set("X-Message-Id", messageID)

	s.logger.Info("envelope scored", map[string]interface{}{
		"messageId": messageID,
		"sender":    env.Sender,
		"session":   session,
		"score":     result.OverallScore,
	})

	writeJSON(w, http.StatusOK, reply)
}

// replyExpiry bounds the reply's lifetime to ttl seconds from now. A zero ttl
// echoes the request's expiry.
func replyExpiry(expires, now int64, ttl int) int64 {
	if ttl <= 0 {
		return expires
	}
	limit := now + int64(ttl)
	if expires == 0 || expires > limit {
		return limit
	}
	return expires
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			return nil, fmt.Errorf("request body exceeds %d bytes", tooLarge.Limit)
		}
		return nil, fmt.Errorf("read body: %w", err)
	}
	return body, nil
}

func (s *Server) writeError(w http.ResponseWriter, transport string, stdErr *errors.StandardError) {
	metrics.RecordScoreError(transport, string(stdErr.Code))

	status := errors.HTTPStatus(stdErr.Code)
	fields := map[string]interface{}{
		"transport": transport,
		"errorCode": string(stdErr.Code),
		"details":   stdErr.Details,
		"status":    status,
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", fields)
	} else {
		s.logger.Warn("request rejected", fields)
	}

	writeJSON(w, status, map[string]interface{}{
		"status":  "error",
		"code":    stdErr.Code,
		"message": stdErr.Message,
		"details": stdErr.Details,
	})
}
