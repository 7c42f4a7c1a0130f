// internal/models/envelope.go
package models

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"lovefi-matcher/internal/compatibility"
)

const (
	EnvelopeVersion      = 1
	ResponseSchemaDigest = "matching_response_schema"
)

// Envelope is the agent message wrapper posted to /submit. Payload holds
// base64 encoded JSON.
type Envelope struct {
	Version        int     `json:"version"`
	Sender         string  `json:"sender"`
	Target         string  `json:"target"`
	Session        string  `json:"session"`
	SchemaDigest   string  `json:"schema_digest,omitempty"`
	ProtocolDigest *string `json:"protocol_digest"`
	Payload        string  `json:"payload,omitempty"`
	Expires        int64   `json:"expires"`
	Nonce          int64   `json:"nonce"`
	Signature      *string `json:"signature"`
}

// MatchPayload is the decoded request payload of an envelope.
type MatchPayload struct {
	Profile1 *ProfilePayload `json:"profile1"`
	Profile2 *ProfilePayload `json:"profile2"`
}

func (p MatchPayload) HasProfiles() bool {
	return p.Profile1 != nil && p.Profile2 != nil
}

// MatchResultPayload is the decoded payload of a response envelope.
type MatchResultPayload struct {
	Score                float64                                             `json:"score"`
	Explanation          string                                              `json:"explanation"`
	CompatibilityFactors map[compatibility.Factor]compatibility.FactorResult `json:"compatibility_factors"`
	Recommendations      []string                                            `json:"recommendations"`
}

func NewMatchResultPayload(result *compatibility.ScoreResult) MatchResultPayload {
	return MatchResultPayload{
		Score:                result.OverallScore,
		Explanation:          result.Explanation,
		CompatibilityFactors: result.Factors,
		Recommendations:      result.Recommendations,
	}
}

// DecodePayload base64 decodes the envelope payload and unmarshals it into v.
func (e Envelope) DecodePayload(v interface{}) error {
	raw, err := base64.StdEncoding.DecodeString(e.Payload)
	if err != nil {
		return fmt.Errorf("decode base64 payload: %w", err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}
	return nil
}

// EncodePayload marshals v and stores it base64 encoded.
func (e *Envelope) EncodePayload(v interface{}) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	e.Payload = base64.StdEncoding.EncodeToString(raw)
	return nil
}

// Reply builds the response envelope addressed back to the sender of e.
func (e Envelope) Reply(sender, session string) Envelope {
	return Envelope{
		Version:      EnvelopeVersion,
		Sender:       sender,
		Target:       e.Sender,
		Session:      session,
		SchemaDigest: ResponseSchemaDigest,
		Expires:      e.Expires,
		Nonce:        e.Nonce,
	}
}
