package domain

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// CorrelationPayload is echoed back verbatim by the payment gateway in its
// IPN callback and is the only way to resolve which transaction a callback
// concerns. The transaction id being an opaque v4 UUID is what keeps the
// payload unguessable.
type CorrelationPayload struct {
	TransactionID uuid.UUID `json:"transaction_id"`
	UserID        uuid.UUID `json:"user_id"`
}

// Encode serializes the payload to the JSON string sent in custom_field.
func (p CorrelationPayload) Encode() (string, error) {
	b, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("encode correlation payload: %w", err)
	}
	return string(b), nil
}

// ParseCorrelationPayload decodes and validates a custom_field value.
// Fails closed: malformed JSON or zero-valued ids are rejected.
func ParseCorrelationPayload(raw string) (CorrelationPayload, error) {
	var p CorrelationPayload
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return CorrelationPayload{}, fmt.Errorf("parse correlation payload: %w", err)
	}
	if p.TransactionID == uuid.Nil || p.UserID == uuid.Nil {
		return CorrelationPayload{}, fmt.Errorf("correlation payload missing ids")
	}
	return p, nil
}
