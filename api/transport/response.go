package transport

import (
	"encoding/json"

	"github.com/fastygo/taskboard/domain"
)

// Envelope is the standard API response wrapper used for both success and error payloads.
type Envelope struct {
	Status string      `json:"status"`
	Code   string      `json:"code,omitempty"`
	Data   interface{} `json:"data,omitempty"`
	Error  interface{} `json:"error,omitempty"`
	Meta   interface{} `json:"meta,omitempty"`
}

// NewSuccess returns a success envelope.
func NewSuccess(data interface{}, meta interface{}) Envelope {
	return Envelope{
		Status: "success",
		Data:   data,
		Meta:   meta,
	}
}

// NewError returns an error envelope with optional metadata.
func NewError(code string, err interface{}, meta interface{}) Envelope {
	return Envelope{
		Status: "error",
		Code:   code,
		Error:  err,
		Meta:   meta,
	}
}

// String returns the JSON representation (best-effort) for logging purposes.
func (e Envelope) String() string {
	out, err := json.Marshal(e)
	if err != nil {
		return "{}"
	}
	return string(out)
}

// RawEnvelope is the client-side view of an Envelope with Data left undecoded.
type RawEnvelope struct {
	Status string          `json:"status"`
	Code   string          `json:"code,omitempty"`
	Data   json.RawMessage `json:"data,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// Err rebuilds the domain error carried by an error envelope.
func (e RawEnvelope) Err() error {
	if e.Status != "error" {
		return nil
	}
	code := domain.ErrorCode(e.Code)
	if code == "" {
		code = domain.ErrCodeInternal
	}
	if code == domain.ErrCodeNotFound {
		return domain.ErrTaskNotFound
	}
	return domain.NewError(code, e.Error)
}
