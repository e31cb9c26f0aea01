package types

import "time"

// APIError is the error payload carried inside the response envelope.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// Envelope is the uniform response wrapper every endpoint returns.
type Envelope struct {
	Success   bool      `json:"success"`
	Data      any       `json:"data,omitempty"`
	Error     *APIError `json:"error,omitempty"`
	Message   string    `json:"message,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NewSuccess builds a success envelope stamped with the current time.
func NewSuccess(data any, message string) Envelope {
	return Envelope{
		Success:   true,
		Data:      data,
		Message:   message,
		Timestamp: time.Now().UTC(),
	}
}

// NewError builds an error envelope stamped with the current time.
func NewError(apiErr APIError) Envelope {
	return Envelope{
		Success:   false,
		Error:     &apiErr,
		Timestamp: time.Now().UTC(),
	}
}
