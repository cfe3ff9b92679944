// Package types defines the JSON envelopes every admin API response uses.
package types

// SuccessEnvelope wraps a successful result: an evaluation summary, a batch
// result with export rows, or a ledger statement.
type SuccessEnvelope struct {
	Data any `json:"data"`
}

// APIError carries one coded error. Code is a pkg/errors code such as
// VALIDATION_ERROR, CONFLICT or PROCESSOR_ERROR.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// ErrorEnvelope is the error counterpart of SuccessEnvelope.
type ErrorEnvelope struct {
	Error APIError `json:"error"`
}
