package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-resty/resty/v2"
	json "github.com/json-iterator/go"
)

// APIError represents an API error response
type APIError struct {
	Code       string
	Message    string
	Field      string
	StatusCode int
}

func (e *APIError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("[%d] %s: %s (field: %s)", e.StatusCode, e.Code, e.Message, e.Field)
	}
	return fmt.Sprintf("[%d] %s: %s", e.StatusCode, e.Code, e.Message)
}

// ParseError parses an error response from the API
func ParseError(resp *resty.Response) error {
	statusCode := resp.StatusCode()

	var errResp ErrorResponse
	if err := json.Unmarshal(resp.Body(), &errResp); err == nil && errResp.Code != "" {
		msg := errResp.Message
		if msg == "" {
			msg = errResp.Details
		}
		return &APIError{
			Code:       errResp.Code,
			Message:    msg,
			Field:      errResp.Field,
			StatusCode: statusCode,
		}
	}

	return &APIError{
		Code:       "unknown_error",
		Message:    string(resp.Body()),
		StatusCode: statusCode,
	}
}

func statusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// IsUnauthorized checks if error is due to missing/invalid authentication
func IsUnauthorized(err error) bool {
	return statusOf(err) == http.StatusUnauthorized
}

// IsNotFound checks if error is due to resource not found
func IsNotFound(err error) bool {
	return statusOf(err) == http.StatusNotFound
}

// IsBatchInFlight reports a concurrent request for the same session
func IsBatchInFlight(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Code == "BATCH_IN_FLIGHT"
}

// IsServerError checks if error is due to server error (5xx)
func IsServerError(err error) bool {
	return statusOf(err) >= 500
}

// CheckResponse checks if response is successful and returns error if not
func CheckResponse(resp *resty.Response, err error) error {
	if err != nil {
		return err
	}
	if !resp.IsSuccess() {
		return ParseError(resp)
	}
	return nil
}
