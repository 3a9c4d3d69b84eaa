package customersdk

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// APIError is the uniform error body returned by every failed request.
type APIError struct {
	Status           int               `json:"status"`
	Label            string            `json:"error"`
	Message          string            `json:"message"`
	Timestamp        time.Time         `json:"timestamp"`
	Path             string            `json:"path"`
	Details          string            `json:"details,omitempty"`
	ValidationErrors map[string]string `json:"validationErrors,omitempty"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%d %s: %s (%s)", e.Status, e.Label, e.Message, e.Details)
	}
	return fmt.Sprintf("%d %s: %s", e.Status, e.Label, e.Message)
}

// parseErrorResponse turns a non-success response into an *APIError. Bodies
// that are not the uniform error shape, such as a proxy's bare 401, get a
// synthesized error from the status line.
func parseErrorResponse(resp *http.Response, body []byte) error {
	var apiErr APIError
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Label != "" {
		if apiErr.Status == 0 {
			apiErr.Status = resp.StatusCode
		}
		return &apiErr
	}

	msg := http.StatusText(resp.StatusCode)
	if h := resp.Header.Get("WWW-Authenticate"); h != "" {
		msg = h
	}
	return &APIError{
		Status:  resp.StatusCode,
		Label:   http.StatusText(resp.StatusCode),
		Message: msg,
		Path:    resp.Request.URL.Path,
	}
}
