package errx

import (
	"errors"
	"net/http"
	"time"
)

// Response is the uniform error body returned for every failed request.
type Response struct {
	Status           int               `json:"status"`
	Error            string            `json:"error"`
	Message          string            `json:"message"`
	Timestamp        time.Time         `json:"timestamp"`
	Path             string            `json:"path"`
	Details          string            `json:"details,omitempty"`
	ValidationErrors map[string]string `json:"validationErrors,omitempty"`
}

type outcome struct {
	status int
	label  string
}

// outcomes is the only place a status code is chosen for a failure kind.
var outcomes = map[Kind]outcome{
	KindNotFound:             {http.StatusNotFound, "Not Found"},
	KindConflict:             {http.StatusConflict, "Conflict"},
	KindInvalidState:         {http.StatusBadRequest, "Bad Request"},
	KindValidation:           {http.StatusBadRequest, "Validation Error"},
	KindAuthenticationFailed: {http.StatusUnauthorized, "authentication_failed"},
	KindRefreshFailed:        {http.StatusUnauthorized, "refresh_failed"},
	KindUnauthorized:         {http.StatusUnauthorized, "Unauthorized"},
	KindForbidden:            {http.StatusForbidden, "Forbidden"},
	KindUnclassified:         {http.StatusInternalServerError, "Internal Server Error"},
}

// Status returns the HTTP status code for k.
func (k Kind) Status() int { return lookup(k).status }

// Label returns the short error label for k.
func (k Kind) Label() string { return lookup(k).label }

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindInvalidState:
		return "invalid_state"
	case KindValidation:
		return "validation"
	case KindAuthenticationFailed:
		return "authentication_failed"
	case KindRefreshFailed:
		return "refresh_failed"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	default:
		return "unclassified"
	}
}

func lookup(k Kind) outcome {
	if o, ok := outcomes[k]; ok {
		return o
	}
	return outcomes[KindUnclassified]
}

// Translate renders err as a Response for the request at path.
//
// Unclassified failures never expose their message. Authentication and
// refresh failures carry the cause in Details; validation failures carry the
// per-field messages in ValidationErrors.
func Translate(err error, path string, now time.Time) Response {
	kind := KindOf(err)
	o := lookup(kind)

	resp := Response{
		Status:    o.status,
		Error:     o.label,
		Timestamp: now.UTC(),
		Path:      path,
	}

	var e *Error
	if kind == KindUnclassified || !errors.As(err, &e) {
		resp.Message = MessageInternal
		return resp
	}

	resp.Message = e.Message
	switch kind {
	case KindAuthenticationFailed, KindRefreshFailed:
		if e.Err != nil {
			resp.Details = e.Err.Error()
		}
	case KindValidation:
		resp.ValidationErrors = e.Fields
	}

	return resp
}
