// Package apierror classifies failed backend calls and dispatches them to
// caller-supplied handlers.
package apierror

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// Notices shown for failures that carry nothing actionable for the user
const (
	MsgDisconnected = "It seems you are disconnected."
	MsgGeneric      = "Oops! Something went wrong."
)

// Kind is the classification of a failed call
type Kind int

const (
	KindNonHTTP Kind = iota
	KindNetwork
	KindBadRequest
	KindUnauthorized
	KindOther
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindBadRequest:
		return "bad_request"
	case KindUnauthorized:
		return "unauthorized"
	case KindOther:
		return "other"
	default:
		return "non_http"
	}
}

// NetworkError means no response was received
type NetworkError struct {
	Method string
	URL    string
	Err    error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s %s: no response: %v", e.Method, e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ResponseError is a non-2xx response from the backend
type ResponseError struct {
	Status           int
	Message          string
	ValidationErrors map[string]string
}

func (e *ResponseError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("backend responded %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("backend responded %d", e.Status)
}

// ApplicationError is a 2xx response whose envelope reports status:false
type ApplicationError struct {
	Message string
}

func (e *ApplicationError) Error() string {
	if e.Message == "" {
		return "request was not successful"
	}
	return e.Message
}

type errorBody struct {
	Message          string          `json:"message"`
	ValidationErrors json.RawMessage `json:"validationErrors"`
	Data             *struct {
		Message          string          `json:"message"`
		ValidationErrors json.RawMessage `json:"validationErrors"`
	} `json:"data"`
}

// FromResponse builds a ResponseError from a status and raw body. The message
// and validation errors are read from body.data first, then from the body root.
func FromResponse(status int, body []byte) *ResponseError {
	re := &ResponseError{Status: status}

	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil {
		return re
	}

	raw := eb.ValidationErrors
	re.Message = eb.Message
	if eb.Data != nil {
		if eb.Data.Message != "" {
			re.Message = eb.Data.Message
		}
		if len(eb.Data.ValidationErrors) > 0 && string(eb.Data.ValidationErrors) != "null" {
			raw = eb.Data.ValidationErrors
		}
	}
	re.ValidationErrors = decodeValidationErrors(raw)
	return re
}

// decodeValidationErrors accepts {field: "msg"} and {field: ["msg", ...]}.
// List values keep their first message.
func decodeValidationErrors(raw json.RawMessage) map[string]string {
	if len(raw) == 0 {
		return nil
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil
	}

	out := make(map[string]string, len(fields))
	for name, v := range fields {
		var s string
		if err := json.Unmarshal(v, &s); err == nil {
			out[name] = s
			continue
		}
		var list []string
		if err := json.Unmarshal(v, &list); err == nil && len(list) > 0 {
			out[name] = list[0]
		}
	}
	return out
}

// Classification is the outcome of inspecting a failed call
type Classification struct {
	Kind             Kind
	Status           int
	Message          string
	ValidationErrors map[string]string
}

// Classify inspects err. Only NetworkError and ResponseError count as HTTP
// failures; everything else, ApplicationError included, is non-HTTP.
func Classify(err error) Classification {
	var ne *NetworkError
	if errors.As(err, &ne) {
		return Classification{Kind: KindNetwork}
	}

	var re *ResponseError
	if !errors.As(err, &re) {
		c := Classification{Kind: KindNonHTTP}
		if err != nil {
			c.Message = err.Error()
		}
		return c
	}

	c := Classification{Status: re.Status, Message: re.Message}
	switch re.Status {
	case http.StatusBadRequest:
		c.Kind = KindBadRequest
		c.ValidationErrors = re.ValidationErrors
	case http.StatusUnauthorized:
		c.Kind = KindUnauthorized
	default:
		c.Kind = KindOther
		c.Message = ""
	}
	return c
}

// Handlers receive the dispatched outcome. Nil handlers are skipped.
type Handlers struct {
	OnBadRequest   func(validationErrors map[string]string, message string)
	OnUnauthorized func()
	OnNonHTTP      func(err error)
	Notify         func(message string)
}

// Dispatch classifies err and invokes exactly one branch of h
func Dispatch(err error, h Handlers) Kind {
	c := Classify(err)
	switch c.Kind {
	case KindNetwork:
		h.notify(MsgDisconnected)
	case KindBadRequest:
		if h.OnBadRequest != nil {
			h.OnBadRequest(c.ValidationErrors, c.Message)
		}
	case KindUnauthorized:
		if h.OnUnauthorized != nil {
			h.OnUnauthorized()
		}
	case KindOther:
		h.notify(MsgGeneric)
	default:
		if h.OnNonHTTP != nil {
			h.OnNonHTTP(err)
		} else {
			h.notify(MsgGeneric)
		}
	}
	return c.Kind
}

func (h Handlers) notify(msg string) {
	if h.Notify != nil {
		h.Notify(msg)
	}
}

// Summary flattens validation errors into one line, sorted by field
func Summary(validationErrors map[string]string) string {
	fields := make([]string, 0, len(validationErrors))
	for f := range validationErrors {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, validationErrors[f])
	}
	return strings.Join(parts, " ")
}
