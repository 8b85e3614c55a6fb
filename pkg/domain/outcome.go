package domain

import (
	"fmt"
	"strings"
)

// OutcomeKind classifies the result of a reload request.
type OutcomeKind string

const (
	OutcomeSuccess          OutcomeKind = "success"
	OutcomeTransportError   OutcomeKind = "transport_error"
	OutcomeApplicationError OutcomeKind = "application_error"
)

// GraphQLError is one entry of a GraphQL "errors" list, or a typed error member of the
// reload mutation's result union.
type GraphQLError struct {
	Message  string `json:"message"`
	TypeName string `json:"__typename,omitempty"`
}

// ReloadOutcome is the classified result of a single reload request.
type ReloadOutcome struct {
	Kind       OutcomeKind    `json:"kind"`
	Message    string         `json:"message,omitempty"`
	StatusCode int            `json:"status_code,omitempty"`
	Errors     []GraphQLError `json:"errors,omitempty"`
}

// Success reports whether the orchestrator accepted the reload.
func (o ReloadOutcome) Success() bool {
	return o.Kind == OutcomeSuccess
}

// String renders the outcome as the text operators see in skip messages.
func (o ReloadOutcome) String() string {
	switch o.Kind {
	case OutcomeSuccess:
		return "success"
	case OutcomeTransportError:
		if o.StatusCode != 0 {
			return fmt.Sprintf("HTTP error: %d - %s", o.StatusCode, o.Message)
		}
		return "HTTP error: " + o.Message
	case OutcomeApplicationError:
		if len(o.Errors) == 0 {
			return "GraphQL errors: " + o.Message
		}
		msgs := make([]string, len(o.Errors))
		for i, e := range o.Errors {
			if e.TypeName != "" {
				msgs[i] = e.TypeName + ": " + e.Message
			} else {
				msgs[i] = e.Message
			}
		}
		return "GraphQL errors: " + strings.Join(msgs, "; ")
	default:
		return string(o.Kind)
	}
}
