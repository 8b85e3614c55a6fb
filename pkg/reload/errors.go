package reload

import (
	"fmt"

	"github.com/aretw0/tablewatch/pkg/domain"
)

// TransportError means the orchestrator could not be reached or answered with a non-2xx status.
type TransportError struct {
	StatusCode int
	Body       string
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("HTTP error: %d - %s", e.StatusCode, e.Body)
	}
	return "HTTP error: " + e.Body
}

// ApplicationError means the orchestrator was reached but rejected the mutation.
type ApplicationError struct {
	Errors []domain.GraphQLError
}

func (e *ApplicationError) Error() string {
	return domain.ReloadOutcome{Kind: domain.OutcomeApplicationError, Errors: e.Errors}.String()
}

// AsError converts a failed outcome to its typed error, or returns nil on success.
func AsError(o domain.ReloadOutcome) error {
	switch o.Kind {
	case domain.OutcomeSuccess:
		return nil
	case domain.OutcomeTransportError:
		return &TransportError{StatusCode: o.StatusCode, Body: o.Message}
	case domain.OutcomeApplicationError:
		errs := o.Errors
		if len(errs) == 0 {
			errs = []domain.GraphQLError{{Message: o.Message}}
		}
		return &ApplicationError{Errors: errs}
	default:
		return fmt.Errorf("unknown reload outcome %q", o.Kind)
	}
}
