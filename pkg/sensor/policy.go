package sensor

import "fmt"

// AdvancePolicy decides whether the watermark moves after a failed reload.
type AdvancePolicy string

const (
	// AdvanceOnSuccess records the watermark only when the reload succeeded.
	AdvanceOnSuccess AdvancePolicy = "on_success"
	// AdvanceAlways records the watermark whenever a reload was issued.
	AdvanceAlways AdvancePolicy = "always"
)

// ParsePolicy validates a policy name. The empty string selects AdvanceOnSuccess.
func ParsePolicy(s string) (AdvancePolicy, error) {
	switch AdvancePolicy(s) {
	case "", AdvanceOnSuccess:
		return AdvanceOnSuccess, nil
	case AdvanceAlways:
		return AdvanceAlways, nil
	default:
		return "", fmt.Errorf("unknown advance policy %q (want %q or %q)", s, AdvanceOnSuccess, AdvanceAlways)
	}
}

func (p AdvancePolicy) advance(success bool) bool {
	return success || p == AdvanceAlways
}
