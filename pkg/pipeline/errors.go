package pipeline

import "fmt"

// InputGeometryError reports input parcels that cannot be repaired into
// valid rings. Index is the offending parcel's position in the input.
type InputGeometryError struct {
	Index  int
	Reason string
}

func (e *InputGeometryError) Error() string {
	return fmt.Sprintf("input parcel %d: %s", e.Index, e.Reason)
}

// ExhaustedError reports a stage whose every strategy, including the
// degraded fallbacks, failed to produce a usable result.
type ExhaustedError struct {
	Stage  string
	Reason string
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("%s: all strategies exhausted: %s", e.Stage, e.Reason)
}

// ConfigError wraps a fatal configuration validation failure.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return "invalid configuration: " + e.Reason
}
