package score

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMissingFeature matches any *MissingFeatureError.
	ErrMissingFeature = errors.New("missing feature")
	// ErrUnknownCategory matches any *UnknownCategoryError.
	ErrUnknownCategory = errors.New("unknown category")
	// ErrConfiguration matches any *ConfigurationError.
	ErrConfiguration = errors.New("invalid configuration")
)

// MissingFeatureError is returned when a record has no value for a feature
// the coefficient table requires.
type MissingFeatureError struct {
	Feature string
}

func (e *MissingFeatureError) Error() string {
	return fmt.Sprintf("missing feature: %q", e.Feature)
}

func (e *MissingFeatureError) Is(target error) bool {
	return target == ErrMissingFeature
}

// UnknownCategoryError is returned when a categorical value is not part of
// the configured enumeration.
type UnknownCategoryError struct {
	Category string
	Value    string
	Known    []string
}

func (e *UnknownCategoryError) Error() string {
	return fmt.Sprintf("unknown %s value: %q (expected one of: %s)",
		e.Category, e.Value, strings.Join(e.Known, ", "))
}

func (e *UnknownCategoryError) Is(target error) bool {
	return target == ErrUnknownCategory
}

// ConfigurationError reports a coefficient table or category that can not
// be used for scoring. It is raised at load time, before any scoring.
type ConfigurationError struct {
	Reason string
	Err    error
}

func (e *ConfigurationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid configuration: %s: %v", e.Reason, e.Err)
	}
	return "invalid configuration: " + e.Reason
}

func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

func configErrorf(format string, args ...any) error {
	return &ConfigurationError{Reason: fmt.Sprintf(format, args...)}
}
