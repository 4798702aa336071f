package wms

import (
	"errors"

	"github.com/freightdesk/backend/internal/domain/shared"
)

var (
	// ErrInvalidTransition is returned when a submission is moved out of order.
	ErrInvalidTransition = errors.New("wms: invalid submission transition")
	// ErrEmptyGroup is returned when a request is built from a group with no records.
	ErrEmptyGroup = errors.New("wms: group has no records")
)

// ConfigError is the shared configuration error; WMS settings are
// reported through it like any other.
type ConfigError = shared.ConfigError

// NewConfigError creates a ConfigError for a missing field.
func NewConfigError(field string) *ConfigError {
	return shared.NewConfigError(field)
}
