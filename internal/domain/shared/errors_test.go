package shared

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDomainError_Error(t *testing.T) {
	assert.Equal(t, "order source unavailable", NewDomainError(CodeUpstream, "order source unavailable").Error())

	wrapped := WrapDomainError(CodeUpstream, "order source unavailable", errors.New("dial tcp: refused"))
	assert.Equal(t, "order source unavailable: dial tcp: refused", wrapped.Error())
}

func TestDomainError_IsMatchesByCode(t *testing.T) {
	cause := errors.New("timeout")
	err := fmt.Errorf("fetch: %w", WrapDomainError(CodeUpstream, "teapplix unreachable", cause))

	assert.ErrorIs(t, err, ErrUpstream)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrConfiguration)
	assert.False(t, ErrNotFound.Is(cause))
}

func TestDomainError_As(t *testing.T) {
	err := fmt.Errorf("build: %w", NewDomainError(CodeInvalidInput, "days must be between 1 and 31"))

	var de *DomainError
	assert.True(t, errors.As(err, &de))
	assert.Equal(t, CodeInvalidInput, de.Code)
	assert.Nil(t, de.Unwrap())
}
