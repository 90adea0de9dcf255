package errs

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestErrorTaxonomy(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		check func(error) bool
	}{
		{
			name:  "validation",
			err:   NewValidation("invalid currency: %s", "DOGE"),
			check: IsValidation,
		},
		{
			name:  "authentication",
			err:   NewAuthentication("signature mismatch"),
			check: IsAuthentication,
		},
		{
			name:  "conflict",
			err:   NewConflict("tx-1", "already processing"),
			check: IsConflict,
		},
		{
			name:  "provider",
			err:   NewProvider("payment", 503, errors.New("service unavailable")),
			check: IsProvider,
		},
		{
			name:  "insufficient balance",
			err:   &InsufficientBalanceError{UserID: 7, Requested: 100, Available: 10},
			check: IsInsufficientBalance,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.check(tt.err))
			assert.NotEmpty(t, tt.err.Error())
		})
	}
}

func TestChecksSeeThroughWrapping(t *testing.T) {
	err := errors.Wrap(NewConflict("tx-2", "status mismatch"), "transition failed")
	assert.True(t, IsConflict(err))
	assert.False(t, IsValidation(err))
}

func TestProviderErrorUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewProvider("withdrawal", 0, cause)
	assert.ErrorIs(t, err, cause)
}
