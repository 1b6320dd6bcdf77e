package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestErrors_Existence tests that all error variables exist and are not nil
func TestErrors_Existence(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"ErrNotFound", ErrNotFound},
		{"ErrInvalidInput", ErrInvalidInput},
		{"ErrUnsupportedType", ErrUnsupportedType},
		{"ErrSyncInProgress", ErrSyncInProgress},
		{"ErrNoRoute", ErrNoRoute},
		{"ErrGeocodeFailed", ErrGeocodeFailed},
		{"ErrConnectorValidation", ErrConnectorValidation},
		{"ErrAllDayEvent", ErrAllDayEvent},
		{"ErrMissingLocation", ErrMissingLocation},
		{"ErrRateLimited", ErrRateLimited},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotNil(t, tt.err)
			assert.NotEmpty(t, tt.err.Error())
		})
	}
}

func TestErrNotFound(t *testing.T) {
	assert.Equal(t, "not found", ErrNotFound.Error())
	assert.True(t, errors.Is(ErrNotFound, ErrNotFound))
	assert.False(t, errors.Is(ErrNotFound, ErrInvalidInput))
}

func TestErrNoRoute_Wrapped(t *testing.T) {
	err := fmt.Errorf("here transit: %w", ErrNoRoute)
	assert.True(t, errors.Is(err, ErrNoRoute))
	assert.False(t, errors.Is(err, ErrGeocodeFailed))
}
