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
		{"ErrNotImplemented", ErrNotImplemented},
		{"ErrAuthRequired", ErrAuthRequired},
		{"ErrAuthInvalid", ErrAuthInvalid},
		{"ErrForbidden", ErrForbidden},
		{"ErrRateLimited", ErrRateLimited},
		{"ErrPaginationLoop", ErrPaginationLoop},
		{"ErrAttachmentSource", ErrAttachmentSource},
		{"ErrAttachmentName", ErrAttachmentName},
		{"ErrAttachmentContentType", ErrAttachmentContentType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotNil(t, tt.err)
			assert.NotEmpty(t, tt.err.Error())
		})
	}
}

// TestErrors_Unique tests that no two sentinels match each other
func TestErrors_Unique(t *testing.T) {
	all := []error{
		ErrNotFound, ErrInvalidInput, ErrNotImplemented, ErrAuthRequired,
		ErrAuthInvalid, ErrForbidden, ErrRateLimited, ErrPaginationLoop,
		ErrAttachmentSource, ErrAttachmentName, ErrAttachmentContentType,
	}

	for i, a := range all {
		for j, b := range all {
			if i == j {
				continue
			}
			assert.False(t, errors.Is(a, b), "%v should not match %v", a, b)
		}
	}
}

// TestErrInvalidInput_Wrapped tests wrapped errors still match the sentinel
func TestErrInvalidInput_Wrapped(t *testing.T) {
	err := fmt.Errorf("%w: tenant_id must not be empty", ErrInvalidInput)
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Equal(t, "invalid input: tenant_id must not be empty", err.Error())
}
